package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/cyp0633/caldora-share/internal/logging"
	"github.com/cyp0633/caldora-share/sharing"
)

// visibleStatuses is the SQL list of statuses that keep a share in the
// sharee's listing.
var visibleStatuses = fmt.Sprintf("%d, %d", sharing.StatusNoResponse, sharing.StatusAccepted)

// UpdateShares implements sharing.ShareStore
func (b *Backend) UpdateShares(ctx context.Context, calendarID string, add []sharing.InviteDescriptor, remove []string) error {
	log := logging.WithOperation(b.opts.logger, "update_shares")
	if len(add) == 0 && len(remove) == 0 {
		return nil
	}

	cal, err := getCalendar(ctx, b.db, calendarID)
	if err != nil {
		return err
	}
	// principals are resolved on the shared connection, before the
	// transaction takes it
	invites, removals, err := sharing.ResolveUpdate(ctx, b.dir, b.opts.principalPrefix, cal, add, remove)
	if err != nil {
		log.Info("share update rejected", logging.Calendar(calendarID), logging.Err(err))
		return err
	}
	owner, err := sharing.LookupOwner(ctx, b.dir, cal)
	if err != nil {
		return err
	}

	sent, removed := 0, 0
	err = b.withTx(ctx, "update shares", func(tx *sql.Tx) error {
		for _, inv := range invites {
			existing, err := shareStatus(ctx, tx, cal.ID, inv.Principal.ID)
			if err != nil {
				return err
			}
			status, invite := sharing.InviteStatus(existing)

			_, err = tx.ExecContext(ctx, `INSERT INTO calendarshares
				(calendarid, member, status, readonly, summary, commonname)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT (calendarid, member) DO UPDATE SET
					status = excluded.status,
					readonly = excluded.readonly,
					summary = excluded.summary,
					commonname = excluded.commonname`,
				cal.ID, inv.Principal.ID, int(status), inv.Invite.ReadOnly,
				nullString(inv.Invite.Summary), nullString(inv.Invite.CommonName))
			if err != nil {
				return err
			}
			if invite {
				n := sharing.NewInvite(b.opts.calendarRoot, cal, owner, inv)
				if err := b.enqueueTx(ctx, tx, inv.Principal.Path, n); err != nil {
					return err
				}
				sent++
			}
			log.Debug("share upserted", logging.Calendar(cal.ID), logging.Address(inv.Invite.Href))
		}
		hostURL := sharing.HostURL(b.opts.calendarRoot, cal)
		for _, p := range removals {
			res, err := tx.ExecContext(ctx, `DELETE FROM calendarshares WHERE calendarid = ? AND member = ?`, cal.ID, p.ID)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				continue
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM notifications
				WHERE principaluri = ? AND notification = ? AND hosturl = ?`,
				p.Path, string(sharing.KindInvite), hostURL); err != nil {
				return err
			}
			if err := b.enqueueTx(ctx, tx, p.Path, sharing.NewUninvite(b.opts.calendarRoot, cal, owner, p)); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		log.Error("share update failed", logging.Calendar(cal.ID), logging.Err(err))
		return err
	}

	log.Info("shares updated",
		logging.Calendar(cal.ID),
		logging.Count(len(invites)),
		"removed", removed,
		"invites_sent", sent)
	return nil
}

func shareStatus(ctx context.Context, q queryer, calendarID, memberID string) (mo.Option[sharing.ShareStatus], error) {
	var status int
	err := q.QueryRowContext(ctx, `SELECT status FROM calendarshares WHERE calendarid = ? AND member = ?`,
		calendarID, memberID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return mo.None[sharing.ShareStatus](), nil
	}
	if err != nil {
		return mo.None[sharing.ShareStatus](), err
	}
	return mo.Some(sharing.ShareStatus(status)), nil
}

// ListShares implements sharing.ShareStore
func (b *Backend) ListShares(ctx context.Context, calendarID string) ([]sharing.ShareView, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT s.calendarid, s.status, s.readonly, s.summary, s.commonname,
			p.uri, p.email, p.displayname
		FROM calendarshares AS s
		LEFT JOIN principals AS p ON s.member = p.id
		WHERE s.calendarid = ?
		ORDER BY s.calendarid ASC, p.uri ASC`, calendarID)
	if err != nil {
		return nil, sharing.StoreUnavailable("list shares", err)
	}
	defer rows.Close()

	views := []sharing.ShareView{}
	for rows.Next() {
		var (
			v                    sharing.ShareView
			status               int
			summary, commonName  sql.NullString
			path, email, display sql.NullString
		)
		if err := rows.Scan(&v.CalendarID, &status, &v.ReadOnly, &summary, &commonName, &path, &email, &display); err != nil {
			return nil, sharing.StoreUnavailable("list shares", err)
		}
		v.Status = sharing.ShareStatus(status)
		v.Summary = optString(summary)
		v.CommonName = optString(commonName)
		v.PrincipalPath = path.String
		v.Href = sharing.MailtoHref(email.String)
		v.DisplayName = display.String
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, sharing.StoreUnavailable("list shares", err)
	}
	return views, nil
}

// SharedWith implements sharing.ShareStore
func (b *Backend) SharedWith(ctx context.Context, memberID string) ([]sharing.SharedCalendar, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT `+calendarColumns+`,
			s.member, s.status, s.readonly, s.summary, s.commonname
		FROM calendarshares AS s
		INNER JOIN calendars AS c ON c.id = s.calendarid
		WHERE s.member = ? AND s.status IN (`+visibleStatuses+`)
		ORDER BY c.calendarorder ASC, c.id ASC`, memberID)
	if err != nil {
		return nil, sharing.StoreUnavailable("list shared calendars", err)
	}
	defer rows.Close()

	out := []sharing.SharedCalendar{}
	for rows.Next() {
		var (
			share               sharing.Share
			status              int
			summary, commonName sql.NullString
		)
		cal, err := scanCalendar(rows, &share.MemberID, &status, &share.ReadOnly, &summary, &commonName)
		if err != nil {
			return nil, sharing.StoreUnavailable("list shared calendars", err)
		}
		share.CalendarID = cal.ID
		share.Status = sharing.ShareStatus(status)
		share.Summary = optString(summary)
		share.CommonName = optString(commonName)
		out = append(out, sharing.SharedCalendar{Calendar: cal, Share: share})
	}
	if err := rows.Err(); err != nil {
		return nil, sharing.StoreUnavailable("list shared calendars", err)
	}
	return out, nil
}

// ReplyToShare implements sharing.ShareStore
func (b *Backend) ReplyToShare(ctx context.Context, reply sharing.ShareReply) (mo.Option[string], error) {
	log := logging.WithOperation(b.opts.logger, "reply_to_share")
	none := mo.None[string]()

	if err := sharing.ValidateReply(reply); err != nil {
		return none, err
	}
	owner, uri, ok := sharing.ParseHostURL(b.opts.calendarRoot, reply.CalendarURI)
	if !ok {
		return none, sharing.NotFound("calendar %s", reply.CalendarURI)
	}
	sharee, err := sharing.ResolveAddress(ctx, b.dir, b.opts.principalPrefix, reply.Href)
	if err != nil {
		return none, err
	}

	var (
		cal  sharing.Calendar
		next sharing.ShareStatus
	)
	err = b.withTx(ctx, "reply to share", func(tx *sql.Tx) error {
		var err error
		cal, err = findCalendar(ctx, tx, sharing.OwnerPath(b.opts.principalPrefix, owner), uri)
		if err != nil {
			return err
		}
		current, err := shareStatus(ctx, tx, cal.ID, sharee.ID)
		if err != nil {
			return err
		}
		status, ok := current.Get()
		if !ok {
			return sharing.NotFound("no share of %s for %s", cal.ID, sharee.Path)
		}
		if next, err = sharing.ReplyStatus(status, reply.Status); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `UPDATE calendarshares
			SET status = ?, summary = COALESCE(?, summary)
			WHERE calendarid = ? AND member = ?`,
			int(next), nullString(reply.Summary), cal.ID, sharee.ID); err != nil {
			return err
		}
		return b.enqueueTx(ctx, tx, cal.PrincipalURI, sharing.NewInviteReply(b.opts.calendarRoot, cal, reply))
	})
	if err != nil {
		log.Info("reply rejected", logging.Calendar(cal.ID), logging.Err(err))
		return none, err
	}

	log.Info("share replied",
		logging.Calendar(cal.ID), logging.Principal(sharee.Path), "status", next.String())
	return sharing.AcceptedHref(b.opts.calendarRoot, sharee.Path, cal, next), nil
}

// SetPublishStatus implements sharing.ShareStore
func (b *Backend) SetPublishStatus(ctx context.Context, calendarID string, published bool) error {
	return b.withTx(ctx, "set publish status", func(tx *sql.Tx) error {
		if _, err := getCalendar(ctx, tx, calendarID); err != nil {
			return err
		}
		if !published {
			_, err := tx.ExecContext(ctx, `DELETE FROM calendarpublications WHERE calendarid = ?`, calendarID)
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO calendarpublications (calendarid, url, created)
			VALUES (?, ?, ?) ON CONFLICT (calendarid) DO NOTHING`,
			calendarID, "public/"+uuid.NewString(), b.opts.now().UTC().Unix())
		return err
	})
}

// PublishURL implements sharing.ShareStore
func (b *Backend) PublishURL(ctx context.Context, calendarID string) (mo.Option[string], error) {
	if _, err := getCalendar(ctx, b.db, calendarID); err != nil {
		return mo.None[string](), err
	}
	var url string
	err := b.db.QueryRowContext(ctx, `SELECT url FROM calendarpublications WHERE calendarid = ?`, calendarID).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return mo.None[string](), nil
	}
	if err != nil {
		return mo.None[string](), sharing.StoreUnavailable("get publish url", err)
	}
	return mo.Some(url), nil
}
