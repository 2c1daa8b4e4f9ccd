package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/cyp0633/caldora-share/internal/logging"
	"github.com/cyp0633/caldora-share/sharing"
)

// Enqueue implements sharing.NotificationQueue
func (b *Backend) Enqueue(ctx context.Context, principalURI string, n sharing.Notification) error {
	return b.withTx(ctx, "enqueue notification", func(tx *sql.Tx) error {
		return b.enqueueTx(ctx, tx, principalURI, n)
	})
}

func (b *Backend) enqueueTx(ctx context.Context, tx *sql.Tx, principalURI string, n sharing.Notification) error {
	n = sharing.Stamp(n, b.opts.now())
	r := sharing.ToRecord(principalURI, n)
	_, err := tx.ExecContext(ctx, `INSERT INTO notifications
		(principaluri, notification, dtstamp, id, etag, href, type, readonly, hosturl,
		 organizer, commonname, firstname, lastname, summary, inreplyto, description, priority)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.PrincipalURI, string(r.Kind), r.DTStamp.UnixMicro(), r.ID, nullString(r.ETag),
		nullString(r.Href), nullInt(r.Type), nullBool(r.ReadOnly), nullString(r.HostURL),
		nullString(r.Organizer), nullString(r.CommonName), nullString(r.FirstName), nullString(r.LastName),
		nullString(r.Summary), nullString(r.InReplyTo), nullString(r.Description), nullInt(r.Priority))
	return err
}

// ListNotifications implements sharing.NotificationQueue
func (b *Backend) ListNotifications(ctx context.Context, principalURI string) ([]sharing.Notification, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT seq, notification, dtstamp, id, etag, href, type, readonly,
			hosturl, organizer, commonname, firstname, lastname, summary, inreplyto, description, priority
		FROM notifications
		WHERE principaluri = ?
		ORDER BY dtstamp ASC, seq ASC`, principalURI)
	if err != nil {
		return nil, sharing.StoreUnavailable("list notifications", err)
	}
	defer rows.Close()

	out := []sharing.Notification{}
	for rows.Next() {
		var (
			r                   sharing.Record
			kind                string
			stamp               int64
			typ, priority       sql.NullInt64
			readOnly            sql.NullBool
			etag, href, hostURL sql.NullString
			organizer, cn       sql.NullString
			first, last         sql.NullString
			summary, inReplyTo  sql.NullString
			description         sql.NullString
		)
		err := rows.Scan(&r.Seq, &kind, &stamp, &r.ID, &etag, &href, &typ, &readOnly,
			&hostURL, &organizer, &cn, &first, &last, &summary, &inReplyTo, &description, &priority)
		if err != nil {
			return nil, sharing.StoreUnavailable("list notifications", err)
		}
		r.PrincipalURI = principalURI
		r.Kind = sharing.Kind(kind)
		r.DTStamp = time.UnixMicro(stamp).UTC()
		r.ETag = optString(etag)
		r.Href = optString(href)
		r.Type = optInt(typ)
		r.ReadOnly = optBool(readOnly)
		r.HostURL = optString(hostURL)
		r.Organizer = optString(organizer)
		r.CommonName = optString(cn)
		r.FirstName = optString(first)
		r.LastName = optString(last)
		r.Summary = optString(summary)
		r.InReplyTo = optString(inReplyTo)
		r.Description = optString(description)
		r.Priority = optInt(priority)

		n, ok := r.Notification()
		if !ok {
			b.opts.logger.Debug("skipping notification of unknown kind",
				logging.Principal(principalURI), "kind", kind, "seq", r.Seq)
			continue
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, sharing.StoreUnavailable("list notifications", err)
	}
	return out, nil
}

// DeleteNotification implements sharing.NotificationQueue
func (b *Backend) DeleteNotification(ctx context.Context, principalURI string, n sharing.Notification) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM notifications WHERE principaluri = ? AND id = ?`,
		principalURI, n.Meta().ID)
	if err != nil {
		return sharing.StoreUnavailable("delete notification", err)
	}
	return nil
}
