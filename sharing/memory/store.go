package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/cyp0633/caldora-share/internal/logging"
	"github.com/cyp0633/caldora-share/sharing"
)

type shareRow struct {
	share      sharing.Share
	memberPath string
}

// Backend implements sharing.Backend using in-memory maps
type Backend struct {
	mu            sync.RWMutex
	resolver      sharing.PrincipalResolver
	calendars     map[string]*sharing.Calendar   // key: calendar id
	shares        map[string]*shareRow           // key: calendarID/memberID
	publications  map[string]sharing.Publication // key: calendar id
	notifications []sharing.Record
	seq           int64
	opts          options
}

var _ sharing.Backend = (*Backend)(nil)

// New creates an empty backend resolving invitees through resolver
func New(resolver sharing.PrincipalResolver, opts ...Option) *Backend {
	return &Backend{
		resolver:     resolver,
		calendars:    make(map[string]*sharing.Calendar),
		shares:       make(map[string]*shareRow),
		publications: make(map[string]sharing.Publication),
		opts:         applyOptions(opts),
	}
}

func shareKey(calendarID, memberID string) string {
	return fmt.Sprintf("%s/%s", calendarID, memberID)
}

func cloneCalendar(cal *sharing.Calendar) sharing.Calendar {
	c := *cal
	c.Components = append([]string{}, cal.Components...)
	return c
}

// Calendar operations

// CreateCalendar seeds a calendar. An empty ID is generated and a nil
// component list gets the default set.
func (b *Backend) CreateCalendar(_ context.Context, cal sharing.Calendar) (sharing.Calendar, error) {
	cal.PrincipalURI = strings.Trim(cal.PrincipalURI, "/")
	if cal.PrincipalURI == "" || cal.URI == "" {
		return sharing.Calendar{}, sharing.InvalidInput("calendar needs an owner and a uri")
	}
	if cal.Components == nil {
		cal.Components = append([]string{}, sharing.DefaultComponents...)
	}
	if err := sharing.ValidateComponents(cal.Components); err != nil {
		return sharing.Calendar{}, err
	}
	cal.Components = sharing.ParseComponents(sharing.FormatComponents(cal.Components))
	if cal.ID == "" {
		cal.ID = uuid.NewString()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.calendars[cal.ID]; exists {
		return sharing.Calendar{}, sharing.Conflict("calendar already exists: %s", cal.ID)
	}
	for _, other := range b.calendars {
		if other.PrincipalURI == cal.PrincipalURI && other.URI == cal.URI {
			return sharing.Calendar{}, sharing.Conflict("calendar %s already exists for %s", cal.URI, cal.PrincipalURI)
		}
	}
	stored := cloneCalendar(&cal)
	b.calendars[cal.ID] = &stored

	b.opts.logger.Debug("calendar created",
		logging.Calendar(cal.ID), logging.Principal(cal.PrincipalURI))
	return cloneCalendar(&stored), nil
}

// ListOwnedCalendars implements sharing.CalendarStore
func (b *Backend) ListOwnedCalendars(_ context.Context, principalURI string) ([]sharing.Calendar, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	calendars := []sharing.Calendar{}
	for _, cal := range b.calendars {
		if cal.PrincipalURI == principalURI {
			calendars = append(calendars, cloneCalendar(cal))
		}
	}
	sortCalendars(calendars)
	return calendars, nil
}

func sortCalendars(cals []sharing.Calendar) {
	sort.Slice(cals, func(i, j int) bool {
		if cals[i].Order != cals[j].Order {
			return cals[i].Order < cals[j].Order
		}
		return cals[i].ID < cals[j].ID
	})
}

func (b *Backend) getCalendar(calendarID string) (sharing.Calendar, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cal, ok := b.calendars[calendarID]
	if !ok {
		return sharing.Calendar{}, sharing.NotFound("calendar %s", calendarID)
	}
	return cloneCalendar(cal), nil
}

// Share operations

// UpdateShares implements sharing.ShareStore
func (b *Backend) UpdateShares(ctx context.Context, calendarID string, add []sharing.InviteDescriptor, remove []string) error {
	log := logging.WithOperation(b.opts.logger, "update_shares")
	if len(add) == 0 && len(remove) == 0 {
		return nil
	}

	cal, err := b.getCalendar(calendarID)
	if err != nil {
		return err
	}
	invites, removals, err := sharing.ResolveUpdate(ctx, b.resolver, b.opts.principalPrefix, cal, add, remove)
	if err != nil {
		log.Info("share update rejected", logging.Calendar(calendarID), logging.Err(err))
		return err
	}
	owner, err := sharing.LookupOwner(ctx, b.resolver, cal)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.calendars[calendarID]; !ok {
		return sharing.NotFound("calendar %s", calendarID)
	}

	sent := 0
	for _, inv := range invites {
		key := shareKey(cal.ID, inv.Principal.ID)
		existing := mo.None[sharing.ShareStatus]()
		if row, ok := b.shares[key]; ok {
			existing = mo.Some(row.share.Status)
		}
		status, invite := sharing.InviteStatus(existing)
		b.shares[key] = &shareRow{
			share: sharing.Share{
				CalendarID: cal.ID,
				MemberID:   inv.Principal.ID,
				Status:     status,
				ReadOnly:   inv.Invite.ReadOnly,
				Summary:    inv.Invite.Summary,
				CommonName: inv.Invite.CommonName,
			},
			memberPath: inv.Principal.Path,
		}
		if invite {
			b.enqueueLocked(inv.Principal.Path, sharing.NewInvite(b.opts.calendarRoot, cal, owner, inv))
			sent++
		}
		log.Debug("share upserted", logging.Calendar(cal.ID), logging.Address(inv.Invite.Href))
	}
	hostURL := sharing.HostURL(b.opts.calendarRoot, cal)
	removed := 0
	for _, p := range removals {
		key := shareKey(cal.ID, p.ID)
		if _, ok := b.shares[key]; !ok {
			continue
		}
		delete(b.shares, key)
		b.retractInvitesLocked(p.Path, hostURL)
		b.enqueueLocked(p.Path, sharing.NewUninvite(b.opts.calendarRoot, cal, owner, p))
		removed++
	}

	log.Info("shares updated",
		logging.Calendar(cal.ID),
		logging.Count(len(invites)),
		"removed", removed,
		"invites_sent", sent)
	return nil
}

// ListShares implements sharing.ShareStore. Members are looked up in the
// directory on every call; a member it no longer knows is listed without
// path, address or name.
func (b *Backend) ListShares(ctx context.Context, calendarID string) ([]sharing.ShareView, error) {
	b.mu.RLock()
	rows := make([]shareRow, 0)
	for _, row := range b.shares {
		if row.share.CalendarID == calendarID {
			rows = append(rows, *row)
		}
	}
	b.mu.RUnlock()

	views := make([]sharing.ShareView, 0, len(rows))
	for _, row := range rows {
		v := sharing.ShareView{
			CalendarID: row.share.CalendarID,
			CommonName: row.share.CommonName,
			Status:     row.share.Status,
			ReadOnly:   row.share.ReadOnly,
			Summary:    row.share.Summary,
		}
		member, err := b.resolver.GetByPath(ctx, row.memberPath)
		switch {
		case err == nil:
			v.PrincipalPath = member.Path
			v.Href = sharing.MailtoHref(member.Email)
			v.DisplayName = member.DisplayName
		case !sharing.IsType(err, sharing.ErrTypeUnknownPrincipal):
			return nil, err
		}
		views = append(views, v)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].PrincipalPath < views[j].PrincipalPath })
	return views, nil
}

// SharedWith implements sharing.ShareStore
func (b *Backend) SharedWith(_ context.Context, memberID string) ([]sharing.SharedCalendar, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := []sharing.SharedCalendar{}
	for _, row := range b.shares {
		if row.share.MemberID != memberID || !row.share.Status.Visible() {
			continue
		}
		cal, ok := b.calendars[row.share.CalendarID]
		if !ok {
			continue
		}
		out = append(out, sharing.SharedCalendar{Calendar: cloneCalendar(cal), Share: row.share})
	}
	sort.Slice(out, func(i, j int) bool {
		a, c := out[i].Calendar, out[j].Calendar
		if a.Order != c.Order {
			return a.Order < c.Order
		}
		return a.ID < c.ID
	})
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
	sharee, err := sharing.ResolveAddress(ctx, b.resolver, b.opts.principalPrefix, reply.Href)
	if err != nil {
		return none, err
	}
	ownerPath := sharing.OwnerPath(b.opts.principalPrefix, owner)

	b.mu.Lock()
	defer b.mu.Unlock()

	var cal *sharing.Calendar
	for _, c := range b.calendars {
		if c.PrincipalURI == ownerPath && c.URI == uri {
			cal = c
			break
		}
	}
	if cal == nil {
		return none, sharing.NotFound("calendar %s", reply.CalendarURI)
	}
	row, ok := b.shares[shareKey(cal.ID, sharee.ID)]
	if !ok {
		return none, sharing.NotFound("no share of %s for %s", cal.ID, sharee.Path)
	}
	next, err := sharing.ReplyStatus(row.share.Status, reply.Status)
	if err != nil {
		log.Info("reply rejected", logging.Calendar(cal.ID), logging.Err(err))
		return none, err
	}

	row.share.Status = next
	if reply.Summary.IsPresent() {
		row.share.Summary = reply.Summary
	}
	b.enqueueLocked(cal.PrincipalURI, sharing.NewInviteReply(b.opts.calendarRoot, *cal, reply))

	log.Info("share replied",
		logging.Calendar(cal.ID), logging.Principal(sharee.Path), "status", next.String())
	return sharing.AcceptedHref(b.opts.calendarRoot, sharee.Path, *cal, next), nil
}

// SetPublishStatus implements sharing.ShareStore
func (b *Backend) SetPublishStatus(_ context.Context, calendarID string, published bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.calendars[calendarID]; !ok {
		return sharing.NotFound("calendar %s", calendarID)
	}
	_, exists := b.publications[calendarID]
	switch {
	case published && !exists:
		b.publications[calendarID] = sharing.Publication{
			CalendarID: calendarID,
			URL:        "public/" + uuid.NewString(),
			Created:    b.opts.now().UTC(),
		}
	case !published:
		delete(b.publications, calendarID)
	}
	return nil
}

// PublishURL implements sharing.ShareStore
func (b *Backend) PublishURL(_ context.Context, calendarID string) (mo.Option[string], error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if _, ok := b.calendars[calendarID]; !ok {
		return mo.None[string](), sharing.NotFound("calendar %s", calendarID)
	}
	if pub, ok := b.publications[calendarID]; ok {
		return mo.Some(pub.URL), nil
	}
	return mo.None[string](), nil
}

// Notification operations

// Enqueue implements sharing.NotificationQueue
func (b *Backend) Enqueue(_ context.Context, principalURI string, n sharing.Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.enqueueLocked(principalURI, n)
	return nil
}

func (b *Backend) enqueueLocked(principalURI string, n sharing.Notification) {
	n = sharing.Stamp(n, b.opts.now())
	b.seq++
	rec := sharing.ToRecord(principalURI, n)
	rec.Seq = b.seq
	b.notifications = append(b.notifications, rec)
}

// retractInvitesLocked drops the queued invites of principalURI to the
// calendar at hostURL.
func (b *Backend) retractInvitesLocked(principalURI, hostURL string) {
	kept := b.notifications[:0]
	for _, rec := range b.notifications {
		if rec.PrincipalURI == principalURI && sharing.IsInviteFor(rec, hostURL) {
			continue
		}
		kept = append(kept, rec)
	}
	b.notifications = kept
}

// ListNotifications implements sharing.NotificationQueue
func (b *Backend) ListNotifications(_ context.Context, principalURI string) ([]sharing.Notification, error) {
	b.mu.RLock()
	records := make([]sharing.Record, 0)
	for _, rec := range b.notifications {
		if rec.PrincipalURI == principalURI {
			records = append(records, rec)
		}
	}
	b.mu.RUnlock()

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].DTStamp.Equal(records[j].DTStamp) {
			return records[i].DTStamp.Before(records[j].DTStamp)
		}
		return records[i].Seq < records[j].Seq
	})

	out := make([]sharing.Notification, 0, len(records))
	for _, rec := range records {
		n, ok := rec.Notification()
		if !ok {
			b.opts.logger.Debug("skipping notification of unknown kind",
				logging.Principal(principalURI), "kind", string(rec.Kind))
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// DeleteNotification implements sharing.NotificationQueue
func (b *Backend) DeleteNotification(_ context.Context, principalURI string, n sharing.Notification) error {
	id := n.Meta().ID

	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.notifications[:0]
	for _, rec := range b.notifications {
		if rec.PrincipalURI == principalURI && rec.ID == id {
			continue
		}
		kept = append(kept, rec)
	}
	b.notifications = kept
	return nil
}
