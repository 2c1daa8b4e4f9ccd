package metrics

import (
	"context"
	"time"

	"github.com/samber/mo"

	"github.com/cyp0633/caldora-share/sharing"
)

// Backend wraps a sharing.Backend and records every call.
type Backend struct {
	next    sharing.Backend
	metrics *Metrics
}

var _ sharing.Backend = (*Backend)(nil)

// Instrument returns next wrapped with m. A nil m returns next unchanged.
func Instrument(next sharing.Backend, m *Metrics) sharing.Backend {
	if m == nil {
		return next
	}
	return &Backend{next: next, metrics: m}
}

func (b *Backend) observe(operation string, start time.Time, err error) {
	b.metrics.RecordOperation(operation, err, time.Since(start))
}

func (b *Backend) ListOwnedCalendars(ctx context.Context, principalURI string) ([]sharing.Calendar, error) {
	start := time.Now()
	cals, err := b.next.ListOwnedCalendars(ctx, principalURI)
	b.observe("list_owned_calendars", start, err)
	return cals, err
}

func (b *Backend) UpdateShares(ctx context.Context, calendarID string, add []sharing.InviteDescriptor, remove []string) error {
	start := time.Now()
	err := b.next.UpdateShares(ctx, calendarID, add, remove)
	b.observe("update_shares", start, err)
	return err
}

func (b *Backend) ListShares(ctx context.Context, calendarID string) ([]sharing.ShareView, error) {
	start := time.Now()
	views, err := b.next.ListShares(ctx, calendarID)
	b.observe("list_shares", start, err)
	return views, err
}

func (b *Backend) SharedWith(ctx context.Context, memberID string) ([]sharing.SharedCalendar, error) {
	start := time.Now()
	cals, err := b.next.SharedWith(ctx, memberID)
	b.observe("shared_with", start, err)
	return cals, err
}

func (b *Backend) ReplyToShare(ctx context.Context, reply sharing.ShareReply) (mo.Option[string], error) {
	start := time.Now()
	url, err := b.next.ReplyToShare(ctx, reply)
	b.observe("reply_to_share", start, err)
	return url, err
}

func (b *Backend) SetPublishStatus(ctx context.Context, calendarID string, published bool) error {
	start := time.Now()
	err := b.next.SetPublishStatus(ctx, calendarID, published)
	b.observe("set_publish_status", start, err)
	return err
}

func (b *Backend) PublishURL(ctx context.Context, calendarID string) (mo.Option[string], error) {
	start := time.Now()
	url, err := b.next.PublishURL(ctx, calendarID)
	b.observe("publish_url", start, err)
	return url, err
}

func (b *Backend) Enqueue(ctx context.Context, principalURI string, n sharing.Notification) error {
	start := time.Now()
	err := b.next.Enqueue(ctx, principalURI, n)
	b.observe("enqueue", start, err)
	if err == nil {
		b.metrics.RecordEnqueued(n.Kind())
	}
	return err
}

func (b *Backend) ListNotifications(ctx context.Context, principalURI string) ([]sharing.Notification, error) {
	start := time.Now()
	ns, err := b.next.ListNotifications(ctx, principalURI)
	b.observe("list_notifications", start, err)
	return ns, err
}

func (b *Backend) DeleteNotification(ctx context.Context, principalURI string, n sharing.Notification) error {
	start := time.Now()
	err := b.next.DeleteNotification(ctx, principalURI, n)
	b.observe("delete_notification", start, err)
	return err
}
