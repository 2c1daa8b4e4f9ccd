package sharing

import (
	"context"

	"github.com/samber/mo"
)

// Principal directory defaults used when resolving invite addresses.
const (
	DefaultPrincipalPrefix = "principals/users"
	EmailAttribute         = "{http://sabredav.org/ns}email-address"
)

// PrincipalResolver looks up principals. It is implemented by the principal
// directory, not by this package.
type PrincipalResolver interface {
	// ResolveByAttribute returns the path of the principal under namespace
	// whose attribute key equals value, or None.
	ResolveByAttribute(ctx context.Context, namespace, key, value string) (mo.Option[string], error)
	// GetByPath returns the principal at path. Unknown paths return an
	// unknown_principal error.
	GetByPath(ctx context.Context, path string) (*Principal, error)
}

// CalendarStore is the base calendar listing this package extends.
type CalendarStore interface {
	// ListOwnedCalendars returns the calendars owned by principalURI.
	ListOwnedCalendars(ctx context.Context, principalURI string) ([]Calendar, error)
}

// ShareStore owns the share rows.
type ShareStore interface {
	// UpdateShares adds every invitee in add and removes every address in
	// remove as a single atomic unit. Each new or re-issued invite enqueues an
	// Invite notification for the invitee.
	UpdateShares(ctx context.Context, calendarID string, add []InviteDescriptor, remove []string) error
	// ListShares returns the shares of a calendar joined with their principals.
	ListShares(ctx context.Context, calendarID string) ([]ShareView, error)
	// SharedWith returns the visible calendars shared to memberID ordered by
	// calendar order.
	SharedWith(ctx context.Context, memberID string) ([]SharedCalendar, error)
	// ReplyToShare records a sharee's answer. Accepting returns the address of
	// the calendar as seen by the sharee.
	ReplyToShare(ctx context.Context, reply ShareReply) (mo.Option[string], error)
	// SetPublishStatus creates or removes the public subscription of a calendar.
	SetPublishStatus(ctx context.Context, calendarID string, published bool) error
	// PublishURL returns the public subscription URL of a published calendar.
	PublishURL(ctx context.Context, calendarID string) (mo.Option[string], error)
}

// NotificationQueue owns queued notifications per principal.
type NotificationQueue interface {
	Enqueue(ctx context.Context, principalURI string, n Notification) error
	// ListNotifications returns notifications oldest first.
	ListNotifications(ctx context.Context, principalURI string) ([]Notification, error)
	// DeleteNotification acknowledges n. Deleting twice is not an error.
	DeleteNotification(ctx context.Context, principalURI string, n Notification) error
}

// Backend is a complete storage backend for sharing.
type Backend interface {
	CalendarStore
	ShareStore
	NotificationQueue
}
