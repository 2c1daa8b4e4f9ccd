package sharing

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"
)

// Principal is an addressable identity as returned by a PrincipalResolver.
type Principal struct {
	ID string
	// Path is the principal URI, e.g. "principals/users/alice".
	Path        string
	Email       string
	DisplayName string
}

// Calendar is a calendar collection row as kept by the calendar store.
type Calendar struct {
	ID string
	// PrincipalURI is the owner's principal path.
	PrincipalURI string
	// URI is the last path segment of the calendar under the owner's home.
	URI         string
	DisplayName string
	Description string
	Color       string
	Timezone    string
	Order       int
	// Components lists the accepted component types, e.g. VEVENT, VTODO.
	Components  []string
	Transparent bool
	// SyncToken is zero until the calendar has recorded a change.
	SyncToken int64
}

// ShareStatus mirrors the CalDAV sharing plugin status codes.
type ShareStatus int

const (
	StatusAccepted   ShareStatus = 1
	StatusDeclined   ShareStatus = 2
	StatusDeleted    ShareStatus = 3
	StatusNoResponse ShareStatus = 4
	StatusInvalid    ShareStatus = 5
)

func (s ShareStatus) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusDeclined:
		return "declined"
	case StatusDeleted:
		return "deleted"
	case StatusNoResponse:
		return "noresponse"
	case StatusInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Valid reports whether s is one of the known status codes.
func (s ShareStatus) Valid() bool {
	return s >= StatusAccepted && s <= StatusInvalid
}

// Visible reports whether a share in this state shows up in the sharee's
// calendar listing.
func (s ShareStatus) Visible() bool {
	return s == StatusNoResponse || s == StatusAccepted
}

// ParseShareStatus accepts "accepted" or "invite-accepted" style names.
func ParseShareStatus(v string) (ShareStatus, error) {
	v = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(v)), "invite-")
	for s := StatusAccepted; s <= StatusInvalid; s++ {
		if s.String() == v {
			return s, nil
		}
	}
	return 0, InvalidInput("unknown share status %q", v)
}

// Share is the relationship "calendar CalendarID is shared with MemberID".
type Share struct {
	CalendarID string
	MemberID   string
	Status     ShareStatus
	ReadOnly   bool
	Summary    mo.Option[string]
	CommonName mo.Option[string]
}

// InviteDescriptor is one entry of the add list of UpdateShares.
type InviteDescriptor struct {
	// Href is the invitee address, usually a mailto: URI.
	Href       string
	CommonName mo.Option[string]
	Summary    mo.Option[string]
	ReadOnly   bool
}

// ShareView is a share joined with the invitee's principal.
type ShareView struct {
	CalendarID    string
	Href          string
	CommonName    mo.Option[string]
	Status        ShareStatus
	ReadOnly      bool
	Summary       mo.Option[string]
	PrincipalPath string
	DisplayName   string
}

// SharedCalendar is a calendar joined with the share that makes it visible
// to a member.
type SharedCalendar struct {
	Calendar Calendar
	Share    Share
}

// ShareReply is a sharee's answer to an invite.
type ShareReply struct {
	// Href is the replying sharee's address.
	Href   string
	Status ShareStatus
	// CalendarURI is the host URL carried by the invite.
	CalendarURI string
	// InReplyTo is the id of the invite notification being answered.
	InReplyTo string
	Summary   mo.Option[string]
}

// Publication is the public read-only subscription of a published calendar.
type Publication struct {
	CalendarID string
	URL        string
	Created    time.Time
}
