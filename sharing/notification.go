package sharing

import (
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/cyp0633/caldora-share/internal/props"
)

// Kind is the discriminator a notification is stored under.
type Kind string

const (
	KindInvite       Kind = "Invite"
	KindInviteReply  Kind = "InviteReply"
	KindSystemStatus Kind = "SystemStatus"
)

// dtstampLayout is the iCalendar UTC date-time form used in notification XML.
const dtstampLayout = "20060102T150405Z"

// Envelope carries the fields every notification has.
type Envelope struct {
	ID      string
	ETag    mo.Option[string]
	DTStamp time.Time
}

// Meta gives backends access to the envelope of any notification.
func (e *Envelope) Meta() *Envelope { return e }

// Notification is one of *Invite, *InviteReply or *SystemStatus.
type Notification interface {
	Kind() Kind
	Meta() *Envelope
	// Encode renders the CalendarServer notification XML.
	Encode() *etree.Element
}

// Invite tells a principal a calendar was shared with them.
type Invite struct {
	Envelope
	Href       mo.Option[string]
	Type       mo.Option[ShareStatus]
	ReadOnly   mo.Option[bool]
	HostURL    mo.Option[string]
	Organizer  mo.Option[string]
	CommonName mo.Option[string]
	FirstName  mo.Option[string]
	LastName   mo.Option[string]
	Summary    mo.Option[string]
}

func (*Invite) Kind() Kind { return KindInvite }

func (n *Invite) Encode() *etree.Element {
	body := props.NewElement("invite-notification")
	body.AddChild(props.NewTextElement("uid", n.ID))
	addText(body, "href", n.Href)
	if t, ok := n.Type.Get(); ok {
		body.AddChild(props.NewElement(statusElement(t)))
	}
	if v, ok := n.HostURL.Get(); ok {
		body.AddChild(props.NewHrefElement("hosturl", v))
	}
	if ro, ok := n.ReadOnly.Get(); ok {
		access := props.NewElement("access")
		if ro {
			access.AddChild(props.NewElement("read"))
		} else {
			access.AddChild(props.NewElement("read-write"))
		}
		body.AddChild(access)
	}
	if n.Organizer.IsPresent() || n.CommonName.IsPresent() || n.FirstName.IsPresent() || n.LastName.IsPresent() {
		org := props.NewElement("organizer")
		addText(org, "href", n.Organizer)
		addText(org, "common-name", n.CommonName)
		addText(org, "first-name", n.FirstName)
		addText(org, "last-name", n.LastName)
		body.AddChild(org)
	}
	addText(body, "summary", n.Summary)
	return wrap(n.DTStamp, body)
}

// InviteReply tells an owner how a sharee answered an invite.
type InviteReply struct {
	Envelope
	Href      mo.Option[string]
	Type      mo.Option[ShareStatus]
	InReplyTo mo.Option[string]
	HostURL   mo.Option[string]
	Summary   mo.Option[string]
}

func (*InviteReply) Kind() Kind { return KindInviteReply }

func (n *InviteReply) Encode() *etree.Element {
	body := props.NewElement("invite-reply")
	addText(body, "href", n.Href)
	if t, ok := n.Type.Get(); ok {
		body.AddChild(props.NewElement(statusElement(t)))
	}
	if v, ok := n.HostURL.Get(); ok {
		body.AddChild(props.NewHrefElement("hosturl", v))
	}
	addText(body, "in-reply-to", n.InReplyTo)
	addText(body, "summary", n.Summary)
	return wrap(n.DTStamp, body)
}

// Priority of a system status notification.
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	}
	return "unknown"
}

// ParsePriority accepts "low", "medium" or "high".
func ParsePriority(v string) (Priority, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for p := PriorityLow; p <= PriorityHigh; p++ {
		if p.String() == v {
			return p, nil
		}
	}
	return 0, InvalidInput("unknown priority %q", v)
}

// SystemStatus is a server-originated message, e.g. a share that went invalid.
type SystemStatus struct {
	Envelope
	Priority    mo.Option[Priority]
	Description mo.Option[string]
	Href        mo.Option[string]
}

func (*SystemStatus) Kind() Kind { return KindSystemStatus }

func (n *SystemStatus) Encode() *etree.Element {
	body := props.NewElement("systemstatus")
	if p, ok := n.Priority.Get(); ok {
		body.CreateAttr("type", p.String())
	}
	addText(body, "href", n.Href)
	addText(body, "description", n.Description)
	return wrap(n.DTStamp, body)
}

// Stamp returns a copy of n with an empty ID, a zero DTStamp and a missing
// ETag filled in. n itself is left untouched, so enqueueing one value twice
// yields two notifications. Kinds this package does not define are stamped
// in place.
func Stamp(n Notification, now time.Time) Notification {
	n = copyNotification(n)
	m := n.Meta()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.DTStamp.IsZero() {
		m.DTStamp = now.UTC()
	}
	if m.ETag.IsAbsent() {
		s, err := props.ToString(n.Encode())
		if err == nil {
			m.ETag = mo.Some(GenerateETag([]byte(s)))
		}
	}
	return n
}

func copyNotification(n Notification) Notification {
	switch v := n.(type) {
	case *Invite:
		c := *v
		return &c
	case *InviteReply:
		c := *v
		return &c
	case *SystemStatus:
		c := *v
		return &c
	}
	return n
}

func statusElement(s ShareStatus) string {
	return "invite-" + s.String()
}

func addText(parent *etree.Element, name string, v mo.Option[string]) {
	if s, ok := v.Get(); ok {
		parent.AddChild(props.NewTextElement(name, s))
	}
}

func wrap(stamp time.Time, body *etree.Element) *etree.Element {
	root := props.NewElement("notification")
	root.AddChild(props.NewTextElement("dtstamp", stamp.UTC().Format(dtstampLayout)))
	root.AddChild(body)
	props.Declare(root)
	return root
}
