package sharing

import (
	"time"

	"github.com/samber/mo"
)

// Record is the flat row a notification is persisted as. Backends store the
// columns as-is; absent options map to NULL.
type Record struct {
	// Seq orders rows with equal DTStamp by insertion.
	Seq          int64
	PrincipalURI string
	Kind         Kind
	DTStamp      time.Time
	ID           string
	ETag         mo.Option[string]
	Href         mo.Option[string]
	Type         mo.Option[int]
	ReadOnly     mo.Option[bool]
	HostURL      mo.Option[string]
	Organizer    mo.Option[string]
	CommonName   mo.Option[string]
	FirstName    mo.Option[string]
	LastName     mo.Option[string]
	Summary      mo.Option[string]
	InReplyTo    mo.Option[string]
	Description  mo.Option[string]
	Priority     mo.Option[int]
}

// ToRecord flattens n for principalURI.
func ToRecord(principalURI string, n Notification) Record {
	m := n.Meta()
	r := Record{
		PrincipalURI: principalURI,
		Kind:         n.Kind(),
		DTStamp:      m.DTStamp,
		ID:           m.ID,
		ETag:         m.ETag,
	}
	switch v := n.(type) {
	case *Invite:
		r.Href = v.Href
		r.Type = statusToInt(v.Type)
		r.ReadOnly = v.ReadOnly
		r.HostURL = v.HostURL
		r.Organizer = v.Organizer
		r.CommonName = v.CommonName
		r.FirstName = v.FirstName
		r.LastName = v.LastName
		r.Summary = v.Summary
	case *InviteReply:
		r.Href = v.Href
		r.Type = statusToInt(v.Type)
		r.InReplyTo = v.InReplyTo
		r.HostURL = v.HostURL
		r.Summary = v.Summary
	case *SystemStatus:
		r.Href = v.Href
		r.Description = v.Description
		if p, ok := v.Priority.Get(); ok {
			r.Priority = mo.Some(int(p))
		}
	}
	return r
}

var decoders = map[Kind]func(r Record, env Envelope) Notification{
	KindInvite: func(r Record, env Envelope) Notification {
		return &Invite{
			Envelope:   env,
			Href:       nonEmpty(r.Href),
			Type:       intToStatus(r.Type),
			ReadOnly:   r.ReadOnly,
			HostURL:    nonEmpty(r.HostURL),
			Organizer:  nonEmpty(r.Organizer),
			CommonName: nonEmpty(r.CommonName),
			FirstName:  nonEmpty(r.FirstName),
			LastName:   nonEmpty(r.LastName),
			Summary:    nonEmpty(r.Summary),
		}
	},
	KindInviteReply: func(r Record, env Envelope) Notification {
		return &InviteReply{
			Envelope:  env,
			Href:      nonEmpty(r.Href),
			Type:      intToStatus(r.Type),
			InReplyTo: nonEmpty(r.InReplyTo),
			HostURL:   nonEmpty(r.HostURL),
			Summary:   nonEmpty(r.Summary),
		}
	},
	KindSystemStatus: func(r Record, env Envelope) Notification {
		n := &SystemStatus{
			Envelope:    env,
			Description: nonEmpty(r.Description),
			Href:        nonEmpty(r.Href),
		}
		if p, ok := r.Priority.Get(); ok && p >= int(PriorityLow) && p <= int(PriorityHigh) {
			n.Priority = mo.Some(Priority(p))
		}
		return n
	},
}

// Notification materializes the typed notification. Unknown kinds report false.
func (r Record) Notification() (Notification, bool) {
	decode, ok := decoders[r.Kind]
	if !ok {
		return nil, false
	}
	env := Envelope{ID: r.ID, ETag: nonEmpty(r.ETag), DTStamp: r.DTStamp}
	return decode(r, env), true
}

func nonEmpty(v mo.Option[string]) mo.Option[string] {
	if s, ok := v.Get(); ok && s != "" {
		return v
	}
	return mo.None[string]()
}

func statusToInt(v mo.Option[ShareStatus]) mo.Option[int] {
	if s, ok := v.Get(); ok {
		return mo.Some(int(s))
	}
	return mo.None[int]()
}

func intToStatus(v mo.Option[int]) mo.Option[ShareStatus] {
	if i, ok := v.Get(); ok && ShareStatus(i).Valid() {
		return mo.Some(ShareStatus(i))
	}
	return mo.None[ShareStatus]()
}
