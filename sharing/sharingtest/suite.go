// Package sharingtest runs the same behavioral checks against every
// sharing.Backend implementation.
package sharingtest

import (
	"context"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/caldora-share/internal/props"
	"github.com/cyp0633/caldora-share/sharing"
)

// Directory is a PrincipalResolver that can be seeded.
type Directory interface {
	sharing.PrincipalResolver
	AddPrincipal(ctx context.Context, p sharing.Principal) (sharing.Principal, error)
}

// Backend is a sharing.Backend that can be seeded with calendars.
type Backend interface {
	sharing.Backend
	CreateCalendar(ctx context.Context, cal sharing.Calendar) (sharing.Calendar, error)
}

// Factory returns an empty backend wired to an empty directory.
type Factory func(t *testing.T) (Backend, Directory)

// Principal paths seeded by every fixture.
const (
	AlicePath = "principals/users/alice"
	BobPath   = "principals/users/bob"
	CarolPath = "principals/users/carol"
)

type fixture struct {
	ctx      context.Context
	backend  Backend
	dir      Directory
	alice    sharing.Principal
	bob      sharing.Principal
	carol    sharing.Principal
	work     sharing.Calendar // bob's, order 2
	home     sharing.Calendar // bob's, order 0
	personal sharing.Calendar // alice's
}

func newFixture(t *testing.T, factory Factory) *fixture {
	t.Helper()
	ctx := context.Background()
	backend, dir := factory(t)
	f := &fixture{ctx: ctx, backend: backend, dir: dir}

	var err error
	f.alice, err = dir.AddPrincipal(ctx, sharing.Principal{Path: AlicePath, Email: "alice@example.com", DisplayName: "Alice"})
	require.NoError(t, err)
	f.bob, err = dir.AddPrincipal(ctx, sharing.Principal{Path: BobPath, Email: "bob@example.com", DisplayName: "Bob"})
	require.NoError(t, err)
	f.carol, err = dir.AddPrincipal(ctx, sharing.Principal{Path: CarolPath, Email: "carol@example.com"})
	require.NoError(t, err)

	f.work, err = backend.CreateCalendar(ctx, sharing.Calendar{PrincipalURI: BobPath, URI: "work", DisplayName: "Work", Order: 2, Color: "#0000FF"})
	require.NoError(t, err)
	f.home, err = backend.CreateCalendar(ctx, sharing.Calendar{PrincipalURI: BobPath, URI: "home", DisplayName: "Home"})
	require.NoError(t, err)
	f.personal, err = backend.CreateCalendar(ctx, sharing.Calendar{PrincipalURI: AlicePath, URI: "personal", DisplayName: "Personal"})
	require.NoError(t, err)
	return f
}

func (f *fixture) share(t *testing.T, cal sharing.Calendar, add ...sharing.InviteDescriptor) {
	t.Helper()
	require.NoError(t, f.backend.UpdateShares(f.ctx, cal.ID, add, nil))
}

func (f *fixture) notifications(t *testing.T, principalURI string) []sharing.Notification {
	t.Helper()
	ns, err := f.backend.ListNotifications(f.ctx, principalURI)
	require.NoError(t, err)
	return ns
}

func (f *fixture) shares(t *testing.T, cal sharing.Calendar) []sharing.ShareView {
	t.Helper()
	views, err := f.backend.ListShares(f.ctx, cal.ID)
	require.NoError(t, err)
	return views
}

func invite(addr string) sharing.InviteDescriptor {
	return sharing.InviteDescriptor{Href: "mailto:" + addr}
}

func invites(ns []sharing.Notification) []*sharing.Invite {
	var out []*sharing.Invite
	for _, n := range ns {
		if inv, ok := n.(*sharing.Invite); ok {
			out = append(out, inv)
		}
	}
	return out
}

// poke is a notification kind no backend knows how to decode.
type poke struct {
	sharing.Envelope
}

func (*poke) Kind() sharing.Kind { return "Poke" }

func (p *poke) Encode() *etree.Element {
	return props.NewTextElement("notification", p.ID)
}

// Run exercises factory's backend.
func Run(t *testing.T, factory Factory) {
	t.Run("ShareStore", func(t *testing.T) { runShareStore(t, factory) })
	t.Run("Reply", func(t *testing.T) { runReply(t, factory) })
	t.Run("Publish", func(t *testing.T) { runPublish(t, factory) })
	t.Run("NotificationQueue", func(t *testing.T) { runNotifications(t, factory) })
	t.Run("Catalog", func(t *testing.T) { runCatalog(t, factory) })
}

func runShareStore(t *testing.T, factory Factory) {
	t.Run("double add keeps one share", func(t *testing.T) {
		f := newFixture(t, factory)
		f.share(t, f.work, invite("alice@example.com"))
		f.share(t, f.work, invite("alice@example.com"))

		views := f.shares(t, f.work)
		require.Len(t, views, 1)
		assert.Equal(t, sharing.StatusNoResponse, views[0].Status)
		assert.Len(t, invites(f.notifications(t, AlicePath)), 1, "a pending share is not re-invited")
	})

	t.Run("add round trip", func(t *testing.T) {
		f := newFixture(t, factory)
		f.share(t, f.work, sharing.InviteDescriptor{
			Href:       "mailto:alice@example.com",
			ReadOnly:   true,
			Summary:    mo.Some("team"),
			CommonName: mo.Some("Ally"),
		})

		views := f.shares(t, f.work)
		require.Len(t, views, 1)
		v := views[0]
		assert.Equal(t, f.work.ID, v.CalendarID)
		assert.Equal(t, "mailto:alice@example.com", v.Href)
		assert.Equal(t, AlicePath, v.PrincipalPath)
		assert.Equal(t, "Alice", v.DisplayName)
		assert.Equal(t, sharing.StatusNoResponse, v.Status)
		assert.True(t, v.ReadOnly)
		assert.Equal(t, mo.Some("team"), v.Summary)
		assert.Equal(t, mo.Some("Ally"), v.CommonName)
	})

	t.Run("batch add processes every invitee", func(t *testing.T) {
		f := newFixture(t, factory)
		f.share(t, f.work, invite("carol@example.com"), invite("alice@example.com"))

		views := f.shares(t, f.work)
		require.Len(t, views, 2)
		assert.Equal(t, AlicePath, views[0].PrincipalPath)
		assert.Equal(t, CarolPath, views[1].PrincipalPath)
		assert.Len(t, invites(f.notifications(t, AlicePath)), 1)
		assert.Len(t, invites(f.notifications(t, CarolPath)), 1)
	})

	t.Run("invite notification is enqueued", func(t *testing.T) {
		f := newFixture(t, factory)
		f.share(t, f.work, sharing.InviteDescriptor{Href: "mailto:alice@example.com", Summary: mo.Some("team")})

		got := invites(f.notifications(t, AlicePath))
		require.Len(t, got, 1)
		n := got[0]
		assert.NotEmpty(t, n.ID)
		assert.True(t, n.ETag.IsPresent())
		assert.False(t, n.DTStamp.IsZero())
		assert.Equal(t, mo.Some("mailto:alice@example.com"), n.Href)
		assert.Equal(t, mo.Some(sharing.StatusNoResponse), n.Type)
		assert.Equal(t, mo.Some(false), n.ReadOnly)
		assert.Equal(t, mo.Some("calendars/bob/work"), n.HostURL)
		assert.Equal(t, mo.Some(BobPath), n.Organizer)
		assert.Equal(t, mo.Some("Bob"), n.CommonName)
		assert.Equal(t, mo.Some("team"), n.Summary)
		assert.True(t, n.FirstName.IsAbsent())
		assert.Empty(t, f.notifications(t, BobPath))
	})

	t.Run("removal is idempotent", func(t *testing.T) {
		f := newFixture(t, factory)
		f.share(t, f.work, invite("alice@example.com"), invite("carol@example.com"))

		require.NoError(t, f.backend.UpdateShares(f.ctx, f.work.ID, nil, []string{"mailto:alice@example.com"}))
		require.NoError(t, f.backend.UpdateShares(f.ctx, f.work.ID, nil, []string{"mailto:alice@example.com"}))

		views := f.shares(t, f.work)
		require.Len(t, views, 1)
		assert.Equal(t, CarolPath, views[0].PrincipalPath)
	})

	t.Run("removal retracts the invite", func(t *testing.T) {
		f := newFixture(t, factory)
		f.share(t, f.work, invite("alice@example.com"))
		f.share(t, f.home, invite("alice@example.com"))

		remove := []string{"mailto:alice@example.com"}
		require.NoError(t, f.backend.UpdateShares(f.ctx, f.work.ID, nil, remove))
		require.NoError(t, f.backend.UpdateShares(f.ctx, f.work.ID, nil, remove))

		got := invites(f.notifications(t, AlicePath))
		require.Len(t, got, 2, "the home invite and one deleted notice")
		byHost := map[string]*sharing.Invite{}
		for _, n := range got {
			byHost[n.HostURL.OrEmpty()] = n
		}
		require.Contains(t, byHost, "calendars/bob/home")
		assert.Equal(t, mo.Some(sharing.StatusNoResponse), byHost["calendars/bob/home"].Type)

		gone, ok := byHost["calendars/bob/work"]
		require.True(t, ok)
		assert.Equal(t, mo.Some(sharing.StatusDeleted), gone.Type)
		assert.Equal(t, mo.Some("mailto:alice@example.com"), gone.Href)
		assert.Equal(t, mo.Some(BobPath), gone.Organizer)
		assert.Equal(t, mo.Some("Bob"), gone.CommonName)

		_, err := f.backend.ReplyToShare(f.ctx, sharing.ShareReply{
			Href:        "mailto:alice@example.com",
			Status:      sharing.StatusAccepted,
			CalendarURI: "calendars/bob/work",
		})
		assert.True(t, sharing.IsType(err, sharing.ErrTypeNotFound))
		assert.Empty(t, f.notifications(t, BobPath))
	})

	t.Run("add and remove of the same invitee removes", func(t *testing.T) {
		f := newFixture(t, factory)
		require.NoError(t, f.backend.UpdateShares(f.ctx, f.work.ID,
			[]sharing.InviteDescriptor{invite("alice@example.com")}, []string{"mailto:alice@example.com"}))
		assert.Empty(t, f.shares(t, f.work))
		assert.Empty(t, f.notifications(t, AlicePath))
	})

	t.Run("unresolvable invitee commits nothing", func(t *testing.T) {
		f := newFixture(t, factory)
		err := f.backend.UpdateShares(f.ctx, f.work.ID,
			[]sharing.InviteDescriptor{invite("alice@example.com"), invite("nobody@example.com")}, nil)
		assert.True(t, sharing.IsType(err, sharing.ErrTypeUnknownPrincipal))
		assert.Empty(t, f.shares(t, f.work))
		assert.Empty(t, f.notifications(t, AlicePath))
	})

	t.Run("owner cannot be invited", func(t *testing.T) {
		f := newFixture(t, factory)
		err := f.backend.UpdateShares(f.ctx, f.work.ID, []sharing.InviteDescriptor{invite("bob@example.com")}, nil)
		assert.True(t, sharing.IsType(err, sharing.ErrTypeInvalidInput))
		assert.Empty(t, f.shares(t, f.work))
	})

	t.Run("unknown calendar", func(t *testing.T) {
		f := newFixture(t, factory)
		err := f.backend.UpdateShares(f.ctx, "missing", []sharing.InviteDescriptor{invite("alice@example.com")}, nil)
		assert.True(t, sharing.IsType(err, sharing.ErrTypeNotFound))
		assert.NoError(t, f.backend.UpdateShares(f.ctx, "missing", nil, nil), "empty update is a no-op")
	})

	t.Run("shares of an unshared calendar", func(t *testing.T) {
		f := newFixture(t, factory)
		assert.Empty(t, f.shares(t, f.home))
		shared, err := f.backend.SharedWith(f.ctx, f.alice.ID)
		require.NoError(t, err)
		assert.Empty(t, shared)
	})

	t.Run("shared with orders by calendar order", func(t *testing.T) {
		f := newFixture(t, factory)
		f.share(t, f.work, invite("alice@example.com"))
		f.share(t, f.home, invite("alice@example.com"))

		shared, err := f.backend.SharedWith(f.ctx, f.alice.ID)
		require.NoError(t, err)
		require.Len(t, shared, 2)
		assert.Equal(t, f.home.ID, shared[0].Calendar.ID)
		assert.Equal(t, f.work.ID, shared[1].Calendar.ID)
		assert.Equal(t, f.alice.ID, shared[1].Share.MemberID)
		assert.Equal(t, BobPath, shared[1].Calendar.PrincipalURI)
		assert.Equal(t, "#0000FF", shared[1].Calendar.Color)
		assert.Equal(t, sharing.DefaultComponents, shared[1].Calendar.Components)
	})
}

func runReply(t *testing.T, factory Factory) {
	reply := func(status sharing.ShareStatus) sharing.ShareReply {
		return sharing.ShareReply{Href: "mailto:alice@example.com", Status: status, CalendarURI: "calendars/bob/work"}
	}

	t.Run("accept", func(t *testing.T) {
		f := newFixture(t, factory)
		f.share(t, f.work, invite("alice@example.com"))
		inv := invites(f.notifications(t, AlicePath))[0]

		r := reply(sharing.StatusAccepted)
		r.InReplyTo = inv.ID
		r.Summary = mo.Some("thanks")
		href, err := f.backend.ReplyToShare(f.ctx, r)
		require.NoError(t, err)
		assert.Equal(t, mo.Some("calendars/alice/bob:work"), href)

		views := f.shares(t, f.work)
		require.Len(t, views, 1)
		assert.Equal(t, sharing.StatusAccepted, views[0].Status)
		assert.Equal(t, mo.Some("thanks"), views[0].Summary)

		owner := f.notifications(t, BobPath)
		require.Len(t, owner, 1)
		got, ok := owner[0].(*sharing.InviteReply)
		require.True(t, ok)
		assert.Equal(t, mo.Some(inv.ID), got.InReplyTo)
		assert.Equal(t, mo.Some(sharing.StatusAccepted), got.Type)
		assert.Equal(t, mo.Some("mailto:alice@example.com"), got.Href)
		assert.Equal(t, mo.Some("calendars/bob/work"), got.HostURL)
		assert.Equal(t, mo.Some("thanks"), got.Summary)
	})

	t.Run("decline hides the calendar", func(t *testing.T) {
		f := newFixture(t, factory)
		f.share(t, f.work, invite("alice@example.com"))

		href, err := f.backend.ReplyToShare(f.ctx, reply(sharing.StatusDeclined))
		require.NoError(t, err)
		assert.True(t, href.IsAbsent())

		shared, err := f.backend.SharedWith(f.ctx, f.alice.ID)
		require.NoError(t, err)
		assert.Empty(t, shared)

		// re-inviting a decline resets the share and sends a new invite
		f.share(t, f.work, invite("alice@example.com"))
		assert.Equal(t, sharing.StatusNoResponse, f.shares(t, f.work)[0].Status)
		assert.Len(t, invites(f.notifications(t, AlicePath)), 2)
	})

	t.Run("accepted share keeps status on re-add", func(t *testing.T) {
		f := newFixture(t, factory)
		f.share(t, f.work, invite("alice@example.com"))
		_, err := f.backend.ReplyToShare(f.ctx, reply(sharing.StatusAccepted))
		require.NoError(t, err)

		f.share(t, f.work, sharing.InviteDescriptor{Href: "mailto:alice@example.com", ReadOnly: true})
		views := f.shares(t, f.work)
		require.Len(t, views, 1)
		assert.Equal(t, sharing.StatusAccepted, views[0].Status)
		assert.True(t, views[0].ReadOnly)
		assert.Len(t, invites(f.notifications(t, AlicePath)), 1)
	})

	t.Run("leading slash in host url", func(t *testing.T) {
		f := newFixture(t, factory)
		f.share(t, f.work, invite("alice@example.com"))
		r := reply(sharing.StatusAccepted)
		r.CalendarURI = "/calendars/bob/work"
		href, err := f.backend.ReplyToShare(f.ctx, r)
		require.NoError(t, err)
		assert.True(t, href.IsPresent())
	})

	t.Run("errors", func(t *testing.T) {
		f := newFixture(t, factory)
		f.share(t, f.work, invite("alice@example.com"))

		_, err := f.backend.ReplyToShare(f.ctx, reply(sharing.StatusNoResponse))
		assert.True(t, sharing.IsType(err, sharing.ErrTypeInvalidInput), "reply must accept or decline")

		r := reply(sharing.StatusAccepted)
		r.CalendarURI = "calendars/bob/missing"
		_, err = f.backend.ReplyToShare(f.ctx, r)
		assert.True(t, sharing.IsType(err, sharing.ErrTypeNotFound), "unknown calendar")

		r.CalendarURI = "not a host url"
		_, err = f.backend.ReplyToShare(f.ctx, r)
		assert.True(t, sharing.IsType(err, sharing.ErrTypeNotFound), "unparseable host url")

		r = reply(sharing.StatusAccepted)
		r.Href = "mailto:carol@example.com"
		_, err = f.backend.ReplyToShare(f.ctx, r)
		assert.True(t, sharing.IsType(err, sharing.ErrTypeNotFound), "no share for carol")

		r.Href = "mailto:nobody@example.com"
		_, err = f.backend.ReplyToShare(f.ctx, r)
		assert.True(t, sharing.IsType(err, sharing.ErrTypeUnknownPrincipal))

		assert.Empty(t, f.notifications(t, BobPath), "failed replies notify nobody")
	})
}

func runPublish(t *testing.T, factory Factory) {
	f := newFixture(t, factory)

	url, err := f.backend.PublishURL(f.ctx, f.work.ID)
	require.NoError(t, err)
	assert.True(t, url.IsAbsent())

	require.NoError(t, f.backend.SetPublishStatus(f.ctx, f.work.ID, true))
	first, err := f.backend.PublishURL(f.ctx, f.work.ID)
	require.NoError(t, err)
	require.True(t, first.IsPresent())
	assert.Regexp(t, `^public/[0-9a-f-]{36}$`, first.MustGet())

	require.NoError(t, f.backend.SetPublishStatus(f.ctx, f.work.ID, true))
	again, err := f.backend.PublishURL(f.ctx, f.work.ID)
	require.NoError(t, err)
	assert.Equal(t, first, again, "publishing twice keeps the url")

	require.NoError(t, f.backend.SetPublishStatus(f.ctx, f.work.ID, false))
	require.NoError(t, f.backend.SetPublishStatus(f.ctx, f.work.ID, false))
	url, err = f.backend.PublishURL(f.ctx, f.work.ID)
	require.NoError(t, err)
	assert.True(t, url.IsAbsent())

	err = f.backend.SetPublishStatus(f.ctx, "missing", true)
	assert.True(t, sharing.IsType(err, sharing.ErrTypeNotFound))
	_, err = f.backend.PublishURL(f.ctx, "missing")
	assert.True(t, sharing.IsType(err, sharing.ErrTypeNotFound))
}

func runNotifications(t *testing.T, factory Factory) {
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	status := func(id string, at time.Time) *sharing.SystemStatus {
		return &sharing.SystemStatus{
			Envelope:    sharing.Envelope{ID: id, DTStamp: at},
			Description: mo.Some(id),
		}
	}
	ids := func(ns []sharing.Notification) []string {
		out := make([]string, 0, len(ns))
		for _, n := range ns {
			out = append(out, n.Meta().ID)
		}
		return out
	}

	t.Run("ordered by dtstamp", func(t *testing.T) {
		f := newFixture(t, factory)
		require.NoError(t, f.backend.Enqueue(f.ctx, AlicePath, status("third", base.Add(2*time.Hour))))
		require.NoError(t, f.backend.Enqueue(f.ctx, AlicePath, status("first", base)))
		require.NoError(t, f.backend.Enqueue(f.ctx, AlicePath, status("second", base.Add(time.Hour))))
		require.NoError(t, f.backend.Enqueue(f.ctx, AlicePath, status("second-tie", base.Add(time.Hour))))
		require.NoError(t, f.backend.Enqueue(f.ctx, BobPath, status("bobs", base)))

		assert.Equal(t, []string{"first", "second", "second-tie", "third"}, ids(f.notifications(t, AlicePath)))
		assert.Equal(t, []string{"bobs"}, ids(f.notifications(t, BobPath)))
		assert.Empty(t, f.notifications(t, CarolPath))
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		f := newFixture(t, factory)
		n := status("gone", base)
		require.NoError(t, f.backend.Enqueue(f.ctx, AlicePath, n))
		require.NoError(t, f.backend.Enqueue(f.ctx, AlicePath, status("kept", base)))

		require.NoError(t, f.backend.DeleteNotification(f.ctx, AlicePath, n))
		require.NoError(t, f.backend.DeleteNotification(f.ctx, AlicePath, n))
		require.NoError(t, f.backend.DeleteNotification(f.ctx, BobPath, status("kept", base)), "other principal")

		assert.Equal(t, []string{"kept"}, ids(f.notifications(t, AlicePath)))
	})

	t.Run("round trip of every kind", func(t *testing.T) {
		f := newFixture(t, factory)
		want := []sharing.Notification{
			&sharing.Invite{
				Envelope:   sharing.Envelope{ID: "inv", ETag: mo.Some(`"inv"`), DTStamp: base},
				Href:       mo.Some("mailto:alice@example.com"),
				Type:       mo.Some(sharing.StatusNoResponse),
				ReadOnly:   mo.Some(true),
				HostURL:    mo.Some("calendars/bob/work"),
				Organizer:  mo.Some(BobPath),
				CommonName: mo.Some("Bob"),
				FirstName:  mo.Some("Bob"),
				LastName:   mo.Some("Builder"),
				Summary:    mo.Some("team"),
			},
			&sharing.InviteReply{
				Envelope:  sharing.Envelope{ID: "rep", ETag: mo.Some(`"rep"`), DTStamp: base.Add(time.Minute)},
				Href:      mo.Some("mailto:alice@example.com"),
				Type:      mo.Some(sharing.StatusDeclined),
				InReplyTo: mo.Some("inv"),
				HostURL:   mo.Some("calendars/bob/work"),
			},
			&sharing.SystemStatus{
				Envelope:    sharing.Envelope{ID: "sys", ETag: mo.Some(`"sys"`), DTStamp: base.Add(2 * time.Minute)},
				Priority:    mo.Some(sharing.PriorityHigh),
				Description: mo.Some("maintenance"),
				Href:        mo.Some("calendars/bob/work"),
			},
		}
		for _, n := range want {
			require.NoError(t, f.backend.Enqueue(f.ctx, AlicePath, n))
		}
		got := f.notifications(t, AlicePath)
		assert.Equal(t, want, got)
	})

	t.Run("enqueue does not modify the value", func(t *testing.T) {
		f := newFixture(t, factory)
		n := &sharing.SystemStatus{Description: mo.Some("again")}
		require.NoError(t, f.backend.Enqueue(f.ctx, AlicePath, n))
		require.NoError(t, f.backend.Enqueue(f.ctx, AlicePath, n))
		assert.Empty(t, n.ID)
		assert.True(t, n.ETag.IsAbsent())

		got := f.notifications(t, AlicePath)
		require.Len(t, got, 2)
		assert.NotEqual(t, got[0].Meta().ID, got[1].Meta().ID)

		require.NoError(t, f.backend.DeleteNotification(f.ctx, AlicePath, got[0]))
		assert.Equal(t, []string{got[1].Meta().ID}, ids(f.notifications(t, AlicePath)))
	})

	t.Run("unknown kinds are skipped", func(t *testing.T) {
		f := newFixture(t, factory)
		require.NoError(t, f.backend.Enqueue(f.ctx, AlicePath, &poke{Envelope: sharing.Envelope{ID: "poke", DTStamp: base}}))
		require.NoError(t, f.backend.Enqueue(f.ctx, AlicePath, status("known", base)))

		assert.Equal(t, []string{"known"}, ids(f.notifications(t, AlicePath)))
	})
}

func runCatalog(t *testing.T, factory Factory) {
	f := newFixture(t, factory)
	f.share(t, f.work, sharing.InviteDescriptor{Href: "mailto:alice@example.com", ReadOnly: true, Summary: mo.Some("team")})

	catalog := sharing.NewCatalog(f.backend, f.backend, f.dir)
	views, err := catalog.ListCalendarsForPrincipal(f.ctx, AlicePath)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, f.personal.ID, views[0].ID)
	assert.Equal(t, "personal", views[0].URI)
	assert.False(t, views[0].Shared)

	v := views[1]
	assert.Equal(t, f.work.ID, v.ID)
	assert.Equal(t, "bob:work", v.URI)
	assert.Equal(t, AlicePath, v.PrincipalURI)
	assert.Equal(t, BobPath, v.OwnerPrincipal)
	assert.True(t, v.Shared)
	assert.True(t, v.ReadOnly)
	assert.Equal(t, mo.Some("team"), v.Summary)

	sharedURL, err := props.ToString(v.Properties[props.ClarkName("shared-url")].Encode())
	require.NoError(t, err)
	assert.Equal(t, "<cs:shared-url><d:href>calendars/alice/bob:work</d:href></cs:shared-url>", sharedURL)

	_, err = catalog.ListCalendarsForPrincipal(f.ctx, "principals/users/ghost")
	assert.True(t, sharing.IsType(err, sharing.ErrTypeUnknownPrincipal))

	// declined shares drop out of the listing
	_, err = f.backend.ReplyToShare(f.ctx, sharing.ShareReply{
		Href:        "mailto:alice@example.com",
		Status:      sharing.StatusDeclined,
		CalendarURI: "calendars/bob/work",
	})
	require.NoError(t, err)
	views, err = catalog.ListCalendarsForPrincipal(f.ctx, AlicePath)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, f.personal.ID, views[0].ID)
}
