package memory

import (
	"context"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/caldora-share/sharing"
	"github.com/cyp0633/caldora-share/sharing/sharingtest"
)

func TestBackend(t *testing.T) {
	sharingtest.Run(t, func(t *testing.T) (sharingtest.Backend, sharingtest.Directory) {
		dir := NewDirectory()
		return New(dir), dir
	})
}

func TestCreateCalendar(t *testing.T) {
	ctx := context.Background()
	b := New(NewDirectory())

	cal, err := b.CreateCalendar(ctx, sharing.Calendar{PrincipalURI: "principals/users/bob", URI: "work", Components: []string{"vevent", "VJOURNAL"}})
	require.NoError(t, err)
	assert.NotEmpty(t, cal.ID)
	assert.Equal(t, []string{"VEVENT", "VJOURNAL"}, cal.Components)

	_, err = b.CreateCalendar(ctx, sharing.Calendar{PrincipalURI: "principals/users/bob", URI: "work"})
	assert.True(t, sharing.IsType(err, sharing.ErrTypeConflict))

	_, err = b.CreateCalendar(ctx, sharing.Calendar{PrincipalURI: "principals/users/bob", URI: "x", Components: []string{"VCARD"}})
	assert.True(t, sharing.IsType(err, sharing.ErrTypeInvalidInput))

	_, err = b.CreateCalendar(ctx, sharing.Calendar{URI: "orphan"})
	assert.True(t, sharing.IsType(err, sharing.ErrTypeInvalidInput))

	empty, err := b.CreateCalendar(ctx, sharing.Calendar{PrincipalURI: "principals/users/bob", URI: "none", Components: []string{}})
	require.NoError(t, err)
	assert.Equal(t, []string{}, empty.Components)
}

func TestListOwnedCalendarsCopiesValues(t *testing.T) {
	ctx := context.Background()
	b := New(NewDirectory())
	_, err := b.CreateCalendar(ctx, sharing.Calendar{PrincipalURI: "principals/users/bob", URI: "work"})
	require.NoError(t, err)

	cals, err := b.ListOwnedCalendars(ctx, "principals/users/bob")
	require.NoError(t, err)
	require.Len(t, cals, 1)
	cals[0].DisplayName = "changed"
	cals[0].Components[0] = "VFREEBUSY"

	again, err := b.ListOwnedCalendars(ctx, "principals/users/bob")
	require.NoError(t, err)
	assert.Empty(t, again[0].DisplayName)
	assert.Equal(t, sharing.DefaultComponents, again[0].Components)
}

func TestClockAndCalendarRoot(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	dir := NewDirectory()
	b := New(dir, WithClock(func() time.Time { return fixed }), WithCalendarRoot("dav/calendars/"))

	_, err := dir.AddPrincipal(ctx, sharing.Principal{Path: "principals/users/bob", Email: "bob@example.com"})
	require.NoError(t, err)
	_, err = dir.AddPrincipal(ctx, sharing.Principal{Path: "principals/users/alice", Email: "alice@example.com"})
	require.NoError(t, err)
	cal, err := b.CreateCalendar(ctx, sharing.Calendar{PrincipalURI: "principals/users/bob", URI: "work"})
	require.NoError(t, err)

	require.NoError(t, b.UpdateShares(ctx, cal.ID, []sharing.InviteDescriptor{{Href: "mailto:alice@example.com"}}, nil))
	ns, err := b.ListNotifications(ctx, "principals/users/alice")
	require.NoError(t, err)
	require.Len(t, ns, 1)
	inv := ns[0].(*sharing.Invite)
	assert.Equal(t, fixed, inv.DTStamp)
	assert.Equal(t, "dav/calendars/bob/work", inv.HostURL.MustGet())
	assert.True(t, inv.CommonName.IsAbsent(), "bob has no display name")

	href, err := b.ReplyToShare(ctx, sharing.ShareReply{
		Href:        "mailto:alice@example.com",
		Status:      sharing.StatusAccepted,
		CalendarURI: "dav/calendars/bob/work",
	})
	require.NoError(t, err)
	assert.Equal(t, "dav/calendars/alice/bob:work", href.MustGet())
}

func TestListSharesReadsLivePrincipal(t *testing.T) {
	ctx := context.Background()
	alicePath := "principals/users/alice"
	resolver := new(sharing.MockResolver)
	resolver.On("ResolveByAttribute", mock.Anything, sharing.DefaultPrincipalPrefix, sharing.EmailAttribute, "alice@example.com").
		Return(mo.Some(alicePath), nil)
	resolver.On("GetByPath", mock.Anything, "principals/users/bob").
		Return(nil, sharing.UnknownPrincipal("principals/users/bob"))
	resolver.On("GetByPath", mock.Anything, alicePath).
		Return(&sharing.Principal{ID: "a", Path: alicePath, Email: "alice@example.com", DisplayName: "Alice"}, nil).Once()
	resolver.On("GetByPath", mock.Anything, alicePath).
		Return(&sharing.Principal{ID: "a", Path: alicePath, Email: "ally@example.com", DisplayName: "Ally"}, nil).Once()
	resolver.On("GetByPath", mock.Anything, alicePath).
		Return(nil, sharing.UnknownPrincipal(alicePath)).Once()

	b := New(resolver)
	cal, err := b.CreateCalendar(ctx, sharing.Calendar{PrincipalURI: "principals/users/bob", URI: "work"})
	require.NoError(t, err)
	require.NoError(t, b.UpdateShares(ctx, cal.ID, []sharing.InviteDescriptor{{Href: "mailto:alice@example.com"}}, nil))

	views, err := b.ListShares(ctx, cal.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Ally", views[0].DisplayName, "directory changes show up")
	assert.Equal(t, "mailto:ally@example.com", views[0].Href)

	views, err = b.ListShares(ctx, cal.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Empty(t, views[0].PrincipalPath)
	assert.Empty(t, views[0].Href)
	assert.Empty(t, views[0].DisplayName)
	assert.Equal(t, sharing.StatusNoResponse, views[0].Status)
	resolver.AssertExpectations(t)
}
