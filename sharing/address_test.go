package sharing

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	tests := map[string]string{
		"mailto:bob@example.com":    "bob@example.com",
		"MAILTO:Bob@Example.com":    "bob@example.com",
		"  carol@example.com ":      "carol@example.com",
		"mailto:":                   "",
		"principals/users/dave":     "principals/users/dave",
		"mailto:mailto@example.com": "mailto@example.com",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeAddress(in), in)
	}
}

func TestURIHelpers(t *testing.T) {
	cal := Calendar{PrincipalURI: "principals/users/bob", URI: "work"}

	assert.Equal(t, "bob", Basename("principals/users/bob/"))
	assert.Equal(t, "", Basename(""))
	assert.Equal(t, "bob:work", CompositeURI(cal.PrincipalURI, cal.URI))
	assert.Equal(t, "calendars/bob/work", HostURL(DefaultCalendarRoot, cal))
	assert.Equal(t, "calendars/alice/bob:work", SharedHref(DefaultCalendarRoot, "principals/users/alice", cal))
	assert.Equal(t, "dav/calendars/bob/work", HostURL("/dav/calendars", cal))
	assert.Equal(t, "bob/work", HostURL("", cal))
}

func TestParseHostURL(t *testing.T) {
	tests := []struct {
		in    string
		owner string
		uri   string
		ok    bool
	}{
		{"calendars/bob/work", "bob", "work", true},
		{"/calendars/bob/work/", "bob", "work", true},
		{"calendars/bob", "", "", false},
		{"calendars/bob/work/extra", "", "", false},
		{"other/bob/work", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		owner, uri, ok := ParseHostURL(DefaultCalendarRoot, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.owner, owner, tt.in)
		assert.Equal(t, tt.uri, uri, tt.in)
	}
}

func resolverWith(principals ...*Principal) *MockResolver {
	r := &MockResolver{}
	for _, p := range principals {
		r.On("ResolveByAttribute", mock.Anything, DefaultPrincipalPrefix, EmailAttribute, p.Email).Return(mo.Some(p.Path), nil)
		r.On("GetByPath", mock.Anything, p.Path).Return(p, nil)
	}
	r.On("ResolveByAttribute", mock.Anything, DefaultPrincipalPrefix, EmailAttribute, mock.Anything).Return(mo.None[string](), nil)
	return r
}

func TestResolveUpdate(t *testing.T) {
	alice := &Principal{ID: "1", Path: alicePath, Email: "alice@example.com"}
	carol := &Principal{ID: "3", Path: "principals/users/carol", Email: "carol@example.com"}
	bob := &Principal{ID: "2", Path: bobPath, Email: "bob@example.com"}
	r := resolverWith(alice, bob, carol)
	cal := NewMockCalendar("c", bobPath, "work", 0)
	ctx := context.Background()

	t.Run("duplicates collapse onto last descriptor", func(t *testing.T) {
		invites, removals, err := ResolveUpdate(ctx, r, DefaultPrincipalPrefix, cal, []InviteDescriptor{
			{Href: "mailto:alice@example.com", ReadOnly: true},
			{Href: "mailto:carol@example.com"},
			{Href: "mailto:ALICE@example.com", ReadOnly: false, Summary: mo.Some("again")},
		}, nil)
		require.NoError(t, err)
		assert.Empty(t, removals)
		require.Len(t, invites, 2)
		assert.Equal(t, "1", invites[0].Principal.ID)
		assert.False(t, invites[0].Invite.ReadOnly)
		assert.Equal(t, mo.Some("again"), invites[0].Invite.Summary)
		assert.Equal(t, "3", invites[1].Principal.ID)
	})

	t.Run("removed invitee is not added", func(t *testing.T) {
		invites, removals, err := ResolveUpdate(ctx, r, DefaultPrincipalPrefix, cal,
			[]InviteDescriptor{{Href: "mailto:alice@example.com"}, {Href: "mailto:carol@example.com"}},
			[]string{"mailto:alice@example.com"})
		require.NoError(t, err)
		require.Len(t, removals, 1)
		require.Len(t, invites, 1)
		assert.Equal(t, "3", invites[0].Principal.ID)
	})

	t.Run("unknown address", func(t *testing.T) {
		_, _, err := ResolveUpdate(ctx, r, DefaultPrincipalPrefix, cal,
			[]InviteDescriptor{{Href: "mailto:alice@example.com"}, {Href: "mailto:nobody@example.com"}}, nil)
		assert.True(t, errors.Is(err, ErrUnknownPrincipal))
	})

	t.Run("unknown removal", func(t *testing.T) {
		_, _, err := ResolveUpdate(ctx, r, DefaultPrincipalPrefix, cal, nil, []string{"mailto:nobody@example.com"})
		assert.True(t, errors.Is(err, ErrUnknownPrincipal))
	})

	t.Run("owner cannot be invited", func(t *testing.T) {
		_, _, err := ResolveUpdate(ctx, r, DefaultPrincipalPrefix, cal, []InviteDescriptor{{Href: "mailto:bob@example.com"}}, nil)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})

	t.Run("empty address", func(t *testing.T) {
		_, _, err := ResolveUpdate(ctx, r, DefaultPrincipalPrefix, cal, []InviteDescriptor{{Href: "mailto:"}}, nil)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})
}

func TestMailtoHref(t *testing.T) {
	assert.Equal(t, "mailto:bob@example.com", MailtoHref("bob@example.com"))
	assert.Equal(t, "", MailtoHref(""))
}

func TestLookupOwner(t *testing.T) {
	ctx := context.Background()
	cal := NewMockCalendar("c", bobPath, "work", 0)

	r := &MockResolver{}
	r.On("GetByPath", mock.Anything, bobPath).Return(nil, UnknownPrincipal(bobPath)).Once()
	owner, err := LookupOwner(ctx, r, cal)
	require.NoError(t, err)
	assert.Nil(t, owner)

	r.On("GetByPath", mock.Anything, bobPath).Return(nil, StoreUnavailable("get principal", errors.New("boom"))).Once()
	_, err = LookupOwner(ctx, r, cal)
	assert.True(t, IsType(err, ErrTypeStoreUnavailable))
}

func TestOwnerPath(t *testing.T) {
	assert.Equal(t, bobPath, OwnerPath(DefaultPrincipalPrefix, "bob"))
	assert.Equal(t, bobPath, OwnerPath("/principals/users/", "bob"))
}
