package sharing

import (
	"errors"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteStatus(t *testing.T) {
	tests := []struct {
		name       string
		existing   mo.Option[ShareStatus]
		wantStatus ShareStatus
		wantInvite bool
	}{
		{"new share", mo.None[ShareStatus](), StatusNoResponse, true},
		{"pending", mo.Some(StatusNoResponse), StatusNoResponse, false},
		{"accepted", mo.Some(StatusAccepted), StatusAccepted, false},
		{"declined", mo.Some(StatusDeclined), StatusNoResponse, true},
		{"deleted", mo.Some(StatusDeleted), StatusNoResponse, true},
		{"invalid", mo.Some(StatusInvalid), StatusNoResponse, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, invite := InviteStatus(tt.existing)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantInvite, invite)
		})
	}
}

func TestReplyStatus(t *testing.T) {
	tests := []struct {
		current ShareStatus
		reply   ShareStatus
		want    ShareStatus
		errType ErrorType
	}{
		{StatusNoResponse, StatusAccepted, StatusAccepted, ""},
		{StatusNoResponse, StatusDeclined, StatusDeclined, ""},
		{StatusAccepted, StatusDeclined, StatusDeclined, ""},
		{StatusDeclined, StatusAccepted, StatusAccepted, ""},
		{StatusDeleted, StatusAccepted, 0, ErrTypeConflict},
		{StatusInvalid, StatusDeclined, 0, ErrTypeConflict},
		{StatusNoResponse, StatusNoResponse, 0, ErrTypeInvalidInput},
		{StatusNoResponse, StatusDeleted, 0, ErrTypeInvalidInput},
	}
	for _, tt := range tests {
		got, err := ReplyStatus(tt.current, tt.reply)
		if tt.errType != "" {
			assert.True(t, IsType(err, tt.errType), "%s -> %s: %v", tt.current, tt.reply, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseShareStatus(t *testing.T) {
	for _, in := range []string{"accepted", "Invite-Accepted", " ACCEPTED "} {
		s, err := ParseShareStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, StatusAccepted, s)
	}
	s, err := ParseShareStatus("invite-noresponse")
	require.NoError(t, err)
	assert.Equal(t, StatusNoResponse, s)

	_, err = ParseShareStatus("maybe")
	assert.True(t, errors.Is(err, ErrInvalidInput))

	assert.Equal(t, "status(9)", ShareStatus(9).String())
	assert.False(t, ShareStatus(0).Valid())
	assert.True(t, StatusAccepted.Visible())
	assert.False(t, StatusDeclined.Visible())
}

func TestNewInvite(t *testing.T) {
	cal := NewMockCalendar("c", bobPath, "work", 0)
	inv := ResolvedInvite{
		Invite:    InviteDescriptor{Href: "mailto:alice@example.com", ReadOnly: true, Summary: mo.Some("S")},
		Principal: &Principal{ID: "1", Path: alicePath},
	}

	n := NewInvite(DefaultCalendarRoot, cal, &Principal{Path: bobPath, DisplayName: "Bob"}, inv)
	assert.Equal(t, mo.Some("mailto:alice@example.com"), n.Href)
	assert.Equal(t, mo.Some(StatusNoResponse), n.Type)
	assert.Equal(t, mo.Some(true), n.ReadOnly)
	assert.Equal(t, mo.Some("calendars/bob/work"), n.HostURL)
	assert.Equal(t, mo.Some(bobPath), n.Organizer)
	assert.Equal(t, mo.Some("Bob"), n.CommonName)
	assert.Equal(t, mo.Some("S"), n.Summary)

	n = NewInvite(DefaultCalendarRoot, cal, nil, inv)
	assert.True(t, n.CommonName.IsAbsent())
}

func TestNewUninvite(t *testing.T) {
	cal := NewMockCalendar("c", bobPath, "work", 0)
	alice := &Principal{ID: "1", Path: alicePath, Email: "alice@example.com"}

	n := NewUninvite(DefaultCalendarRoot, cal, &Principal{Path: bobPath, DisplayName: "Bob"}, alice)
	assert.Equal(t, mo.Some(StatusDeleted), n.Type)
	assert.Equal(t, mo.Some("mailto:alice@example.com"), n.Href)
	assert.Equal(t, mo.Some("calendars/bob/work"), n.HostURL)
	assert.Equal(t, mo.Some(bobPath), n.Organizer)
	assert.Equal(t, mo.Some("Bob"), n.CommonName)
	assert.True(t, n.ReadOnly.IsAbsent())
	assert.Contains(t, encodeNotification(t, n), "<cs:invite-deleted/>")

	n = NewUninvite(DefaultCalendarRoot, cal, nil, &Principal{Path: alicePath})
	assert.True(t, n.Href.IsAbsent())
	assert.True(t, n.CommonName.IsAbsent())
}

func TestIsInviteFor(t *testing.T) {
	host := "calendars/bob/work"
	assert.True(t, IsInviteFor(Record{Kind: KindInvite, HostURL: mo.Some(host)}, host))
	assert.False(t, IsInviteFor(Record{Kind: KindInvite, HostURL: mo.Some("calendars/bob/home")}, host))
	assert.False(t, IsInviteFor(Record{Kind: KindInviteReply, HostURL: mo.Some(host)}, host))
	assert.False(t, IsInviteFor(Record{Kind: KindInvite}, host))
}

func TestNewInviteReplyAndAcceptedHref(t *testing.T) {
	cal := NewMockCalendar("c", bobPath, "work", 0)
	reply := ShareReply{Href: "mailto:alice@example.com", Status: StatusAccepted, InReplyTo: "inv-1"}

	n := NewInviteReply(DefaultCalendarRoot, cal, reply)
	assert.Equal(t, mo.Some("inv-1"), n.InReplyTo)
	assert.Equal(t, mo.Some(StatusAccepted), n.Type)
	assert.True(t, n.Summary.IsAbsent())

	assert.Equal(t, mo.Some("calendars/alice/bob:work"), AcceptedHref(DefaultCalendarRoot, alicePath, cal, StatusAccepted))
	assert.True(t, AcceptedHref(DefaultCalendarRoot, alicePath, cal, StatusDeclined).IsAbsent())
}

func TestValidateReply(t *testing.T) {
	assert.NoError(t, ValidateReply(ShareReply{Status: StatusAccepted}))
	assert.NoError(t, ValidateReply(ShareReply{Status: StatusDeclined}))
	assert.True(t, IsType(ValidateReply(ShareReply{Status: StatusInvalid}), ErrTypeInvalidInput))
	assert.True(t, IsType(ValidateReply(ShareReply{}), ErrTypeInvalidInput))
}
