package sharing

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/caldora-share/internal/props"
)

const (
	alicePath = "principals/users/alice"
	bobPath   = "principals/users/bob"
)

func encodeProp(t *testing.T, p props.Property) string {
	t.Helper()
	s, err := props.ToString(p.Encode())
	require.NoError(t, err)
	return s
}

func newCatalogMocks() (*MockCalendarStore, *MockShareStore, *MockResolver) {
	return &MockCalendarStore{}, &MockShareStore{}, &MockResolver{}
}

func TestListCalendarsForPrincipal_MergeOrdering(t *testing.T) {
	calendars, shares, resolver := newCatalogMocks()
	c1 := NewMockCalendar("c1", alicePath, "home", 0)
	c2 := NewMockCalendar("c2", alicePath, "todo", 1)
	c3 := NewMockCalendar("c3", bobPath, "work", 0)

	calendars.On("ListOwnedCalendars", mock.Anything, alicePath).Return([]Calendar{c1, c2}, nil).Once()
	resolver.On("GetByPath", mock.Anything, alicePath).Return(&Principal{ID: "p-alice", Path: alicePath}, nil).Once()
	shares.On("SharedWith", mock.Anything, "p-alice").Return([]SharedCalendar{
		{Calendar: c3, Share: Share{CalendarID: "c3", MemberID: "p-alice", Status: StatusNoResponse}},
	}, nil).Once()

	catalog := NewCatalog(calendars, shares, resolver)
	views, err := catalog.ListCalendarsForPrincipal(context.Background(), alicePath)
	require.NoError(t, err)

	require.Len(t, views, 3)
	assert.Equal(t, []string{"c1", "c2", "c3"}, []string{views[0].ID, views[1].ID, views[2].ID})
	assert.False(t, views[0].Shared)
	assert.False(t, views[1].Shared)
	assert.True(t, views[2].Shared)

	calendars.AssertExpectations(t)
	shares.AssertExpectations(t)
	resolver.AssertExpectations(t)
}

func TestListCalendarsForPrincipal_URIComposition(t *testing.T) {
	calendars, shares, resolver := newCatalogMocks()
	work := NewMockCalendar("c-work", bobPath, "work", 2)
	work.SyncToken = 7
	work.Transparent = true
	work.Components = []string{"VEVENT"}

	calendars.On("ListOwnedCalendars", mock.Anything, alicePath).Return([]Calendar{}, nil)
	resolver.On("GetByPath", mock.Anything, alicePath).Return(&Principal{ID: "p-alice", Path: alicePath}, nil)
	shares.On("SharedWith", mock.Anything, "p-alice").Return([]SharedCalendar{{
		Calendar: work,
		Share: Share{
			CalendarID: "c-work",
			MemberID:   "p-alice",
			Status:     StatusAccepted,
			ReadOnly:   true,
			Summary:    mo.Some("team calendar"),
		},
	}}, nil)

	views, err := NewCatalog(calendars, shares, resolver).ListCalendarsForPrincipal(context.Background(), alicePath)
	require.NoError(t, err)
	require.Len(t, views, 1)

	v := views[0]
	assert.Equal(t, "c-work", v.ID)
	assert.Equal(t, "bob:work", v.URI)
	assert.Equal(t, alicePath, v.PrincipalURI)
	assert.Equal(t, bobPath, v.OwnerPrincipal)
	assert.True(t, v.ReadOnly)
	assert.Equal(t, mo.Some("team calendar"), v.Summary)

	p := v.Properties
	assert.Equal(t, "<cs:shared-url><d:href>calendars/alice/bob:work</d:href></cs:shared-url>", encodeProp(t, p["{http://calendarserver.org/ns/}shared-url"]))
	assert.Equal(t, "<s:owner-principal><d:href>principals/users/bob</d:href></s:owner-principal>", encodeProp(t, p["{http://sabredav.org/ns}owner-principal"]))
	assert.Equal(t, "<s:read-only>true</s:read-only>", encodeProp(t, p["{http://sabredav.org/ns}read-only"]))
	assert.Equal(t, "<cs:summary>team calendar</cs:summary>", encodeProp(t, p["{http://calendarserver.org/ns/}summary"]))
	assert.Equal(t, "<cs:getctag>http://sabre.io/ns/sync/7</cs:getctag>", encodeProp(t, p["{http://calendarserver.org/ns/}getctag"]))
	assert.Equal(t, "<s:sync-token>7</s:sync-token>", encodeProp(t, p["{http://sabredav.org/ns}sync-token"]))
	assert.Equal(t, `<cal:supported-calendar-component-set><cal:comp name="VEVENT"/></cal:supported-calendar-component-set>`,
		encodeProp(t, p["{urn:ietf:params:xml:ns:caldav}supported-calendar-component-set"]))
	assert.Equal(t, "<cal:schedule-calendar-transp><cal:transparent/></cal:schedule-calendar-transp>",
		encodeProp(t, p["{urn:ietf:params:xml:ns:caldav}schedule-calendar-transp"]))
	assert.Equal(t, "<d:displayname>work</d:displayname>", encodeProp(t, p["{DAV:}displayname"]))
	assert.Equal(t, "<ical:calendar-order>2</ical:calendar-order>", encodeProp(t, p["{http://apple.com/ns/ical/}calendar-order"]))
}

func TestListCalendarsForPrincipal_OwnedPresentation(t *testing.T) {
	calendars, shares, resolver := newCatalogMocks()
	home := NewMockCalendar("c1", alicePath, "home", 0)
	home.Components = nil

	calendars.On("ListOwnedCalendars", mock.Anything, alicePath).Return([]Calendar{home}, nil)
	resolver.On("GetByPath", mock.Anything, alicePath).Return(&Principal{ID: "p-alice", Path: alicePath}, nil)
	shares.On("SharedWith", mock.Anything, "p-alice").Return([]SharedCalendar{}, nil)

	views, err := NewCatalog(calendars, shares, resolver).ListCalendarsForPrincipal(context.Background(), alicePath)
	require.NoError(t, err)
	require.Len(t, views, 1)

	v := views[0]
	assert.Equal(t, "home", v.URI)
	assert.Equal(t, alicePath, v.PrincipalURI)
	assert.Empty(t, v.OwnerPrincipal)
	assert.Equal(t, "<s:sync-token>0</s:sync-token>", encodeProp(t, v.Properties["{http://sabredav.org/ns}sync-token"]))
	assert.Equal(t, "<cal:supported-calendar-component-set/>",
		encodeProp(t, v.Properties["{urn:ietf:params:xml:ns:caldav}supported-calendar-component-set"]))
	assert.Equal(t, "<cal:schedule-calendar-transp><cal:opaque/></cal:schedule-calendar-transp>",
		encodeProp(t, v.Properties["{urn:ietf:params:xml:ns:caldav}schedule-calendar-transp"]))
	assert.NotContains(t, v.Properties, "{http://calendarserver.org/ns/}shared-url")
	assert.NotContains(t, v.Properties, "{http://sabredav.org/ns}read-only")
}

func TestListCalendarsForPrincipal_SharedOrderedByCalendarOrder(t *testing.T) {
	calendars, shares, resolver := newCatalogMocks()
	late := NewMockCalendar("late", bobPath, "late", 9)
	early := NewMockCalendar("early", "principals/users/carol", "early", 1)

	calendars.On("ListOwnedCalendars", mock.Anything, alicePath).Return([]Calendar{}, nil)
	resolver.On("GetByPath", mock.Anything, alicePath).Return(&Principal{ID: "p-alice", Path: alicePath}, nil)
	shares.On("SharedWith", mock.Anything, "p-alice").Return([]SharedCalendar{
		{Calendar: late, Share: Share{Status: StatusAccepted}},
		{Calendar: early, Share: Share{Status: StatusAccepted}},
	}, nil)

	views, err := NewCatalog(calendars, shares, resolver).ListCalendarsForPrincipal(context.Background(), alicePath)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "carol:early", views[0].URI)
	assert.Equal(t, "bob:late", views[1].URI)
}

func TestListCalendarsForPrincipal_UnknownPrincipal(t *testing.T) {
	calendars, shares, resolver := newCatalogMocks()
	calendars.On("ListOwnedCalendars", mock.Anything, "principals/users/ghost").Return([]Calendar{}, nil)
	resolver.On("GetByPath", mock.Anything, "principals/users/ghost").Return(nil, UnknownPrincipal("principals/users/ghost"))

	_, err := NewCatalog(calendars, shares, resolver).ListCalendarsForPrincipal(context.Background(), "principals/users/ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownPrincipal))
	shares.AssertNotCalled(t, "SharedWith", mock.Anything, mock.Anything)
}

func TestListCalendarsForPrincipal_StoreErrorPropagates(t *testing.T) {
	calendars, shares, resolver := newCatalogMocks()
	calendars.On("ListOwnedCalendars", mock.Anything, alicePath).Return(nil, StoreUnavailable("list calendars", errors.New("disk gone")))

	_, err := NewCatalog(calendars, shares, resolver).ListCalendarsForPrincipal(context.Background(), alicePath)
	assert.True(t, IsType(err, ErrTypeStoreUnavailable))
	resolver.AssertNotCalled(t, "GetByPath", mock.Anything, mock.Anything)
}

func TestWithPropertyMapping(t *testing.T) {
	calendars, shares, resolver := newCatalogMocks()
	cal := NewMockCalendar("c1", alicePath, "home", 0)
	cal.DisplayName = "Home"

	calendars.On("ListOwnedCalendars", mock.Anything, alicePath).Return([]Calendar{cal}, nil)
	resolver.On("GetByPath", mock.Anything, alicePath).Return(&Principal{ID: "p-alice", Path: alicePath}, nil)
	shares.On("SharedWith", mock.Anything, "p-alice").Return([]SharedCalendar{}, nil)

	catalog := NewCatalog(calendars, shares, resolver,
		WithPropertyMapping("{DAV:}displayname", func(c Calendar) props.Property {
			return &props.DisplayName{Value: c.DisplayName + " (mine)"}
		}),
		WithPropertyMapping("{http://example.com/ns}x-id", func(c Calendar) props.Property {
			return &props.Summary{Value: c.ID}
		}),
	)
	views, err := catalog.ListCalendarsForPrincipal(context.Background(), alicePath)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "<d:displayname>Home (mine)</d:displayname>", encodeProp(t, views[0].Properties["{DAV:}displayname"]))
	assert.Contains(t, views[0].Properties, "{http://example.com/ns}x-id")
	assert.Len(t, DefaultPropertyMappings, 5, "defaults are not mutated by options")
}

func TestSyncTokenString(t *testing.T) {
	assert.Equal(t, "0", SyncTokenString(0))
	assert.Equal(t, "0", SyncTokenString(-3))
	assert.Equal(t, "42", SyncTokenString(42))
}
