package sharing

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"
)

// MockResolver implements PrincipalResolver for testing
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolveByAttribute(ctx context.Context, namespace, key, value string) (mo.Option[string], error) {
	args := m.Called(ctx, namespace, key, value)
	return args.Get(0).(mo.Option[string]), args.Error(1)
}

func (m *MockResolver) GetByPath(ctx context.Context, path string) (*Principal, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Principal), args.Error(1)
}

// MockCalendarStore implements CalendarStore for testing
type MockCalendarStore struct {
	mock.Mock
}

func (m *MockCalendarStore) ListOwnedCalendars(ctx context.Context, principalURI string) ([]Calendar, error) {
	args := m.Called(ctx, principalURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Calendar), args.Error(1)
}

// MockShareStore implements ShareStore for testing
type MockShareStore struct {
	mock.Mock
}

func (m *MockShareStore) UpdateShares(ctx context.Context, calendarID string, add []InviteDescriptor, remove []string) error {
	args := m.Called(ctx, calendarID, add, remove)
	return args.Error(0)
}

func (m *MockShareStore) ListShares(ctx context.Context, calendarID string) ([]ShareView, error) {
	args := m.Called(ctx, calendarID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ShareView), args.Error(1)
}

func (m *MockShareStore) SharedWith(ctx context.Context, memberID string) ([]SharedCalendar, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SharedCalendar), args.Error(1)
}

func (m *MockShareStore) ReplyToShare(ctx context.Context, reply ShareReply) (mo.Option[string], error) {
	args := m.Called(ctx, reply)
	return args.Get(0).(mo.Option[string]), args.Error(1)
}

func (m *MockShareStore) SetPublishStatus(ctx context.Context, calendarID string, published bool) error {
	args := m.Called(ctx, calendarID, published)
	return args.Error(0)
}

func (m *MockShareStore) PublishURL(ctx context.Context, calendarID string) (mo.Option[string], error) {
	args := m.Called(ctx, calendarID)
	return args.Get(0).(mo.Option[string]), args.Error(1)
}

// --- Helper methods for creating test data ---

// NewMockCalendar creates a test Calendar owned by ownerPath
func NewMockCalendar(id, ownerPath, uri string, order int) Calendar {
	return Calendar{
		ID:           id,
		PrincipalURI: ownerPath,
		URI:          uri,
		DisplayName:  uri,
		Color:        "#FF9500",
		Order:        order,
		Components:   append([]string(nil), DefaultComponents...),
	}
}
