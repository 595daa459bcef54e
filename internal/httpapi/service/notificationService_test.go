package service

import (
	"context"
	"errors"
	"testing"

	"bizhub/internal/cache"
	"bizhub/internal/httpapi/dto"
	"bizhub/internal/httpapi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- MOCKS ---

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) List(ctx context.Context, userID string, filters dto.ListFilters) ([]models.Notification, int64, error) {
	args := m.Called(ctx, userID, filters)
	return args.Get(0).([]models.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) Stats(ctx context.Context, userID string) (dto.NotificationStats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(dto.NotificationStats), args.Error(1)
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, userID string, id int64) (*models.Notification, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) SetRead(ctx context.Context, userID string, id int64, read bool) error {
	args := m.Called(ctx, userID, id, read)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) Delete(ctx context.Context, userID string, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeleteAll(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) HasUnreadWithDetails(ctx context.Context, userID, details string) (bool, error) {
	args := m.Called(ctx, userID, details)
	return args.Bool(0), args.Error(1)
}

type MockChecker struct {
	mock.Mock
}

func (m *MockChecker) Run(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

const testUserID = "11111111-2222-3333-4444-555555555555"

func newTestService(repo *MockNotificationRepository, checker *MockChecker) NotificationService {
	return NewNotificationService(repo, checker, cache.Disabled())
}

// --- TESTS ---

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"info", models.TypeInfo},
		{"SUCCESS", models.TypeSuccess},
		{"Warning", models.TypeWarning},
		{"error", models.TypeError},
		{"critical", models.TypeInfo},
		{"", models.TypeInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeType(tt.in), "input %q", tt.in)
	}
}

func TestCreateNormalizesAndPersists(t *testing.T) {
	repo := new(MockNotificationRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == testUserID && n.Type == models.TypeWarning && n.Message == "Stock low"
	})).Return(nil)

	svc := newTestService(repo, nil)
	created, err := svc.Create(context.Background(), testUserID, dto.CreateNotificationDTO{
		Message: "Stock low",
		Type:    "WARNING",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.TypeWarning, created.Type)
	repo.AssertExpectations(t)
}

func TestCreateUnknownTypeFoldsToInfo(t *testing.T) {
	repo := new(MockNotificationRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(repo, nil)
	created, err := svc.Create(context.Background(), testUserID, dto.CreateNotificationDTO{
		Message: "hello",
		Type:    "catastrophic",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.TypeInfo, created.Type)
}

func TestCreateRejectsEmptyMessage(t *testing.T) {
	repo := new(MockNotificationRepository)
	svc := newTestService(repo, nil)

	_, err := svc.Create(context.Background(), testUserID, dto.CreateNotificationDTO{
		Message: "   ",
		Type:    "info",
	})

	assert.ErrorIs(t, err, ErrEmptyMessage)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListAppliesDefaultLimit(t *testing.T) {
	repo := new(MockNotificationRepository)
	repo.On("List", mock.Anything, testUserID, mock.MatchedBy(func(f dto.ListFilters) bool {
		return f.Limit == 50 && f.Offset == 0
	})).Return([]models.Notification{}, int64(0), nil)
	repo.On("Stats", mock.Anything, testUserID).Return(dto.NotificationStats{Total: 0, Unread: 0}, nil)

	svc := newTestService(repo, nil)
	resp, err := svc.List(context.Background(), testUserID, dto.ListFilters{Limit: -1, Offset: -5})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	repo.AssertExpectations(t)
}

func TestListReturnsStatsAlongsidePage(t *testing.T) {
	repo := new(MockNotificationRepository)
	repo.On("List", mock.Anything, testUserID, mock.Anything).Return([]models.Notification{
		{ID: 2, UserID: testUserID, Type: models.TypeWarning, Message: "newest"},
		{ID: 1, UserID: testUserID, Type: models.TypeInfo, Message: "older", Read: true},
	}, int64(2), nil)
	repo.On("Stats", mock.Anything, testUserID).Return(dto.NotificationStats{Total: 2, Unread: 1}, nil)

	svc := newTestService(repo, nil)
	resp, err := svc.List(context.Background(), testUserID, dto.ListFilters{Limit: 50})

	assert.NoError(t, err)
	assert.Len(t, resp.Notifications, 2)
	assert.Equal(t, int64(1), resp.Stats.Unread)
}

func TestCheckDelegatesToChecker(t *testing.T) {
	checker := new(MockChecker)
	checker.On("Run", mock.Anything, testUserID).Return(3, nil)

	svc := newTestService(new(MockNotificationRepository), checker)
	created, err := svc.Check(context.Background(), testUserID)

	assert.NoError(t, err)
	assert.Equal(t, 3, created)
	checker.AssertExpectations(t)
}

func TestSetReadPropagatesNotFound(t *testing.T) {
	repo := new(MockNotificationRepository)
	repo.On("SetRead", mock.Anything, testUserID, int64(9), true).Return(errors.New("record not found"))

	svc := newTestService(repo, nil)
	err := svc.SetRead(context.Background(), testUserID, 9, true)

	assert.Error(t, err)
}

func TestSeedCreatesSamples(t *testing.T) {
	repo := new(MockNotificationRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == testUserID
	})).Return(nil)

	svc := newTestService(repo, nil)
	created, err := svc.Seed(context.Background(), testUserID)

	assert.NoError(t, err)
	assert.Equal(t, 5, created)
	repo.AssertNumberOfCalls(t, "Create", 5)
}
