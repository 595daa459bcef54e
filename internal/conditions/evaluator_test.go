package conditions

import (
	"context"
	"errors"
	"testing"

	"bizhub/internal/httpapi/dto"
	"bizhub/internal/httpapi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- MOCKS ---

type MockScanner struct {
	mock.Mock
}

func (m *MockScanner) LowStock(ctx context.Context, userID string) ([]StockAlert, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]StockAlert), args.Error(1)
}

func (m *MockScanner) OverdueProjects(ctx context.Context, userID string) ([]ProjectAlert, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ProjectAlert), args.Error(1)
}

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepo) List(ctx context.Context, userID string, filters dto.ListFilters) ([]models.Notification, int64, error) {
	args := m.Called(ctx, userID, filters)
	return args.Get(0).([]models.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepo) Stats(ctx context.Context, userID string) (dto.NotificationStats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(dto.NotificationStats), args.Error(1)
}

func (m *MockNotificationRepo) FindByID(ctx context.Context, userID string, id int64) (*models.Notification, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationRepo) SetRead(ctx context.Context, userID string, id int64, read bool) error {
	args := m.Called(ctx, userID, id, read)
	return args.Error(0)
}

func (m *MockNotificationRepo) MarkAllAsRead(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockNotificationRepo) Delete(ctx context.Context, userID string, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockNotificationRepo) DeleteAll(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockNotificationRepo) HasUnreadWithDetails(ctx context.Context, userID, details string) (bool, error) {
	args := m.Called(ctx, userID, details)
	return args.Bool(0), args.Error(1)
}

type MockPreferenceRepo struct {
	mock.Mock
}

func (m *MockPreferenceRepo) Get(ctx context.Context, userID string) (*models.NotificationPreference, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NotificationPreference), args.Error(1)
}

func (m *MockPreferenceRepo) Upsert(ctx context.Context, prefs *models.NotificationPreference) error {
	args := m.Called(ctx, prefs)
	return args.Error(0)
}

// --- TESTS ---

const testUserID = "user-1"

func allChecksPrefs() *models.NotificationPreference {
	return &models.NotificationPreference{
		UserID:      testUserID,
		LowStock:    true,
		OverdueWork: true,
	}
}

func TestRunCreatesWarningsForTriggeringSubjects(t *testing.T) {
	scanner := new(MockScanner)
	notifs := new(MockNotificationRepo)
	prefs := new(MockPreferenceRepo)

	prefs.On("Get", mock.Anything, testUserID).Return(allChecksPrefs(), nil)
	scanner.On("LowStock", mock.Anything, testUserID).Return([]StockAlert{
		{ItemID: 17, Name: "Widget", Quantity: 2, ReorderLevel: 10},
	}, nil)
	scanner.On("OverdueProjects", mock.Anything, testUserID).Return([]ProjectAlert{
		{ProjectID: 42, Name: "Office Fitout"},
	}, nil)
	notifs.On("HasUnreadWithDetails", mock.Anything, testUserID, "ItemID:17").Return(false, nil)
	notifs.On("HasUnreadWithDetails", mock.Anything, testUserID, "ProjectID:42").Return(false, nil)
	notifs.On("Create", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Type == models.TypeWarning && n.Details == "ItemID:17"
	})).Return(nil)
	notifs.On("Create", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Type == models.TypeWarning && n.Details == "ProjectID:42"
	})).Return(nil)

	e := NewEvaluator(scanner, notifs, prefs, true, true)
	created, err := e.Run(context.Background(), testUserID)

	assert.NoError(t, err)
	assert.Equal(t, 2, created)
	notifs.AssertExpectations(t)
	scanner.AssertExpectations(t)
}

func TestRunSkipsSubjectsWithExistingUnread(t *testing.T) {
	scanner := new(MockScanner)
	notifs := new(MockNotificationRepo)
	prefs := new(MockPreferenceRepo)

	prefs.On("Get", mock.Anything, testUserID).Return(allChecksPrefs(), nil)
	scanner.On("LowStock", mock.Anything, testUserID).Return([]StockAlert{
		{ItemID: 17, Name: "Widget", Quantity: 2, ReorderLevel: 10},
	}, nil)
	scanner.On("OverdueProjects", mock.Anything, testUserID).Return([]ProjectAlert{}, nil)
	notifs.On("HasUnreadWithDetails", mock.Anything, testUserID, "ItemID:17").Return(true, nil)

	e := NewEvaluator(scanner, notifs, prefs, true, true)
	created, err := e.Run(context.Background(), testUserID)

	assert.NoError(t, err)
	assert.Equal(t, 0, created)
	notifs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRunHonorsPreferenceToggles(t *testing.T) {
	scanner := new(MockScanner)
	notifs := new(MockNotificationRepo)
	prefs := new(MockPreferenceRepo)

	prefs.On("Get", mock.Anything, testUserID).Return(&models.NotificationPreference{
		UserID:      testUserID,
		LowStock:    false,
		OverdueWork: true,
	}, nil)
	scanner.On("OverdueProjects", mock.Anything, testUserID).Return([]ProjectAlert{}, nil)

	e := NewEvaluator(scanner, notifs, prefs, true, true)
	created, err := e.Run(context.Background(), testUserID)

	assert.NoError(t, err)
	assert.Equal(t, 0, created)
	scanner.AssertNotCalled(t, "LowStock", mock.Anything, mock.Anything)
}

func TestRunHonorsServerToggles(t *testing.T) {
	scanner := new(MockScanner)
	notifs := new(MockNotificationRepo)
	prefs := new(MockPreferenceRepo)

	prefs.On("Get", mock.Anything, testUserID).Return(allChecksPrefs(), nil)

	// both checks disabled at the server level, preferences notwithstanding
	e := NewEvaluator(scanner, notifs, prefs, false, false)
	created, err := e.Run(context.Background(), testUserID)

	assert.NoError(t, err)
	assert.Equal(t, 0, created)
	scanner.AssertNotCalled(t, "LowStock", mock.Anything, mock.Anything)
	scanner.AssertNotCalled(t, "OverdueProjects", mock.Anything, mock.Anything)
}

func TestRunContinuesPastFailingCheck(t *testing.T) {
	scanner := new(MockScanner)
	notifs := new(MockNotificationRepo)
	prefs := new(MockPreferenceRepo)

	prefs.On("Get", mock.Anything, testUserID).Return(allChecksPrefs(), nil)
	scanner.On("LowStock", mock.Anything, testUserID).Return(nil, errors.New("inventory table gone"))
	scanner.On("OverdueProjects", mock.Anything, testUserID).Return([]ProjectAlert{
		{ProjectID: 42, Name: "Office Fitout"},
	}, nil)
	notifs.On("HasUnreadWithDetails", mock.Anything, testUserID, "ProjectID:42").Return(false, nil)
	notifs.On("Create", mock.Anything, mock.Anything).Return(nil)

	e := NewEvaluator(scanner, notifs, prefs, true, true)
	created, err := e.Run(context.Background(), testUserID)

	assert.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestRunFailsWhenPreferencesUnavailable(t *testing.T) {
	scanner := new(MockScanner)
	notifs := new(MockNotificationRepo)
	prefs := new(MockPreferenceRepo)

	prefs.On("Get", mock.Anything, testUserID).Return(nil, errors.New("db down"))

	e := NewEvaluator(scanner, notifs, prefs, true, true)
	_, err := e.Run(context.Background(), testUserID)

	assert.Error(t, err)
}

func TestDetailsTags(t *testing.T) {
	assert.Equal(t, "ProjectID:42", ProjectDetails(42))
	assert.Equal(t, "ItemID:17", StockDetails(17))
}
