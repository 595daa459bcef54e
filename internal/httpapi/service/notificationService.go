package service

import (
	"context"
	"errors"
	"strings"

	"bizhub/internal/cache"
	"bizhub/internal/httpapi/dto"
	"bizhub/internal/httpapi/models"
	"bizhub/internal/httpapi/repository"
)

var (
	ErrEmptyMessage        = errors.New("notification message must not be empty")
	ErrNotificationMissing = errors.New("notification not found")
)

// Checker is the condition evaluation entry point behind POST /check.
type Checker interface {
	Run(ctx context.Context, userID string) (int, error)
}

type NotificationService interface {
	Check(ctx context.Context, userID string) (int, error)
	List(ctx context.Context, userID string, filters dto.ListFilters) (*dto.ListNotificationsResponse, error)
	Create(ctx context.Context, userID string, in dto.CreateNotificationDTO) (*models.Notification, error)
	SetRead(ctx context.Context, userID string, id int64, read bool) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string, id int64) error
	DeleteAll(ctx context.Context, userID string) error
	Seed(ctx context.Context, userID string) (int, error)
}

type notificationService struct {
	repo    repository.NotificationRepository
	checker Checker
	unread  *cache.UnreadCache
}

func NewNotificationService(repo repository.NotificationRepository, checker Checker, unread *cache.UnreadCache) NotificationService {
	return &notificationService{repo: repo, checker: checker, unread: unread}
}

// NormalizeType lower-cases a severity and folds unknown values to info, the
// same mapping clients apply to fetched records.
func NormalizeType(t string) string {
	switch strings.ToLower(t) {
	case models.TypeSuccess:
		return models.TypeSuccess
	case models.TypeWarning:
		return models.TypeWarning
	case models.TypeError:
		return models.TypeError
	default:
		return models.TypeInfo
	}
}

func (s *notificationService) Check(ctx context.Context, userID string) (int, error) {
	created, err := s.checker.Run(ctx, userID)
	if created > 0 {
		s.unread.Invalidate(ctx, userID)
	}
	return created, err
}

func (s *notificationService) List(ctx context.Context, userID string, filters dto.ListFilters) (*dto.ListNotificationsResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	items, _, err := s.repo.List(ctx, userID, filters)
	if err != nil {
		return nil, err
	}

	// stats are list-wide, not filter-scoped: the badge shows total unread
	// even when the page is filtered
	stats, err := s.stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return dto.NewListNotificationsResponse(items, stats, filters.Limit, filters.Offset), nil
}

func (s *notificationService) stats(ctx context.Context, userID string) (dto.NotificationStats, error) {
	if unread, ok := s.unread.GetUnread(ctx, userID); ok {
		stats, err := s.repo.Stats(ctx, userID)
		if err != nil {
			return stats, err
		}
		stats.Unread = unread
		return stats, nil
	}

	stats, err := s.repo.Stats(ctx, userID)
	if err != nil {
		return stats, err
	}
	s.unread.SetUnread(ctx, userID, stats.Unread)
	return stats, nil
}

func (s *notificationService) Create(ctx context.Context, userID string, in dto.CreateNotificationDTO) (*models.Notification, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, ErrEmptyMessage
	}

	notification := &models.Notification{
		UserID:  userID,
		Type:    NormalizeType(in.Type),
		Message: in.Message,
		Details: in.Details,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	s.unread.Invalidate(ctx, userID)
	return notification, nil
}

func (s *notificationService) SetRead(ctx context.Context, userID string, id int64, read bool) error {
	if err := s.repo.SetRead(ctx, userID, id, read); err != nil {
		return err
	}
	s.unread.Invalidate(ctx, userID)
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return err
	}
	s.unread.SetUnread(ctx, userID, 0)
	return nil
}

func (s *notificationService) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.unread.Invalidate(ctx, userID)
	return nil
}

func (s *notificationService) DeleteAll(ctx context.Context, userID string) error {
	if err := s.repo.DeleteAll(ctx, userID); err != nil {
		return err
	}
	s.unread.SetUnread(ctx, userID, 0)
	return nil
}

// Seed inserts sample notifications for development and demos.
func (s *notificationService) Seed(ctx context.Context, userID string) (int, error) {
	samples := []models.Notification{
		{Type: models.TypeInfo, Message: "Welcome to bizhub notifications"},
		{Type: models.TypeSuccess, Message: "Invoice #1042 paid in full"},
		{Type: models.TypeWarning, Message: "Low stock: Steel bolts M8 (4 left, reorder at 20)", Details: "ItemID:17"},
		{Type: models.TypeWarning, Message: "Project overdue: Warehouse refit", Details: "ProjectID:42"},
		{Type: models.TypeError, Message: "Payroll export failed, retry required"},
	}

	created := 0
	for i := range samples {
		samples[i].UserID = userID
		if err := s.repo.Create(ctx, &samples[i]); err != nil {
			return created, err
		}
		created++
	}

	s.unread.Invalidate(ctx, userID)
	return created, nil
}
