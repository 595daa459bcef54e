package repository

import (
	"context"
	"strings"
	"time"

	"bizhub/internal/httpapi/dto"
	"bizhub/internal/httpapi/models"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, userID string, filters dto.ListFilters) ([]models.Notification, int64, error)
	Stats(ctx context.Context, userID string) (dto.NotificationStats, error)
	FindByID(ctx context.Context, userID string, id int64) (*models.Notification, error)
	SetRead(ctx context.Context, userID string, id int64, read bool) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string, id int64) error
	DeleteAll(ctx context.Context, userID string) error
	HasUnreadWithDetails(ctx context.Context, userID, details string) (bool, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) List(ctx context.Context, userID string, filters dto.ListFilters) ([]models.Notification, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ?", userID)

	if filters.Type != "" {
		q = q.Where("type = ?", strings.ToLower(filters.Type))
	}
	if filters.Read != nil {
		q = q.Where("read = ?", *filters.Read)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		q = q.Where("message ILIKE ? OR details ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := q.
		Order("created_at DESC, id DESC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *notificationRepository) Stats(ctx context.Context, userID string) (dto.NotificationStats, error) {
	var stats dto.NotificationStats

	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Count(&stats.Total).Error
	if err != nil {
		return stats, err
	}

	err = r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Count(&stats.Unread).Error
	return stats, err
}

func (r *notificationRepository) FindByID(ctx context.Context, userID string, id int64) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&notification).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) SetRead(ctx context.Context, userID string, id int64, read bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", read)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Update("read", true).Error
}

func (r *notificationRepository) Delete(ctx context.Context, userID string, id int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepository) DeleteAll(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Notification{}).Error
}

// HasUnreadWithDetails reports whether an unread notification with the exact
// details tag already exists. The condition evaluator uses it to avoid
// materializing duplicates for the same subject on every check.
func (r *notificationRepository) HasUnreadWithDetails(ctx context.Context, userID, details string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = false AND details = ?", userID, details).
		Count(&count).Error
	return count > 0, err
}
