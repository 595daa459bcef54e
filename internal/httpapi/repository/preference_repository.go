package repository

import (
	"context"
	"errors"

	"bizhub/internal/httpapi/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferenceRepository interface {
	Get(ctx context.Context, userID string) (*models.NotificationPreference, error)
	Upsert(ctx context.Context, prefs *models.NotificationPreference) error
}

type preferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

// Get returns the stored row, or defaults when the user never saved one.
func (r *preferenceRepository) Get(ctx context.Context, userID string) (*models.NotificationPreference, error) {
	var prefs models.NotificationPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&prefs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultPreferences(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *preferenceRepository) Upsert(ctx context.Context, prefs *models.NotificationPreference) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(prefs).Error
}
