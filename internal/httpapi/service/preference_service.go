package service

import (
	"context"
	"errors"

	"bizhub/internal/httpapi/dto"
	"bizhub/internal/httpapi/models"
	"bizhub/internal/httpapi/repository"
)

var ErrUnknownSound = errors.New("unknown notification sound")

var validSounds = map[string]bool{
	"chime": true,
	"bell":  true,
	"none":  true,
}

type PreferenceService interface {
	Get(ctx context.Context, userID string) (*dto.PreferencesDTO, error)
	Update(ctx context.Context, userID string, in dto.PreferencesDTO) error
}

type preferenceService struct {
	repo repository.PreferenceRepository
}

func NewPreferenceService(repo repository.PreferenceRepository) PreferenceService {
	return &preferenceService{repo: repo}
}

func (s *preferenceService) Get(ctx context.Context, userID string) (*dto.PreferencesDTO, error) {
	prefs, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.PreferencesDTO{
		EmailEnabled: prefs.EmailEnabled,
		InAppEnabled: prefs.InAppEnabled,
		SMSEnabled:   prefs.SMSEnabled,
		LowStock:     prefs.LowStock,
		OverdueWork:  prefs.OverdueWork,
		Sound:        prefs.Sound,
	}, nil
}

func (s *preferenceService) Update(ctx context.Context, userID string, in dto.PreferencesDTO) error {
	if in.Sound != "" && !validSounds[in.Sound] {
		return ErrUnknownSound
	}
	if in.Sound == "" {
		in.Sound = "chime"
	}

	return s.repo.Upsert(ctx, &models.NotificationPreference{
		UserID:       userID,
		EmailEnabled: in.EmailEnabled,
		InAppEnabled: in.InAppEnabled,
		SMSEnabled:   in.SMSEnabled,
		LowStock:     in.LowStock,
		OverdueWork:  in.OverdueWork,
		Sound:        in.Sound,
	})
}
