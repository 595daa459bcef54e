package models

import "time"

// NotificationPreference is 1:1 with users. Channel toggles control delivery,
// category toggles control which checks materialize records for the user.
type NotificationPreference struct {
	UserID       string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	EmailEnabled bool      `gorm:"not null;default:true" json:"email_enabled"`
	InAppEnabled bool      `gorm:"not null;default:true" json:"in_app_enabled"`
	SMSEnabled   bool      `gorm:"column:sms_enabled;not null;default:false" json:"sms_enabled"`
	LowStock     bool      `gorm:"not null;default:true" json:"low_stock"`
	OverdueWork  bool      `gorm:"not null;default:true" json:"overdue_work"`
	Sound        string    `gorm:"default:'chime'" json:"sound"` // chime, bell, none
	UpdatedAt    time.Time `json:"updated_at"`
}

func (NotificationPreference) TableName() string {
	return "notification_preferences"
}

// DefaultPreferences returns the preference row used when a user has never
// saved one.
func DefaultPreferences(userID string) *NotificationPreference {
	return &NotificationPreference{
		UserID:       userID,
		EmailEnabled: true,
		InAppEnabled: true,
		SMSEnabled:   false,
		LowStock:     true,
		OverdueWork:  true,
		Sound:        "chime",
	}
}
