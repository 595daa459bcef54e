package models

import "time"

// Project carries just enough of the projects table for the overdue check
// and the invoice deep link built from notification details.
type Project struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string     `gorm:"not null" json:"name"`
	Status    string     `gorm:"default:'active'" json:"status"` // active, completed, cancelled
	DueDate   *time.Time `json:"due_date,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}
