package models

import "time"

// InventoryItem is the slice of the inventory table the stock check reads.
// The full ERP form surface around it lives in other services.
type InventoryItem struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string    `gorm:"not null" json:"name"`
	Quantity     int       `gorm:"not null;default:0" json:"quantity"`
	ReorderLevel int       `gorm:"not null;default:0" json:"reorder_level"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}
