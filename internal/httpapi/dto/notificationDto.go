package dto

import (
	"time"

	"bizhub/internal/httpapi/models"
)

// CreateNotificationDTO for persisting a client-created notification
type CreateNotificationDTO struct {
	Message string `json:"message" binding:"required,min=1,max=2000"`
	Type    string `json:"type"`
	Details string `json:"details,omitempty"`
}

// UpdateReadDTO for marking a single notification read/unread
type UpdateReadDTO struct {
	Read *bool `json:"read" binding:"required"`
}

// NotificationResponse mirrors the wire shape clients consume
type NotificationResponse struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// FromModelToNotificationResponse converts a Notification model to its response DTO
func FromModelToNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		Details:   n.Details,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// NotificationStats carries list-wide counters alongside a page
type NotificationStats struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}

// Pagination describes the window the page was cut from
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// ListNotificationsResponse is the GET /api/notifications envelope
type ListNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Stats         NotificationStats      `json:"stats"`
	Pagination    Pagination             `json:"pagination"`
}

// NewListNotificationsResponse assembles the list envelope
func NewListNotificationsResponse(items []models.Notification, stats NotificationStats, limit, offset int) *ListNotificationsResponse {
	data := make([]NotificationResponse, 0, len(items))
	for i := range items {
		data = append(data, FromModelToNotificationResponse(&items[i]))
	}

	return &ListNotificationsResponse{
		Notifications: data,
		Stats:         stats,
		Pagination: Pagination{
			Total:   stats.Total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset+len(data)) < stats.Total,
		},
	}
}

// ListFilters holds the query-string filters accepted by the list endpoint
type ListFilters struct {
	Limit  int
	Offset int
	Type   string
	Read   *bool
	Search string
}

// PreferencesDTO for reading/updating notification preferences
type PreferencesDTO struct {
	EmailEnabled bool   `json:"email_enabled"`
	InAppEnabled bool   `json:"in_app_enabled"`
	SMSEnabled   bool   `json:"sms_enabled"`
	LowStock     bool   `json:"low_stock"`
	OverdueWork  bool   `json:"overdue_work"`
	Sound        string `json:"sound"`
}
