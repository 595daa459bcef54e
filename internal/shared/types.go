package shared

import (
	"strings"
	"time"
)

// shared types across the client-side notification flow:
// the API wrapper produces them, the store holds them, the toast
// presenter and sound cues consume them

// Severity drives icon, color and cue pitch. Always one of the four
// constants; unknown server values are folded to SeverityInfo on fetch.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ParseSeverity lower-cases and validates a wire value, defaulting to info.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(s)) {
	case SeveritySuccess:
		return SeveritySuccess
	case SeverityWarning:
		return SeverityWarning
	case SeverityError:
		return SeverityError
	default:
		return SeverityInfo
	}
}

// Action is a single follow-up navigation attached to a notification.
// It is never persisted; it is reconstructed from the details text on fetch.
type Action struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Notification is the client-side view of one notification. ID is opaque:
// a server-assigned numeric id rendered as a string, or a client-generated
// temp uuid before the create round-trip completes.
type Notification struct {
	ID        string    `json:"id"`
	Type      Severity  `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
	Source    string    `json:"source,omitempty"`
	Action    *Action   `json:"action,omitempty"`
}

// Stats mirrors the list-wide counters the server sends with every page.
type Stats struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}
