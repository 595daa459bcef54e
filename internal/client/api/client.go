package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bizhub/internal/shared"

	"golang.org/x/time/rate"
)

// Client wraps the notification REST endpoints for the terminal client and
// the store. Every call is context-bound and runs through a small rate
// limiter so a misbehaving poll loop cannot hammer the server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	token      string
}

// wire shapes, matching the server DTOs

type notificationRecord struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type listResponse struct {
	Notifications []notificationRecord `json:"notifications"`
	Stats         shared.Stats         `json:"stats"`
}

type createRequest struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Details string `json:"details,omitempty"`
}

type authResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
}

// Preferences mirrors the server-side preference payload.
type Preferences struct {
	EmailEnabled bool   `json:"email_enabled"`
	InAppEnabled bool   `json:"in_app_enabled"`
	SMSEnabled   bool   `json:"sms_enabled"`
	LowStock     bool   `json:"low_stock"`
	OverdueWork  bool   `json:"overdue_work"`
	Sound        string `json:"sound"`
}

// NewClient creates an API client against the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		// 5 req/s sustained with small bursts covers the poll cadence
		// with plenty of headroom for user-triggered mutations
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
}

// SetToken installs the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// HasSession reports whether a bearer token is installed. The poller skips
// fetches while this is false.
func (c *Client) HasSession() bool {
	return c.token != ""
}

// Login authenticates and installs the returned access token.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}

	var result authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &result); err != nil {
		return err
	}

	c.token = result.AccessToken
	return nil
}

// Check asks the server to evaluate business conditions and materialize new
// notification records. The created count is informational only; callers
// follow up with Fetch regardless.
func (c *Client) Check(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/notifications/check", nil, nil)
}

// Fetch returns up to limit notifications, newest first, mapped into the
// client-side shape.
func (c *Client) Fetch(ctx context.Context, limit int) ([]shared.Notification, shared.Stats, error) {
	path := fmt.Sprintf("/api/notifications?limit=%d", limit)

	var result listResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, shared.Stats{}, err
	}

	notifications := make([]shared.Notification, 0, len(result.Notifications))
	for _, rec := range result.Notifications {
		notifications = append(notifications, MapRecord(rec.ID, rec.Type, rec.Message, rec.Details, rec.Read, rec.CreatedAt))
	}
	return notifications, result.Stats, nil
}

// Create persists a notification and returns the server-assigned id, which
// the store reconciles into its optimistic entry.
func (c *Client) Create(ctx context.Context, severity shared.Severity, message, details string) (string, error) {
	body := createRequest{Message: message, Type: string(severity), Details: details}

	var result notificationRecord
	if err := c.do(ctx, http.MethodPost, "/api/notifications", body, &result); err != nil {
		return "", err
	}
	return strconv.FormatInt(result.ID, 10), nil
}

// SetRead marks one notification read or unread.
func (c *Client) SetRead(ctx context.Context, id string, read bool) error {
	body := map[string]bool{"read": read}
	return c.do(ctx, http.MethodPatch, "/api/notifications/"+url.PathEscape(id), body, nil)
}

// MarkAllRead marks every notification read.
func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/notifications/mark-all-read", nil, nil)
}

// Delete removes one notification.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notifications/"+url.PathEscape(id), nil, nil)
}

// Clear removes every notification.
func (c *Client) Clear(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/notifications?deleteAll=true", nil, nil)
}

// GetPreferences loads the stored notification preferences.
func (c *Client) GetPreferences(ctx context.Context) (*Preferences, error) {
	var prefs Preferences
	if err := c.do(ctx, http.MethodGet, "/api/notifications/preferences", nil, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// PutPreferences saves notification preferences.
func (c *Client) PutPreferences(ctx context.Context, prefs Preferences) error {
	return c.do(ctx, http.MethodPut, "/api/notifications/preferences", prefs, nil)
}

// Seed populates sample data (dev utility).
func (c *Client) Seed(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/notifications/seed", nil, nil)
}

// do issues one JSON request. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed with status: %s", method, path, resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// MapRecord converts a fetched wire record into the client-side shape:
// the severity is normalized, the source tag is derived from the details
// text, and the follow-up action is rebuilt from the ProjectID marker.
func MapRecord(id int64, typ, message, details string, read bool, createdAt time.Time) shared.Notification {
	n := shared.Notification{
		ID:        strconv.FormatInt(id, 10),
		Type:      shared.ParseSeverity(typ),
		Message:   message,
		Timestamp: createdAt,
		Read:      read,
		Source:    deriveSource(details),
		Action:    deriveAction(details),
	}
	return n
}

func deriveSource(details string) string {
	if strings.Contains(details, "ProjectID") {
		return "Finance"
	}
	return "System"
}

func deriveAction(details string) *shared.Action {
	_, after, found := strings.Cut(details, "ProjectID:")
	if !found {
		return nil
	}

	// the id runs to the first non-digit, details may carry trailing text
	end := 0
	for end < len(after) && after[end] >= '0' && after[end] <= '9' {
		end++
	}
	if end == 0 {
		return nil
	}

	return &shared.Action{
		Label: "View Invoice",
		URL:   fmt.Sprintf("/projects/%s/invoice", after[:end]),
	}
}
