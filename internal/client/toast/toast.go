package toast

import (
	"sync"
	"time"

	"bizhub/internal/shared"
)

// Toast is one transient message. It shares its id with the notification
// that produced it but lives in an independent list: dismissing a toast
// never touches the durable feed.
type Toast struct {
	ID       string
	Severity shared.Severity
	Message  string
	ShownAt  time.Time
}

// Manager holds the active toasts and auto-dismisses each one after a fixed
// duration. An optional OnDismiss hook lets a UI repaint.
type Manager struct {
	mu       sync.Mutex
	toasts   []Toast
	timers   map[string]*time.Timer
	duration time.Duration

	OnShow    func(Toast)
	OnDismiss func(id string)
}

func NewManager(duration time.Duration) *Manager {
	return &Manager{
		timers:   make(map[string]*time.Timer),
		duration: duration,
	}
}

// Push enqueues a toast and arms its auto-dismiss timer.
func (m *Manager) Push(id string, severity shared.Severity, message string) {
	t := Toast{
		ID:       id,
		Severity: severity,
		Message:  message,
		ShownAt:  time.Now(),
	}

	m.mu.Lock()
	m.toasts = append(m.toasts, t)
	m.timers[id] = time.AfterFunc(m.duration, func() {
		m.Remove(id)
	})
	m.mu.Unlock()

	if m.OnShow != nil {
		m.OnShow(t)
	}
}

// Remove dismisses the toast with the given id. An empty id dismisses all
// active toasts, matching the store's clear path.
func (m *Manager) Remove(id string) {
	m.mu.Lock()

	var dismissed []string
	if id == "" {
		for _, t := range m.toasts {
			dismissed = append(dismissed, t.ID)
		}
		m.toasts = nil
	} else {
		for i, t := range m.toasts {
			if t.ID == id {
				m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
				dismissed = append(dismissed, id)
				break
			}
		}
	}

	for _, d := range dismissed {
		if timer, ok := m.timers[d]; ok {
			timer.Stop()
			delete(m.timers, d)
		}
	}
	m.mu.Unlock()

	if m.OnDismiss != nil {
		for _, d := range dismissed {
			m.OnDismiss(d)
		}
	}
}

// Active returns a copy of the currently visible toasts.
func (m *Manager) Active() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}
