package store

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"bizhub/internal/shared"

	"github.com/google/uuid"
)

// MaxEntries caps the in-memory feed. The server-side history is not bound
// by this cap and paginates independently.
const MaxEntries = 50

var ErrEmptyMessage = errors.New("notification message must not be empty")

// Backend is the slice of the API client the store depends on.
type Backend interface {
	Check(ctx context.Context) error
	Fetch(ctx context.Context, limit int) ([]shared.Notification, shared.Stats, error)
	Create(ctx context.Context, severity shared.Severity, message, details string) (string, error)
	SetRead(ctx context.Context, id string, read bool) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// Toaster receives one transient message per created notification.
type Toaster interface {
	Push(id string, severity shared.Severity, message string)
}

// CuePlayer plays the severity-keyed sound cue. Implementations must never
// block; failures are theirs to swallow.
type CuePlayer func(severity shared.Severity)

// Store is the single source of truth for the notification feed within a
// session: an ordered list (newest first), its unread count, and the
// optimistic mutations that reconcile against the backend.
//
// Every mutation updates list and count under one lock, so no reader ever
// observes them out of sync. Mutations are result-returning: when the server
// rejects one, the local change is reverted and the error surfaced, rather
// than silently diverging from server truth.
type Store struct {
	mu      sync.Mutex
	entries []shared.Notification
	unread  int

	backend Backend
	toaster Toaster
	cue     CuePlayer

	fetchGen uint64 // drops out-of-order fetch results
	persists sync.WaitGroup
}

// New creates a store. toaster and cue may be nil.
func New(backend Backend, toaster Toaster, cue CuePlayer) *Store {
	return &Store{backend: backend, toaster: toaster, cue: cue}
}

// Snapshot returns a copy of the current feed, newest first.
func (s *Store) Snapshot() []shared.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]shared.Notification, len(s.entries))
	copy(out, s.entries)
	return out
}

// UnreadCount returns the number of unread entries.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Len returns the number of entries in the feed.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Add inserts an optimistic notification: temp uuid, current timestamp,
// prepended and truncated to MaxEntries, one toast, one sound cue. The
// persist runs in the background; on success the server-assigned id replaces
// the temp id, on failure the entry stays local-only and the failure is
// logged (the feed is advisory, evicting it again would be worse).
func (s *Store) Add(ctx context.Context, severity shared.Severity, message, source string, action *shared.Action) (string, error) {
	if message == "" {
		return "", ErrEmptyMessage
	}

	n := shared.Notification{
		ID:        uuid.NewString(),
		Type:      severity,
		Message:   message,
		Timestamp: time.Now(),
		Read:      false,
		Source:    source,
		Action:    action,
	}

	s.mu.Lock()
	s.entries = append([]shared.Notification{n}, s.entries...)
	if len(s.entries) > MaxEntries {
		evicted := s.entries[MaxEntries:]
		for _, e := range evicted {
			if !e.Read {
				s.unread--
			}
		}
		s.entries = s.entries[:MaxEntries]
	}
	s.unread++
	s.mu.Unlock()

	if s.toaster != nil {
		s.toaster.Push(n.ID, severity, message)
	}
	if s.cue != nil {
		s.cue(severity)
	}

	s.persists.Add(1)
	go func() {
		defer s.persists.Done()

		persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		serverID, err := s.backend.Create(persistCtx, severity, message, "")
		if err != nil {
			log.Printf("[NotificationStore] Failed to persist notification: %v", err)
			return
		}
		s.reconcileID(n.ID, serverID)
	}()

	return n.ID, nil
}

// reconcileID swaps a temp id for the server-assigned one, if the entry is
// still present and untouched.
func (s *Store) reconcileID(tempID, serverID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == tempID {
			s.entries[i].ID = serverID
			return
		}
	}
}

// Wait blocks until all background persists settle. Tests and shutdown paths
// use it; the UI never needs to.
func (s *Store) Wait() {
	s.persists.Wait()
}

// MarkAsRead marks one entry read locally, then confirms with the backend,
// reverting on failure. Calling it again for an already-read id is a no-op.
func (s *Store) MarkAsRead(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 || s.entries[idx].Read {
		s.mu.Unlock()
		return nil
	}
	s.entries[idx].Read = true
	s.unread--
	s.mu.Unlock()

	if err := s.backend.SetRead(ctx, id, true); err != nil {
		s.mu.Lock()
		if i := s.indexOf(id); i >= 0 && s.entries[i].Read {
			s.entries[i].Read = false
			s.unread++
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// MarkAllAsRead marks every entry read locally, then confirms with the
// backend, restoring the previous read flags on failure.
func (s *Store) MarkAllAsRead(ctx context.Context) error {
	s.mu.Lock()
	prev := make(map[string]bool, len(s.entries))
	for i := range s.entries {
		prev[s.entries[i].ID] = s.entries[i].Read
		s.entries[i].Read = true
	}
	s.unread = 0
	s.mu.Unlock()

	if err := s.backend.MarkAllRead(ctx); err != nil {
		s.mu.Lock()
		s.unread = 0
		for i := range s.entries {
			if wasRead, ok := prev[s.entries[i].ID]; ok {
				s.entries[i].Read = wasRead
			}
			if !s.entries[i].Read {
				s.unread++
			}
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// Remove deletes exactly one entry locally, then confirms with the backend,
// reinserting it at its previous position on failure.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	removed := s.entries[idx]
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	if !removed.Read {
		s.unread--
	}
	s.mu.Unlock()

	if err := s.backend.Delete(ctx, id); err != nil {
		s.mu.Lock()
		if idx > len(s.entries) {
			idx = len(s.entries)
		}
		s.entries = append(s.entries[:idx], append([]shared.Notification{removed}, s.entries[idx:]...)...)
		if !removed.Read {
			s.unread++
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// ClearAll empties the feed locally, then confirms with the backend,
// restoring the previous feed on failure.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	prevEntries := s.entries
	prevUnread := s.unread
	s.entries = nil
	s.unread = 0
	s.mu.Unlock()

	if err := s.backend.Clear(ctx); err != nil {
		s.mu.Lock()
		s.entries = prevEntries
		s.unread = prevUnread
		s.mu.Unlock()
		return err
	}
	return nil
}

// Refresh asks the server to evaluate conditions, then replaces the whole
// feed with the fetched page and recomputes the unread count from the
// fetched read flags. A fetch that resolves after a newer one is dropped.
func (s *Store) Refresh(ctx context.Context) error {
	// check failures are not fatal, the fetch still returns current state
	if err := s.backend.Check(ctx); err != nil {
		log.Printf("[NotificationStore] Condition check failed: %v", err)
	}

	s.mu.Lock()
	s.fetchGen++
	gen := s.fetchGen
	s.mu.Unlock()

	notifications, _, err := s.backend.Fetch(ctx, MaxEntries)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.fetchGen {
		// a newer refresh already landed
		return nil
	}

	if len(notifications) > MaxEntries {
		notifications = notifications[:MaxEntries]
	}
	s.entries = notifications
	s.unread = 0
	for i := range s.entries {
		if !s.entries[i].Read {
			s.unread++
		}
	}
	return nil
}

// indexOf must be called with the lock held.
func (s *Store) indexOf(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}
