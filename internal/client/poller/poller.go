package poller

import (
	"context"
	"log"
	"time"
)

// Refresher is the store operation the poller drives.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Poller re-runs the refresh on a fixed interval for the lifetime of its
// context. It belongs to the session, not to any particular view: cancel the
// context when the session ends and the loop stops.
//
// There is no backoff or jitter; a failed refresh is logged and the next
// tick tries again. When no session is active the tick is skipped but the
// timer keeps running.
type Poller struct {
	store      Refresher
	interval   time.Duration
	hasSession func() bool
}

// New creates a poller. hasSession may be nil, in which case every tick
// refreshes.
func New(store Refresher, interval time.Duration, hasSession func() bool) *Poller {
	return &Poller{
		store:      store,
		interval:   interval,
		hasSession: hasSession,
	}
}

// Run refreshes once immediately, then on every tick until ctx is cancelled.
// It blocks; callers start it with go.
func (p *Poller) Run(ctx context.Context) {
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[NotificationPoller] stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if p.hasSession != nil && !p.hasSession() {
		return
	}

	if err := p.store.Refresh(ctx); err != nil {
		log.Printf("[NotificationPoller] Refresh failed: %v", err)
	}
}
