package crawler

import (
	"context"
	"sync"
	"time"
)

// pacer enforces a minimum spacing between outbound requests. With a single
// worker it behaves like the classic sleep-before-fetch politeness delay;
// with a worker pool the spacing is global, so the target server never sees
// requests closer together than the configured interval.
type pacer struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// newPacer creates a pacer with the given minimum spacing. A zero or
// negative interval disables pacing.
func newPacer(interval time.Duration) *pacer {
	return &pacer{interval: interval}
}

// wait blocks until the next request slot is available or the context is
// done. It returns false if the context was cancelled while waiting.
//
// The first call never waits: the delay applies before each new fetch after
// the initial one, matching the sequential behavior of sleeping between
// requests.
func (p *pacer) wait(ctx context.Context) bool {
	if p.interval <= 0 {
		return ctx.Err() == nil
	}

	p.mu.Lock()
	now := time.Now()
	slot := p.next
	if slot.Before(now) {
		slot = now
	}
	p.next = slot.Add(p.interval)
	p.mu.Unlock()

	delay := time.Until(slot)
	if delay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
