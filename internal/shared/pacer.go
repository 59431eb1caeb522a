package shared

import (
	"context"
	"sync"
	"time"
)

// Pacer serializes calls to an external catalog, enforcing a minimum delay
// between consecutive calls.
//
// Concurrent callers queue behind a single mutex guarding the last-call
// timestamp, so bursts are smoothed to exactly the configured spacing rather
// than admitted in token-bucket bursts.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewPacer creates a Pacer with the given minimum inter-call interval.
// A non-positive interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Wait blocks until the minimum interval since the previous call has elapsed,
// then records the current call. Returns the context error if ctx is
// cancelled while waiting; the timestamp is left untouched in that case so
// queued callers are not penalized for the aborted slot.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.interval <= 0 {
		return ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if wait := p.interval - time.Since(p.last); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	p.last = time.Now()
	return nil
}
