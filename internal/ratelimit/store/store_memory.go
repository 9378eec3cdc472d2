// Package store keeps sliding-window request counters.
package store

import (
	"context"
	"sync"
	"time"

	"onboard/internal/ratelimit/models"
)

// InMemory implements the limiter store with per-key sliding windows. State
// is local to the process.
type InMemory struct {
	mu      sync.Mutex
	windows map[string]*slidingWindow
	now     func() time.Time
}

type slidingWindow struct {
	timestamps []time.Time
}

// tryConsume records one request when the window has room.
func (sw *slidingWindow) tryConsume(limit models.Limit, now time.Time) (allowed bool, remaining int, resetAt time.Time) {
	sw.cleanupExpired(now, limit.Window)

	if len(sw.timestamps) >= limit.Requests {
		return false, 0, sw.timestamps[0].Add(limit.Window)
	}
	sw.timestamps = append(sw.timestamps, now)
	return true, limit.Requests - len(sw.timestamps), sw.timestamps[0].Add(limit.Window)
}

func (sw *slidingWindow) cleanupExpired(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

func NewInMemory() *InMemory {
	return &InMemory{
		windows: make(map[string]*slidingWindow),
		now:     time.Now,
	}
}

func (s *InMemory) Allow(_ context.Context, key string, limit models.Limit) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sw, ok := s.windows[key]
	if !ok {
		sw = &slidingWindow{}
		s.windows[key] = sw
	}
	allowed, remaining, resetAt := sw.tryConsume(limit, now)
	return &models.Result{
		Allowed:    allowed,
		Limit:      limit.Requests,
		Remaining:  remaining,
		ResetAt:    resetAt,
		RetryAfter: models.RetryAfterSeconds(allowed, resetAt, now),
	}, nil
}

// Sweep drops windows with no request newer than window.
func (s *InMemory) Sweep(window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, sw := range s.windows {
		sw.cleanupExpired(now, window)
		if len(sw.timestamps) == 0 {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *InMemory) RunSweeper(ctx context.Context, interval, window time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep(window)
		}
	}
}
