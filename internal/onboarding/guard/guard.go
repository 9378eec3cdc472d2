// Package guard keeps at most one submission in flight per user. Holders
// release with the token they acquired; an entry that is never released
// expires after its TTL.
package guard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"onboard/internal/sentinel"
)

// DefaultTTL bounds how long an abandoned submission blocks the next one.
const DefaultTTL = 2 * time.Minute

// Memory is a process-local guard.
type Memory struct {
	mu   sync.Mutex
	held map[string]lease
	ttl  time.Duration
	now  func() time.Time
}

type lease struct {
	token   string
	expires time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{held: make(map[string]lease), ttl: ttl, now: time.Now}
}

// Acquire returns sentinel.ErrConflict while an unexpired lease exists for key.
func (m *Memory) Acquire(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if l, ok := m.held[key]; ok && now.Before(l.expires) {
		return "", sentinel.ErrConflict
	}
	token := uuid.NewString()
	m.held[key] = lease{token: token, expires: now.Add(m.ttl)}
	return token, nil
}

// Release drops the lease if token still owns it.
func (m *Memory) Release(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.held[key]; ok && l.token == token {
		delete(m.held, key)
	}
	return nil
}
