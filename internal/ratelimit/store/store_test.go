package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard/internal/ratelimit/models"
)

func TestInMemorySlidingWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewInMemory()
	s.now = func() time.Time { return now }
	limit := models.Limit{Requests: 2, Window: time.Minute}

	first, err := s.Allow(ctx, "k", limit)
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)

	now = now.Add(10 * time.Second)
	second, _ := s.Allow(ctx, "k", limit)
	assert.True(t, second.Allowed)
	assert.Equal(t, 0, second.Remaining)

	third, _ := s.Allow(ctx, "k", limit)
	assert.False(t, third.Allowed)
	assert.Equal(t, 50, third.RetryAfter, "the oldest request leaves the window after 50s")

	other, _ := s.Allow(ctx, "other", limit)
	assert.True(t, other.Allowed, "keys are independent")

	now = now.Add(51 * time.Second)
	again, _ := s.Allow(ctx, "k", limit)
	assert.True(t, again.Allowed)
}

func TestInMemorySweep(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewInMemory()
	s.now = func() time.Time { return now }
	limit := models.Limit{Requests: 5, Window: time.Minute}

	_, _ = s.Allow(context.Background(), "a", limit)
	now = now.Add(30 * time.Second)
	_, _ = s.Allow(context.Background(), "b", limit)
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, s.Sweep(time.Minute))
	assert.Len(t, s.windows, 1)
}
