package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "onboard/pkg/domain"
)

func TestDefaultsOutsideRequest(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, RequestID(ctx))
	assert.True(t, UserID(ctx).IsNil())
	assert.False(t, IsHR(ctx))
	assert.Empty(t, BearerToken(ctx))
	assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
}

func TestRoundTrip(t *testing.T) {
	userID := id.NewUserID()
	pinned := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithUserID(ctx, userID)
	ctx = WithHR(ctx, true)
	ctx = WithBearerToken(ctx, "tok")
	ctx = WithTime(ctx, pinned)
	ctx = WithClientMetadata(ctx, "10.0.0.7", "curl/8.5.0")

	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, userID, UserID(ctx))
	assert.True(t, IsHR(ctx))
	assert.Equal(t, "tok", BearerToken(ctx))
	assert.Equal(t, pinned, Now(ctx))
	assert.Equal(t, "10.0.0.7", ClientIP(ctx))
	assert.Equal(t, "curl/8.5.0", UserAgent(ctx))
}
