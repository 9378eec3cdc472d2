package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"onboard/internal/sentinel"
)

const keyPrefix = "onboard:submit:"

// releaseScript deletes the key only when it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis shares the guard across replicas with SET NX PX.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Acquire(ctx context.Context, key string) (string, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, keyPrefix+key, token, r.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("%w: acquire submit guard: %v", sentinel.ErrUnavailable, err)
	}
	if !ok {
		return "", sentinel.ErrConflict
	}
	return token, nil
}

func (r *Redis) Release(ctx context.Context, key, token string) error {
	err := releaseScript.Run(ctx, r.client, []string{keyPrefix + key}, token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: release submit guard: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}
