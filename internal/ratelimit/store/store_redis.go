package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"onboard/internal/ratelimit/models"
	"onboard/internal/sentinel"
)

// slidingWindowScript trims the sorted set to the window, then admits the
// request when there is room. Returns {allowed, count, oldest_ms}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)
local count = redis.call("ZCARD", key)
local allowed = 0
if count < limit then
	redis.call("ZADD", key, now, ARGV[4])
	count = count + 1
	allowed = 1
end
redis.call("PEXPIRE", key, window)
local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
local first = now
if oldest[2] then
	first = tonumber(oldest[2])
end
return {allowed, count, first}
`)

// Redis shares sliding windows across replicas.
type Redis struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client, now: time.Now}
}

func (r *Redis) Allow(ctx context.Context, key string, limit models.Limit) (*models.Result, error) {
	now := r.now()
	res, err := slidingWindowScript.Run(ctx, r.client, []string{key},
		now.UnixMilli(),
		limit.Window.Milliseconds(),
		limit.Requests,
		strconv.FormatInt(now.UnixNano(), 10)+"-"+uuid.NewString()[:8],
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("%w: rate limit check: %v", sentinel.ErrUnavailable, err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("%w: rate limit script returned %d values", sentinel.ErrUnavailable, len(res))
	}

	allowed := res[0] == 1
	resetAt := time.UnixMilli(res[2]).Add(limit.Window)
	remaining := max(limit.Requests-int(res[1]), 0)
	return &models.Result{
		Allowed:    allowed,
		Limit:      limit.Requests,
		Remaining:  remaining,
		ResetAt:    resetAt,
		RetryAfter: models.RetryAfterSeconds(allowed, resetAt, now),
	}, nil
}
