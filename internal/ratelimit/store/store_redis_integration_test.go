//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"onboard/internal/ratelimit/models"
	"onboard/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	client *redis.Client
	store  *Redis
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	rc := containers.GetManager().GetRedis(s.T())
	opts, err := redis.ParseURL(rc.URL)
	s.Require().NoError(err)
	s.client = redis.NewClient(opts)
	s.store = NewRedis(s.client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.client.FlushDB(context.Background()).Err())
}

func (s *RedisStoreSuite) TearDownSuite() {
	_ = s.client.Close()
}

func (s *RedisStoreSuite) TestLimitIsShared() {
	ctx := context.Background()
	limit := models.Limit{Requests: 3, Window: time.Minute}
	key := models.Key(models.ClassAuth, "198.51.100.0")

	for i := range 3 {
		res, err := s.store.Allow(ctx, key, limit)
		s.Require().NoError(err)
		s.True(res.Allowed)
		s.Equal(2-i, res.Remaining)
	}

	// A second store over the same Redis sees the same window.
	res, err := NewRedis(s.client).Allow(ctx, key, limit)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Positive(res.RetryAfter)

	ttl, err := s.client.PTTL(ctx, key).Result()
	s.Require().NoError(err)
	s.LessOrEqual(ttl, time.Minute)
}
