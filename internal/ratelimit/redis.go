package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"github.com/planetaskin/lead-intake/pkg/logging"
)

// RedisStore keeps the attempt window in a sorted set scored by unix
// time, one set per hashed identifier. Same sliding-window contract as
// FileStore for deployments that already run Redis.
type RedisStore struct {
	client *redis.Client
	config Config
	logger *logging.Logger

	// now is swappable in tests.
	now func() time.Time
}

// NewRedisStore creates a Redis-backed limiter.
func NewRedisStore(client *redis.Client, config Config, logger *logging.Logger) *RedisStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisStore{
		client: client,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Allow reports whether another attempt from key fits in the window,
// recording the attempt when it does. Redis errors fail open.
func (s *RedisStore) Allow(ctx context.Context, key string) bool {
	ctx, span := tracer.Start(ctx, "ratelimit.redis_allow")
	defer span.End()

	redisKey := "ratelimit:" + hashKey(key)
	now := s.now()
	cutoff := strconv.FormatInt(now.Unix()-int64(s.config.Window.Seconds()), 10)

	// Exclusive bound: an entry exactly window seconds old is still
	// inside the window, matching the file store's prune.
	if err := s.client.ZRemRangeByScore(ctx, redisKey, "-inf", "("+cutoff).Err(); err != nil {
		s.logger.Error("rate limit prune failed, failing open", "error", err, "key", redisKey)
		return true
	}

	count, err := s.client.ZCard(ctx, redisKey).Result()
	if err != nil {
		s.logger.Error("rate limit count failed, failing open", "error", err, "key", redisKey)
		return true
	}

	span.SetAttributes(attribute.Int("ratelimit.window_count", int(count)))

	if int(count) >= s.config.MaxAttempts {
		span.SetAttributes(attribute.Bool("ratelimit.exceeded", true))
		return false
	}

	member := strconv.FormatInt(now.UnixNano(), 10)
	if err := s.client.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.Unix()), Member: member}).Err(); err != nil {
		s.logger.Error("rate limit append failed, failing open", "error", err, "key", redisKey)
		return true
	}
	s.client.Expire(ctx, redisKey, s.config.Window)

	return true
}
