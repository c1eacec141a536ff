package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rfoster/tasklist-api/internal/platform/logger"
)

// attemptKeyPrefix namespaces login-attempt counters in Redis.
const attemptKeyPrefix = "login_attempts:"

// AttemptStore counts failed login attempts per throttle key in Redis.
// Counters are plain integer keys with a TTL; expiry ends the block window.
type AttemptStore struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewAttemptStore creates an AttemptStore on top of the given Redis client.
// If logger is nil, a default logger will be used.
func NewAttemptStore(rdb *redis.Client, log *slog.Logger) *AttemptStore {
	if rdb == nil {
		panic("rdb cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &AttemptStore{
		rdb:    rdb,
		logger: log.With(slog.String("component", "attempt_store")),
	}
}

// Attempts returns the current failure count for the key, or 0 when no
// counter exists or it has expired.
func (s *AttemptStore) Attempts(ctx context.Context, key string) (int, error) {
	n, err := s.rdb.Get(ctx, attemptKeyPrefix+key).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read attempt counter: %w", err)
	}
	return n, nil
}

// RecordFailure atomically increments the failure counter for the key and
// refreshes its TTL to the given window, returning the post-increment count.
// INCR and EXPIRE run in one pipeline so concurrent failures cannot lose
// increments; refreshing the TTL on every failure means a sustained stream
// of failures keeps the block alive.
func (s *AttemptStore) RecordFailure(
	ctx context.Context,
	key string,
	window time.Duration,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, attemptKeyPrefix+key)
	pipe.Expire(ctx, attemptKeyPrefix+key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error("failed to record login failure",
			slog.String("error", err.Error()),
			slog.String("throttle_key", key))
		return 0, fmt.Errorf("failed to record login failure: %w", err)
	}

	return int(incr.Val()), nil
}

// Clear removes the failure counter for the key. Clearing a missing key is
// not an error.
func (s *AttemptStore) Clear(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, attemptKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to clear attempt counter: %w", err)
	}
	return nil
}
