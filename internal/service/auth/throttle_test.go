package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfoster/tasklist-api/internal/mocks"
	"github.com/rfoster/tasklist-api/internal/service/auth"
)

func TestThrottleKey(t *testing.T) {
	t.Parallel()

	throttle := auth.NewLoginThrottle(mocks.NewMemoryAttemptStore(), 5, time.Minute)
	assert.Equal(t, "alice|203.0.113.7", throttle.Key("alice", "203.0.113.7"))

	// Same username from different addresses gets independent counters.
	assert.NotEqual(t,
		throttle.Key("alice", "203.0.113.7"),
		throttle.Key("alice", "198.51.100.2"))
}

func TestThrottleBlocksAtCap(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	attempts := mocks.NewMemoryAttemptStore()
	throttle := auth.NewLoginThrottle(attempts, 5, time.Minute)
	key := throttle.Key("alice", "203.0.113.7")

	for i := 0; i < 4; i++ {
		require.NoError(t, throttle.Failure(ctx, key))
		blocked, err := throttle.Blocked(ctx, key)
		require.NoError(t, err)
		assert.False(t, blocked, "should not block below the cap")
	}

	require.NoError(t, throttle.Failure(ctx, key))
	blocked, err := throttle.Blocked(ctx, key)
	require.NoError(t, err)
	assert.True(t, blocked, "fifth failure reaches the cap")

	// Another key is unaffected.
	blocked, err = throttle.Blocked(ctx, throttle.Key("alice", "198.51.100.2"))
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestThrottleSuccessClearsCounter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	throttle := auth.NewLoginThrottle(mocks.NewMemoryAttemptStore(), 5, time.Minute)
	key := throttle.Key("bob", "203.0.113.7")

	for i := 0; i < 5; i++ {
		require.NoError(t, throttle.Failure(ctx, key))
	}
	blocked, err := throttle.Blocked(ctx, key)
	require.NoError(t, err)
	require.True(t, blocked)

	require.NoError(t, throttle.Success(ctx, key))
	blocked, err = throttle.Blocked(ctx, key)
	require.NoError(t, err)
	assert.False(t, blocked, "success clears the counter immediately")
}

func TestThrottleWindowRefreshAndExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	attempts := mocks.NewMemoryAttemptStore()
	attempts.Now = func() time.Time { return now }
	throttle := auth.NewLoginThrottle(attempts, 5, time.Minute)
	key := throttle.Key("carol", "203.0.113.7")

	for i := 0; i < 5; i++ {
		require.NoError(t, throttle.Failure(ctx, key))
	}

	// 30 seconds later another failure lands; the decay window restarts.
	now = now.Add(30 * time.Second)
	require.NoError(t, throttle.Failure(ctx, key))

	// 90 seconds after the first failure the block would have lapsed had the
	// window not been refreshed.
	now = now.Add(45 * time.Second)
	blocked, err := throttle.Blocked(ctx, key)
	require.NoError(t, err)
	assert.True(t, blocked, "each failure refreshes the decay window")

	// A full window after the last failure the counter expires.
	now = now.Add(16 * time.Second)
	blocked, err = throttle.Blocked(ctx, key)
	require.NoError(t, err)
	assert.False(t, blocked, "counter decays after a quiet window")
}
