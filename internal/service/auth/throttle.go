package auth

import (
	"context"
	"time"
)

// AttemptStore counts failed login attempts per throttle key.
// The Redis-backed implementation lives in internal/platform/redis.
type AttemptStore interface {
	// Attempts returns the current failure count for the key, or 0 when no
	// counter exists or it has expired.
	Attempts(ctx context.Context, key string) (int, error)

	// RecordFailure atomically increments the counter and refreshes its TTL
	// to the given window, returning the post-increment count.
	RecordFailure(ctx context.Context, key string, window time.Duration) (int, error)

	// Clear removes the counter for the key.
	Clear(ctx context.Context, key string) error
}

// LoginThrottle enforces a sliding cap on failed login attempts per
// (username, client IP) pair. Each failure refreshes the decay window, so a
// sustained stream of failures keeps the block alive; the counter is cleared
// on a successful login or by natural expiry. The increment is atomic in the
// backing store, but check-then-act across requests still makes the cap a
// soft bound under concurrency, which is acceptable for abuse mitigation.
type LoginThrottle struct {
	attempts    AttemptStore
	maxAttempts int
	window      time.Duration
}

// NewLoginThrottle creates a LoginThrottle with the given cap and decay
// window.
func NewLoginThrottle(attempts AttemptStore, maxAttempts int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{
		attempts:    attempts,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Key builds the throttle key for a username and client IP pair.
func (t *LoginThrottle) Key(username, clientIP string) string {
	return username + "|" + clientIP
}

// Blocked reports whether the key has reached the attempt cap.
// It never mutates the counter.
func (t *LoginThrottle) Blocked(ctx context.Context, key string) (bool, error) {
	count, err := t.attempts.Attempts(ctx, key)
	if err != nil {
		return false, err
	}
	return count >= t.maxAttempts, nil
}

// Failure records one failed attempt and refreshes the decay window.
func (t *LoginThrottle) Failure(ctx context.Context, key string) error {
	_, err := t.attempts.RecordFailure(ctx, key, t.window)
	return err
}

// Success clears the counter for the key immediately.
func (t *LoginThrottle) Success(ctx context.Context, key string) error {
	return t.attempts.Clear(ctx, key)
}
