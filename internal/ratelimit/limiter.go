// Package ratelimit throttles bot commands per Telegram user.
package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result captures the outcome of a rate-limit evaluation.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long the caller should wait before the next attempt.
func (r *Result) RetryAfter(now time.Time) time.Duration {
	if r == nil || r.Allowed || !r.ResetAt.After(now) {
		return 0
	}
	return r.ResetAt.Sub(now)
}

// Limiter describes a rate-limiting strategy.
// Check returns an error only when the backend itself fails.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// ErrLimitExceeded indicates the rate limit has been reached for the key.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// New returns memory, or a Redis limiter falling back to memory when client is set.
func New(client *redis.Client, memory *MemoryLimiter, log *slog.Logger) Limiter {
	if memory == nil {
		memory = NewMemoryLimiter(log)
	}
	if client == nil {
		return memory
	}
	return NewAdaptiveLimiter(NewRedisLimiter(client, log), memory, log)
}
