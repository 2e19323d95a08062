package ratelimit

import (
	"fmt"
	"time"

	"github.com/Proton-105/finance-bot/pkg/config"
)

// Rules holds the per-user limit and the ids that bypass it.
type Rules struct {
	limit     int
	window    time.Duration
	whitelist map[int64]struct{}
}

// NewRules validates cfg and builds Rules from it.
func NewRules(cfg config.RateLimitConfig) (*Rules, error) {
	window, err := time.ParseDuration(cfg.PerUser.Window)
	if err != nil {
		return nil, fmt.Errorf("rate limit window %q: %w", cfg.PerUser.Window, err)
	}
	if window <= 0 || cfg.PerUser.Limit <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %d per %s", cfg.PerUser.Limit, window)
	}

	whitelist := make(map[int64]struct{}, len(cfg.Whitelist))
	for _, id := range cfg.Whitelist {
		whitelist[id] = struct{}{}
	}

	return &Rules{limit: cfg.PerUser.Limit, window: window, whitelist: whitelist}, nil
}

// IsWhitelisted returns true if the userID bypasses rate limits.
func (r *Rules) IsWhitelisted(userID int64) bool {
	_, ok := r.whitelist[userID]
	return ok
}

// PerUser returns the per-user limit and window.
func (r *Rules) PerUser() (int, time.Duration) {
	return r.limit, r.window
}

// Key returns the limiter key for userID.
func (r *Rules) Key(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}
