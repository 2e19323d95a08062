package middleware

import (
	"log/slog"
	"math"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/finance-bot/internal/bot/handlers"
	apperrors "github.com/Proton-105/finance-bot/internal/errors"
	"github.com/Proton-105/finance-bot/internal/ratelimit"
)

// RateLimitMiddleware enforces per-user rate limits for incoming commands.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	rules   *ratelimit.Rules
	log     *slog.Logger
}

// NewRateLimitMiddleware constructs a rate-limit middleware component.
func NewRateLimitMiddleware(limiter ratelimit.Limiter, rules *ratelimit.Rules, log *slog.Logger) *RateLimitMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimitMiddleware{
		limiter: limiter,
		rules:   rules,
		log:     log,
	}
}

// Handle rejects a command with a rate-limit error once the user exhausted the window.
// Limiter failures let the command through.
func (m *RateLimitMiddleware) Handle(next handlers.Handler) handlers.Handler {
	return func(c telebot.Context) error {
		if m.limiter == nil || m.rules == nil || c.Sender() == nil {
			return next(c)
		}

		userID := c.Sender().ID
		if m.rules.IsWhitelisted(userID) {
			return next(c)
		}

		limit, window := m.rules.PerUser()
		result, err := m.limiter.Check(handlers.RequestContext(c), m.rules.Key(userID), limit, window)
		if err != nil {
			m.log.Warn("rate limiter error", slog.Int64("user_id", userID), slog.Any("error", err))
			return next(c)
		}

		if !result.Allowed {
			retryAfter := int(math.Ceil(result.RetryAfter(time.Now()).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			m.log.Warn("rate limit exceeded", slog.Int64("user_id", userID), slog.Int("retry_after", retryAfter))
			return apperrors.NewRateLimitError(retryAfter)
		}

		return next(c)
	}
}
