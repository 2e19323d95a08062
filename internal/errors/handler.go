package errors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Proton-105/finance-bot/pkg/logger"
	"github.com/Proton-105/finance-bot/pkg/metrics"
)

// Handler logs failures and picks the user reply. Records at error level reach
// Sentry through the logger's fan-out, so only high and critical failures are
// logged at that level.
type Handler struct {
	log *slog.Logger
}

func NewHandler(log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log}
}

// Handle returns the message that should be sent to the user for err.
func (h *Handler) Handle(ctx context.Context, err error) string {
	if err == nil {
		return ""
	}
	if ctx == nil {
		ctx = context.Background()
	}

	code, severity, userMsg := "unknown", SeverityHigh, DefaultUserMessage

	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		code, severity = appErr.Code, appErr.Severity
		if appErr.UserMessage != "" {
			userMsg = appErr.UserMessage
		}
	}

	attrs := []slog.Attr{
		slog.String("code", code),
		slog.String("severity", string(severity)),
		slog.String("error", err.Error()),
	}
	if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
		attrs = append(attrs, slog.String("correlation_id", correlationID))
	}

	h.log.LogAttrs(ctx, levelFor(severity), "application error", attrs...)
	metrics.RecordError(code, string(severity))

	return userMsg
}

func levelFor(severity Severity) slog.Level {
	switch severity {
	case SeverityLow:
		return slog.LevelInfo
	case SeverityMedium:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
