package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/finance-bot/internal/bot/handlers"
	"github.com/Proton-105/finance-bot/internal/command"
	apperrors "github.com/Proton-105/finance-bot/internal/errors"
	"github.com/Proton-105/finance-bot/internal/i18n"
	"github.com/Proton-105/finance-bot/pkg/logger"
)

// RecoveryMiddleware catches panics, reports them via the centralized handler, and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *apperrors.Handler) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				log.Error("panic recovered in handler", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))

				userMsg := apperrors.DefaultUserMessage
				if errHandler != nil {
					appErr := apperrors.NewInternalError(fmt.Errorf("panic recovered: %v", r))
					userMsg = errHandler.Handle(handlers.RequestContext(c), appErr)
				}

				if sendErr := c.Send(userMsg); sendErr != nil {
					log.Error("failed to notify user about panic", slog.Any("error", sendErr))
				}

				err = nil
			}()

			return next(c)
		}
	}
}

// ContextMiddleware gives every update its own context carrying a correlation id.
func ContextMiddleware(next handlers.Handler) handlers.Handler {
	return func(c telebot.Context) error {
		ctx := handlers.RequestContext(c)
		if logger.CorrelationIDFromContext(ctx) == "" {
			ctx = logger.WithCorrelationID(ctx, "")
		}
		handlers.WithContext(c, ctx)
		return next(c)
	}
}

// ErrorHandlingMiddleware turns handler failures into a reply. Usage errors get the
// command's hint, anything else goes through the central error handler.
func ErrorHandlingMiddleware(errHandler *apperrors.Handler, tr i18n.Translator, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var usage *command.UsageError
			if errors.As(err, &usage) && tr != nil {
				err = apperrors.NewUsageError(tr.T(usage.UsageKey), err)
			}

			userMsg := apperrors.DefaultUserMessage
			if errHandler != nil {
				if msg := errHandler.Handle(handlers.RequestContext(c), err); msg != "" {
					userMsg = msg
				}
			}

			if sendErr := c.Send(userMsg); sendErr != nil {
				log.Error("failed to deliver error reply", slog.Any("error", sendErr))
			}

			return nil
		}
	}
}

// LoggingMiddleware logs basic telemetry about incoming updates.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			start := time.Now()
			ctx := handlers.RequestContext(c)

			userID := int64(0)
			if c.Sender() != nil {
				userID = c.Sender().ID
			}

			name := "unknown"
			if kind, ok := handlers.CommandOf(c); ok {
				name = kind.Name()
			}

			err := next(c)

			attrs := []slog.Attr{
				slog.Int64("user_id", userID),
				slog.String("command", name),
				slog.Duration("duration", time.Since(start)),
				slog.String("correlation_id", logger.CorrelationIDFromContext(ctx)),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			log.LogAttrs(ctx, slog.LevelInfo, "handled command", attrs...)

			return err
		}
	}
}
