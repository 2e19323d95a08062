// Package bot connects the Telegram API to the finance command handlers.
package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/finance-bot/internal/bot/handlers"
	"github.com/Proton-105/finance-bot/internal/command"
	apperrors "github.com/Proton-105/finance-bot/internal/errors"
	"github.com/Proton-105/finance-bot/internal/i18n"
	"github.com/Proton-105/finance-bot/pkg/config"
)

// Bot wraps telebot.Bot. Updates arrive through ProcessUpdate, never through polling.
type Bot struct {
	telebot *telebot.Bot
	router  *Router
	log     *slog.Logger
}

// New builds a synchronous telebot instance and registers one endpoint per command.
// extra middlewares run innermost, after recovery, error handling and logging.
func New(
	cfg config.BotConfig,
	log *slog.Logger,
	h *handlers.Handlers,
	tr i18n.Translator,
	errHandler *apperrors.Handler,
	extra ...handlers.Middleware,
) (*Bot, error) {
	if log == nil {
		log = slog.Default()
	}

	tb, err := telebot.NewBot(telebot.Settings{
		Token:       cfg.Token,
		Synchronous: true,
		Offline:     cfg.Offline,
		OnError: func(err error, c telebot.Context) {
			attrs := []any{slog.Any("error", err)}
			if c != nil && c.Sender() != nil {
				attrs = append(attrs, slog.Int64("user_id", c.Sender().ID))
			}
			log.Error("telegram handler error", attrs...)
		},
	})
	if err != nil {
		return nil, apperrors.NewExternalAPIError("telegram", fmt.Errorf("initialize telebot: %w", err))
	}

	router := NewRouter(log)
	router.Use(RecoveryMiddleware(log, errHandler))
	router.Use(ContextMiddleware)
	router.Use(ErrorHandlingMiddleware(errHandler, tr, log))
	router.Use(LoggingMiddleware(log))
	for _, mw := range extra {
		router.Use(mw)
	}

	for _, kind := range command.All() {
		router.Register(kind, h.For(kind))
	}
	if err := router.Validate(); err != nil {
		return nil, err
	}
	router.Bind(tb)

	return &Bot{
		telebot: tb,
		router:  router,
		log:     log,
	}, nil
}

// RegisterWebhook tells Telegram to deliver updates to url.
func (b *Bot) RegisterWebhook(url, secret string) error {
	err := b.telebot.SetWebhook(&telebot.Webhook{
		SecretToken:    secret,
		AllowedUpdates: []string{"message"},
		Endpoint:       &telebot.WebhookEndpoint{PublicURL: url},
	})
	if err != nil {
		return apperrors.NewExternalAPIError("telegram", fmt.Errorf("set webhook: %w", err))
	}

	b.log.Info("webhook registered", slog.String("url", url))
	return nil
}

// ProcessUpdate runs the handler for one update in the calling goroutine.
func (b *Bot) ProcessUpdate(update telebot.Update) {
	b.telebot.ProcessUpdate(update)
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}
