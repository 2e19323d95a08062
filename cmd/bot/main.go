package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Proton-105/finance-bot/internal/bot"
	"github.com/Proton-105/finance-bot/internal/bot/handlers"
	"github.com/Proton-105/finance-bot/internal/database"
	apperrors "github.com/Proton-105/finance-bot/internal/errors"
	"github.com/Proton-105/finance-bot/internal/health"
	"github.com/Proton-105/finance-bot/internal/i18n"
	"github.com/Proton-105/finance-bot/internal/jobs"
	jobhandlers "github.com/Proton-105/finance-bot/internal/jobs/handlers"
	"github.com/Proton-105/finance-bot/internal/ledger"
	"github.com/Proton-105/finance-bot/internal/lifecycle"
	"github.com/Proton-105/finance-bot/internal/middleware"
	"github.com/Proton-105/finance-bot/internal/ratelimit"
	"github.com/Proton-105/finance-bot/internal/repository"
	"github.com/Proton-105/finance-bot/internal/server"
	"github.com/Proton-105/finance-bot/pkg/config"
	"github.com/Proton-105/finance-bot/pkg/graceful"
	"github.com/Proton-105/finance-bot/pkg/logger"
	"github.com/Proton-105/finance-bot/pkg/redis"
)

const rateLimitCleanupInterval = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "finance bot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return err
	}

	log, level := logger.New(cfg.Logger, cfg.Sentry.Enabled)
	slog.SetDefault(log)

	config.Watch(v, log, func(next *config.Config) {
		level.Set(logger.ParseLevel(next.Logger.Level))
	})

	log.Info("starting finance bot",
		slog.String("env", cfg.AppEnv),
		slog.Int("port", cfg.Server.Port),
		slog.String("queue", cfg.Queue.Driver),
	)

	shutdown := lifecycle.NewShutdown(log)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdown.Execute(shutdownCtx); err != nil {
			log.Error("shutdown finished with errors", slog.Any("error", err))
		}
	}()

	flushSentry, err := logger.InitSentry(cfg.Sentry, cfg.AppEnv)
	if err != nil {
		return err
	}
	shutdown.Register("sentry", func(context.Context) error {
		flushSentry()
		return nil
	})

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	shutdown.Register("database", lifecycle.Closer(db.Close))

	if err := database.NewMigrator(db, log).Apply(ctx, database.Migrations()); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	loc, err := cfg.App.Location()
	if err != nil {
		return err
	}

	svc := ledger.NewService(
		repository.NewTransactionRepository(db, log),
		repository.NewDebtRepository(db, log),
		repository.NewFixedExpenseRepository(db, log),
		ledger.WithLocation(loc),
		ledger.WithLogger(log),
	)

	locales, err := i18n.Load(i18n.DefaultLang)
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}
	tr := locales.Translator(cfg.Bot.Language)

	errHandler := apperrors.NewHandler(log)

	checker := health.NewChecker(log, 2*time.Second)
	checker.AddCheck("database", health.NewDBChecker(db))

	var rdb *redis.Client
	if cfg.Queue.Driver == "redis" {
		rdb, err = redis.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		shutdown.Register("redis", lifecycle.Closer(rdb.Close))
		checker.AddCheck("redis", health.NewRedisChecker(rdb))
	}

	extra := []handlers.Middleware{middleware.Metrics}
	if cfg.RateLimit.Enabled {
		rl, err := newRateLimit(ctx, cfg.RateLimit, rdb, log)
		if err != nil {
			return err
		}
		extra = append(extra, rl.Handle)
	}

	b, err := bot.New(cfg.Bot, log, handlers.New(svc, tr, log), tr, errHandler, extra...)
	if err != nil {
		return err
	}
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))

	queue, err := jobs.New(cfg.Queue, cfg.Redis, b, jobhandlers.NewUpdateHandler(b, log), log)
	if err != nil {
		return err
	}
	if err := queue.Start(); err != nil {
		return fmt.Errorf("start update queue: %w", err)
	}
	shutdown.Register("queue", lifecycle.Closer(queue.Close))

	if !cfg.Bot.Offline {
		if err := b.RegisterWebhook(cfg.Bot.WebhookEndpoint(), cfg.Bot.WebhookSecret); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: server.New(server.Options{
			Queue:         queue,
			Health:        checker,
			WebhookSecret: cfg.Bot.WebhookSecret,
			Log:           log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := graceful.NewServer(log, srv, cfg.Server.ShutdownTimeout).ListenAndServe(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	log.Info("finance bot shutting down")
	return nil
}

func newRateLimit(ctx context.Context, cfg config.RateLimitConfig, rdb *redis.Client, log *slog.Logger) (*middleware.RateLimitMiddleware, error) {
	rules, err := ratelimit.NewRules(cfg)
	if err != nil {
		return nil, err
	}

	memory := ratelimit.NewMemoryLimiter(log)
	_, window := rules.PerUser()
	go memory.RunCleanup(ctx, rateLimitCleanupInterval, window)

	var client *goredis.Client
	if rdb != nil {
		client = rdb.Client
	}

	return middleware.NewRateLimitMiddleware(ratelimit.New(client, memory, log), rules, log), nil
}
