// Package jobs decouples webhook intake from command processing through a task queue.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/finance-bot/pkg/config"
)

var (
	// ErrQueueFull is returned when the in-memory buffer has no room left.
	ErrQueueFull = errors.New("update queue is full")
	// ErrQueueClosed is returned after Close.
	ErrQueueClosed = errors.New("update queue is closed")
	// ErrDuplicateUpdate is returned when an update with the same id is already queued.
	ErrDuplicateUpdate = errors.New("update already queued")
)

// Queue accepts Telegram updates for out-of-band processing.
type Queue interface {
	Enqueue(ctx context.Context, update telebot.Update) error
	// Start launches the consumers.
	Start() error
	// Close stops accepting updates and waits for in-flight ones.
	Close() error
}

// Processor executes one update, typically bot.Bot.
type Processor interface {
	ProcessUpdate(update telebot.Update)
}

// New builds the queue selected by cfg.Driver. handler is the asynq handler used by the
// redis driver; the memory driver calls processor directly.
func New(cfg config.QueueConfig, redisCfg config.RedisConfig, processor Processor, handler asynq.Handler, log *slog.Logger) (Queue, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryQueue(processor, cfg.Workers, cfg.Buffer, log), nil
	case "redis":
		opt := asynq.RedisClientOpt{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
			PoolSize: redisCfg.PoolSize,
		}
		return NewAsynqQueue(opt, cfg.Workers, handler, log), nil
	default:
		return nil, fmt.Errorf("unknown queue driver %q", cfg.Driver)
	}
}
