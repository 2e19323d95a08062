package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	telebot "gopkg.in/telebot.v3"
)

// AsynqQueue persists updates in Redis and processes them with an asynq worker server.
type AsynqQueue struct {
	client *asynq.Client
	worker Worker
	log    *slog.Logger
}

var _ Queue = (*AsynqQueue)(nil)

// NewAsynqQueue builds a queue whose worker dispatches update tasks to handler.
func NewAsynqQueue(redisOpt asynq.RedisConnOpt, concurrency int, handler asynq.Handler, log *slog.Logger) *AsynqQueue {
	if log == nil {
		log = slog.Default()
	}

	worker := NewWorker(redisOpt, concurrency, log)
	worker.RegisterHandler(TaskTypeTelegramUpdate, handler)

	return &AsynqQueue{
		client: asynq.NewClient(redisOpt),
		worker: worker,
		log:    log,
	}
}

// Enqueue stores the update; a redelivered update id returns ErrDuplicateUpdate.
func (q *AsynqQueue) Enqueue(ctx context.Context, update telebot.Update) error {
	task, err := NewUpdateTask(update)
	if err != nil {
		return err
	}

	info, err := q.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return ErrDuplicateUpdate
	}
	if err != nil {
		return fmt.Errorf("enqueue update %d: %w", update.ID, err)
	}

	q.log.DebugContext(ctx, "update enqueued", slog.String("task_id", info.ID), slog.String("queue", info.Queue))
	return nil
}

func (q *AsynqQueue) Start() error {
	return q.worker.Start()
}

func (q *AsynqQueue) Close() error {
	q.worker.Shutdown()
	return q.client.Close()
}
