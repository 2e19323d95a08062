// Package handlers contains asynq task handlers.
package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/Proton-105/finance-bot/internal/jobs"
)

// UpdateHandler feeds queued Telegram updates to the bot.
type UpdateHandler struct {
	processor jobs.Processor
	log       *slog.Logger
}

func NewUpdateHandler(processor jobs.Processor, log *slog.Logger) *UpdateHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UpdateHandler{processor: processor, log: log}
}

// ProcessTask decodes the update and runs it. A payload that cannot be decoded is
// never retried.
func (h *UpdateHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	update, err := jobs.DecodeUpdate(t.Payload())
	if err != nil {
		h.log.ErrorContext(ctx, "update task: failed to decode payload",
			slog.String("task_type", t.Type()),
			slog.Any("error", err),
		)
		return fmt.Errorf("decode update: %v: %w", err, asynq.SkipRetry)
	}

	h.log.DebugContext(ctx, "processing update", slog.Int("update_id", update.ID))
	h.processor.ProcessUpdate(update)

	return nil
}
