package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	telebot "gopkg.in/telebot.v3"
)

const TaskTypeTelegramUpdate = "telegram:update"

const QueueUpdates = "updates"

// updateRetention keeps finished task ids around so Telegram redeliveries are rejected.
const updateRetention = 24 * time.Hour

// NewUpdateTask wraps update as an asynq task whose id is derived from the update id.
func NewUpdateTask(update telebot.Update) (*asynq.Task, error) {
	payload, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("encode update %d: %w", update.ID, err)
	}

	return asynq.NewTask(TaskTypeTelegramUpdate, payload,
		asynq.Queue(QueueUpdates),
		asynq.TaskID(UpdateTaskID(update.ID)),
		asynq.MaxRetry(0),
		asynq.Retention(updateRetention),
	), nil
}

func UpdateTaskID(updateID int) string {
	return fmt.Sprintf("update:%d", updateID)
}

// DecodeUpdate reads the update carried by a task payload.
func DecodeUpdate(payload []byte) (telebot.Update, error) {
	var update telebot.Update
	if err := json.Unmarshal(payload, &update); err != nil {
		return telebot.Update{}, err
	}
	return update, nil
}
