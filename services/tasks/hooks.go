package tasks

import (
	"context"
	"encoding/json"
	"time"

	"bookly/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeRunHook = "booking:hook"

// HookPayload names one post-commit hook and the booking it runs for.
type HookPayload struct {
	Hook    string         `json:"hook"`
	Booking models.Booking `json:"booking"`
}

func NewHookTask(hook string, booking models.Booking) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(HookPayload{Hook: hook, Booking: booking})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeRunHook, b)
	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
		asynq.TaskID(booking.ID + ":" + hook),
	}
	return task, opts, nil
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueDispatcher enqueues one task per hook so each retries on its own.
type QueueDispatcher struct {
	client Enqueuer
	hooks  []string
	logger *zap.Logger
}

func NewQueueDispatcher(client Enqueuer, logger *zap.Logger, hooks ...string) *QueueDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueDispatcher{client: client, hooks: hooks, logger: logger}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, booking models.Booking) {
	for _, name := range d.hooks {
		task, opts, err := NewHookTask(name, booking)
		if err != nil {
			d.logger.Error("Failed to build hook task", zap.String("hook", name), zap.Error(err))
			continue
		}
		if _, err := d.client.EnqueueContext(ctx, task, opts...); err != nil {
			d.logger.Warn("Failed to enqueue hook task",
				zap.String("hook", name), zap.String("bookingID", booking.ID), zap.Error(err))
		}
	}
}
