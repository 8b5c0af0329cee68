package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bookly/config"
	"bookly/services/notification"
	"bookly/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt is the asynq connection for the hook queue.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// StartHookWorker runs the asynq server executing queued post-commit hooks
// until ctx is done.
func StartHookWorker(ctx context.Context, registry notification.Registry, logger *zap.Logger) error {
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeRunHook, handleHookTask(registry, logger))

	go monitorRedisConnection(ctx, logger)

	logger.Info("Starting hook worker", zap.Int("hooks", len(registry)))
	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("hook worker: %w", err)
	}
	<-ctx.Done()
	srv.Shutdown()
	return nil
}

func handleHookTask(registry notification.Registry, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.HookPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid hook payload", zap.Error(err))
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
		if _, ok := registry[p.Hook]; !ok {
			logger.Warn("Hook not configured on this worker", zap.String("hook", p.Hook))
			return fmt.Errorf("hook %q: %w", p.Hook, asynq.SkipRetry)
		}

		if err := registry.Run(ctx, p.Hook, p.Booking); err != nil {
			logger.Warn("Hook failed",
				zap.String("hook", p.Hook), zap.String("bookingID", p.Booking.ID), zap.Error(err))
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings the queue database periodically to surface outages in the logs.
func monitorRedisConnection(ctx context.Context, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("Queue Redis connection lost", zap.Error(err))
			}
		}
	}
}
