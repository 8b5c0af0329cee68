package cron

import (
	"context"
	"time"

	countersRepo "bookly/database/repository/counters"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// scheduleParser accepts standard 5-field expressions and @descriptors.
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// StartPruner schedules counter pruning for stores whose rows never expire.
// now must return times in the booking location, since daily counters are
// keyed by that calendar day. The caller stops the returned scheduler.
func StartPruner(pruner countersRepo.Pruner, schedule string, now func() time.Time, logger *zap.Logger) (*cron.Cron, error) {
	if now == nil {
		now = time.Now
	}
	c := cron.New(cron.WithParser(scheduleParser))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		PruneOnce(ctx, pruner, now(), logger)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	logger.Info("Counter pruning scheduled", zap.String("schedule", schedule))
	return c, nil
}

// PruneOnce runs one pruning pass and logs the outcome.
func PruneOnce(ctx context.Context, pruner countersRepo.Pruner, now time.Time, logger *zap.Logger) int64 {
	n, err := pruner.Prune(ctx, now)
	if err != nil {
		logger.Error("Counter pruning failed", zap.Error(err))
		return n
	}
	logger.Debug("Pruned stale counters", zap.Int64("rows", n))
	return n
}
