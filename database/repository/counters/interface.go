package countersRepo

import (
	"context"
	"time"

	"bookly/models"
)

// CounterStore keeps the advisory per-sender and per-client counters. Updates
// are per-key upserts; concurrent bursts on one key may lose an increment.
type CounterStore interface {
	// DailyCount returns how many bookings email created on date (YYYY-MM-DD).
	DailyCount(ctx context.Context, email, date string) (int, error)
	// IncrementDaily bumps the (email, date) counter and returns the new value.
	IncrementDaily(ctx context.Context, email, date string) (int, error)
	// TouchRateLimit records one request from clientID at now and returns the updated record.
	TouchRateLimit(ctx context.Context, clientID string, now time.Time) (models.RateLimitRecord, error)
}

// Pruner is implemented by stores whose records do not expire on their own.
type Pruner interface {
	Prune(ctx context.Context, now time.Time) (int64, error)
}
