package countersRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bookly/models"

	"github.com/go-redis/redis/v8"
)

const (
	dailyPrefix     = "quota:daily:"
	rateLimitPrefix = "quota:rate:"

	dailyTTL     = 48 * time.Hour
	rateLimitTTL = 2 * models.RateLimitWindow
)

// RedisCounterStore keeps counters in Redis with expiring keys.
type RedisCounterStore struct {
	client *redis.Client
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func dailyKey(email, date string) string {
	return dailyPrefix + email + ":" + date
}

func (s *RedisCounterStore) DailyCount(ctx context.Context, email, date string) (int, error) {
	n, err := s.client.Get(ctx, dailyKey(email, date)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read daily count: %w", err)
	}
	return n, nil
}

func (s *RedisCounterStore) IncrementDaily(ctx context.Context, email, date string) (int, error) {
	key := dailyKey(email, date)
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, dailyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("increment daily count: %w", err)
	}
	return int(incr.Val()), nil
}

func (s *RedisCounterStore) TouchRateLimit(ctx context.Context, clientID string, now time.Time) (models.RateLimitRecord, error) {
	key := rateLimitPrefix + clientID
	rec := models.RateLimitRecord{IPAddress: clientID}

	data, err := s.client.Get(ctx, key).Result()
	switch {
	case err == redis.Nil:
	case err != nil:
		return rec, fmt.Errorf("read rate limit: %w", err)
	default:
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return rec, fmt.Errorf("decode rate limit: %w", err)
		}
	}

	rec = rec.Touch(now)
	b, err := json.Marshal(rec)
	if err != nil {
		return rec, err
	}
	if err := s.client.Set(ctx, key, b, rateLimitTTL).Err(); err != nil {
		return rec, fmt.Errorf("store rate limit: %w", err)
	}
	return rec, nil
}
