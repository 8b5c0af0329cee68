// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"bookly/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient holds counters (rate limits, daily quotas) and calendar tokens.
	CacheClient *redis.Client
	// SessionClient holds conversation state for transports that keep it server-side.
	SessionClient *redis.Client
)

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitSessionCache initializes the Redis client for conversation sessions.
func InitSessionCache() {
	SessionClient = newRedisClient(config.AppConfig.RedisSessionDB, "Sessions")
}

// GetSessionClient returns the Redis client for conversation sessions.
func GetSessionClient() *redis.Client {
	if SessionClient == nil {
		InitSessionCache()
	}
	return SessionClient
}
