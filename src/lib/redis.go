package lib

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// AcquireLock takes a best-effort mutex for idempotent batch operations.
// Returns false when another worker holds the key.
func AcquireLock(ctx context.Context, key string, ttl time.Duration) bool {
	rdb := GetRedisClient()
	if rdb == nil {
		return true
	}
	ok, err := rdb.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		log.Printf("[redis] Error acquiring lock %s: %s\n", key, err.Error())
		return true
	}
	return ok
}

func ReleaseLock(ctx context.Context, key string) {
	rdb := GetRedisClient()
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, key).Err(); err != nil {
		log.Printf("[redis] Error releasing lock %s: %s\n", key, err.Error())
	}
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}
