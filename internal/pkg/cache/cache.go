package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/RenewalHub/RenewalHub/internal/pkg/env"
	"github.com/redis/go-redis/v9"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

// Enabled reports whether a cache server is configured at all. Without one the
// scan lock degrades to the advisory ledger guard.
func Enabled() bool {
	return env.GetEnv("CACHE_HOST", "") != ""
}

// SetupCache initializes the connection to the Redis cache server
func SetupCache() {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	// Test the connection
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Printf("Warning: Could not connect to Redis cache: %v", err)
	} else {
		log.Printf("Successfully connected to Redis cache: %s", pong)
	}
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

// Set stores a value in the cache with the given key and expiration time
func Set(key string, value interface{}, expiration time.Duration) error {
	return GetClient().Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value from the cache by key
func Get(key string) (string, error) {
	return GetClient().Get(ctx, key).Result()
}

// Delete removes a value from the cache by key
func Delete(key string) error {
	return GetClient().Del(ctx, key).Err()
}

// AcquireLock takes a best-effort mutex via SETNX. Returns true when the lock
// was obtained. Used to keep overlapping scan invocations from racing the
// ledger's same-day guard.
func AcquireLock(key string, ttl time.Duration) (bool, error) {
	return GetClient().SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

// ReleaseLock drops a previously acquired lock.
func ReleaseLock(key string) error {
	return GetClient().Del(ctx, key).Err()
}
