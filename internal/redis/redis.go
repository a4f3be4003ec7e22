package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sitelaunch/sitelaunch/api/internal/config"
)

// Redis channels
const (
	ChannelTaskProgress = "generation:progress"
)

// Lock key prefixes
const (
	lockPrefixSlug  = "lock:site-id:"
	lockPrefixProxy = "lock:proxy-reload"
)

var (
	client *redis.Client
	once   sync.Once
)

// Initialize sets up the Redis client and tests the connection
func Initialize(cfg *config.Config) error {
	var initErr error
	once.Do(func() {
		client = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
			DB:       0,
		})

		// Test connection
		ctx := context.Background()
		if err := client.Ping(ctx).Err(); err != nil {
			initErr = fmt.Errorf("failed to connect to Redis: %w", err)
		}
	})
	return initErr
}

// GetClient returns the Redis client
func GetClient() *redis.Client {
	return client
}

// AcquireLock tries to acquire a distributed lock with optional TTL (default 30 seconds)
func AcquireLock(ctx context.Context, key string, ttlSeconds ...int) (bool, error) {
	if client == nil {
		return false, fmt.Errorf("redis is not initialized")
	}

	ttl := 30
	if len(ttlSeconds) > 0 && ttlSeconds[0] > 0 {
		ttl = ttlSeconds[0]
	}

	result, err := client.SetNX(ctx, key, "1", time.Duration(ttl)*time.Second).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}

	return result, nil
}

// ReleaseLock releases a distributed lock
func ReleaseLock(ctx context.Context, key string) error {
	if client == nil {
		return fmt.Errorf("redis is not initialized")
	}
	return client.Del(ctx, key).Err()
}

// ReserveSiteID reserves a site identifier so concurrent generation runs
// cannot both claim the same slug between probe and write. The reservation
// expires on its own; a completed run has persisted the Site row by then.
func ReserveSiteID(ctx context.Context, siteID string) (bool, error) {
	return AcquireLock(ctx, lockPrefixSlug+siteID, 600)
}

// ReleaseSiteID drops a reservation after a failed run so the slug can be reused
func ReleaseSiteID(ctx context.Context, siteID string) error {
	return ReleaseLock(ctx, lockPrefixSlug+siteID)
}

// AcquireProxyReloadLock serializes proxy reloads across processes
func AcquireProxyReloadLock(ctx context.Context) (bool, error) {
	return AcquireLock(ctx, lockPrefixProxy, 60)
}

// ReleaseProxyReloadLock releases the reload lock
func ReleaseProxyReloadLock(ctx context.Context) error {
	return ReleaseLock(ctx, lockPrefixProxy)
}

// TaskProgressEvent is the payload published for every task progress update
type TaskProgressEvent struct {
	TaskID      string `json:"taskId"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	CurrentStep string `json:"currentStep"`
	Error       string `json:"error,omitempty"`
	SiteURL     string `json:"siteUrl,omitempty"`
}

// PublishTaskProgress publishes a task progress update for WebSocket fan-out.
// Progress streaming is advisory; callers poll the task record for truth, so
// a missing or unreachable Redis never fails the pipeline.
func PublishTaskProgress(ctx context.Context, event TaskProgressEvent) error {
	if client == nil {
		return nil
	}

	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal task progress message: %w", err)
	}

	return client.Publish(ctx, ChannelTaskProgress, message).Err()
}
