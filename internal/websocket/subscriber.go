package websocket

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/sitelaunch/sitelaunch/api/internal/config"
	appredis "github.com/sitelaunch/sitelaunch/api/internal/redis"
)

// StartRedisSubscriber listens on the task-progress channel and fans
// events out to the WebSocket rooms. Every API instance runs one of
// these, so watchers get updates regardless of which instance runs the
// generation.
func StartRedisSubscriber(cfg *config.Config) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisHost + ":" + cfg.RedisPort,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[WebSocket] Failed to connect to Redis for subscriber: %v", err)
		return
	}

	pubsub := client.Subscribe(ctx, appredis.ChannelTaskProgress)
	defer pubsub.Close()

	log.Printf("[WebSocket] Subscribed to Redis channel: %s", appredis.ChannelTaskProgress)

	hub := GetHub()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			log.Printf("[WebSocket] Error receiving Redis message: %v", err)
			continue
		}

		var event appredis.TaskProgressEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[WebSocket] Error parsing Redis message: %v", err)
			continue
		}

		if event.TaskID != "" {
			hub.BroadcastToRoom(TaskRoom(event.TaskID), "task_progress", event)
		}
	}
}
