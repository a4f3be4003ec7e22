package websocket

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/sitelaunch/sitelaunch/api/internal/config"
	"github.com/sitelaunch/sitelaunch/api/internal/database"
	"github.com/sitelaunch/sitelaunch/api/internal/middleware"
	"github.com/sitelaunch/sitelaunch/api/internal/models"
)

// JoinTaskPayload identifies a generation task to watch
type JoinTaskPayload struct {
	TaskID string `json:"taskId"`
}

// TaskRoom builds the room ID that carries progress for a task
func TaskRoom(taskID string) string {
	return fmt.Sprintf("task:%s", taskID)
}

// UpgradeMiddleware checks if the request is a WebSocket upgrade request
func UpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler handles WebSocket connections. Clients authenticate with a JWT
// in the query string, then subscribe to generation tasks they own.
func Handler(c *websocket.Conn) {
	cfg := config.Get()
	hub := GetHub()

	token := c.Query("token")
	if token == "" {
		c.WriteJSON(map[string]interface{}{
			"event": "error",
			"payload": map[string]string{
				"message": "Authentication required",
			},
		})
		c.Close()
		return
	}

	claims, err := middleware.ParseJWT(token, cfg.JWTSecret)
	if err != nil {
		c.WriteJSON(map[string]interface{}{
			"event": "error",
			"payload": map[string]string{
				"message": "Invalid token",
			},
		})
		c.Close()
		return
	}

	client := &Client{
		Conn:   c,
		UserID: claims.UserID,
		Rooms:  make(map[string]bool),
	}

	hub.Register(client)
	defer hub.Unregister(client)

	if err := hub.SendToClient(client, "connected", map[string]string{
		"userId": claims.UserID,
	}); err != nil {
		log.Printf("[WebSocket] Error sending connected event: %v", err)
	}

	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WebSocket] Error reading message: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			log.Printf("[WebSocket] Error parsing message: %v", err)
			continue
		}

		switch msg.Event {
		case "join_task":
			var payload JoinTaskPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				hub.SendToClient(client, "error", map[string]string{
					"message": "Invalid payload",
				})
				continue
			}
			handleJoinTask(client, hub, claims.UserID, payload)

		case "leave_task":
			var payload JoinTaskPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				continue
			}
			hub.LeaveRoom(client, TaskRoom(payload.TaskID))

		default:
			log.Printf("[WebSocket] Unknown event: %s", msg.Event)
		}
	}
}

func handleJoinTask(client *Client, hub *Hub, userID string, payload JoinTaskPayload) {
	if payload.TaskID == "" {
		hub.SendToClient(client, "error", map[string]string{
			"message": "Missing required parameters",
		})
		return
	}

	// Only the task owner may watch its progress
	var task models.GenerationTask
	if err := database.GetDatabase().
		Where("id = ? AND userId = ?", payload.TaskID, userID).
		First(&task).Error; err != nil {
		hub.SendToClient(client, "error", map[string]string{
			"message": "Task not found",
		})
		return
	}

	hub.JoinRoom(client, TaskRoom(task.ID))

	// Send the current state right away so the client does not wait for
	// the next transition
	hub.SendToClient(client, "task_progress", map[string]interface{}{
		"taskId":      task.ID,
		"status":      task.Status,
		"progress":    task.Progress,
		"currentStep": task.CurrentStep,
	})
}
