// Package generation exposes the provisioning pipeline over HTTP. Starting
// a generation returns a task handle immediately; clients follow it via
// polling or the WebSocket progress stream.
package generation

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sitelaunch/sitelaunch/api/internal/apperrors"
	"github.com/sitelaunch/sitelaunch/api/internal/generator"
	"github.com/sitelaunch/sitelaunch/api/internal/models"
	"github.com/sitelaunch/sitelaunch/api/pkg/response"
)

// StartRequest represents the generation start request body
type StartRequest struct {
	SessionID string `json:"sessionId"`
}

// POST /api/generation (protected)
func Start(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return response.Unauthorized(c, "Invalid token")
	}

	var req StartRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.SessionID == "" {
		return response.BadRequest(c, "Session ID is required")
	}

	task, err := generator.Default().StartGeneration(c.Context(), req.SessionID, user.ID)
	if err != nil {
		if apperrors.IsValidation(err) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to start generation")
	}

	return response.Success(c, fiber.Map{
		"taskId":   task.ID,
		"status":   task.Status,
		"progress": task.Progress,
	})
}
