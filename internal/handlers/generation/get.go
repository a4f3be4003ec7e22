package generation

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sitelaunch/sitelaunch/api/internal/generator"
	"github.com/sitelaunch/sitelaunch/api/internal/models"
	"github.com/sitelaunch/sitelaunch/api/pkg/response"
)

// GET /api/generation/:taskId (protected)
func GetTask(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return response.Unauthorized(c, "Invalid token")
	}

	taskID := c.Params("taskId")
	if taskID == "" {
		return response.BadRequest(c, "Task ID is required")
	}

	task, err := generator.Default().GetTaskStatus(c.Context(), taskID, user.ID)
	if err != nil {
		return response.NotFound(c, "Task not found")
	}

	return response.Success(c, task)
}
