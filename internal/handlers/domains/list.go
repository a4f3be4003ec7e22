package domains

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sitelaunch/sitelaunch/api/internal/database"
	domainsvc "github.com/sitelaunch/sitelaunch/api/internal/domains"
	"github.com/sitelaunch/sitelaunch/api/internal/models"
	"github.com/sitelaunch/sitelaunch/api/pkg/response"
)

// GET /api/domains?sessionId= (protected)
func ListBySession(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return response.Unauthorized(c, "Invalid token")
	}

	sessionID := c.Query("sessionId")
	if sessionID == "" {
		return response.BadRequest(c, "Session ID is required")
	}

	var session models.WizardSession
	if err := database.GetDatabase().
		Where("id = ? AND userId = ?", sessionID, user.ID).
		First(&session).Error; err != nil {
		return response.NotFound(c, "Session not found")
	}

	list, err := domainsvc.Default().ListBySession(c.Context(), sessionID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list domains")
	}

	return response.Success(c, fiber.Map{
		"domains": list,
	})
}
