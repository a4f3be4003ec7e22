package domains

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sitelaunch/sitelaunch/api/internal/database"
	domainsvc "github.com/sitelaunch/sitelaunch/api/internal/domains"
	"github.com/sitelaunch/sitelaunch/api/internal/models"
	"github.com/sitelaunch/sitelaunch/api/pkg/response"
)

// CreateCustomRequest represents the custom domain registration body
type CreateCustomRequest struct {
	SessionID string `json:"sessionId"`
	Domain    string `json:"domain"`
}

// POST /api/domains/custom (protected)
func CreateCustom(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return response.Unauthorized(c, "Invalid token")
	}

	var req CreateCustomRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.SessionID == "" || req.Domain == "" {
		return response.BadRequest(c, "Session ID and domain are required")
	}

	var session models.WizardSession
	if err := database.GetDatabase().
		Where("id = ? AND userId = ?", req.SessionID, user.ID).
		First(&session).Error; err != nil {
		return response.NotFound(c, "Session not found")
	}

	result, err := domainsvc.Default().CreateCustomDomain(c.Context(), &session, req.Domain)
	if err != nil {
		return mapDomainError(c, err)
	}

	return response.Success(c, result)
}
