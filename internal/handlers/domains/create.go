package domains

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sitelaunch/sitelaunch/api/internal/database"
	domainsvc "github.com/sitelaunch/sitelaunch/api/internal/domains"
	"github.com/sitelaunch/sitelaunch/api/internal/models"
	"github.com/sitelaunch/sitelaunch/api/pkg/response"
)

// CreateSubdomainRequest represents the subdomain creation request body
type CreateSubdomainRequest struct {
	SessionID string `json:"sessionId"`
	Subdomain string `json:"subdomain"`
}

// POST /api/domains (protected)
func CreateSubdomain(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return response.Unauthorized(c, "Invalid token")
	}

	var req CreateSubdomainRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.SessionID == "" || req.Subdomain == "" {
		return response.BadRequest(c, "Session ID and subdomain are required")
	}

	var session models.WizardSession
	if err := database.GetDatabase().
		Where("id = ? AND userId = ?", req.SessionID, user.ID).
		First(&session).Error; err != nil {
		return response.NotFound(c, "Session not found")
	}

	domain, err := domainsvc.Default().CreateGeneratedSubdomain(c.Context(), &session, req.Subdomain)
	if err != nil {
		return mapDomainError(c, err)
	}

	return response.Success(c, domain)
}
