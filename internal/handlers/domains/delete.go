package domains

import (
	"github.com/gofiber/fiber/v2"

	domainsvc "github.com/sitelaunch/sitelaunch/api/internal/domains"
	"github.com/sitelaunch/sitelaunch/api/internal/models"
	"github.com/sitelaunch/sitelaunch/api/pkg/response"
)

// DELETE /api/domains/:domainId (protected)
func DeleteDomain(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return response.Unauthorized(c, "Invalid token")
	}

	id := c.Params("domainId")
	if id == "" {
		return response.BadRequest(c, "Domain ID is required")
	}

	domain, err := domainsvc.Default().GetDomain(c.Context(), id)
	if err != nil {
		return response.NotFound(c, "Domain not found")
	}
	if domain.UserID != user.ID {
		return response.NotFound(c, "Domain not found")
	}

	if err := domainsvc.Default().DeleteDomain(c.Context(), id); err != nil {
		return response.InternalServerError(c, "Failed to delete domain")
	}

	return response.SuccessWithMessage(c, "Domain deleted", nil)
}
