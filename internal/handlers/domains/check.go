// Package domains exposes domain allocation over HTTP. Allocation errors
// map onto status codes: validation 400, conflicts 409, proxy failures 502.
package domains

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sitelaunch/sitelaunch/api/internal/apperrors"
	domainsvc "github.com/sitelaunch/sitelaunch/api/internal/domains"
	"github.com/sitelaunch/sitelaunch/api/internal/models"
	"github.com/sitelaunch/sitelaunch/api/pkg/response"
)

// CheckRequest represents the availability check request body
type CheckRequest struct {
	Subdomain string `json:"subdomain"`
}

// POST /api/domains/check (protected)
func CheckAvailability(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return response.Unauthorized(c, "Invalid token")
	}

	var req CheckRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Subdomain == "" {
		return response.BadRequest(c, "Subdomain is required")
	}

	availability, err := domainsvc.Default().CheckAvailability(c.Context(), req.Subdomain, user.ID)
	if err != nil {
		return mapDomainError(c, err)
	}

	return response.Success(c, availability)
}

func mapDomainError(c *fiber.Ctx, err error) error {
	switch {
	case apperrors.IsValidation(err):
		return response.BadRequest(c, err.Error())
	case apperrors.IsConflict(err):
		return response.Conflict(c, err.Error())
	case apperrors.IsExternalProcess(err):
		return response.BadGateway(c, err.Error())
	default:
		return response.InternalServerError(c, "Internal server error")
	}
}
