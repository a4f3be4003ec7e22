package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/sitelaunch/sitelaunch/api/internal/config"
	"github.com/sitelaunch/sitelaunch/api/internal/handlers/auth"
	domainhandlers "github.com/sitelaunch/sitelaunch/api/internal/handlers/domains"
	"github.com/sitelaunch/sitelaunch/api/internal/handlers/generation"
	"github.com/sitelaunch/sitelaunch/api/internal/middleware"
	wshandler "github.com/sitelaunch/sitelaunch/api/internal/websocket"
)

func Setup(app *fiber.App, cfg *config.Config) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// WebSocket
	api.Use("/socket", wshandler.UpgradeMiddleware)
	api.Get("/socket", websocket.New(wshandler.Handler))

	authRoutes := api.Group("/auth")
	{
		// Auth - public
		authRoutes.Post("/login", auth.Login)

		// Auth - protected (JWT)
		authRoutes.Get("/user", middleware.AuthMiddleware(cfg), auth.GetUser)
	}

	// Generation - protected (JWT)
	generationRoutes := api.Group("/generation", middleware.AuthMiddleware(cfg))
	{
		generationRoutes.Post("/", generation.Start)
		generationRoutes.Get("/", generation.ListActive)
		generationRoutes.Get("/:taskId", generation.GetTask)
	}

	// Domains - protected (JWT)
	domainRoutes := api.Group("/domains", middleware.AuthMiddleware(cfg))
	{
		domainRoutes.Post("/check", domainhandlers.CheckAvailability)
		domainRoutes.Post("/", domainhandlers.CreateSubdomain)
		domainRoutes.Post("/custom", domainhandlers.CreateCustom)
		domainRoutes.Get("/", domainhandlers.ListBySession)
		domainRoutes.Delete("/:domainId", domainhandlers.DeleteDomain)
	}
}
