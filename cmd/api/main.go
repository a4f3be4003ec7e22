package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/sitelaunch/sitelaunch/api/internal/config"
	"github.com/sitelaunch/sitelaunch/api/internal/database"
	"github.com/sitelaunch/sitelaunch/api/internal/domains"
	"github.com/sitelaunch/sitelaunch/api/internal/generator"
	"github.com/sitelaunch/sitelaunch/api/internal/nginx"
	"github.com/sitelaunch/sitelaunch/api/internal/redis"
	"github.com/sitelaunch/sitelaunch/api/internal/routes"
	"github.com/sitelaunch/sitelaunch/api/internal/websocket"
	"github.com/sitelaunch/sitelaunch/api/pkg/builder"
	"github.com/sitelaunch/sitelaunch/api/pkg/command"
	"github.com/sitelaunch/sitelaunch/api/pkg/docker"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize Redis
	if err := redis.Initialize(cfg); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Wire the provisioning stack
	runner := command.NewExecRunner()
	runtime := docker.NewClient(runner, cfg.DockerNetwork)
	executor := builder.NewExecutor(runner, cfg.BuilderScript, cfg.BuilderWorkdir,
		time.Duration(cfg.BuildTimeoutMin)*time.Minute)
	proxy := nginx.NewManager(runner, cfg.ProxyConfigDir, cfg.ProxyContainer,
		cfg.WildcardCertPath, cfg.WildcardCertKeyPath)

	db := database.GetDatabase()
	domains.Initialize(db, cfg, proxy)
	generator.Initialize(db, cfg, runtime, executor, domains.Default())

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CorsOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: true,
	}))

	// Setup routes
	routes.Setup(app, cfg)

	// Initialize WebSocket hub
	websocket.GetHub()

	// Start Redis subscriber for progress fan-out
	go websocket.StartRedisSubscriber(cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"status":  "error",
		"message": err.Error(),
	})
}
