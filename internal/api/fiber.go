// Package api constructs the Fiber application.
package api

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/imaginify/user-service/graphql"
	"github.com/imaginify/user-service/internal/config"
	"github.com/imaginify/user-service/internal/services"
	"github.com/imaginify/user-service/restapi"
	"github.com/imaginify/user-service/restapi/modules/clerk"
)

// NewFiberApp creates and configures a Fiber app with REST and GraphQL routes
func NewFiberApp(cfg config.Config, store services.UserStore, clerkClient *clerk.Client) *fiber.App {
	schema, err := graphql.CreateSchema(store)
	if err != nil {
		log.Fatalf("Failed to create GraphQL schema: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:     "user-service API v1.0",
		BodyLimit:   1 * 1024 * 1024, // 1MB; webhook payloads are small
		ReadTimeout: 60 * time.Second,
	})

	// Middleware
	app.Use(fiberrecover.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		AllowMethods:     "GET, POST, HEAD, PUT, DELETE, PATCH, OPTIONS",
	}))

	app.Use(logger.New())

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	restapi.SetupRoutes(app, store, clerkClient, schema)

	return app
}
