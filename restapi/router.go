package restapi

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/imaginify/user-service/internal/services"
	"github.com/imaginify/user-service/restapi/modules/clerk"
	"github.com/imaginify/user-service/restapi/modules/users"
	"github.com/imaginify/user-service/restapi/modules/webhook"
)

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
func SetupRoutes(app *fiber.App, store services.UserStore, clerkClient *clerk.Client, schema graphql.Schema) {
	// API Group /api/v1
	api := app.Group("/api/v1")

	// GraphQL Route
	api.Post("/graphql", GraphQLHandler(schema))

	// Provider webhook ingestion
	api.Post("/webhooks/clerk", webhook.Handle(store, clerkClient))

	// User Management
	userGroup := api.Group("/users")
	userGroup.Get("/", users.ListUsers(store))
	userGroup.Post("/", users.CreateUser(store))
	userGroup.Get("/:clerkId", users.GetUser(store))
	userGroup.Put("/:clerkId", users.UpdateUser(store))
	userGroup.Delete("/:clerkId", users.DeleteUser(store))
	userGroup.Post("/:key/credits", users.AddCredits(store))

	log.Println("API routes initialized successfully")
}
