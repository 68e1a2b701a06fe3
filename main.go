// package main provides the entry point for the user-service, the backend
// slice that keeps application user records in sync with the Clerk
// authentication provider and serves them over REST and GraphQL.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/imaginify/user-service/database"
	"github.com/imaginify/user-service/internal/api"
	"github.com/imaginify/user-service/internal/config"
	"github.com/imaginify/user-service/internal/services"
	"github.com/imaginify/user-service/restapi/modules/clerk"
	"github.com/imaginify/user-service/util"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(util.GetEnvDefault("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// The connector is lazy: the first repository call establishes and
	// memoizes the connection.
	connector := database.NewConnector(database.ConfigFromEnv())
	store := services.NewArangoUserStore(connector, cfg.DefaultCredits)
	clerkClient := clerk.NewClientFromEnv()

	app := api.NewFiberApp(cfg, store, clerkClient)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server")
		_ = app.Shutdown()
	}()

	log.Printf("Starting server on port %d", cfg.Port)
	log.Printf("Webhook endpoint available at /api/v1/webhooks/clerk")
	log.Printf("GraphQL endpoint available at /api/v1/graphql")
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
