// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	gameshowapi "github.com/gameshow-bot/gameshow-service/gameshow/api"
	"github.com/gameshow-bot/gameshow-service/gameshow/service"
	"github.com/gameshow-bot/gameshow-service/gameshow/slack"
	"github.com/gameshow-bot/gameshow-service/gameshow/store"
	"github.com/gameshow-bot/gameshow-service/shared/api"
	"github.com/gameshow-bot/gameshow-service/shared/config"
	mongodbu "github.com/gameshow-bot/gameshow-service/shared/mongodb"
)

func main() {
	// --- 1. Load Configuration ---
	if err := godotenv.Load(); err == nil {
		log.Println("INFO: Loaded environment overrides from .env")
	}
	cfg, err := config.LoadGameshowConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- 2. Connect to MongoDB ---
	mongoClient, err := mongodbu.NewClient(cfg.MongoDBConnStr, cfg.MongoDBDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("ERROR: Failed to disconnect from MongoDB: %v", err)
		}
	}()

	// --- 3. Initialize Data Store ---
	gamesCollection := mongoClient.Collection(cfg.MongoDBGamesCollection)
	gameStore := store.NewGameStore(gamesCollection)

	// --- 4. Initialize Messaging Client ---
	slackClient := slack.NewClient(cfg.SlackAPIBaseURL, cfg.BotUserAccessToken, api.NewDefaultHTTPClient())

	// --- 5. Initialize Business Logic Service ---
	gameService := service.NewGameService(gameStore, slackClient)

	// --- 6. Setup HTTP Server and Register Routes ---
	webhookHandlers := gameshowapi.NewWebhookHandlers(gameService, cfg.VerificationToken)
	baseServer := api.NewBaseServer(cfg.ListenAddr, log.Default())
	webhookHandlers.RegisterRoutes(baseServer.Router)

	// --- 7. Start HTTP Server ---
	go func() {
		if err := baseServer.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed to start: %v", err)
		}
	}()

	// --- 8. Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("INFO: Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := baseServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP server graceful shutdown failed: %v", err)
	}
	log.Println("INFO: Server gracefully stopped.")
}
