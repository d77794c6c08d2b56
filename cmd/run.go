package cmd

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"derby/bot"
	"derby/config"
	"derby/database"
	"derby/events"
	"derby/repository"
	"derby/scheduler"
	"derby/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting derby bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Println("Initializing services...")
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ledgerService := service.NewLedgerService(uowFactory, cfg)
	racerService := service.NewRacerService(uowFactory)
	raceService := service.NewRaceService(uowFactory)
	settingsService := service.NewGuildSettingsService(uowFactory, cfg)
	payoutResolver := service.NewPayoutResolver(uowFactory)
	retirementEngine := service.NewRetirementEngine(uowFactory, cfg, rng)
	log.Println("Services initialized successfully")

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	discordBot, err := bot.New(cfg, ledgerService, racerService, raceService, settingsService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Initialize race orchestrator; the bot doubles as notifier and guild
	// lister
	streamer := scheduler.NewCommentaryStreamer(uowFactory)
	orchestrator := scheduler.New(uowFactory, payoutResolver, retirementEngine, streamer, discordBot, discordBot, cfg, rng)
	orchestrator.Start(ctx)
	log.Println("Race orchestrator started")

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	orchestrator.Stop()

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
