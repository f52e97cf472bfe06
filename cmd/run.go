package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"croupier/api"
	"croupier/config"
	"croupier/database"
	"croupier/events"
	"croupier/repository"
	"croupier/scheduler"
	"croupier/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting croupier...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	walletService := service.NewWalletService(uowFactory)
	betService := service.NewBetService(uowFactory)
	roundService := service.NewRoundService(uowFactory, cfg.Location())
	roomService := service.NewRoomService(uowFactory)
	log.Info("Services initialized successfully")

	// Start the round scheduler
	roomRepo := repository.NewRoomRepository(db)
	sched := scheduler.New(roundService, roomRepo, cfg.TickInterval)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Start the HTTP server
	server := api.NewServer(cfg.ListenAddr, walletService, betService, roundService, roomService)
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	log.WithField("environment", cfg.Environment).Info("Croupier is running")

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	// Cleanup resources
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}
	if err := sched.Stop(); err != nil {
		log.WithError(err).Error("Error stopping scheduler")
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}
