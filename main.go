// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"room-booking/cmd"
	"room-booking/internal/data/repository"
	"room-booking/internal/jobs"
	"room-booking/internal/usecase"
	"room-booking/internal/wire"
	"room-booking/pkg/database"
	"room-booking/pkg/mq"
	"room-booking/pkg/utils"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.Name, config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("payment_provider", config.Payment.Provider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	repos := repository.NewRepository(db, logger)

	provider, err := wire.NewProvider(config.Payment, logger)
	if err != nil {
		logger.Fatal("Failed to initialize payment provider", zap.Error(err))
	}

	// Booking events are optional
	var events usecase.EventPublisher
	if config.Broker.URL != "" {
		publisher, err := mq.NewPublisher(config.Broker.URL, config.Broker.Exchange)
		if err != nil {
			logger.Fatal("Failed to connect to message broker", zap.Error(err))
		}
		defer publisher.Close()
		events = publisher
		logger.Info("Publishing booking events", zap.String("exchange", config.Broker.Exchange))
	}

	// Wire all dependencies
	app := wire.Wiring(repos, db, provider, events, config, logger)

	if config.Jobs.Enabled {
		scheduler, err := jobs.NewScheduler(config.Jobs.Schedule, app.Service.Booking, logger)
		if err != nil {
			logger.Fatal("Failed to schedule jobs", zap.Error(err))
		}
		scheduler.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cmd.ShutdownTimeout)
			defer cancel()
			scheduler.Stop(stopCtx)
		}()
	}

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server error", zap.Error(err))
	}
}
