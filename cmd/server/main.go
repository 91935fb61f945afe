package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "github.com/goonthug/sport-kursach/internal/api/http"
	"github.com/goonthug/sport-kursach/internal/chat"
	"github.com/goonthug/sport-kursach/internal/config"
	"github.com/goonthug/sport-kursach/internal/jobs"
	"github.com/goonthug/sport-kursach/internal/logger"
	"github.com/goonthug/sport-kursach/internal/repository/postgres"
	"github.com/goonthug/sport-kursach/internal/scheduler"
	"github.com/goonthug/sport-kursach/internal/security"
	"github.com/goonthug/sport-kursach/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting SportRent Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize chat broker: in-process by default, RabbitMQ when a
	// broker URL is configured.
	var broker chat.Broker
	if cfg.Broker.URL != "" {
		broker, err = chat.NewAMQPBroker(cfg.Broker.URL, cfg.Broker.Exchange)
		if err != nil {
			logger.Error("Failed to connect to chat broker", "error", err)
			log.Fatalf("Failed to connect to chat broker: %v", err)
		}
	} else {
		logger.Info("Using in-process chat broker")
		broker = chat.NewMemoryBroker()
	}
	defer broker.Close()

	notifier := chat.NewNotifier(broker)

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.SMTP)
	identitySvc := service.NewIdentityService(store.UserRepository)
	availability := service.NewAvailabilityChecker(store.RentalRepository)
	payout := service.NewPayoutCalculator(
		store.InventoryRepository,
		store.AgreementRepository,
		store.BankAccountRepository,
		store.UserRepository,
	)
	rentalSvc := service.NewRentalService(
		store,
		store.RentalRepository,
		store.InventoryRepository,
		store.PaymentRepository,
		store.UserRepository,
		availability,
		payout,
		emailSvc,
		notifier,
	)
	chatSvc := service.NewChatService(
		store.RentalRepository,
		store.InventoryRepository,
		store.UserRepository,
		store.ChatMessageRepository,
	)

	// Initialize HTTP handlers
	rentalHandler := httpapi.NewRentalHandler(rentalSvc)
	chatHandler := httpapi.NewChatHandler(chatSvc, rentalSvc, notifier, broker, cfg.Chat)
	router := httpapi.NewRouter(tokenManager, identitySvc, rentalHandler, chatHandler)

	// Initialize scheduler (runs in-process alongside the server)
	jobRunner := jobs.NewJobRunner(store, notifier, cfg)
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
