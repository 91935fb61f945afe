package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/goonthug/sport-kursach/internal/chat"
	"github.com/goonthug/sport-kursach/internal/config"
	"github.com/goonthug/sport-kursach/internal/jobs"
	"github.com/goonthug/sport-kursach/internal/logger"
	"github.com/goonthug/sport-kursach/internal/repository/postgres"
	"github.com/goonthug/sport-kursach/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'activate-started-rentals', 'notify-overdue-rentals', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting SportRent Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	// Notifications from a separate cron process must go through the
	// shared broker; without one, reminders are logged but not pushed.
	var broker chat.Broker
	if cfg.Broker.URL != "" {
		broker, err = chat.NewAMQPBroker(cfg.Broker.URL, cfg.Broker.Exchange)
		if err != nil {
			logger.Error("Failed to connect to chat broker", "error", err)
			log.Fatalf("Failed to connect to chat broker: %v", err)
		}
	} else {
		logger.Warn("No broker configured; overdue reminders will not reach connected clients")
		broker = chat.NewMemoryBroker()
	}
	defer broker.Close()

	jobRunner := jobs.NewJobRunner(store, chat.NewNotifier(broker), cfg)

	// Handle run-once mode
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		switch *runOnce {
		case "activate-started-rentals":
			jobRunner.ActivateStartedRentals()
		case "notify-overdue-rentals":
			jobRunner.NotifyOverdueRentals()
		case "all-nightly":
			jobRunner.RunAllNightlyJobs()
		default:
			log.Fatalf("Unknown job: %s", *runOnce)
		}
		logger.Info("Job finished, exiting")
		return
	}

	// Start the scheduler
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig.String())

	sched.Stop()
	logger.Info("Cronjob runner stopped")
}
