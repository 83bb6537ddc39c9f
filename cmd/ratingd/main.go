// Package main provides the entry point for the rating daemon.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/skill-tracker/internal/config"
	"github.com/yourusername/skill-tracker/internal/database"
	"github.com/yourusername/skill-tracker/internal/datasource"
	"github.com/yourusername/skill-tracker/internal/health"
	"github.com/yourusername/skill-tracker/internal/logger"
	"github.com/yourusername/skill-tracker/internal/metrics"
	"github.com/yourusername/skill-tracker/internal/repository"
	"github.com/yourusername/skill-tracker/internal/scheduler"
	"github.com/yourusername/skill-tracker/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
	}).Info("Skill Tracker rating daemon starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection and schema
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	appLog.Info("Database connection established")

	// Initialize repositories and services
	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create repositories")
	}

	ratingSvc, err := service.NewRatingService(repos, cfg.Rating, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create rating service")
	}

	feedLog := log.New(os.Stdout, "feed: ", log.LstdFlags)
	httpClient := datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfig{
		Timeout:           cfg.GetFeedTimeout(),
		MaxRetries:        cfg.Feed.RetryAttempts,
		RetryWaitMin:      100 * time.Millisecond,
		RetryWaitMax:      10 * time.Second,
		RateLimit:         cfg.Feed.RateLimit,
		CircuitBreakerMax: 5,
	}, feedLog)
	defer httpClient.Close()

	factory := datasource.NewFactory(cfg, feedLog)
	src, err := factory.NewDataSource(cfg.Feed, httpClient)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create data source")
	}

	ingestionSvc, err := service.NewIngestionService(
		[]datasource.DataSource{src},
		repos.Player,
		repos.Game,
		service.NewGameNormalizer(appLog),
		appLog,
		cfg.Feed.BatchSize,
	)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create ingestion service")
	}

	// Initialize metrics
	metrics.InitRegistry()
	if cfg.Metrics.Enabled {
		startMetricsServer(cfg, appLog)
	}

	// Start health check server
	healthServer := health.NewServer(health.Config{
		ServiceName: "skill-tracker",
		Logger:      appLog,
		DB:          db,
		Ratings:     ratingSvc,
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	// Connect the live result stream if enabled
	var stream *datasource.ResultStream
	if cfg.Feed.StreamEnabled {
		stream, err = factory.NewResultStreamFromConfig(cfg.Feed)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to create result stream")
		}
		stream.AddHandler(ingestionSvc.StreamHandler(ctx, cfg.Feed.Source))
		if err := stream.Connect(ctx); err != nil {
			appLog.WithError(err).Fatal("Failed to connect result stream")
		}
		if err := stream.Subscribe(ctx); err != nil {
			appLog.WithError(err).Fatal("Failed to subscribe to result stream")
		}
		defer stream.Close()
		appLog.WithField("url", cfg.Feed.StreamURL).Info("Live result stream connected")
	}

	// Schedule periodic recompute and feed polling
	sched := scheduler.NewScheduler(ratingSvc, ingestionSvc, appLog)
	if cfg.Scheduler.Enabled {
		if err := sched.ScheduleRecompute(cfg.Scheduler.RecomputeCron); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule recompute job")
		}
		if !cfg.Feed.StreamEnabled {
			if err := sched.ScheduleFeedPolling(cfg.Scheduler.PollIntervalSeconds, cfg.Feed.Source, 1); err != nil {
				appLog.WithError(err).Fatal("Failed to schedule feed polling job")
			}
		}
		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
		defer sched.Stop()
	}

	// Run an initial recompute so queries are served from a warm base
	if err := ratingSvc.Recompute(ctx); err != nil {
		appLog.WithError(err).Error("Initial rating recompute failed")
	}

	healthServer.SetReady(true)
	appLog.WithFields(logrus.Fields{
		"scheduler": cfg.Scheduler.Enabled,
		"stream":    cfg.Feed.StreamEnabled,
		"source":    cfg.Feed.Source,
	}).Info("Rating daemon is running")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	appLog.WithField("signal", sig).Info("Shutdown signal received")
	healthServer.SetReady(false)
	cancel()
	appLog.Info("Rating daemon stopped")
}

func startMetricsServer(cfg *config.Config, appLog *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		appLog.WithFields(logrus.Fields{
			"port": cfg.Metrics.Port,
			"path": cfg.Metrics.Path,
		}).Info("Metrics server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.WithError(err).Error("Metrics server error")
		}
	}()
}
