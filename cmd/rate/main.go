// Package main provides the entry point for the batch rating CLI tool.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/skill-tracker/internal/config"
	"github.com/yourusername/skill-tracker/internal/database"
	"github.com/yourusername/skill-tracker/internal/datasource"
	"github.com/yourusername/skill-tracker/internal/repository"
	"github.com/yourusername/skill-tracker/internal/service"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		csvPath    = flag.String("csv", "", "Ingest results from a local CSV file before rating")
		source     = flag.String("source", "", "Override the configured feed source name")
		startDate  = flag.String("start-date", "", "Ingestion window start (YYYY-MM-DD)")
		endDate    = flag.String("end-date", "", "Ingestion window end (YYYY-MM-DD)")
		skipIngest = flag.Bool("skip-ingest", false, "Rate the stored games without fetching new results")
	)
	flag.Parse()

	appLog := newLogger()
	ctx := context.Background()

	cfg := loadConfigWithSecrets(*configPath, appLog)
	if level, err := logrus.ParseLevel(cfg.App.LogLevel); err == nil {
		appLog.SetLevel(level)
	}
	if *csvPath != "" {
		cfg.Feed.Source = string(datasource.CSVSourceType)
		cfg.Feed.APIURL = *csvPath
	}
	if *source != "" {
		cfg.Feed.Source = *source
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.Fatalf("Failed to create repositories: %v", err)
	}

	ratingSvc, err := service.NewRatingService(repos, cfg.Rating, appLog)
	if err != nil {
		appLog.Fatalf("Failed to create rating service: %v", err)
	}

	if !*skipIngest {
		runIngestion(ctx, cfg, repos, appLog, *startDate, *endDate)
	}

	start := time.Now()
	if err := ratingSvc.Recompute(ctx); err != nil {
		appLog.WithError(err).Fatal("Rating recompute failed")
	}
	appLog.WithField("duration", time.Since(start).String()).Info("Rating recompute completed")
}

func newLogger() *logrus.Logger {
	appLog := logrus.New()
	appLog.SetFormatter(&logrus.JSONFormatter{})
	return appLog
}

func loadConfigWithSecrets(path string, appLog *logrus.Logger) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		appLog.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			appLog.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			appLog.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		appLog.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func runIngestion(ctx context.Context, cfg *config.Config, repos *repository.Repositories, appLog *logrus.Logger, startOverride, endOverride string) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -7)
	if startOverride != "" {
		parsed, err := time.Parse("2006-01-02", startOverride)
		if err != nil {
			appLog.Fatalf("Invalid start date: %v", err)
		}
		start = parsed
	}
	if endOverride != "" {
		parsed, err := time.Parse("2006-01-02", endOverride)
		if err != nil {
			appLog.Fatalf("Invalid end date: %v", err)
		}
		end = parsed
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
		appLog.Fatalf("Failed to create data source: %v", err)
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
		appLog.Fatalf("Failed to create ingestion service: %v", err)
	}

	stats, err := ingestionSvc.IngestHistorical(ctx, src.Name(), start, end)
	if err != nil {
		appLog.WithError(err).Fatal("Ingestion failed")
	}
	appLog.Info(stats.String())
}
