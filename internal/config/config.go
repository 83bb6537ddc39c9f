// Package config provides configuration management for the Skill Tracker application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Rating    RatingConfig    `mapstructure:"rating" validate:"required"`
	Feed      FeedConfig      `mapstructure:"feed" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// RatingConfig represents the whole-history rating model configuration
type RatingConfig struct {
	// W2 is the Wiener-process variance rate in Elo points squared per day.
	W2                   float64 `mapstructure:"w2" validate:"required,gt=0"`
	MaxIterations        int     `mapstructure:"max_iterations" validate:"required,gt=0"`
	ConvergenceTolerance float64 `mapstructure:"convergence_tolerance" validate:"required,gt=0"`
	HessianEpsilon       float64 `mapstructure:"hessian_epsilon" validate:"gte=0,lt=1"`
	// Epoch is the date game day numbers are counted from (YYYY-MM-DD).
	Epoch           string `mapstructure:"epoch" validate:"required,datetime=2006-01-02"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheMaxSize    int    `mapstructure:"cache_max_size" validate:"required,gt=0"`
}

// FeedConfig represents result-feed ingestion configuration. For the CSV
// source APIURL holds a local file path rather than a URL.
type FeedConfig struct {
	APIURL         string  `mapstructure:"api_url" validate:"required"`
	StreamURL      string  `mapstructure:"stream_url"`
	APIKey         string  `mapstructure:"api_key"`
	Source         string  `mapstructure:"source" validate:"required"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts  int     `mapstructure:"retry_attempts" validate:"gte=0"`
	BatchSize      int     `mapstructure:"batch_size" validate:"required,gt=0"`
	StreamEnabled  bool    `mapstructure:"stream_enabled"`
}

// SchedulerConfig represents the periodic recompute configuration
type SchedulerConfig struct {
	Enabled             bool   `mapstructure:"enabled"`
	RecomputeCron       string `mapstructure:"recompute_cron" validate:"required"`
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRatingEpoch returns the parsed rating epoch date
func (c *Config) GetRatingEpoch() (time.Time, error) {
	epoch, err := time.Parse("2006-01-02", c.Rating.Epoch)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse rating epoch: %w", err)
	}
	return epoch, nil
}

// GetCacheTTL returns the rating query cache TTL as a duration
func (c *Config) GetCacheTTL() time.Duration {
	return time.Duration(c.Rating.CacheTTLSeconds) * time.Second
}

// GetFeedTimeout returns the feed HTTP request timeout as a duration
func (c *Config) GetFeedTimeout() time.Duration {
	return time.Duration(c.Feed.TimeoutSeconds) * time.Second
}
