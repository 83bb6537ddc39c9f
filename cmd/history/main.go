// Package main provides a CLI for querying stored rating histories.
package main

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yourusername/skill-tracker/internal/config"
	"github.com/yourusername/skill-tracker/internal/database"
	"github.com/yourusername/skill-tracker/internal/repository"
	"github.com/yourusername/skill-tracker/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
	ratingSvc  *service.RatingService
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(atCmd)
	rootCmd.AddCommand(currentCmd)
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "history",
	Short: "Query stored rating histories",
	Long:  `Displays per-player rating histories and interpolated rating estimates computed by the skill tracker.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var showCmd = &cobra.Command{
	Use:   "show [player]",
	Short: "Show a player's full rating history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		history, err := ratingSvc.RatingHistory(ctx, args[0])
		if err != nil {
			return err
		}
		if len(history) == 0 {
			fmt.Printf("No rating history for %s\n", args[0])
			return nil
		}

		epoch, err := cfg.GetRatingEpoch()
		if err != nil {
			return err
		}

		fmt.Printf("Rating history for %s:\n\n", args[0])
		fmt.Printf("%-12s %10s %14s\n", "DATE", "ELO", "UNCERTAINTY")
		for _, entry := range history {
			date := epoch.AddDate(0, 0, entry.Day)
			fmt.Printf("%-12s %10.1f %14.1f\n", date.Format("2006-01-02"), entry.Elo, entry.Uncertainty)
		}
		return nil
	},
}

var atCmd = &cobra.Command{
	Use:   "at [player] [date]",
	Short: "Estimate a player's rating on an arbitrary date",
	Long: `Rebuilds the rating base from stored games and reports the interpolated
rating estimate for the given date (YYYY-MM-DD or a day number).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		day, err := parseDay(args[1])
		if err != nil {
			return err
		}

		// Interpolated queries need the in-memory base
		if err := ratingSvc.Recompute(ctx); err != nil {
			return fmt.Errorf("failed to compute ratings: %w", err)
		}

		estimate, err := ratingSvc.RatingAt(args[0], day)
		if err != nil {
			return err
		}

		fmt.Printf("%s on day %.1f: %.1f Elo (uncertainty %.1f)\n",
			args[0], estimate.Day, estimate.Elo, estimate.Uncertainty)
		return nil
	},
}

var currentCmd = &cobra.Command{
	Use:   "current [player]",
	Short: "Show a player's most recent stored rating",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		entry, err := ratingSvc.CurrentRating(ctx, args[0])
		if err != nil {
			return err
		}

		epoch, err := cfg.GetRatingEpoch()
		if err != nil {
			return err
		}
		date := epoch.AddDate(0, 0, entry.Day)

		fmt.Printf("%s: %.1f Elo (uncertainty %.1f) as of %s\n",
			args[0], entry.Elo, entry.Uncertainty, date.Format("2006-01-02"))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("history %s (%s)\n", Version, GitCommit)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	viper.SetConfigFile(configFile)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("SKILL_TRACKER")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

func setupDependencies() error {
	appLog = logrus.New()
	appLog.SetLevel(logrus.WarnLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	ratingSvc, err = service.NewRatingService(repos, cfg.Rating, appLog)
	if err != nil {
		return fmt.Errorf("failed to initialize rating service: %w", err)
	}

	return nil
}

// parseDay accepts either a day number or a calendar date relative to the
// configured epoch.
func parseDay(raw string) (float64, error) {
	if day, err := strconv.ParseFloat(raw, 64); err == nil {
		return day, nil
	}

	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or a day number", raw)
	}
	epoch, err := cfg.GetRatingEpoch()
	if err != nil {
		return 0, err
	}
	return date.Sub(epoch).Hours() / 24, nil
}
