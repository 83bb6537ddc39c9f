package database

import (
	"context"
	"fmt"

	"github.com/yourusername/skill-tracker/internal/config"
)

// schema holds the DDL for the rating store. Statements are idempotent so
// Initialize can run on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS players (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS games (
		id UUID PRIMARY KEY,
		white_id UUID NOT NULL REFERENCES players(id),
		black_id UUID NOT NULL REFERENCES players(id),
		played_on DATE NOT NULL,
		outcome TEXT NOT NULL,
		handicap DOUBLE PRECISION NOT NULL DEFAULT 0,
		handicap_kind TEXT NOT NULL DEFAULT 'fixed',
		handicap_scale DOUBLE PRECISION NOT NULL DEFAULT 0,
		source TEXT NOT NULL DEFAULT '',
		label TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT games_distinct_players CHECK (white_id <> black_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_games_played_on ON games(played_on)`,
	`CREATE INDEX IF NOT EXISTS idx_games_white_id ON games(white_id)`,
	`CREATE INDEX IF NOT EXISTS idx_games_black_id ON games(black_id)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id UUID PRIMARY KEY,
		player_id UUID NOT NULL REFERENCES players(id),
		day INTEGER NOT NULL,
		elo DOUBLE PRECISION NOT NULL,
		uncertainty DOUBLE PRECISION NOT NULL,
		computed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (player_id, day)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_player_id ON ratings(player_id)`,
}

// Initialize creates a database connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	// Create connection pool
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema applies the rating store DDL
func EnsureSchema(ctx context.Context, db *DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
