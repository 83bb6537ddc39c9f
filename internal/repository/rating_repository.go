package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/skill-tracker/internal/database"
	"github.com/yourusername/skill-tracker/internal/models"
)

const (
	errScanRating    = "failed to scan rating entry: %w"
	upsertRatingQuery = `
		INSERT INTO ratings (id, player_id, day, elo, uncertainty, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (player_id, day) DO UPDATE SET
			elo = EXCLUDED.elo,
			uncertainty = EXCLUDED.uncertainty,
			computed_at = EXCLUDED.computed_at
	`
)

// PostgresRatingRepository implements RatingRepository for PostgreSQL
type PostgresRatingRepository struct {
	db *database.DB
}

// NewPostgresRatingRepository creates a new rating repository
func NewPostgresRatingRepository(db *database.DB) RatingRepository {
	return &PostgresRatingRepository{db: db}
}

// Upsert inserts or replaces one rating entry
func (r *PostgresRatingRepository) Upsert(ctx context.Context, entry *models.RatingEntry) error {
	_, err := r.db.GetPool().Exec(ctx, upsertRatingQuery,
		entry.ID, entry.PlayerID, entry.Day, entry.Elo, entry.Uncertainty, entry.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rating entry: %w", err)
	}

	return nil
}

// UpsertBatch inserts or replaces rating entries within a single transaction
func (r *PostgresRatingRepository) UpsertBatch(ctx context.Context, entries []*models.RatingEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, entry := range entries {
			_, err := tx.Exec(ctx, upsertRatingQuery,
				entry.ID, entry.PlayerID, entry.Day, entry.Elo, entry.Uncertainty, entry.ComputedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert rating entry in batch: %w", err)
			}
		}
		return nil
	})
}

// GetHistory retrieves a player's full rating history ordered by day
func (r *PostgresRatingRepository) GetHistory(ctx context.Context, playerID uuid.UUID) ([]*models.RatingEntry, error) {
	query := `
		SELECT id, player_id, day, elo, uncertainty, computed_at
		FROM ratings
		WHERE player_id = $1
		ORDER BY day ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	defer rows.Close()

	var entries []*models.RatingEntry
	for rows.Next() {
		entry := &models.RatingEntry{}
		err := rows.Scan(
			&entry.ID, &entry.PlayerID, &entry.Day, &entry.Elo, &entry.Uncertainty, &entry.ComputedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanRating, err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// GetLatest retrieves a player's most recent rating entry
func (r *PostgresRatingRepository) GetLatest(ctx context.Context, playerID uuid.UUID) (*models.RatingEntry, error) {
	query := `
		SELECT id, player_id, day, elo, uncertainty, computed_at
		FROM ratings
		WHERE player_id = $1
		ORDER BY day DESC
		LIMIT 1
	`

	entry := &models.RatingEntry{}
	err := r.db.GetPool().QueryRow(ctx, query, playerID).Scan(
		&entry.ID, &entry.PlayerID, &entry.Day, &entry.Elo, &entry.Uncertainty, &entry.ComputedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest rating: %w", err)
	}

	return entry, nil
}

// DeleteForPlayer removes a player's whole rating history
func (r *PostgresRatingRepository) DeleteForPlayer(ctx context.Context, playerID uuid.UUID) error {
	query := "DELETE FROM ratings WHERE player_id = $1"

	_, err := r.db.GetPool().Exec(ctx, query, playerID)
	if err != nil {
		return fmt.Errorf("failed to delete rating history: %w", err)
	}

	return nil
}
