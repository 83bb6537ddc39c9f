package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/skill-tracker/internal/database"
	"github.com/yourusername/skill-tracker/internal/models"
)

const (
	errScanGame     = "failed to scan game: %w"
	gameColumns     = "id, white_id, black_id, played_on, outcome, handicap, handicap_kind, handicap_scale, source, label, created_at"
	insertGameQuery = `
		INSERT INTO games (id, white_id, black_id, played_on, outcome, handicap, handicap_kind, handicap_scale, source, label, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
)

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

// Create inserts a new game
func (r *PostgresGameRepository) Create(ctx context.Context, game *models.Game) error {
	_, err := r.db.GetPool().Exec(ctx, insertGameQuery,
		game.ID, game.WhiteID, game.BlackID, game.PlayedOn, game.Outcome,
		game.Handicap, game.HandicapKind, game.HandicapScale, game.Source, game.Label, game.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	return nil
}

// CreateBatch inserts games within a single transaction
func (r *PostgresGameRepository) CreateBatch(ctx context.Context, games []*models.Game) error {
	if len(games) == 0 {
		return nil
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, game := range games {
			_, err := tx.Exec(ctx, insertGameQuery,
				game.ID, game.WhiteID, game.BlackID, game.PlayedOn, game.Outcome,
				game.Handicap, game.HandicapKind, game.HandicapScale, game.Source, game.Label, game.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to create game in batch: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves a game by ID
func (r *PostgresGameRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	query := fmt.Sprintf("SELECT %s FROM games WHERE id = $1", gameColumns)

	game := &models.Game{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&game.ID, &game.WhiteID, &game.BlackID, &game.PlayedOn, &game.Outcome,
		&game.Handicap, &game.HandicapKind, &game.HandicapScale, &game.Source, &game.Label, &game.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// GetByPlayerID retrieves all games a player took part in, oldest first
func (r *PostgresGameRepository) GetByPlayerID(ctx context.Context, playerID uuid.UUID) ([]*models.Game, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM games
		WHERE white_id = $1 OR black_id = $1
		ORDER BY played_on ASC, created_at ASC
	`, gameColumns)

	return r.queryGames(ctx, query, playerID)
}

// GetByDateRange retrieves games within a date range, oldest first
func (r *PostgresGameRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Game, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM games
		WHERE played_on >= $1 AND played_on <= $2
		ORDER BY played_on ASC, created_at ASC
	`, gameColumns)

	return r.queryGames(ctx, query, start, end)
}

// GetAll retrieves every game, oldest first
func (r *PostgresGameRepository) GetAll(ctx context.Context) ([]*models.Game, error) {
	query := fmt.Sprintf("SELECT %s FROM games ORDER BY played_on ASC, created_at ASC", gameColumns)
	return r.queryGames(ctx, query)
}

// Delete deletes a game
func (r *PostgresGameRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := "DELETE FROM games WHERE id = $1"

	commandTag, err := r.db.GetPool().Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *PostgresGameRepository) queryGames(ctx context.Context, query string, args ...interface{}) ([]*models.Game, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game := &models.Game{}
		err := rows.Scan(
			&game.ID, &game.WhiteID, &game.BlackID, &game.PlayedOn, &game.Outcome,
			&game.Handicap, &game.HandicapKind, &game.HandicapScale, &game.Source, &game.Label, &game.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanGame, err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}
