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

const errScanPlayer = "failed to scan player: %w"

// PostgresPlayerRepository implements PlayerRepository for PostgreSQL
type PostgresPlayerRepository struct {
	db *database.DB
}

// NewPostgresPlayerRepository creates a new player repository
func NewPostgresPlayerRepository(db *database.DB) PlayerRepository {
	return &PostgresPlayerRepository{db: db}
}

// Create inserts a new player
func (r *PostgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (id, name, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		player.ID, player.Name, player.Source, player.CreatedAt, player.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}

	return nil
}

// GetByID retrieves a player by ID
func (r *PostgresPlayerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	query := `
		SELECT id, name, source, created_at, updated_at
		FROM players WHERE id = $1
	`

	player := &models.Player{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&player.ID, &player.Name, &player.Source, &player.CreatedAt, &player.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

// GetByName retrieves a player by name
func (r *PostgresPlayerRepository) GetByName(ctx context.Context, name string) (*models.Player, error) {
	query := `
		SELECT id, name, source, created_at, updated_at
		FROM players WHERE name = $1
	`

	player := &models.Player{}
	err := r.db.GetPool().QueryRow(ctx, query, name).Scan(
		&player.ID, &player.Name, &player.Source, &player.CreatedAt, &player.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player by name: %w", err)
	}

	return player, nil
}

// GetOrCreateByName retrieves a player by name, creating one if absent
func (r *PostgresPlayerRepository) GetOrCreateByName(ctx context.Context, name, source string) (*models.Player, error) {
	if name == "" {
		return nil, models.ErrPlayerNameRequired
	}

	player, err := r.GetByName(ctx, name)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	player = models.NewPlayer(name, source)
	// A concurrent insert may win the race on the unique name index; treat
	// a conflict as "someone else created it" and re-read.
	query := `
		INSERT INTO players (id, name, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO NOTHING
	`
	tag, err := r.db.GetPool().Exec(ctx, query,
		player.ID, player.Name, player.Source, player.CreatedAt, player.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.GetByName(ctx, name)
	}

	return player, nil
}

// GetAll retrieves all players ordered by name
func (r *PostgresPlayerRepository) GetAll(ctx context.Context) ([]*models.Player, error) {
	query := `
		SELECT id, name, source, created_at, updated_at
		FROM players
		ORDER BY name ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		player := &models.Player{}
		err := rows.Scan(
			&player.ID, &player.Name, &player.Source, &player.CreatedAt, &player.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanPlayer, err)
		}
		players = append(players, player)
	}

	return players, rows.Err()
}

// Update updates an existing player
func (r *PostgresPlayerRepository) Update(ctx context.Context, player *models.Player) error {
	query := `
		UPDATE players SET
			name = $2, source = $3, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := r.db.GetPool().Exec(ctx, query, player.ID, player.Name, player.Source)
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Delete deletes a player
func (r *PostgresPlayerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := "DELETE FROM players WHERE id = $1"

	commandTag, err := r.db.GetPool().Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
