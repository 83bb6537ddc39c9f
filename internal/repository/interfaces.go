package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/skill-tracker/internal/models"
)

// PlayerRepository defines the interface for player data access
type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error)
	GetByName(ctx context.Context, name string) (*models.Player, error)
	GetOrCreateByName(ctx context.Context, name, source string) (*models.Player, error)
	GetAll(ctx context.Context) ([]*models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// GameRepository defines the interface for game data access
type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	CreateBatch(ctx context.Context, games []*models.Game) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error)
	GetByPlayerID(ctx context.Context, playerID uuid.UUID) ([]*models.Game, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Game, error)
	GetAll(ctx context.Context) ([]*models.Game, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RatingRepository defines the interface for computed rating data access
type RatingRepository interface {
	Upsert(ctx context.Context, entry *models.RatingEntry) error
	UpsertBatch(ctx context.Context, entries []*models.RatingEntry) error
	GetHistory(ctx context.Context, playerID uuid.UUID) ([]*models.RatingEntry, error)
	GetLatest(ctx context.Context, playerID uuid.UUID) (*models.RatingEntry, error)
	DeleteForPlayer(ctx context.Context, playerID uuid.UUID) error
}
