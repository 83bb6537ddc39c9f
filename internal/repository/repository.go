package repository

import (
	"fmt"

	"github.com/yourusername/skill-tracker/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Player PlayerRepository
	Game   GameRepository
	Rating RatingRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Player: NewPostgresPlayerRepository(db),
		Game:   NewPostgresGameRepository(db),
		Rating: NewPostgresRatingRepository(db),
	}, nil
}
