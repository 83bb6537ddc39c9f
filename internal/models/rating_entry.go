package models

import (
	"time"

	"github.com/google/uuid"
)

// RatingEntry represents one day of a player's computed rating history
type RatingEntry struct {
	ID          uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	PlayerID    uuid.UUID `db:"player_id" json:"player_id" validate:"required,uuid4"`
	Day         int       `db:"day" json:"day"`
	Elo         float64   `db:"elo" json:"elo"`
	Uncertainty float64   `db:"uncertainty" json:"uncertainty" validate:"gte=0"`
	ComputedAt  time.Time `db:"computed_at" json:"computed_at"`
}

// IsStale checks whether the entry predates the given recompute time
func (e *RatingEntry) IsStale(since time.Time) bool {
	return e.ComputedAt.Before(since)
}
