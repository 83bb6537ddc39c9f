package models

import (
	"time"

	"github.com/google/uuid"
)

// Player represents a rated competitor in the system
type Player struct {
	ID        uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	Name      string    `db:"name" json:"name" validate:"required"`
	Source    string    `db:"source" json:"source"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewPlayer creates a player with a fresh ID
func NewPlayer(name, source string) *Player {
	now := time.Now().UTC()
	return &Player{
		ID:        uuid.New(),
		Name:      name,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
