package models

import (
	"time"

	"github.com/google/uuid"
)

// Game outcome codes as stored and fed through ingestion
const (
	OutcomeWhiteWins = "W"
	OutcomeBlackWins = "B"
	OutcomeDraw      = "D"
)

// Handicap kind codes
const (
	HandicapKindFixed           = "fixed"
	HandicapKindRatingDependent = "rating_dependent"
)

// Game represents one recorded pairwise result between two players
type Game struct {
	ID            uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	WhiteID       uuid.UUID `db:"white_id" json:"white_id" validate:"required,uuid4"`
	BlackID       uuid.UUID `db:"black_id" json:"black_id" validate:"required,uuid4"`
	PlayedOn      time.Time `db:"played_on" json:"played_on" validate:"required"`
	Outcome       string    `db:"outcome" json:"outcome" validate:"required,oneof=W B D"`
	Handicap      float64   `db:"handicap" json:"handicap"`
	HandicapKind  string    `db:"handicap_kind" json:"handicap_kind" validate:"oneof=fixed rating_dependent"`
	HandicapScale float64   `db:"handicap_scale" json:"handicap_scale"`
	Source        string    `db:"source" json:"source"`
	Label         string    `db:"label" json:"label"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// IsDraw checks whether the game ended without a winner
func (g *Game) IsDraw() bool {
	return g.Outcome == OutcomeDraw
}

// DayNumber returns the game's whole-day offset from the given epoch
func (g *Game) DayNumber(epoch time.Time) int {
	return int(g.PlayedOn.Sub(epoch).Hours() / 24)
}
