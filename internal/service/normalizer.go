package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/skill-tracker/internal/datasource"
	"github.com/yourusername/skill-tracker/internal/models"
)

// NormalizedGame is a provider-independent game result ready for persistence
type NormalizedGame struct {
	SourceID      string
	White         string
	Black         string
	PlayedOn      time.Time
	Outcome       string
	Handicap      float64
	HandicapKind  string
	HandicapScale float64
	Label         string
}

// GameNormalizer normalizes raw feed records to the standard game format
type GameNormalizer struct {
	outcomeMap map[string]string
	logger     *logrus.Logger
}

// NewGameNormalizer creates a new game normalizer
func NewGameNormalizer(logger *logrus.Logger) *GameNormalizer {
	if logger == nil {
		logger = logrus.New()
	}
	return &GameNormalizer{
		outcomeMap: buildOutcomeMap(),
		logger:     logger,
	}
}

// Normalize converts a GameRecord from any source to a NormalizedGame
func (n *GameNormalizer) Normalize(record *datasource.GameRecord) (*NormalizedGame, error) {
	if record == nil {
		return nil, fmt.Errorf("source record is nil")
	}

	white := sanitizeName(record.White)
	black := sanitizeName(record.Black)
	if white == "" || black == "" {
		return nil, models.ErrPlayerNameRequired
	}
	if white == black {
		return nil, fmt.Errorf("white and black are the same player %q", white)
	}

	outcome, err := n.ParseOutcome(record.Outcome)
	if err != nil {
		return nil, err
	}

	handicap, kind, scale, err := n.NormalizeHandicap(record.Handicap, record.HandicapKind)
	if err != nil {
		return nil, err
	}

	if record.PlayedOn.IsZero() {
		return nil, fmt.Errorf("game date is missing")
	}

	return &NormalizedGame{
		SourceID:      record.SourceID,
		White:         white,
		Black:         black,
		PlayedOn:      record.PlayedOn.UTC().Truncate(24 * time.Hour),
		Outcome:       outcome,
		Handicap:      handicap,
		HandicapKind:  kind,
		HandicapScale: scale,
		Label:         strings.TrimSpace(record.Label),
	}, nil
}

// ParseOutcome converts provider-specific outcome codes to canonical codes
func (n *GameNormalizer) ParseOutcome(raw string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if outcome, ok := n.outcomeMap[normalized]; ok {
		return outcome, nil
	}
	return "", fmt.Errorf("%w: %q", models.ErrInvalidOutcome, raw)
}

// NormalizeHandicap parses the raw handicap value and kind. Providers send
// the value as a string; decimal parsing rejects the garbage ones.
func (n *GameNormalizer) NormalizeHandicap(rawValue, rawKind string) (handicap float64, kind string, scale float64, err error) {
	kind = models.HandicapKindFixed

	value := strings.TrimSpace(rawValue)
	if value == "" {
		return 0, kind, 0, nil
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, "", 0, fmt.Errorf("invalid handicap value %q: %w", rawValue, err)
	}
	parsed, _ := d.Float64()

	switch strings.ToLower(strings.TrimSpace(rawKind)) {
	case "", models.HandicapKindFixed:
		return parsed, models.HandicapKindFixed, 0, nil
	case models.HandicapKindRatingDependent:
		// For rating-dependent handicaps the value is the scale factor
		return 0, models.HandicapKindRatingDependent, parsed, nil
	default:
		return 0, "", 0, fmt.Errorf("unknown handicap kind %q", rawKind)
	}
}

// sanitizeName removes extra whitespace and normalizes player names
func sanitizeName(name string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(name)), " ")
}

// buildOutcomeMap returns the mapping of outcome code variations to canonical codes
func buildOutcomeMap() map[string]string {
	return map[string]string{
		"W":     models.OutcomeWhiteWins,
		"WHITE": models.OutcomeWhiteWins,
		"1-0":   models.OutcomeWhiteWins,
		"B":     models.OutcomeBlackWins,
		"BLACK": models.OutcomeBlackWins,
		"0-1":   models.OutcomeBlackWins,
		"D":     models.OutcomeDraw,
		"DRAW":  models.OutcomeDraw,
		"JIGO":  models.OutcomeDraw,
		"1/2":   models.OutcomeDraw,
	}
}
