package service

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/skill-tracker/internal/datasource"
	"github.com/yourusername/skill-tracker/internal/models"
)

func newTestNormalizer() *GameNormalizer {
	log := logrus.New()
	log.SetLevel(logrus.FatalLevel)
	return NewGameNormalizer(log)
}

func TestNormalizeValidRecord(t *testing.T) {
	n := newTestNormalizer()

	record := &datasource.GameRecord{
		SourceID: "g-100",
		White:    "  Shusaku ",
		Black:    "Shuwa",
		PlayedOn: time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC),
		Outcome:  "white",
		Handicap: "0.5",
		Label:    "Castle game",
	}

	normalized, err := n.Normalize(record)
	require.NoError(t, err)

	assert.Equal(t, "Shusaku", normalized.White)
	assert.Equal(t, "Shuwa", normalized.Black)
	assert.Equal(t, models.OutcomeWhiteWins, normalized.Outcome)
	assert.Equal(t, 0.5, normalized.Handicap)
	assert.Equal(t, models.HandicapKindFixed, normalized.HandicapKind)
	assert.Equal(t, "Castle game", normalized.Label)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), normalized.PlayedOn)
}

func TestNormalizeRejectsBadRecords(t *testing.T) {
	n := newTestNormalizer()
	playedOn := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record *datasource.GameRecord
	}{
		{"nil record", nil},
		{"missing white", &datasource.GameRecord{Black: "Shuwa", PlayedOn: playedOn, Outcome: "W"}},
		{"missing black", &datasource.GameRecord{White: "Shusaku", PlayedOn: playedOn, Outcome: "W"}},
		{"self pairing", &datasource.GameRecord{White: "Shusaku", Black: " Shusaku ", PlayedOn: playedOn, Outcome: "W"}},
		{"unknown outcome", &datasource.GameRecord{White: "Shusaku", Black: "Shuwa", PlayedOn: playedOn, Outcome: "X"}},
		{"garbage handicap", &datasource.GameRecord{White: "Shusaku", Black: "Shuwa", PlayedOn: playedOn, Outcome: "W", Handicap: "lots"}},
		{"missing date", &datasource.GameRecord{White: "Shusaku", Black: "Shuwa", Outcome: "W"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(tt.record)
			assert.Error(t, err)
		})
	}
}

func TestParseOutcomeVariants(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		raw  string
		want string
	}{
		{"W", models.OutcomeWhiteWins},
		{"white", models.OutcomeWhiteWins},
		{"1-0", models.OutcomeWhiteWins},
		{"b", models.OutcomeBlackWins},
		{"BLACK", models.OutcomeBlackWins},
		{"0-1", models.OutcomeBlackWins},
		{" d ", models.OutcomeDraw},
		{"jigo", models.OutcomeDraw},
		{"1/2", models.OutcomeDraw},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := n.ParseOutcome(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := n.ParseOutcome("2-0")
	assert.ErrorIs(t, err, models.ErrInvalidOutcome)
}

func TestNormalizeHandicapKinds(t *testing.T) {
	n := newTestNormalizer()

	handicap, kind, scale, err := n.NormalizeHandicap("", "")
	require.NoError(t, err)
	assert.Zero(t, handicap)
	assert.Equal(t, models.HandicapKindFixed, kind)
	assert.Zero(t, scale)

	handicap, kind, scale, err = n.NormalizeHandicap("12.5", "fixed")
	require.NoError(t, err)
	assert.Equal(t, 12.5, handicap)
	assert.Equal(t, models.HandicapKindFixed, kind)
	assert.Zero(t, scale)

	handicap, kind, scale, err = n.NormalizeHandicap("0.8", "rating_dependent")
	require.NoError(t, err)
	assert.Zero(t, handicap)
	assert.Equal(t, models.HandicapKindRatingDependent, kind)
	assert.Equal(t, 0.8, scale)

	_, _, _, err = n.NormalizeHandicap("1", "percentage")
	assert.Error(t, err)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "Honinbo Shusaku", sanitizeName("  Honinbo   Shusaku "))
	assert.Equal(t, "", sanitizeName("   "))
}
