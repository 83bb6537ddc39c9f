package whr

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

// newRatedGame builds a one-game base with both sides pinned to the given
// Elo ratings.
func newRatedGame(t *testing.T, whiteElo, blackElo float64, handicap Handicap) *Game {
	t.Helper()
	base := NewBase(DefaultConfig(), testLogger())
	game, err := base.CreateGame("white", "black", WhiteWins, 1, handicap)
	require.NoError(t, err)
	game.whitePoint.SetElo(whiteElo)
	game.blackPoint.SetElo(blackElo)
	return game
}

func TestWinProbabilitySymmetry(t *testing.T) {
	tests := []struct {
		name     string
		whiteElo float64
		blackElo float64
		handicap Handicap
	}{
		{name: "Equal ratings", whiteElo: 0, blackElo: 0, handicap: FixedHandicap(0)},
		{name: "White stronger", whiteElo: 320, blackElo: -150, handicap: FixedHandicap(0)},
		{name: "Positive handicap", whiteElo: 100, blackElo: 100, handicap: FixedHandicap(75)},
		{name: "Negative handicap", whiteElo: -40, blackElo: 260, handicap: FixedHandicap(-120)},
		{name: "Rating dependent", whiteElo: 500, blackElo: 200, handicap: RatingDependentHandicap(0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := newRatedGame(t, tt.whiteElo, tt.blackElo, tt.handicap)

			white, err := game.WhiteWinProbability()
			require.NoError(t, err)
			black, err := game.BlackWinProbability()
			require.NoError(t, err)

			assert.InDelta(t, 1.0, white+black, 1e-10, "Bradley-Terry probabilities must be complementary")
		})
	}
}

func TestEqualRatingsGiveEvenOdds(t *testing.T) {
	game := newRatedGame(t, 0, 0, FixedHandicap(0))

	white, err := game.WhiteWinProbability()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, white, 1e-4)
}

func TestHandicapFavorsBlack(t *testing.T) {
	game := newRatedGame(t, 0, 0, FixedHandicap(50))

	black, err := game.BlackWinProbability()
	require.NoError(t, err)
	assert.Greater(t, black, 0.5, "positive handicap must raise black's win probability")
}

func TestWinProbabilityDependsOnlyOnRatingDelta(t *testing.T) {
	lower := newRatedGame(t, 100, 200, FixedHandicap(0))
	higher := newRatedGame(t, 200, 300, FixedHandicap(0))

	p1, err := lower.WhiteWinProbability()
	require.NoError(t, err)
	p2, err := higher.WhiteWinProbability()
	require.NoError(t, err)

	assert.InDelta(t, p1, p2, 1e-4)
}

func TestHundredPointAdvantage(t *testing.T) {
	// Weaker side listed first: p = 1/(1+10^(100/400)).
	game := newRatedGame(t, 0, 100, FixedHandicap(0))

	white, err := game.WhiteWinProbability()
	require.NoError(t, err)
	assert.InDelta(t, 0.359935, white, 1e-4)
}

func TestRatingDependentHandicapTracksLiveRatings(t *testing.T) {
	game := newRatedGame(t, 200, 0, RatingDependentHandicap(1.0))

	// The full rating gap handed to black makes the game even.
	white, err := game.WhiteWinProbability()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, white, 1e-4)

	// Shrinking the gap shrinks the compensation with it.
	game.whitePoint.SetElo(100)
	white, err = game.WhiteWinProbability()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, white, 1e-4)
}

func TestExtremeHandicapIsUnstable(t *testing.T) {
	game := newRatedGame(t, 0, 0, FixedHandicap(200000))

	_, err := game.WhiteWinProbability()
	require.Error(t, err)
	var instability *InstabilityError
	assert.ErrorAs(t, err, &instability)
}

func TestUnresolvedSideIsContractViolation(t *testing.T) {
	game := &Game{Day: 1, Outcome: WhiteWins}
	game.whitePoint = newRatingPoint(1)

	_, err := game.WhiteWinProbability()
	assert.ErrorIs(t, err, ErrUnresolvedSide)
}
