package whr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGameRejectsSelfPairing(t *testing.T) {
	base := NewBase(DefaultConfig(), testLogger())

	_, err := base.CreateGame("alice", "alice", WhiteWins, 1, FixedHandicap(0))
	require.Error(t, err)
	var invalid *InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestCreateGameAttachesBothSides(t *testing.T) {
	base := NewBase(DefaultConfig(), testLogger())

	game, err := base.CreateGame("alice", "bob", WhiteWins, 7, FixedHandicap(0))
	require.NoError(t, err)

	require.NotNil(t, game.whitePoint)
	require.NotNil(t, game.blackPoint)
	assert.Equal(t, 7, game.whitePoint.Day)
	assert.Equal(t, 7, game.blackPoint.Day)
	assert.Len(t, game.whitePoint.wonGames, 1)
	assert.Len(t, game.blackPoint.lostGames, 1)
}

func TestDrawContributesNoLikelihoodTerm(t *testing.T) {
	base := NewBase(DefaultConfig(), testLogger())

	game, err := base.CreateGame("alice", "bob", Draw, 1, FixedHandicap(0))
	require.NoError(t, err)

	assert.Empty(t, game.whitePoint.wonGames)
	assert.Empty(t, game.whitePoint.lostGames)
	assert.Empty(t, game.blackPoint.wonGames)
	assert.Empty(t, game.blackPoint.lostGames)
	assert.Len(t, base.Games(), 1)
}

func TestIterateUntilConverges(t *testing.T) {
	base := NewBase(DefaultConfig(), testLogger())
	for _, day := range []int{1, 2, 3, 4, 4} {
		_, err := base.CreateGame("loser", "winner", BlackWins, day, FixedHandicap(0))
		require.NoError(t, err)
	}

	passes, err := base.IterateUntil(context.Background(), 200, 1e-9)
	require.NoError(t, err)
	assert.Less(t, passes, 200, "expected convergence before the pass budget")

	// Uncertainties are refreshed as part of convergence.
	for _, player := range base.Players() {
		for _, p := range player.Trajectory.Points() {
			assert.Positive(t, p.Uncertainty())
		}
	}
}

func TestIterateUntilHonorsContext(t *testing.T) {
	base := NewBase(DefaultConfig(), testLogger())
	_, err := base.CreateGame("alice", "bob", WhiteWins, 1, FixedHandicap(0))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = base.IterateUntil(ctx, 100, 1e-9)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRatingsForUnknownPlayer(t *testing.T) {
	base := NewBase(DefaultConfig(), testLogger())

	_, err := base.Ratings("ghost")
	assert.Error(t, err)
}

func TestPlayerIsCreatedOnce(t *testing.T) {
	base := NewBase(DefaultConfig(), testLogger())

	p1 := base.Player("alice")
	p2 := base.Player("alice")
	assert.Same(t, p1, p2)
	assert.Len(t, base.Players(), 1)
}
