package whr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOneSidedResultsSeparateRatings(t *testing.T) {
	base := NewBase(DefaultConfig(), testLogger())

	// The canonical scenario: one player loses every game on days 1,2,3,4,4.
	for _, day := range []int{1, 2, 3, 4, 4} {
		_, err := base.CreateGame("loser", "winner", BlackWins, day, FixedHandicap(0))
		require.NoError(t, err)
	}

	require.NoError(t, base.Iterate(50))

	loser, err := base.Ratings("loser")
	require.NoError(t, err)
	winner, err := base.Ratings("winner")
	require.NoError(t, err)

	assert.Negative(t, loser[0].Elo, "loser's earliest rating must be negative")
	assert.Positive(t, winner[0].Elo, "winner's earliest rating must be positive")
	assert.Greater(t, winner[len(winner)-1].Elo, loser[len(loser)-1].Elo)
}

func TestLopsidedHandicapsDiverge(t *testing.T) {
	base := NewBase(Config{W2: 10}, testLogger())

	for _, day := range []int{1, 11, 21, 31, 41} {
		_, err := base.CreateGame("runaway", "victim", WhiteWins, day, FixedHandicap(10000))
		require.NoError(t, err)
	}

	var err error
	for pass := 0; pass < 20; pass++ {
		if err = base.Iterate(1); err != nil {
			break
		}
	}

	require.Error(t, err, "divergence must be detected within a bounded number of passes")
	var instability *InstabilityError
	require.ErrorAs(t, err, &instability)
	assert.NotEmpty(t, instability.Player)
}

func TestUncertaintyIsPositiveAndFinite(t *testing.T) {
	base := NewBase(DefaultConfig(), testLogger())
	for _, day := range []int{1, 2, 3, 4, 4} {
		_, err := base.CreateGame("loser", "winner", BlackWins, day, FixedHandicap(0))
		require.NoError(t, err)
	}
	require.NoError(t, base.Iterate(50))
	require.NoError(t, base.RefreshUncertainties())

	for _, player := range base.Players() {
		for _, p := range player.Trajectory.Points() {
			assert.Positive(t, p.Uncertainty())
			assert.False(t, math.IsInf(p.Uncertainty(), 0))
			assert.False(t, math.IsNaN(p.Uncertainty()))
		}
	}
}

func TestSingleDayNewtonStep(t *testing.T) {
	base := NewBase(DefaultConfig(), testLogger())
	_, err := base.CreateGame("a", "b", WhiteWins, 1, FixedHandicap(0))
	require.NoError(t, err)

	require.NoError(t, base.Iterate(30))

	a, err := base.Ratings("a")
	require.NoError(t, err)
	b, err := base.Ratings("b")
	require.NoError(t, err)
	assert.Greater(t, a[0].Elo, b[0].Elo)
}

func TestRatingAtKnownDayReturnsStoredValues(t *testing.T) {
	traj := NewTrajectory("p", TrajectoryConfig{W2: 0.01})
	p1 := traj.pointForDay(10)
	p2 := traj.pointForDay(20)
	p1.SetElo(100)
	p2.SetElo(200)
	p1.uncertainty = 0.3
	p2.uncertainty = 0.5

	for _, p := range []*RatingPoint{p1, p2} {
		est, err := traj.RatingAt(float64(p.Day))
		require.NoError(t, err)
		assert.InDelta(t, p.Elo(), est.Elo, 1e-12)
		assert.InDelta(t, NaturalToElo(p.uncertainty), est.Uncertainty, 1e-12)
	}
}

func TestRatingAtMidpointMatchesWienerBridge(t *testing.T) {
	w2 := 0.04
	traj := NewTrajectory("p", TrajectoryConfig{W2: w2})
	p1 := traj.pointForDay(0)
	p2 := traj.pointForDay(1)
	p1.SetElo(0)
	p2.SetElo(100)

	est, err := traj.RatingAt(0.5)
	require.NoError(t, err)

	// With zero endpoint uncertainty, only the bridge term remains:
	// variance = (dt/4)·w2 for symmetric weights one day apart.
	wantVariance := w2 / 4
	assert.InDelta(t, 50, est.Elo, 1e-9)
	assert.InDelta(t, NaturalToElo(math.Sqrt(wantVariance)), est.Uncertainty, 1e-9)
}

func TestRatingAtExtrapolatesVarianceLinearly(t *testing.T) {
	w2 := 0.01
	traj := NewTrajectory("p", TrajectoryConfig{W2: w2})
	p := traj.pointForDay(5)
	p.SetElo(150)
	p.uncertainty = 0.2

	tests := []struct {
		name string
		day  float64
	}{
		{name: "Before first day", day: 1},
		{name: "After last day", day: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := traj.RatingAt(tt.day)
			require.NoError(t, err)
			assert.InDelta(t, 150, est.Elo, 1e-9)

			wantVariance := 0.2*0.2 + 4*w2
			assert.InDelta(t, NaturalToElo(math.Sqrt(wantVariance)), est.Uncertainty, 1e-9)
		})
	}
}

func TestRatingAtEmptyTrajectory(t *testing.T) {
	traj := NewTrajectory("p", TrajectoryConfig{W2: 0.01})

	_, err := traj.RatingAt(1)
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestPointsStayOrderedAndAnchored(t *testing.T) {
	traj := NewTrajectory("p", TrajectoryConfig{W2: 0.01})
	traj.pointForDay(30)
	traj.pointForDay(10)
	traj.pointForDay(20)
	traj.pointForDay(10)

	points := traj.Points()
	require.Len(t, points, 3)
	assert.Equal(t, []int{10, 20, 30}, []int{points[0].Day, points[1].Day, points[2].Day})
	assert.True(t, points[0].isAnchor)
	assert.False(t, points[1].isAnchor)
	assert.False(t, points[2].isAnchor)
}

func TestLogLikelihoodImprovesWithIteration(t *testing.T) {
	base := NewBase(DefaultConfig(), testLogger())
	games := []struct {
		white, black string
		outcome      Outcome
		day          int
	}{
		{"alice", "bob", WhiteWins, 1},
		{"bob", "carol", BlackWins, 1},
		{"alice", "carol", WhiteWins, 2},
		{"carol", "bob", WhiteWins, 3},
		{"alice", "bob", WhiteWins, 3},
	}
	for _, g := range games {
		_, err := base.CreateGame(g.white, g.black, g.outcome, g.day, FixedHandicap(0))
		require.NoError(t, err)
	}

	before, err := base.LogLikelihood()
	require.NoError(t, err)
	require.NoError(t, base.Iterate(20))
	after, err := base.LogLikelihood()
	require.NoError(t, err)

	assert.Greater(t, after, before, "optimization must increase the log-posterior")
}
