// Package whr implements Whole-History Rating: Bayesian MAP estimation of
// time-varying player strengths under a dynamic Bradley-Terry model with a
// Wiener-process smoothness prior on each player's rating trajectory.
package whr

import (
	"math"
)

// Outcome identifies the winner of a game. Draw is accepted on input but
// contributes no likelihood term.
type Outcome int

const (
	WhiteWins Outcome = iota
	BlackWins
	Draw
)

// String returns the single-letter code used in feeds and storage.
func (o Outcome) String() string {
	switch o {
	case WhiteWins:
		return "W"
	case BlackWins:
		return "B"
	default:
		return "D"
	}
}

// HandicapKind selects how a game's handicap offset is computed.
type HandicapKind int

const (
	// HandicapFixed applies a constant Elo offset in black's favor.
	HandicapFixed HandicapKind = iota
	// HandicapRatingDependent applies an offset proportional to the live
	// Elo gap between the two players at evaluation time.
	HandicapRatingDependent
)

// Handicap is a strength offset applied to one side of a game before
// computing win probability, expressed in Elo points in black's favor.
type Handicap struct {
	Kind   HandicapKind
	Offset float64 // Elo points, HandicapFixed
	Scale  float64 // fraction of the white-minus-black Elo gap, HandicapRatingDependent
}

// FixedHandicap returns a constant Elo offset in black's favor.
func FixedHandicap(offset float64) Handicap {
	return Handicap{Kind: HandicapFixed, Offset: offset}
}

// RatingDependentHandicap returns a handicap recomputed from the players'
// current ratings every time a win probability is evaluated.
func RatingDependentHandicap(scale float64) Handicap {
	return Handicap{Kind: HandicapRatingDependent, Scale: scale}
}

func (h Handicap) blackAdvantage(white, black *RatingPoint) float64 {
	if h.Kind == HandicapRatingDependent {
		return h.Scale * (white.Elo() - black.Elo())
	}
	return h.Offset
}

// Game is one immutable pairwise outcome between two players on a given day.
// It is created and owned by the Base; the rating points of both players hold
// references to it for likelihood-term construction.
type Game struct {
	Day      int
	White    *Player
	Black    *Player
	Outcome  Outcome
	Handicap Handicap
	Label    string

	whitePoint *RatingPoint
	blackPoint *RatingPoint
}

// opponentAdjustedGamma returns the handicap-adjusted Bradley-Terry strength
// of p's opponent, gamma = 10^(elo/400). Ratings that have diverged to
// extreme values surface here as a zero or non-finite result.
func (g *Game) opponentAdjustedGamma(p *RatingPoint) (float64, error) {
	if g.whitePoint == nil || g.blackPoint == nil {
		return 0, ErrUnresolvedSide
	}

	advantage := g.Handicap.blackAdvantage(g.whitePoint, g.blackPoint)

	var opponentElo float64
	switch p {
	case g.whitePoint:
		opponentElo = g.blackPoint.Elo() + advantage
	case g.blackPoint:
		opponentElo = g.whitePoint.Elo() - advantage
	default:
		return 0, ErrUnresolvedSide
	}

	gamma := math.Pow(10, opponentElo/400)
	if gamma == 0 || math.IsInf(gamma, 0) || math.IsNaN(gamma) {
		return 0, &InstabilityError{
			Player: g.playerName(p),
			Reason: "adjusted opponent strength is zero or non-finite",
		}
	}
	return gamma, nil
}

// WhiteWinProbability returns the Bradley-Terry probability of white winning
// under the current rating estimates.
func (g *Game) WhiteWinProbability() (float64, error) {
	adjusted, err := g.opponentAdjustedGamma(g.whitePoint)
	if err != nil {
		return 0, err
	}
	gamma := g.whitePoint.gamma()
	return gamma / (gamma + adjusted), nil
}

// BlackWinProbability returns the Bradley-Terry probability of black winning
// under the current rating estimates.
func (g *Game) BlackWinProbability() (float64, error) {
	adjusted, err := g.opponentAdjustedGamma(g.blackPoint)
	if err != nil {
		return 0, err
	}
	gamma := g.blackPoint.gamma()
	return gamma / (gamma + adjusted), nil
}

func (g *Game) playerName(p *RatingPoint) string {
	switch p {
	case g.whitePoint:
		if g.White != nil {
			return g.White.Name
		}
	case g.blackPoint:
		if g.Black != nil {
			return g.Black.Name
		}
	}
	return ""
}
