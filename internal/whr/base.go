package whr

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Player pairs a competitor's identity with its rating trajectory.
type Player struct {
	Name       string
	Trajectory *Trajectory
}

// Config tunes a Base.
type Config struct {
	// W2 is the Wiener-process variance rate in Elo points squared per day.
	// Converted internally to the natural-rating scale.
	W2 float64
	// HessianEpsilon overrides the Hessian diagonal regularizer; zero keeps
	// the default.
	HessianEpsilon float64
}

// DefaultConfig returns the standard prior: 300 Elo² of rating variance per
// day of elapsed time.
func DefaultConfig() Config {
	return Config{W2: 300.0}
}

// Base is the registry of players and games and the driver of the
// Gauss-Seidel optimization: one pass solves every player's block exactly
// given the others' current ratings.
type Base struct {
	cfg       Config
	w2Natural float64
	players   map[string]*Player
	order     []string
	games     []*Game
	logger    *logrus.Logger
}

// NewBase creates an empty rating base.
func NewBase(cfg Config, logger *logrus.Logger) *Base {
	if cfg.W2 == 0 {
		cfg.W2 = DefaultConfig().W2
	}
	if logger == nil {
		logger = logrus.New()
	}
	scale := math.Ln10 / 400
	return &Base{
		cfg:       cfg,
		w2Natural: cfg.W2 * scale * scale,
		players:   make(map[string]*Player),
		logger:    logger,
	}
}

// Player returns the named player, creating it on first reference.
func (b *Base) Player(name string) *Player {
	if p, ok := b.players[name]; ok {
		return p
	}
	p := &Player{
		Name: name,
		Trajectory: NewTrajectory(name, TrajectoryConfig{
			W2:             b.w2Natural,
			HessianEpsilon: b.cfg.HessianEpsilon,
		}),
	}
	b.players[name] = p
	b.order = append(b.order, name)
	return p
}

// Players returns all players in creation order.
func (b *Base) Players() []*Player {
	out := make([]*Player, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.players[name])
	}
	return out
}

// CreateGame records one outcome between two named players on the given day,
// attaching it to both trajectories. Self-paired games are rejected before
// they can reach the numerical core.
func (b *Base) CreateGame(white, black string, outcome Outcome, day int, handicap Handicap) (*Game, error) {
	if white == black {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("player %q cannot play itself", white)}
	}

	wp := b.Player(white)
	bp := b.Player(black)
	game := &Game{
		Day:      day,
		White:    wp,
		Black:    bp,
		Outcome:  outcome,
		Handicap: handicap,
	}
	game.whitePoint = wp.Trajectory.pointForDay(day)
	game.blackPoint = bp.Trajectory.pointForDay(day)

	switch outcome {
	case WhiteWins:
		game.whitePoint.wonGames = append(game.whitePoint.wonGames, game)
		game.blackPoint.lostGames = append(game.blackPoint.lostGames, game)
	case BlackWins:
		game.blackPoint.wonGames = append(game.blackPoint.wonGames, game)
		game.whitePoint.lostGames = append(game.whitePoint.lostGames, game)
	case Draw:
		// Placeholder outcome: the game is recorded but contributes no
		// likelihood term on either side.
	}

	b.games = append(b.games, game)
	return game, nil
}

// Games returns all recorded games in insertion order.
func (b *Base) Games() []*Game { return b.games }

// Iterate runs the given number of full Newton passes over every player.
func (b *Base) Iterate(passes int) error {
	for i := 0; i < passes; i++ {
		if err := b.runOnePass(); err != nil {
			return err
		}
	}
	return nil
}

// IterateUntil runs passes until the total log-likelihood change drops below
// tolerance or maxPasses is exhausted, then refreshes uncertainties. Returns
// the number of passes run.
func (b *Base) IterateUntil(ctx context.Context, maxPasses int, tolerance float64) (int, error) {
	previous, err := b.LogLikelihood()
	if err != nil {
		return 0, err
	}

	passes := 0
	for passes < maxPasses {
		if err := ctx.Err(); err != nil {
			return passes, err
		}
		if err := b.runOnePass(); err != nil {
			return passes, err
		}
		passes++

		current, err := b.LogLikelihood()
		if err != nil {
			return passes, err
		}
		delta := math.Abs(current - previous)
		previous = current
		if delta < tolerance {
			b.logger.WithFields(logrus.Fields{
				"passes":         passes,
				"log_likelihood": current,
			}).Debug("Rating optimization converged")
			break
		}
	}

	if err := b.RefreshUncertainties(); err != nil {
		return passes, err
	}
	return passes, nil
}

func (b *Base) runOnePass() error {
	for _, name := range b.order {
		if err := b.players[name].Trajectory.NewtonStep(); err != nil {
			return err
		}
	}
	return nil
}

// RefreshUncertainties recomputes rating uncertainties for every player from
// the current state.
func (b *Base) RefreshUncertainties() error {
	for _, name := range b.order {
		if err := b.players[name].Trajectory.UpdateUncertainty(); err != nil {
			return err
		}
	}
	return nil
}

// LogLikelihood returns the summed log-posterior contribution of all players.
func (b *Base) LogLikelihood() (float64, error) {
	total := 0.0
	for _, name := range b.order {
		ll, err := b.players[name].Trajectory.LogLikelihood()
		if err != nil {
			return 0, err
		}
		total += ll
	}
	return total, nil
}

// RatingAt evaluates the named player's rating at an arbitrary day using
// Wiener-bridge interpolation between fitted points.
func (b *Base) RatingAt(name string, day float64) (RatingEstimate, error) {
	p, ok := b.players[name]
	if !ok {
		return RatingEstimate{}, fmt.Errorf("unknown player %q", name)
	}
	return p.Trajectory.RatingAt(day)
}

// Ratings returns the named player's rating history on the Elo scale.
func (b *Base) Ratings(name string) ([]RatingEstimate, error) {
	p, ok := b.players[name]
	if !ok {
		return nil, fmt.Errorf("unknown player %q", name)
	}
	history := p.Trajectory.RatingHistory()
	if len(history) == 0 {
		return nil, ErrNoHistory
	}
	return history, nil
}
