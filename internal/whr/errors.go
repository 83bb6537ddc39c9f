package whr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvedSide indicates a game was evaluated before both players had
	// a rating point attached. This is an attachment-ordering bug in the
	// caller, not a recoverable runtime condition.
	ErrUnresolvedSide = errors.New("game side has no rating point attached")

	// ErrNoHistory indicates a rating query against a player with no games.
	ErrNoHistory = errors.New("player has no rating history")
)

// InstabilityError reports a degenerate posterior: either a Newton update
// produced a natural rating beyond the safe range, or a game's adjusted
// opponent strength evaluated to zero or a non-finite value. It is not
// retried automatically; callers may stop iterating or widen the prior.
type InstabilityError struct {
	Player  string
	Ratings []float64
	Reason  string
}

func (e *InstabilityError) Error() string {
	if len(e.Ratings) > 0 {
		return fmt.Sprintf("unstable rating for player %q: %s (ratings %v)", e.Player, e.Reason, e.Ratings)
	}
	return fmt.Sprintf("unstable rating for player %q: %s", e.Player, e.Reason)
}

// InvalidInputError reports input rejected before it reaches the numerical
// core, such as a player paired against itself.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}
