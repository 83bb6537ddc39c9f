package whr

import (
	"fmt"
	"math"
	"sort"
)

const (
	// maxNaturalRating bounds Newton updates; anything beyond corresponds to
	// gamma ~ e^650 and means the posterior has degenerated.
	maxNaturalRating = 650.0

	// minSecondDerivative guards the 1-D Newton division. Below this the
	// update is skipped for the pass rather than failed.
	minSecondDerivative = 1e-10

	// defaultHessianEpsilon is subtracted from the Hessian diagonal to keep
	// it strictly negative-definite when likelihood curvature is near zero.
	// Empirical stabilizer, tunable through TrajectoryConfig.
	defaultHessianEpsilon = 0.001
)

// RatingEstimate is a rating on the externally reported Elo scale.
type RatingEstimate struct {
	Day         float64
	Elo         float64
	Uncertainty float64
}

// TrajectoryConfig tunes a player trajectory's prior and stabilizers.
type TrajectoryConfig struct {
	// W2 is the Wiener-process variance rate on the natural-rating scale:
	// variance accrued per day between observations.
	W2 float64
	// HessianEpsilon overrides the diagonal regularizer; zero means default.
	HessianEpsilon float64
}

// Trajectory owns the ordered sequence of rating points for one player and
// drives the per-player Newton optimization over its entire history.
type Trajectory struct {
	name    string
	w2      float64
	epsilon float64
	points  []*RatingPoint
}

// NewTrajectory creates an empty trajectory for the named player.
func NewTrajectory(name string, cfg TrajectoryConfig) *Trajectory {
	epsilon := cfg.HessianEpsilon
	if epsilon == 0 {
		epsilon = defaultHessianEpsilon
	}
	return &Trajectory{name: name, w2: cfg.W2, epsilon: epsilon}
}

// Points returns the trajectory's rating points in day order.
func (t *Trajectory) Points() []*RatingPoint { return t.points }

// pointForDay returns the rating point for the given day, creating and
// inserting it if absent. The earliest point is always the anchor.
func (t *Trajectory) pointForDay(day int) *RatingPoint {
	idx := sort.Search(len(t.points), func(i int) bool { return t.points[i].Day >= day })
	if idx < len(t.points) && t.points[idx].Day == day {
		return t.points[idx]
	}

	p := newRatingPoint(day)
	t.points = append(t.points, nil)
	copy(t.points[idx+1:], t.points[idx:])
	t.points[idx] = p

	for i, pt := range t.points {
		pt.isAnchor = i == 0
	}
	return p
}

// refreshTerms rebuilds every point's likelihood terms from the opponents'
// current ratings. Called at the start of each pass; stale terms from a
// previous pass are never reused.
func (t *Trajectory) refreshTerms() error {
	for _, p := range t.points {
		if err := p.refreshTerms(); err != nil {
			if ie, ok := err.(*InstabilityError); ok && ie.Player == "" {
				ie.Player = t.name
			}
			return err
		}
	}
	return nil
}

// sigma2 returns the Wiener variance accrued between each adjacent pair of
// observed days.
func (t *Trajectory) sigma2() []float64 {
	out := make([]float64, len(t.points)-1)
	for i := range out {
		out[i] = math.Abs(float64(t.points[i+1].Day-t.points[i].Day)) * t.w2
	}
	return out
}

// NewtonStep performs exactly one Newton update of the full rating vector.
// Convergence requires the driver to invoke it repeatedly across all players
// in Gauss-Seidel fashion; one player's block is solved given the others'
// current ratings.
func (t *Trajectory) NewtonStep() error {
	n := len(t.points)
	if n == 0 {
		return nil
	}
	if err := t.refreshTerms(); err != nil {
		return err
	}
	if n == 1 {
		t.stepOneDay()
		return nil
	}
	return t.stepMultiDay()
}

func (t *Trajectory) stepOneDay() {
	p := t.points[0]
	d2 := p.d2LogLikelihood()
	if math.Abs(d2) < minSecondDerivative {
		// Near-singular curvature: skip the update this pass.
		return
	}
	p.r -= p.dLogLikelihood() / d2
}

func (t *Trajectory) stepMultiDay() error {
	n := len(t.points)
	sigma2 := t.sigma2()

	g := make([]float64, n)
	for i, p := range t.points {
		prior := 0.0
		if i < n-1 {
			prior -= (p.r - t.points[i+1].r) / sigma2[i]
		}
		if i > 0 {
			prior -= (p.r - t.points[i-1].r) / sigma2[i-1]
		}
		g[i] = p.dLogLikelihood() + prior
	}

	h := t.hessian(sigma2)
	x, err := h.Solve(g)
	if err != nil {
		return fmt.Errorf("newton step for player %q: %w", t.name, err)
	}

	newR := make([]float64, n)
	for i, p := range t.points {
		newR[i] = p.r - x[i]
	}
	for _, r := range newR {
		if r > maxNaturalRating {
			return &InstabilityError{
				Player:  t.name,
				Ratings: newR,
				Reason:  fmt.Sprintf("natural rating exceeds %g", maxNaturalRating),
			}
		}
	}
	for i, p := range t.points {
		p.r = newR[i]
	}
	return nil
}

// hessian builds the tridiagonal Hessian of the log-posterior. The Markov
// property of the Wiener prior makes it exactly tridiagonal.
func (t *Trajectory) hessian(sigma2 []float64) Tridiagonal {
	n := len(t.points)
	diag := make([]float64, n)
	off := make([]float64, n-1)

	for i, p := range t.points {
		prior := 0.0
		if i < n-1 {
			prior -= 1 / sigma2[i]
		}
		if i > 0 {
			prior -= 1 / sigma2[i-1]
		}
		diag[i] = p.d2LogLikelihood() + prior - t.epsilon
	}
	for i := range off {
		off[i] = 1 / sigma2[i]
	}
	return Tridiagonal{Sub: off, Diag: diag, Super: off}
}

// LogLikelihood returns the player's current log-posterior contribution: day
// likelihoods plus the Wiener log density between adjacent days.
func (t *Trajectory) LogLikelihood() (float64, error) {
	if err := t.refreshTerms(); err != nil {
		return 0, err
	}
	n := len(t.points)
	sum := 0.0
	var sigma2 []float64
	if n > 1 {
		sigma2 = t.sigma2()
	}
	for i, p := range t.points {
		sum += p.logLikelihood()
		if i < n-1 {
			rd := p.r - t.points[i+1].r
			sum += -0.5*math.Log(2*math.Pi*sigma2[i]) - rd*rd/(2*sigma2[i])
		}
	}
	return sum, nil
}

// UpdateUncertainty recomputes each point's rating standard deviation from
// the diagonal of the inverse Hessian at the current state.
func (t *Trajectory) UpdateUncertainty() error {
	n := len(t.points)
	if n == 0 {
		return nil
	}
	if err := t.refreshTerms(); err != nil {
		return err
	}

	var h Tridiagonal
	if n == 1 {
		h = Tridiagonal{Diag: []float64{t.points[0].d2LogLikelihood() - t.epsilon}}
	} else {
		h = t.hessian(t.sigma2())
	}

	variance, _, err := h.InverseBands()
	if err != nil {
		return fmt.Errorf("covariance for player %q: %w", t.name, err)
	}
	for i, p := range t.points {
		p.uncertainty = math.Sqrt(math.Abs(variance[i]))
	}
	return nil
}

// RatingAt interpolates or extrapolates the rating at an arbitrary point in
// time. Interior queries use the Wiener-bridge formulas; queries outside the
// observed range reuse the nearest endpoint with variance growing linearly in
// elapsed time. The cross-covariance between the two bracketing days is
// treated as zero.
func (t *Trajectory) RatingAt(day float64) (RatingEstimate, error) {
	n := len(t.points)
	if n == 0 {
		return RatingEstimate{}, ErrNoHistory
	}

	first, last := t.points[0], t.points[n-1]
	if day <= float64(first.Day) {
		return t.extrapolate(day, first), nil
	}
	if day >= float64(last.Day) {
		return t.extrapolate(day, last), nil
	}

	idx := sort.Search(n, func(i int) bool { return float64(t.points[i].Day) >= day })
	if float64(t.points[idx].Day) == day {
		p := t.points[idx]
		return RatingEstimate{
			Day:         day,
			Elo:         p.Elo(),
			Uncertainty: NaturalToElo(p.uncertainty),
		}, nil
	}

	p1, p2 := t.points[idx-1], t.points[idx]
	t1, t2 := float64(p1.Day), float64(p2.Day)
	span := t2 - t1

	mu := (p1.r*(t2-day) + p2.r*(day-t1)) / span

	bridge := (t2 - day) * (day - t1) / span * t.w2
	s1, s2 := p1.uncertainty, p2.uncertainty
	endpoint := ((t2-day)*(t2-day)*s1*s1 + (day-t1)*(day-t1)*s2*s2) / (span * span)
	variance := bridge + endpoint

	return RatingEstimate{
		Day:         day,
		Elo:         NaturalToElo(mu),
		Uncertainty: NaturalToElo(math.Sqrt(variance)),
	}, nil
}

func (t *Trajectory) extrapolate(day float64, p *RatingPoint) RatingEstimate {
	elapsed := math.Abs(day - float64(p.Day))
	variance := p.uncertainty*p.uncertainty + elapsed*t.w2
	return RatingEstimate{
		Day:         day,
		Elo:         p.Elo(),
		Uncertainty: NaturalToElo(math.Sqrt(variance)),
	}
}

// RatingHistory returns (day, Elo, Elo-uncertainty) triples in day order.
func (t *Trajectory) RatingHistory() []RatingEstimate {
	history := make([]RatingEstimate, len(t.points))
	for i, p := range t.points {
		history[i] = RatingEstimate{
			Day:         float64(p.Day),
			Elo:         p.Elo(),
			Uncertainty: NaturalToElo(p.uncertainty),
		}
	}
	return history
}
