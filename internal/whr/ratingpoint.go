package whr

import "math"

// eloPerNatural converts natural ratings (r = ln gamma) to Elo points.
const eloPerNatural = 400.0 / math.Ln10

// EloToNatural converts an Elo rating to the natural (log-gamma) scale.
func EloToNatural(elo float64) float64 { return elo / eloPerNatural }

// NaturalToElo converts a natural rating to the Elo scale.
func NaturalToElo(r float64) float64 { return r * eloPerNatural }

// gameTerm holds the Bradley-Terry likelihood coefficients of one game from
// the perspective of the owning rating point: a win contributes
// ln(a*gamma) - ln(c*gamma + d), a loss ln(b) - ln(c*gamma + d).
type gameTerm struct {
	a, b, c, d float64
}

// RatingPoint is one player's rating state on one day. The first point of a
// trajectory is the anchor: it carries a virtual win and a virtual loss
// against a fixed reference of strength 1, pinning the otherwise
// unconstrained rating scale.
type RatingPoint struct {
	Day int

	r           float64
	isAnchor    bool
	uncertainty float64 // stddev of r, valid after a covariance pass

	wonGames  []*Game
	lostGames []*Game

	// term slices are rebuilt by refreshTerms at the start of every Newton
	// pass; match coefficients depend on opponents' current ratings and must
	// never survive across passes.
	wonTerms  []gameTerm
	lostTerms []gameTerm
}

func newRatingPoint(day int) *RatingPoint {
	return &RatingPoint{Day: day}
}

func (p *RatingPoint) gamma() float64 { return math.Exp(p.r) }

// Elo returns the rating on the Elo scale.
func (p *RatingPoint) Elo() float64 { return NaturalToElo(p.r) }

// SetElo overwrites the rating from an Elo value.
func (p *RatingPoint) SetElo(elo float64) { p.r = EloToNatural(elo) }

// Uncertainty returns the rating standard deviation on the natural scale.
func (p *RatingPoint) Uncertainty() float64 { return p.uncertainty }

// refreshTerms rebuilds the likelihood terms from the attached games and,
// for the anchor point, the virtual even match against the reference.
func (p *RatingPoint) refreshTerms() error {
	p.wonTerms = p.wonTerms[:0]
	p.lostTerms = p.lostTerms[:0]

	for _, g := range p.wonGames {
		adjusted, err := g.opponentAdjustedGamma(p)
		if err != nil {
			return err
		}
		p.wonTerms = append(p.wonTerms, gameTerm{a: 1, b: 0, c: 1, d: adjusted})
	}
	for _, g := range p.lostGames {
		adjusted, err := g.opponentAdjustedGamma(p)
		if err != nil {
			return err
		}
		p.lostTerms = append(p.lostTerms, gameTerm{a: 0, b: adjusted, c: 1, d: adjusted})
	}

	if p.isAnchor {
		p.wonTerms = append(p.wonTerms, gameTerm{a: 1, b: 0, c: 1, d: 1})
		p.lostTerms = append(p.lostTerms, gameTerm{a: 0, b: 1, c: 1, d: 1})
	}
	return nil
}

// logLikelihood returns this day's Bradley-Terry log-likelihood at the
// current rating. Terms must have been refreshed this pass.
func (p *RatingPoint) logLikelihood() float64 {
	gamma := p.gamma()
	sum := 0.0
	for _, t := range p.wonTerms {
		sum += math.Log(t.a*gamma) - math.Log(t.c*gamma+t.d)
	}
	for _, t := range p.lostTerms {
		sum += math.Log(t.b) - math.Log(t.c*gamma+t.d)
	}
	return sum
}

// dLogLikelihood returns d(logLikelihood)/dr.
func (p *RatingPoint) dLogLikelihood() float64 {
	gamma := p.gamma()
	sum := 0.0
	for _, t := range p.wonTerms {
		sum += t.c / (t.c*gamma + t.d)
	}
	for _, t := range p.lostTerms {
		sum += t.c / (t.c*gamma + t.d)
	}
	return float64(len(p.wonTerms)) - gamma*sum
}

// d2LogLikelihood returns d²(logLikelihood)/dr².
func (p *RatingPoint) d2LogLikelihood() float64 {
	gamma := p.gamma()
	sum := 0.0
	for _, t := range p.wonTerms {
		denom := t.c*gamma + t.d
		sum += t.c * t.d / (denom * denom)
	}
	for _, t := range p.lostTerms {
		denom := t.c*gamma + t.d
		sum += t.c * t.d / (denom * denom)
	}
	return -gamma * sum
}
