package analytics

import "math"

// TournamentParams describes a fixed-rounds tournament leg.
type TournamentParams struct {
	Bankroll float64 // current chips in bet units
	Target   float64 // chips needed to advance
	Rounds   int     // hands remaining
	Edge     float64 // per-hand edge at the intended bet size
	Sigma    float64 // per-hand standard deviation, default HandStdDev
}

// AdvanceProbability estimates the chance of reaching Target within Rounds
// under a normal approximation of the cumulative result.
func AdvanceProbability(p TournamentParams) float64 {
	if p.Bankroll >= p.Target {
		return 1
	}
	if p.Rounds <= 0 {
		return 0
	}
	sigma := p.Sigma
	if sigma <= 0 {
		sigma = HandStdDev
	}
	n := float64(p.Rounds)
	mean := n * p.Edge
	spread := sigma * math.Sqrt(n)
	need := p.Target - p.Bankroll
	z := (need - mean) / spread
	return 0.5 * math.Erfc(z/math.Sqrt2)
}

// TournamentEV is the expected prize value of the leg: the advance
// probability times the prize for advancing.
func TournamentEV(p TournamentParams, prize float64) float64 {
	return AdvanceProbability(p) * prize
}

// ProgressiveParams describes a martingale-style progression: the bet
// multiplies by Factor after each loss, up to Steps doublings.
type ProgressiveParams struct {
	BaseBet  float64
	Factor   float64 // bet multiplier per loss, classically 2
	Steps    int     // progression length before giving up
	LossProb float64 // per-hand loss probability
}

// ProgressiveRisk returns the probability of busting a full progression and
// the total units lost when it happens. The martingale's expected value
// stays negative for any house game; this quantifies the tail it hides.
func ProgressiveRisk(p ProgressiveParams) (bustProb, bustCost float64) {
	if p.Steps < 1 || p.LossProb <= 0 || p.LossProb >= 1 {
		return 0, 0
	}
	factor := p.Factor
	if factor <= 1 {
		factor = 2
	}
	bustProb = math.Pow(p.LossProb, float64(p.Steps))
	bet := p.BaseBet
	for i := 0; i < p.Steps; i++ {
		bustCost += bet
		bet *= factor
	}
	return bustProb, bustCost
}
