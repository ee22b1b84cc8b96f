// Package analytics provides bankroll and session statistics layered over
// the solver: Kelly bet sizing, session EV summaries, a Monte Carlo
// estimator, and tournament/progressive risk calculators. Everything here is
// a thin statistical wrapper; the exact numbers come from the engine.
package analytics

import "math"

// HandStdDev is the commonly used per-hand standard deviation of a
// blackjack outcome in bet units.
const HandStdDev = 1.15

// KellyFraction returns the fraction of bankroll to wager at the given
// player advantage, using even-money odds with win probability shifted by
// the advantage. The result is quarter-Kelly, clamped to [0.01, 0.25], the
// conservative sizing convention. Non-positive advantage returns 0.
func KellyFraction(advantage float64) float64 {
	if advantage <= 0 {
		return 0
	}
	winProb := 0.5 + advantage
	lossProb := 1 - winProb
	const odds = 1.0
	kelly := (odds*winProb - lossProb) / odds
	quarter := kelly * 0.25
	if quarter < 0.01 {
		return 0.01
	}
	if quarter > 0.25 {
		return 0.25
	}
	return quarter
}

// OptimalBet converts a Kelly fraction into a wager for the bankroll.
func OptimalBet(bankroll, advantage float64) float64 {
	if bankroll <= 0 {
		return 0
	}
	return bankroll * KellyFraction(advantage)
}

// BetSpread maps a true count onto a unit multiplier between 1 and maxUnits:
// one unit at or below +1, one extra unit per point above that.
func BetSpread(trueCount float64, maxUnits int) float64 {
	if maxUnits < 1 {
		maxUnits = 1
	}
	units := 1.0 + math.Max(0, trueCount-1)
	return math.Min(units, float64(maxUnits))
}

// RiskOfRuin estimates the probability of losing a bankroll of the given
// size in bet units while playing with edge and per-hand standard deviation
// sigma. Uses the diffusion approximation exp(-2·edge·units/sigma²); a
// non-positive edge means certain ruin in the long run.
func RiskOfRuin(edge, sigma, bankrollUnits float64) float64 {
	if bankrollUnits <= 0 {
		return 1
	}
	if edge <= 0 {
		return 1
	}
	if sigma <= 0 {
		sigma = HandStdDev
	}
	r := math.Exp(-2 * edge * bankrollUnits / (sigma * sigma))
	return math.Min(1, r)
}
