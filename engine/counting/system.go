// Package counting implements card-counting systems and the running-count
// bookkeeping that feeds the EV engine its true-count adjustment. The core
// engine consumes only the scalar; everything here is the collaborator side
// of that boundary.
package counting

import "bjsolver/engine"

// TrueCountMode selects how a system normalizes its running count.
type TrueCountMode uint8

const (
	// PerDeck divides the running count by full decks remaining.
	PerDeck TrueCountMode = iota
	// PerHalfDeckAceAdjusted divides an ace-adjusted running count by
	// half decks remaining (the UAPC convention).
	PerHalfDeckAceAdjusted
)

// System describes one counting system: per-rank tags indexed A,2..9,T and
// the standard effectiveness correlations.
type System struct {
	Name string
	Tags [10]int

	BettingCorrelation   float64
	PlayingEfficiency    float64
	InsuranceCorrelation float64

	Mode TrueCountMode
}

// Tag returns the count tag for a rank.
func (s System) Tag(r engine.Rank) int {
	if !r.Valid() {
		return 0
	}
	if r == engine.Ace {
		return s.Tags[0]
	}
	return s.Tags[int(r)-1]
}

// Balanced reports whether a full deck counts back to zero. Ten-value tags
// weigh four ranks.
func (s System) Balanced() bool {
	sum := 0
	for i, tag := range s.Tags {
		if i == 9 {
			sum += 4 * tag
			continue
		}
		sum += tag
	}
	return sum == 0
}

// The built-in systems. Tag order is A,2,3,4,5,6,7,8,9,T.
var (
	HiLo = System{
		Name: "Hi-Lo",
		Tags: [10]int{-1, 1, 1, 1, 1, 1, 0, 0, 0, -1},
		BettingCorrelation: 0.97, PlayingEfficiency: 0.51, InsuranceCorrelation: 0.76,
	}
	HiOptI = System{
		Name: "Hi-Opt I",
		Tags: [10]int{0, 0, 1, 1, 1, 1, 0, 0, 0, -1},
		BettingCorrelation: 0.88, PlayingEfficiency: 0.61, InsuranceCorrelation: 0.85,
	}
	HiOptII = System{
		Name: "Hi-Opt II",
		Tags: [10]int{0, 1, 1, 2, 2, 1, 1, 0, 0, -2},
		BettingCorrelation: 0.91, PlayingEfficiency: 0.67, InsuranceCorrelation: 0.85,
	}
	OmegaII = System{
		Name: "Omega II",
		Tags: [10]int{0, 1, 1, 2, 2, 2, 1, 0, -1, -2},
		BettingCorrelation: 0.92, PlayingEfficiency: 0.69, InsuranceCorrelation: 0.85,
	}
	Zen = System{
		Name: "Zen Count",
		Tags: [10]int{-1, 1, 1, 2, 2, 2, 1, 0, 0, -2},
		BettingCorrelation: 0.96, PlayingEfficiency: 0.63, InsuranceCorrelation: 0.85,
	}
	UstonAPC = System{
		Name: "Uston APC",
		Tags: [10]int{0, 1, 2, 2, 3, 2, 2, 1, -1, -3},
		BettingCorrelation: 0.69, PlayingEfficiency: 0.55, InsuranceCorrelation: 0.78,
	}
	// RAPC counts aces heavily negative and divides per full deck.
	RAPC = System{
		Name: "RAPC",
		Tags: [10]int{-4, 2, 3, 3, 4, 3, 2, 0, -1, -3},
		BettingCorrelation: 0.92, PlayingEfficiency: 0.53, InsuranceCorrelation: 0.71,
	}
	// UAPC keeps the ace neutral in the running count and corrects for it
	// in the true count instead.
	UAPC = System{
		Name: "UAPC",
		Tags: [10]int{0, 1, 2, 2, 3, 2, 2, 1, -1, -3},
		BettingCorrelation: 0.91, PlayingEfficiency: 0.54, InsuranceCorrelation: 0.78,
		Mode: PerHalfDeckAceAdjusted,
	}
)

// Systems lists every built-in system.
func Systems() []System {
	return []System{HiLo, HiOptI, HiOptII, OmegaII, Zen, UstonAPC, RAPC, UAPC}
}

// ByName looks up a built-in system case-sensitively by its display name.
func ByName(name string) (System, bool) {
	for _, s := range Systems() {
		if s.Name == name {
			return s, true
		}
	}
	return System{}, false
}
