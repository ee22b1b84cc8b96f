package engine

// DoublePolicy controls doubling on hands produced by a split.
type DoublePolicy uint8

const (
	DoubleAfterSplitNone      DoublePolicy = iota // no doubling after a split
	DoubleAfterSplitAny                           // double any two-card split hand
	DoubleAfterSplitTenEleven                     // double only hard 10 and 11
)

// Rules is an immutable-per-query configuration snapshot. Every calculation
// receives it by value and never writes to it.
type Rules struct {
	Decks            int
	DealerHitsSoft17 bool
	DoubleAfterSplit DoublePolicy
	ResplitAllowed   bool
	MaxSplitHands    int
	BlackjackPayout  float64
	SurrenderAllowed bool
	DealerPeekOnTen  bool // dealer also peeks for blackjack under a ten upcard
	SplitAcesOneCard bool // split aces receive one card each and must stand

	// CountEVCoeff is the linear EV adjustment per point of true count.
	// There is no authoritative derivation for a single value, so it is a
	// tunable rule rather than a constant.
	CountEVCoeff float64
}

// DefaultRules returns the common six-deck S17 configuration: 3:2 blackjack,
// double on any two cards after a split, resplit to four hands, late
// surrender, dealer peeks under both ace and ten.
func DefaultRules() Rules {
	return Rules{
		Decks:            6,
		DealerHitsSoft17: false,
		DoubleAfterSplit: DoubleAfterSplitAny,
		ResplitAllowed:   true,
		MaxSplitHands:    4,
		BlackjackPayout:  1.5,
		SurrenderAllowed: true,
		DealerPeekOnTen:  true,
		SplitAcesOneCard: true,
		CountEVCoeff:     0.005,
	}
}

// maxSplitHands returns the effective split-hand cap, treating 0 as 2 when
// resplitting is off and 4 otherwise.
func (r *Rules) maxSplitHands() int {
	if r.MaxSplitHands > 0 {
		return r.MaxSplitHands
	}
	if r.ResplitAllowed {
		return 4
	}
	return 2
}
