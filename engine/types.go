package engine

import (
	"errors"
	"fmt"
	"math"
)

// Rank is a card rank 1–10. Aces are 1; every ten-value card (10, J, Q, K)
// is rank 10. Suit identity never affects any calculation.
type Rank uint8

const (
	Ace Rank = 1
	Ten Rank = 10
)

// Valid reports whether r is inside the 1–10 model range.
func (r Rank) Valid() bool { return r >= Ace && r <= Ten }

func (r Rank) String() string {
	switch {
	case r == Ace:
		return "A"
	case r == Ten:
		return "T"
	case r.Valid():
		return fmt.Sprintf("%d", uint8(r))
	}
	return fmt.Sprintf("Rank(%d)", uint8(r))
}

// Sentinel errors for the taxonomy in §boundary contracts: invalid input,
// empty-deck probability queries, and distribution invariant violations.
var (
	ErrInvalidCard          = errors.New("invalid card rank")
	ErrDeckExhausted        = errors.New("deck exhausted")
	ErrProbabilityInvariant = errors.New("dealer probabilities do not sum to 1")
)

// EVUnavailable is the sentinel returned when an action's EV is requested on
// a hand shape or rule configuration that forbids it. It sits outside the
// reachable EV range, so callers probing every action can filter on it.
const EVUnavailable = -2.0

// Action is the closed set of player decisions.
type Action uint8

const (
	Stand Action = iota
	Hit
	Double
	Split
	Surrender
)

func (a Action) String() string {
	switch a {
	case Stand:
		return "stand"
	case Hit:
		return "hit"
	case Double:
		return "double"
	case Split:
		return "split"
	case Surrender:
		return "surrender"
	}
	return "unknown"
}

// ParseAction converts the external string form back into an Action. Strings
// exist only at the application boundary; everything internal switches on the
// enum.
func ParseAction(s string) (Action, error) {
	switch s {
	case "stand":
		return Stand, nil
	case "hit":
		return Hit, nil
	case "double":
		return Double, nil
	case "split":
		return Split, nil
	case "surrender":
		return Surrender, nil
	}
	return Stand, fmt.Errorf("unknown action %q", s)
}

// Distribution holds the dealer's seven terminal-outcome probabilities.
// P21 counts only non-natural 21s; a natural lands in Blackjack. For any
// valid upcard and deck the seven buckets sum to 1.
type Distribution struct {
	P17       float64
	P18       float64
	P19       float64
	P20       float64
	P21       float64
	Bust      float64
	Blackjack float64
}

// Total sums all seven buckets. It is the first-class verification hook for
// the sum-to-1 invariant.
func (d Distribution) Total() float64 {
	return d.P17 + d.P18 + d.P19 + d.P20 + d.P21 + d.Bust + d.Blackjack
}

// Verify checks the sum-to-1 invariant within tol.
func (d Distribution) Verify(tol float64) error {
	if diff := math.Abs(d.Total() - 1.0); diff > tol {
		return fmt.Errorf("%w: total %.12f (off by %.3g)", ErrProbabilityInvariant, d.Total(), diff)
	}
	return nil
}

// addScaled accumulates p-weighted buckets of o into d.
func (d *Distribution) addScaled(o Distribution, p float64) {
	d.P17 += p * o.P17
	d.P18 += p * o.P18
	d.P19 += p * o.P19
	d.P20 += p * o.P20
	d.P21 += p * o.P21
	d.Bust += p * o.Bust
	d.Blackjack += p * o.Blackjack
}

// scale multiplies every bucket by f.
func (d Distribution) scale(f float64) Distribution {
	d.P17 *= f
	d.P18 *= f
	d.P19 *= f
	d.P20 *= f
	d.P21 *= f
	d.Bust *= f
	d.Blackjack *= f
	return d
}
