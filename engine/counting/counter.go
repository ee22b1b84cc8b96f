package counting

import (
	"fmt"

	"bjsolver/engine"
)

// Counter tracks a running count over observed cards for one shoe. It
// satisfies engine.TrueCounter, so it plugs straight into
// EVEngine.EvaluateWithCounter. Not safe for concurrent use; one counter
// belongs to one seat.
type Counter struct {
	sys       System
	decks     int
	running   int
	cardsSeen int
	acesSeen  int
}

// NewCounter starts a fresh count for an n-deck shoe. n < 1 is treated
// as 1.
func NewCounter(sys System, decks int) *Counter {
	if decks < 1 {
		decks = 1
	}
	return &Counter{sys: sys, decks: decks}
}

// System returns the counting system in use.
func (c *Counter) System() System { return c.sys }

// Observe records one seen card.
func (c *Counter) Observe(r engine.Rank) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %d", engine.ErrInvalidCard, uint8(r))
	}
	c.running += c.sys.Tag(r)
	c.cardsSeen++
	if r == engine.Ace {
		c.acesSeen++
	}
	return nil
}

// ObserveAll records a sequence of seen cards.
func (c *Counter) ObserveAll(cards []engine.Rank) error {
	for _, r := range cards {
		if err := c.Observe(r); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears the count for a fresh shoe.
func (c *Counter) Reset() {
	c.running, c.cardsSeen, c.acesSeen = 0, 0, 0
}

// RunningCount returns the raw running count.
func (c *Counter) RunningCount() int { return c.running }

// CardsSeen returns the number of observed cards.
func (c *Counter) CardsSeen() int { return c.cardsSeen }

// AcesSeen returns the observed ace count, the side count UAPC corrects
// with.
func (c *Counter) AcesSeen() int { return c.acesSeen }

// DecksRemaining estimates undealt decks, floored at half a deck so a deep
// shoe cannot blow the true count up.
func (c *Counter) DecksRemaining() float64 {
	rem := float64(c.decks*52-c.cardsSeen) / 52
	if rem < 0.5 {
		return 0.5
	}
	return rem
}

// Penetration returns the dealt fraction of the shoe.
func (c *Counter) Penetration() float64 {
	return float64(c.cardsSeen) / float64(c.decks*52)
}

// TrueCount normalizes the running count per the system's convention:
// running count over decks remaining, or for UAPC-style systems an
// ace-adjusted count over half decks remaining (floored at a quarter
// deck).
func (c *Counter) TrueCount() float64 {
	if c.sys.Mode == PerHalfDeckAceAdjusted {
		adjusted := float64(c.running - 3*c.acesSeen)
		rem := float64(c.decks*52-c.cardsSeen) / 52
		if rem < 0.25 {
			rem = 0.25
		}
		return adjusted / (rem * 2)
	}
	return float64(c.running) / c.DecksRemaining()
}

// Advantage converts the true count into a player-edge estimate: half a
// percent per point over a half-percent base house edge, capped at ±10%.
func (c *Counter) Advantage() float64 {
	adv := -0.005 + c.TrueCount()*0.005
	if adv > 0.10 {
		return 0.10
	}
	if adv < -0.10 {
		return -0.10
	}
	return adv
}

// ShouldInsure reports whether insurance is a positive-EV side bet at the
// current count. The Hi-Lo index is a true count of +3.
func (c *Counter) ShouldInsure() bool {
	return c.TrueCount() >= 3.0
}
