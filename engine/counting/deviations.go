package counting

import "bjsolver/engine"

// Deviation is one index play: above the true-count index the player takes
// Above instead of the table action.
type Deviation struct {
	HardTotal int
	Pair      bool // the hand is the (Total/2, Total/2) pair
	Upcard    engine.Rank
	Index     float64
	Above     engine.Action
}

// Illustrious18 is the classic Hi-Lo deviation set, ordered by value. The
// insurance index lives in Counter.ShouldInsure rather than here, since
// insurance is a side bet and not a play.
var Illustrious18 = []Deviation{
	{HardTotal: 16, Upcard: engine.Ten, Index: 0, Above: engine.Stand},
	{HardTotal: 15, Upcard: engine.Ten, Index: 4, Above: engine.Stand},
	{HardTotal: 20, Pair: true, Upcard: 5, Index: 5, Above: engine.Split},
	{HardTotal: 20, Pair: true, Upcard: 6, Index: 4, Above: engine.Split},
	{HardTotal: 10, Upcard: engine.Ten, Index: 4, Above: engine.Double},
	{HardTotal: 12, Upcard: 3, Index: 2, Above: engine.Stand},
	{HardTotal: 12, Upcard: 2, Index: 3, Above: engine.Stand},
	{HardTotal: 11, Upcard: engine.Ace, Index: 1, Above: engine.Double},
	{HardTotal: 9, Upcard: 2, Index: 1, Above: engine.Double},
	{HardTotal: 10, Upcard: engine.Ace, Index: 4, Above: engine.Double},
	{HardTotal: 9, Upcard: 7, Index: 3, Above: engine.Double},
	{HardTotal: 16, Upcard: 9, Index: 5, Above: engine.Stand},
	{HardTotal: 13, Upcard: 2, Index: -1, Above: engine.Stand},
	{HardTotal: 12, Upcard: 4, Index: 0, Above: engine.Stand},
	{HardTotal: 12, Upcard: 5, Index: -2, Above: engine.Stand},
	{HardTotal: 12, Upcard: 6, Index: -1, Above: engine.Stand},
	{HardTotal: 13, Upcard: 3, Index: -2, Above: engine.Stand},
	{HardTotal: 14, Upcard: 4, Index: -6, Above: engine.Stand},
}

// DecideWithCount returns the basic-strategy action adjusted by the
// Illustrious 18 at the counter's current true count. Deviations apply only
// to hard, non-busted hands and the two ten-pair splits.
func DecideWithCount(hand engine.Hand, upcard engine.Rank, rules engine.Rules, c *Counter) (engine.Action, error) {
	base, err := engine.Decide(hand, upcard, rules)
	if err != nil {
		return base, err
	}
	hv, err := engine.Evaluate(hand)
	if err != nil {
		return base, err
	}
	if hv.Soft || hv.Busted {
		return base, nil
	}
	tc := c.TrueCount()
	for _, d := range Illustrious18 {
		if d.HardTotal != hv.Total || d.Upcard != upcard || d.Pair != hv.Pair {
			continue
		}
		if tc >= d.Index {
			// A double or split deviation needs a legal two-card shape.
			if (d.Above == engine.Double || d.Above == engine.Split) && len(hand) != 2 {
				return base, nil
			}
			return d.Above, nil
		}
		return base, nil
	}
	return base, nil
}
