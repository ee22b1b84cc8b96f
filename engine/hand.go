package engine

import "fmt"

// Hand is an ordered sequence of card ranks. All derived properties are
// recomputed on demand; the sequence itself is the only source of truth.
type Hand []Rank

// HandValue is the full derived view of a hand.
type HandValue struct {
	Total     int
	Soft      bool // at least one ace counted as 11 and total < 21
	Blackjack bool // exactly two cards totalling 21
	Busted    bool
	Pair      bool // exactly two cards of equal rank
}

// Evaluate computes the value of a hand. Aces start at 1 and are greedily
// promoted to 11 while the total stays at or below 21; at most one ace can
// ever hold a promotion (two would bust). A two-card 21 is a blackjack, not
// a soft hand, and the soft flag requires total < 21 so a multi-card 21
// is never reported soft either.
func Evaluate(hand Hand) (HandValue, error) {
	if len(hand) == 0 {
		return HandValue{}, fmt.Errorf("%w: empty hand", ErrInvalidCard)
	}
	total, aces := 0, 0
	for _, r := range hand {
		if !r.Valid() {
			return HandValue{}, fmt.Errorf("%w: %d", ErrInvalidCard, uint8(r))
		}
		total += int(r)
		if r == Ace {
			aces++
		}
	}
	promoted := 0
	for i := 0; i < aces && total+10 <= 21; i++ {
		total += 10
		promoted++
	}
	return HandValue{
		Total:     total,
		Soft:      promoted > 0 && total < 21,
		Blackjack: len(hand) == 2 && total == 21,
		Busted:    total > 21,
		Pair:      len(hand) == 2 && hand[0] == hand[1],
	}, nil
}
