package engine

import "fmt"

// deckSlots: ranks ace through nine occupy slots 0–8; the four ten-value
// sub-ranks (10, J, Q, K) occupy slots 9–12. Sub-slot granularity is kept so
// a shoe built from observed cards stays an honest ledger, but every
// probability query aggregates the four ten-value slots into one rank-10
// figure.
const deckSlots = 13

// Deck is an exact remaining-card ledger with value semantics: recursive
// branches copy it freely and never share mutable state. It is a small
// fixed-size array, so the copy is a stack move, not an allocation.
type Deck struct {
	counts [deckSlots]uint8
	total  uint16
}

// NewDeck returns a fresh shoe of n standard 52-card decks. n < 1 is
// treated as 1.
func NewDeck(n int) Deck {
	if n < 1 {
		n = 1
	}
	var d Deck
	for i := 0; i < deckSlots; i++ {
		d.counts[i] = uint8(4 * n)
	}
	d.total = uint16(52 * n)
	return d
}

// Total returns the number of cards remaining.
func (d *Deck) Total() int { return int(d.total) }

// Count returns the remaining count for rank r; rank 10 aggregates the four
// ten-value sub-slots. Invalid ranks count zero.
func (d *Deck) Count(r Rank) int {
	if !r.Valid() {
		return 0
	}
	if r == Ten {
		return int(d.counts[9]) + int(d.counts[10]) + int(d.counts[11]) + int(d.counts[12])
	}
	return int(d.counts[r-1])
}

// Remove takes one card of rank r out of the deck. Removing a rank with no
// cards left is a no-op; recursive callers guard with Count before
// branching. For rank 10 the card comes from the fullest ten-value sub-slot,
// which keeps removal deterministic.
func (d *Deck) Remove(r Rank) {
	if !r.Valid() {
		return
	}
	if r == Ten {
		best := -1
		for i := 9; i < deckSlots; i++ {
			if d.counts[i] > 0 && (best < 0 || d.counts[i] > d.counts[best]) {
				best = i
			}
		}
		if best < 0 {
			return
		}
		d.counts[best]--
		d.total--
		return
	}
	if d.counts[r-1] == 0 {
		return
	}
	d.counts[r-1]--
	d.total--
}

// Restore puts one card of rank r back. For rank 10 the card lands in the
// emptiest ten-value sub-slot.
func (d *Deck) Restore(r Rank) {
	if !r.Valid() {
		return
	}
	if r == Ten {
		best := 9
		for i := 10; i < deckSlots; i++ {
			if d.counts[i] < d.counts[best] {
				best = i
			}
		}
		d.counts[best]++
		d.total++
		return
	}
	d.counts[r-1]++
	d.total++
}

// SetCount overrides the remaining count for rank r. A rank-10 count is
// spread as evenly as possible across the four sub-slots.
func (d *Deck) SetCount(r Rank, n int) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidCard, uint8(r))
	}
	if n < 0 || n > 255 {
		return fmt.Errorf("count %d out of range for rank %v", n, r)
	}
	d.total -= uint16(d.Count(r))
	if r == Ten {
		for i := 9; i < deckSlots; i++ {
			c := n / 4
			if n%4 > i-9 {
				c++
			}
			d.counts[i] = uint8(c)
		}
	} else {
		d.counts[r-1] = uint8(n)
	}
	d.total += uint16(n)
	return nil
}

// Probability returns the chance of drawing rank r from the deck.
func (d *Deck) Probability(r Rank) (float64, error) {
	if !r.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCard, uint8(r))
	}
	if d.total == 0 {
		return 0, ErrDeckExhausted
	}
	return float64(d.Count(r)) / float64(d.total), nil
}

// deckKey is the aggregate per-rank fingerprint used in memoization keys.
// Two decks with the same aggregate composition are interchangeable for
// every probability the engines compute, so sub-slot layout stays out of
// the key.
type deckKey [10]uint8

func (d *Deck) key() deckKey {
	var k deckKey
	for i := 0; i < 9; i++ {
		k[i] = d.counts[i]
	}
	k[9] = uint8(d.Count(Ten))
	return k
}
