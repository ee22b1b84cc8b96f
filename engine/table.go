package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// TableCell is one solved starting-hand entry.
type TableCell struct {
	First  Rank
	Second Rank
	Upcard Rank
	EVs    ActionEVs
}

// Table is the exact solution of every distinct starting hand against every
// upcard off a fresh shoe, plus the deal-weighted overall expectation.
type Table struct {
	Cells []TableCell

	// HouseEdge is the player's expected loss per unit bet under optimal
	// play, deal probabilities taken from the fresh shoe.
	HouseEdge float64
}

// Cell returns the entry for an unordered starting pair against an upcard.
func (t *Table) Cell(first, second, upcard Rank) (TableCell, bool) {
	if first > second {
		first, second = second, first
	}
	for _, c := range t.Cells {
		if c.First == first && c.Second == second && c.Upcard == upcard {
			return c, true
		}
	}
	return TableCell{}, false
}

// GenerateTable solves all 550 (unordered starting pair, upcard)
// combinations. Every combination owns its deck copy, so the cells fan out
// across workers with no shared mutable state beyond the engine caches.
// Workers stop early if ctx is cancelled.
func GenerateTable(ctx context.Context, e *EVEngine, rules Rules) (*Table, error) {
	type job struct {
		first, second, upcard Rank
	}
	var jobs []job
	for first := Ace; first <= Ten; first++ {
		for second := first; second <= Ten; second++ {
			for upcard := Ace; upcard <= Ten; upcard++ {
				jobs = append(jobs, job{first, second, upcard})
			}
		}
	}

	cells := make([]TableCell, len(jobs))
	weighted := make([]float64, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			deck := NewDeck(rules.Decks)
			w := dealWeight(deck, j.first, j.second, j.upcard)
			deck.Remove(j.first)
			deck.Remove(j.second)
			// The upcard stays in the deck; the dealer engine removes it.
			evs, err := e.Evaluate(Hand{j.first, j.second}, j.upcard, deck, rules)
			if err != nil {
				return err
			}
			cells[i] = TableCell{First: j.first, Second: j.second, Upcard: j.upcard, EVs: evs}
			weighted[i] = w * evs.BestEV
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t := &Table{Cells: cells}
	for _, w := range weighted {
		t.HouseEdge -= w
	}
	return t, nil
}

// dealWeight is the probability of being dealt the unordered pair
// (first, second) while the dealer shows upcard, off a fresh shoe. Unequal
// pairs double for the two orderings.
func dealWeight(deck Deck, first, second, upcard Rank) float64 {
	d := deck
	n0 := float64(d.Total())
	p := float64(d.Count(first)) / n0
	d.Remove(first)
	p *= float64(d.Count(second)) / float64(d.Total())
	d.Remove(second)
	p *= float64(d.Count(upcard)) / float64(d.Total())
	if first != second {
		p *= 2
	}
	return p
}
