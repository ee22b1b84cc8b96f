package engine

import "fmt"

// Static basic-strategy lookup tables for the canonical six-deck S17 game.
// Columns are the dealer upcard A,2,3,4,5,6,7,8,9,T. The tables are a cheap
// baseline and comparator; the recursive engines compute exact
// composition-dependent EV that diverges from these once the shoe depletes.

// Shorthand to keep the table literals readable.
const (
	sS = Stand
	sH = Hit
	sD = Double
	sP = Split
	sR = Surrender
)

// hardStrategy rows cover hard totals 5 through 21.
var hardStrategy = [18][10]Action{
	{sH, sH, sH, sH, sH, sH, sH, sH, sH, sH}, // 5
	{sH, sH, sH, sH, sH, sH, sH, sH, sH, sH}, // 6
	{sH, sH, sH, sH, sH, sH, sH, sH, sH, sH}, // 7
	{sH, sH, sH, sH, sH, sH, sH, sH, sH, sH}, // 8
	{sH, sH, sD, sD, sD, sD, sH, sH, sH, sH}, // 9
	{sD, sD, sD, sD, sD, sD, sD, sD, sH, sH}, // 10
	{sH, sD, sD, sD, sD, sD, sD, sD, sD, sD}, // 11
	{sH, sH, sS, sS, sS, sS, sH, sH, sH, sH}, // 12
	{sH, sS, sS, sS, sS, sS, sH, sH, sH, sH}, // 13
	{sH, sS, sS, sS, sS, sS, sH, sH, sH, sH}, // 14
	{sH, sS, sS, sS, sS, sS, sH, sH, sH, sR}, // 15
	{sH, sS, sS, sS, sS, sS, sH, sH, sR, sR}, // 16
	{sS, sS, sS, sS, sS, sS, sS, sS, sS, sS}, // 17
	{sS, sS, sS, sS, sS, sS, sS, sS, sS, sS}, // 18
	{sS, sS, sS, sS, sS, sS, sS, sS, sS, sS}, // 19
	{sS, sS, sS, sS, sS, sS, sS, sS, sS, sS}, // 20
	{sS, sS, sS, sS, sS, sS, sS, sS, sS, sS}, // 21
}

// softStrategy rows cover soft totals 13 (A,2) through 20 (A,9).
var softStrategy = [8][10]Action{
	{sH, sH, sH, sD, sD, sH, sH, sH, sH, sH}, // A,2
	{sH, sH, sH, sD, sD, sH, sH, sH, sH, sH}, // A,3
	{sH, sH, sD, sD, sD, sH, sH, sH, sH, sH}, // A,4
	{sH, sH, sD, sD, sD, sH, sH, sH, sH, sH}, // A,5
	{sH, sD, sD, sD, sD, sH, sH, sH, sH, sH}, // A,6
	{sS, sS, sD, sD, sD, sS, sS, sH, sH, sH}, // A,7
	{sS, sS, sS, sS, sS, sS, sS, sS, sS, sS}, // A,8
	{sS, sS, sS, sS, sS, sS, sS, sS, sS, sS}, // A,9
}

// pairStrategy rows cover pairs A,A through T,T. Non-split cells fall
// through to the soft and hard tables via the precedence in Decide.
var pairStrategy = [10][10]Action{
	{sP, sP, sP, sP, sP, sP, sP, sP, sP, sP}, // A,A
	{sH, sH, sH, sP, sP, sH, sH, sH, sH, sH}, // 2,2
	{sH, sH, sP, sP, sP, sH, sH, sH, sH, sH}, // 3,3
	{sH, sH, sH, sP, sP, sH, sH, sH, sH, sH}, // 4,4
	{sH, sD, sD, sD, sD, sD, sD, sD, sH, sH}, // 5,5 plays as hard 10
	{sH, sP, sP, sP, sP, sH, sH, sH, sH, sH}, // 6,6
	{sH, sP, sP, sP, sP, sP, sH, sH, sH, sH}, // 7,7
	{sP, sP, sP, sP, sP, sP, sP, sP, sP, sP}, // 8,8
	{sS, sP, sP, sP, sP, sS, sP, sP, sS, sS}, // 9,9
	{sS, sS, sS, sS, sS, sS, sS, sS, sS, sS}, // T,T
}

// upcardIndex maps a dealer upcard to a table column: ace first, then 2–10.
func upcardIndex(upcard Rank) int {
	if upcard == Ace {
		return 0
	}
	return int(upcard) - 1
}

// Decide returns the table-recommended action for a hand against an upcard.
// Precedence is pair, then soft, then hard, then the hit-under-17 fallback.
// A recommended Double or Surrender that the rules or hand shape forbid is
// downgraded to Hit; a pair cell is consulted only while splitting is still
// legal.
func Decide(hand Hand, upcard Rank, rules Rules) (Action, error) {
	hv, err := Evaluate(hand)
	if err != nil {
		return Stand, err
	}
	if !upcard.Valid() {
		return Stand, fmt.Errorf("%w: upcard %d", ErrInvalidCard, uint8(upcard))
	}
	col := upcardIndex(upcard)
	twoCards := len(hand) == 2

	if hv.Pair && rules.maxSplitHands() >= 2 {
		a := pairStrategy[upcardIndex(hand[0])][col]
		switch a {
		case Split:
			return Split, nil
		case Double:
			// The 5,5 row doubles as hard 10 when doubling is legal.
			if twoCards {
				return Double, nil
			}
		}
		// Fall through to soft/hard handling for non-split cells.
	}

	if hv.Soft && hv.Total >= 13 && hv.Total <= 20 {
		a := softStrategy[hv.Total-13][col]
		if a == Double && !twoCards {
			return Hit, nil
		}
		return a, nil
	}

	if hv.Total >= 5 && hv.Total <= 21 {
		a := hardStrategy[hv.Total-5][col]
		switch a {
		case Surrender:
			if rules.SurrenderAllowed && twoCards {
				return Surrender, nil
			}
			return Hit, nil
		case Double:
			if !twoCards {
				return Hit, nil
			}
		}
		return a, nil
	}

	if hv.Total < 17 {
		return Hit, nil
	}
	return Stand, nil
}
