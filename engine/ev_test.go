package engine

import (
	"math"
	"testing"
)

func newTestEngine() *EVEngine {
	return NewEVEngine(NewDealerEngine(0), 0, 0)
}

func TestStandEVBasics(t *testing.T) {
	e := newTestEngine()
	rules := DefaultRules()
	deck := NewDeck(6)

	// Standing on 20 against a 6 is strongly positive.
	ev, err := e.StandEV(Hand{Ten, Ten}, 6, deck, rules)
	if err != nil {
		t.Fatal(err)
	}
	if ev < 0.5 {
		t.Errorf("stand 20 vs 6 = %v, want > 0.5", ev)
	}

	// Standing on 12 against a 10 is strongly negative.
	ev, err = e.StandEV(Hand{Ten, 2}, Ten, deck, rules)
	if err != nil {
		t.Fatal(err)
	}
	if ev > -0.4 {
		t.Errorf("stand 12 vs 10 = %v, want < -0.4", ev)
	}

	// A busted hand is a flat loss.
	ev, err = e.StandEV(Hand{Ten, 9, 5}, 6, deck, rules)
	if err != nil {
		t.Fatal(err)
	}
	if ev != -1 {
		t.Errorf("stand busted = %v, want -1", ev)
	}
}

func TestStandEVBlackjack(t *testing.T) {
	e := newTestEngine()
	rules := DefaultRules()
	deck := NewDeck(6)
	deck.Remove(Ace)
	deck.Remove(Ten)

	// Natural vs a 6: no dealer natural possible, full 3:2 payout.
	ev, err := e.StandEV(Hand{Ace, Ten}, 6, deck, rules)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(ev-1.5) > 1e-12 {
		t.Errorf("natural vs 6 = %v, want 1.5", ev)
	}

	// Natural vs an ace: dealer natural pushes, everything else pays 1.5.
	dist, err := e.Dealer().Probabilities(Ace, deck, rules)
	if err != nil {
		t.Fatal(err)
	}
	ev, err = e.StandEV(Hand{Ace, Ten}, Ace, deck, rules)
	if err != nil {
		t.Fatal(err)
	}
	want := (1 - dist.Blackjack) * 1.5
	if math.Abs(ev-want) > 1e-12 {
		t.Errorf("natural vs ace = %v, want %v", ev, want)
	}
}

func TestHitEVSanity(t *testing.T) {
	e := newTestEngine()
	rules := DefaultRules()
	deck := NewDeck(6)

	// Hitting hard 20 is ruinous; standing dominates.
	hit, err := e.HitEV(Hand{Ten, Ten}, 6, deck, rules)
	if err != nil {
		t.Fatal(err)
	}
	stand, err := e.StandEV(Hand{Ten, Ten}, 6, deck, rules)
	if err != nil {
		t.Fatal(err)
	}
	if hit >= stand {
		t.Errorf("hit 20 (%v) not worse than stand (%v)", hit, stand)
	}

	// Hitting hard 5 always beats standing on it.
	hit, err = e.HitEV(Hand{2, 3}, Ten, deck, rules)
	if err != nil {
		t.Fatal(err)
	}
	stand, err = e.StandEV(Hand{2, 3}, Ten, deck, rules)
	if err != nil {
		t.Fatal(err)
	}
	if hit <= stand {
		t.Errorf("hit 5 (%v) not better than stand (%v)", hit, stand)
	}
}

func TestDoubleEVEleven(t *testing.T) {
	e := newTestEngine()
	rules := DefaultRules()
	deck := NewDeck(6)

	evs, err := e.Evaluate(Hand{6, 5}, 6, deck, rules)
	if err != nil {
		t.Fatal(err)
	}
	if evs.Best != Double {
		t.Errorf("11 vs 6 best = %v (%+v), want Double", evs.Best, evs)
	}
	if evs.Double <= evs.Hit {
		t.Errorf("double (%v) not better than hit (%v)", evs.Double, evs.Hit)
	}
}

func TestActionUnavailableSentinels(t *testing.T) {
	e := newTestEngine()
	rules := DefaultRules()
	deck := NewDeck(6)

	// Double and surrender need a two-card hand; split needs a pair.
	evs, err := e.Evaluate(Hand{2, 4, 5}, 6, deck, rules)
	if err != nil {
		t.Fatal(err)
	}
	if evs.Double != EVUnavailable {
		t.Errorf("three-card double = %v, want EVUnavailable", evs.Double)
	}
	if evs.Surrender != EVUnavailable {
		t.Errorf("three-card surrender = %v, want EVUnavailable", evs.Surrender)
	}
	if evs.Split != EVUnavailable {
		t.Errorf("non-pair split = %v, want EVUnavailable", evs.Split)
	}
	if evs.Insurance != EVUnavailable {
		t.Errorf("insurance vs 6 = %v, want EVUnavailable", evs.Insurance)
	}

	noSur := rules
	noSur.SurrenderAllowed = false
	if ev := e.SurrenderEV(Hand{Ten, 6}, noSur); ev != EVUnavailable {
		t.Errorf("surrender disabled = %v, want EVUnavailable", ev)
	}
}

func TestSplitTensIsWrong(t *testing.T) {
	e := newTestEngine()
	rules := DefaultRules()
	rules.DoubleAfterSplit = DoubleAfterSplitNone
	rules.ResplitAllowed = false
	deck := NewDeck(6)
	deck.Remove(Ten)
	deck.Remove(Ten)

	evs, err := e.Evaluate(Hand{Ten, Ten}, 6, deck, rules)
	if err != nil {
		t.Fatal(err)
	}
	if evs.Best != Stand {
		t.Errorf("T,T vs 6 best = %v, want Stand", evs.Best)
	}
	if evs.Split == EVUnavailable {
		t.Fatal("split EV unavailable for a pair")
	}
	if evs.Split >= evs.Stand {
		t.Errorf("split (%v) not worse than stand (%v)", evs.Split, evs.Stand)
	}
}

func TestSplitAcesOneCard(t *testing.T) {
	e := newTestEngine()
	rules := DefaultRules()
	rules.ResplitAllowed = false
	rules.SplitAcesOneCard = true
	deck := NewDeck(6)
	deck.Remove(Ace)
	deck.Remove(Ace)

	got, err := e.SplitEV(Hand{Ace, Ace}, 6, deck, rules)
	if err != nil {
		t.Fatal(err)
	}

	// With one forced card per hand the split EV must equal the one-card
	// forced-stand enumeration computed directly, all recursion aside.
	var one float64
	total := float64(deck.Total())
	for r := Ace; r <= Ten; r++ {
		c := deck.Count(r)
		if c == 0 {
			continue
		}
		nd := deck
		nd.Remove(r)
		dist, err := e.Dealer().Probabilities(6, nd, rules)
		if err != nil {
			t.Fatal(err)
		}
		ht, _, _ := playState(Hand{Ace, r})
		one += float64(c) / total * standValueTotal(ht, dist)
	}
	want := 2 * one
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("split aces EV = %v, want forced-stand value %v", got, want)
	}
}

func TestEvaluateTieBreakOrder(t *testing.T) {
	// bestAction must keep the earlier action on exact ties.
	r := ActionEVs{Stand: 0.1, Hit: 0.1, Double: EVUnavailable, Split: EVUnavailable, Surrender: -0.5}
	best, ev := bestAction(r)
	if best != Stand || ev != 0.1 {
		t.Errorf("tie broke to %v (%v), want Stand", best, ev)
	}
}

func TestEvaluateCacheTransparency(t *testing.T) {
	rules := DefaultRules()
	deck := NewDeck(6)
	deck.Remove(9)
	deck.Remove(7)

	warm := newTestEngine()
	a, err := warm.Evaluate(Hand{9, 7}, Ten, deck, rules)
	if err != nil {
		t.Fatal(err)
	}
	b, err := warm.Evaluate(Hand{9, 7}, Ten, deck, rules)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("warm evaluate differs: %+v vs %+v", a, b)
	}

	cold := newTestEngine()
	c, err := cold.Evaluate(Hand{9, 7}, Ten, deck, rules)
	if err != nil {
		t.Fatal(err)
	}
	if a != c {
		t.Errorf("cold engine differs: %+v vs %+v", a, c)
	}
}

func TestEvaluateWithCount(t *testing.T) {
	e := newTestEngine()
	rules := DefaultRules()
	deck := NewDeck(6)

	base, err := e.Evaluate(Hand{Ten, 6}, Ten, deck, rules)
	if err != nil {
		t.Fatal(err)
	}
	adj, err := e.EvaluateWithCount(Hand{Ten, 6}, Ten, deck, rules, 4)
	if err != nil {
		t.Fatal(err)
	}
	wantAdj := 4 * rules.CountEVCoeff
	if math.Abs(adj.Stand-(base.Stand+wantAdj)) > 1e-12 {
		t.Errorf("stand adjustment: %v vs %v + %v", adj.Stand, base.Stand, wantAdj)
	}
	if math.Abs(adj.Double-(base.Double+2*wantAdj)) > 1e-12 {
		t.Errorf("double adjustment not doubled: %v vs %v", adj.Double, base.Double)
	}
	if adj.Surrender != base.Surrender {
		t.Errorf("surrender moved under count adjustment: %v vs %v", adj.Surrender, base.Surrender)
	}
	if adj.CountAdjustment != wantAdj {
		t.Errorf("CountAdjustment = %v, want %v", adj.CountAdjustment, wantAdj)
	}
}

type fixedCount float64

func (f fixedCount) TrueCount() float64 { return float64(f) }

func TestEvaluateWithCounter(t *testing.T) {
	e := newTestEngine()
	rules := DefaultRules()
	deck := NewDeck(6)

	a, err := e.EvaluateWithCount(Hand{9, 8}, 6, deck, rules, 2.5)
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.EvaluateWithCounter(Hand{9, 8}, 6, deck, rules, fixedCount(2.5))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("counter path differs: %+v vs %+v", a, b)
	}
}

func TestInsuranceEV(t *testing.T) {
	e := newTestEngine()

	// Fresh six decks, ace up: hole-ten probability 96/311.
	ev, err := e.InsuranceEV(Ace, NewDeck(6))
	if err != nil {
		t.Fatal(err)
	}
	p := 96.0 / 311.0
	if math.Abs(ev-(3*p-1)) > 1e-12 {
		t.Errorf("insurance EV = %v, want %v", ev, 3*p-1)
	}

	// Ten-rich deck flips it positive.
	rich := NewDeck(1)
	for i := 0; i < 12; i++ {
		rich.Remove(3)
		rich.Remove(4)
		rich.Remove(5)
	}
	ev, err = e.InsuranceEV(Ace, rich)
	if err != nil {
		t.Fatal(err)
	}
	if ev <= 0 {
		t.Errorf("ten-rich insurance EV = %v, want > 0", ev)
	}
}

func TestStandEVHouseEdgeBallpark(t *testing.T) {
	// Weighted over all dealt player totals against a fixed upcard, optimal
	// EV must land in the known house-edge ballpark. Coarse smoke test
	// against gross arithmetic errors.
	e := newTestEngine()
	rules := DefaultRules()

	var total, weight float64
	for first := Ace; first <= Ten; first++ {
		for second := first; second <= Ten; second++ {
			deck := NewDeck(6)
			w := dealWeight(deck, first, second, 9)
			deck.Remove(first)
			deck.Remove(second)
			evs, err := e.Evaluate(Hand{first, second}, 9, deck, rules)
			if err != nil {
				t.Fatal(err)
			}
			total += w * evs.BestEV
			weight += w
		}
	}
	mean := total / weight
	if mean < -0.15 || mean > 0.05 {
		t.Errorf("mean optimal EV vs 9 = %v, want within [-0.15, 0.05]", mean)
	}
}
