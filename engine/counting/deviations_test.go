package counting

import (
	"testing"

	"bjsolver/engine"
)

func TestDecideWithCount(t *testing.T) {
	rules := engine.DefaultRules()
	rules.SurrenderAllowed = false

	tests := []struct {
		name    string
		hand    engine.Hand
		upcard  engine.Rank
		running int // Hi-Lo running count injected over a nearly fresh shoe
		want    engine.Action
	}{
		{"16 vs 10 at zero stands", engine.Hand{engine.Ten, 6}, engine.Ten, 0, engine.Stand},
		{"16 vs 10 negative hits", engine.Hand{engine.Ten, 6}, engine.Ten, -6, engine.Hit},
		{"15 vs 10 low count hits", engine.Hand{engine.Ten, 5}, engine.Ten, 6, engine.Hit},
		{"15 vs 10 high count stands", engine.Hand{engine.Ten, 5}, engine.Ten, 30, engine.Stand},
		{"12 vs 3 high count stands", engine.Hand{engine.Ten, 2}, 3, 30, engine.Stand},
		{"tens vs 6 high count split", engine.Hand{engine.Ten, engine.Ten}, 6, 30, engine.Split},
		{"tens vs 6 low count stand", engine.Hand{engine.Ten, engine.Ten}, 6, 0, engine.Stand},
		{"soft hands never deviate", engine.Hand{engine.Ace, 7}, 2, 30, engine.Stand},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCounter(HiLo, 6)
			// Drive the running count with neutral-to-the-test cards.
			for i := 0; i < tc.running; i++ {
				_ = c.Observe(2)
			}
			for i := 0; i > tc.running; i-- {
				_ = c.Observe(engine.Ten)
			}
			got, err := DecideWithCount(tc.hand, tc.upcard, rules, c)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("DecideWithCount(%v vs %v, tc=%.1f) = %v, want %v",
					tc.hand, tc.upcard, c.TrueCount(), got, tc.want)
			}
		})
	}
}

func TestDeviationShapeGuards(t *testing.T) {
	rules := engine.DefaultRules()
	c := NewCounter(HiLo, 6)
	for i := 0; i < 30; i++ {
		_ = c.Observe(2)
	}

	// A three-card 10 cannot take the 10-vs-10 double deviation.
	got, err := DecideWithCount(engine.Hand{2, 3, 5}, engine.Ten, rules, c)
	if err != nil {
		t.Fatal(err)
	}
	if got == engine.Double {
		t.Errorf("three-card 10 deviated to Double")
	}
}
