package engine

import "testing"

func TestDecide(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		name   string
		hand   Hand
		upcard Rank
		want   Action
	}{
		{"hard 16 vs 10 surrenders", Hand{Ten, 6}, Ten, Surrender},
		{"hard 16 vs 6 stands", Hand{Ten, 6}, 6, Stand},
		{"hard 11 vs 6 doubles", Hand{6, 5}, 6, Double},
		{"hard 11 vs ace hits", Hand{6, 5}, Ace, Hit},
		{"hard 12 vs 2 hits", Hand{Ten, 2}, 2, Hit},
		{"hard 12 vs 4 stands", Hand{Ten, 2}, 4, Stand},
		{"soft 18 vs 9 hits", Hand{Ace, 7}, 9, Hit},
		{"soft 18 vs 2 stands", Hand{Ace, 7}, 2, Stand},
		{"soft 17 vs 3 doubles", Hand{Ace, 6}, 3, Double},
		{"soft 19 stands", Hand{Ace, 8}, 6, Stand},
		{"aces split", Hand{Ace, Ace}, Ten, Split},
		{"eights split", Hand{8, 8}, Ten, Split},
		{"tens never split", Hand{Ten, Ten}, 6, Stand},
		{"nines vs 7 split", Hand{9, 9}, 7, Split},
		{"nines vs ace stand", Hand{9, 9}, Ace, Stand},
		{"fives play as ten", Hand{5, 5}, 6, Double},
		{"blackjack stands", Hand{Ace, Ten}, 6, Stand},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decide(tc.hand, tc.upcard, rules)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("Decide(%v vs %v) = %v, want %v", tc.hand, tc.upcard, got, tc.want)
			}
		})
	}
}

func TestDecideDowngrades(t *testing.T) {
	rules := DefaultRules()

	// Double on a three-card 11 is illegal and downgrades to hit.
	got, err := Decide(Hand{2, 4, 5}, 6, rules)
	if err != nil {
		t.Fatal(err)
	}
	if got != Hit {
		t.Errorf("three-card 11 = %v, want Hit", got)
	}

	// Surrender off means 16 vs 10 hits.
	noSurrender := rules
	noSurrender.SurrenderAllowed = false
	got, err = Decide(Hand{Ten, 6}, Ten, noSurrender)
	if err != nil {
		t.Fatal(err)
	}
	if got != Hit {
		t.Errorf("16 vs 10 without surrender = %v, want Hit", got)
	}

	// Three-card 16 vs 10 cannot surrender either.
	got, err = Decide(Hand{5, 5, 6}, Ten, rules)
	if err != nil {
		t.Fatal(err)
	}
	if got != Hit {
		t.Errorf("three-card 16 vs 10 = %v, want Hit", got)
	}
}

func TestDecideFallback(t *testing.T) {
	// A two-card total below 5 is impossible, but the fallback path must
	// still answer for odd inputs like a bare ace.
	got, err := Decide(Hand{Ace}, 6, DefaultRules())
	if err != nil {
		t.Fatal(err)
	}
	if got != Hit {
		t.Errorf("bare ace = %v, want Hit", got)
	}
}
