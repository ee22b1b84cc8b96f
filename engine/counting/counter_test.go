package counting

import (
	"math"
	"testing"

	"bjsolver/engine"
)

func TestSystemsBalanced(t *testing.T) {
	// Every built-in system counts a full deck back to zero.
	for _, s := range Systems() {
		if !s.Balanced() {
			t.Errorf("%s is not balanced", s.Name)
		}
	}
}

func TestCounterRunningCount(t *testing.T) {
	c := NewCounter(HiLo, 6)
	seen := []engine.Rank{2, 3, 4, 5, 6, engine.Ten, engine.Ace, 7, 8, 9}
	if err := c.ObserveAll(seen); err != nil {
		t.Fatal(err)
	}
	// Five low cards +5, ten and ace -2, neutrals 0.
	if c.RunningCount() != 3 {
		t.Errorf("RunningCount() = %d, want 3", c.RunningCount())
	}
	if c.CardsSeen() != len(seen) {
		t.Errorf("CardsSeen() = %d, want %d", c.CardsSeen(), len(seen))
	}
	if c.AcesSeen() != 1 {
		t.Errorf("AcesSeen() = %d, want 1", c.AcesSeen())
	}

	c.Reset()
	if c.RunningCount() != 0 || c.CardsSeen() != 0 || c.AcesSeen() != 0 {
		t.Error("Reset did not clear the counter")
	}
}

func TestCounterTrueCount(t *testing.T) {
	c := NewCounter(HiLo, 2)
	// 52 cards seen leaves exactly one deck.
	for i := 0; i < 13; i++ {
		for _, r := range []engine.Rank{2, 3, 4, engine.Ten} {
			if err := c.Observe(r); err != nil {
				t.Fatal(err)
			}
		}
	}
	if c.RunningCount() != 26 {
		t.Fatalf("RunningCount() = %d, want 26", c.RunningCount())
	}
	if got := c.TrueCount(); math.Abs(got-26) > 1e-12 {
		t.Errorf("TrueCount() = %v, want 26", got)
	}
	if got := c.Penetration(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Penetration() = %v, want 0.5", got)
	}
}

func TestCounterDecksRemainingFloor(t *testing.T) {
	c := NewCounter(HiLo, 1)
	for i := 0; i < 50; i++ {
		if err := c.Observe(8); err != nil {
			t.Fatal(err)
		}
	}
	if got := c.DecksRemaining(); got != 0.5 {
		t.Errorf("DecksRemaining() = %v, want floor 0.5", got)
	}
}

func TestCounterAdvantageClamp(t *testing.T) {
	c := NewCounter(HiLo, 1)
	// Strip low cards to force a huge positive count.
	for i := 0; i < 20; i++ {
		_ = c.Observe(5)
	}
	if got := c.Advantage(); got != 0.10 {
		t.Errorf("Advantage() = %v, want clamp 0.10", got)
	}

	c.Reset()
	if got := c.Advantage(); math.Abs(got-(-0.005)) > 1e-12 {
		t.Errorf("fresh-shoe Advantage() = %v, want -0.005", got)
	}
}

func TestUAPCAceAdjustment(t *testing.T) {
	a := NewCounter(UAPC, 6)
	b := NewCounter(UAPC, 6)

	// Same low cards; b has also seen four aces.
	low := []engine.Rank{5, 5, 6, 6, 3, 3}
	if err := a.ObserveAll(low); err != nil {
		t.Fatal(err)
	}
	if err := b.ObserveAll(low); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if err := b.Observe(engine.Ace); err != nil {
			t.Fatal(err)
		}
	}

	// Aces are tag-neutral, so the running counts match, but the spent
	// aces must drag the adjusted true count down.
	if a.RunningCount() != b.RunningCount() {
		t.Fatalf("running counts differ: %d vs %d", a.RunningCount(), b.RunningCount())
	}
	if b.TrueCount() >= a.TrueCount() {
		t.Errorf("ace-depleted TC %v not below %v", b.TrueCount(), a.TrueCount())
	}
}

func TestShouldInsure(t *testing.T) {
	c := NewCounter(HiLo, 1)
	if c.ShouldInsure() {
		t.Error("fresh shoe should not insure")
	}
	for i := 0; i < 10; i++ {
		_ = c.Observe(4)
	}
	if !c.ShouldInsure() {
		t.Errorf("TC %v should insure", c.TrueCount())
	}
}

func TestCounterImplementsTrueCounter(t *testing.T) {
	var _ engine.TrueCounter = NewCounter(HiLo, 6)
}

func TestObserveInvalid(t *testing.T) {
	c := NewCounter(HiLo, 6)
	if err := c.Observe(0); err == nil {
		t.Error("Observe(0) accepted an invalid rank")
	}
}
