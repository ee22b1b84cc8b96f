package analytics

import (
	"context"
	"fmt"
	"math/rand"

	"bjsolver/engine"
	"bjsolver/engine/counting"
)

// Simulator estimates long-run results by dealing from a real shoe and
// playing table strategy. It cross-checks the exact engine rather than
// replacing it: the simulated edge should straddle the solved one.
type Simulator struct {
	Rules       engine.Rules
	Rounds      int
	Seed        int64
	Penetration float64 // reshuffle point as a dealt fraction, default 0.75

	// Counter, when set, sizes bets with BetSpread at the running true
	// count and is fed every dealt card.
	Counter *counting.Counter
	MaxBet  int
}

// SimResult summarizes a simulation run.
type SimResult struct {
	Rounds    int
	Net       float64 // total units won or lost
	Wagered   float64 // total units bet
	HouseEdge float64 // -Net/Wagered
	RTP       float64 // returned fraction of wagered units
	WinRate   float64
	PushRate  float64
	LossRate  float64
}

// Run plays the configured number of rounds. The generator is seeded, so a
// fixed Seed reproduces the run exactly. Stops early with ctx's error when
// cancelled.
func (s *Simulator) Run(ctx context.Context) (SimResult, error) {
	if s.Rounds < 1 {
		return SimResult{}, fmt.Errorf("rounds %d out of range", s.Rounds)
	}
	pen := s.Penetration
	if pen <= 0 || pen > 1 {
		pen = 0.75
	}
	rng := rand.New(rand.NewSource(s.Seed))
	shoe := engine.NewDeck(s.Rules.Decks)
	fresh := shoe.Total()
	if s.Counter != nil {
		s.Counter.Reset()
	}

	var res SimResult
	var wins, pushes, losses int
	for round := 0; round < s.Rounds; round++ {
		if round%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return SimResult{}, err
			}
		}
		if float64(fresh-shoe.Total())/float64(fresh) >= pen {
			shoe = engine.NewDeck(s.Rules.Decks)
			if s.Counter != nil {
				s.Counter.Reset()
			}
		}

		bet := 1.0
		if s.Counter != nil {
			bet = BetSpread(s.Counter.TrueCount(), s.MaxBet)
		}

		net, wagered, err := s.playRound(rng, &shoe)
		if err != nil {
			return SimResult{}, err
		}
		net *= bet
		wagered *= bet

		res.Net += net
		res.Wagered += wagered
		switch {
		case net > 0:
			wins++
		case net < 0:
			losses++
		default:
			pushes++
		}
	}

	res.Rounds = s.Rounds
	if res.Wagered > 0 {
		res.HouseEdge = -res.Net / res.Wagered
		res.RTP = 1 + res.Net/res.Wagered
	}
	res.WinRate = float64(wins) / float64(s.Rounds)
	res.PushRate = float64(pushes) / float64(s.Rounds)
	res.LossRate = float64(losses) / float64(s.Rounds)
	return res, nil
}

// draw removes a uniformly random card from the shoe.
func (s *Simulator) draw(rng *rand.Rand, shoe *engine.Deck) (engine.Rank, error) {
	n := shoe.Total()
	if n == 0 {
		return 0, engine.ErrDeckExhausted
	}
	pick := rng.Intn(n)
	for r := engine.Ace; r <= engine.Ten; r++ {
		pick -= shoe.Count(r)
		if pick < 0 {
			shoe.Remove(r)
			if s.Counter != nil {
				_ = s.Counter.Observe(r)
			}
			return r, nil
		}
	}
	return 0, engine.ErrDeckExhausted
}

// playRound deals and settles one round at a one-unit base bet, returning
// the net result and the total amount wagered (doubles and splits add
// units).
func (s *Simulator) playRound(rng *rand.Rand, shoe *engine.Deck) (net, wagered float64, err error) {
	deal := func() (engine.Rank, error) { return s.draw(rng, shoe) }

	p1, err := deal()
	if err != nil {
		return 0, 0, err
	}
	up, err := deal()
	if err != nil {
		return 0, 0, err
	}
	p2, err := deal()
	if err != nil {
		return 0, 0, err
	}
	hole, err := deal()
	if err != nil {
		return 0, 0, err
	}

	player := engine.Hand{p1, p2}
	dealer := engine.Hand{up, hole}
	pv, err := engine.Evaluate(player)
	if err != nil {
		return 0, 0, err
	}
	dv, err := engine.Evaluate(dealer)
	if err != nil {
		return 0, 0, err
	}

	// Naturals settle before play.
	if pv.Blackjack || dv.Blackjack {
		switch {
		case pv.Blackjack && dv.Blackjack:
			return 0, 1, nil
		case pv.Blackjack:
			return s.Rules.BlackjackPayout, 1, nil
		default:
			return -1, 1, nil
		}
	}

	hands, bets, surrendered, err := s.playPlayer(player, up, deal)
	if err != nil {
		return 0, 0, err
	}
	if surrendered {
		return -0.5, 1, nil
	}

	for _, b := range bets {
		wagered += b
	}

	allBust := true
	for _, h := range hands {
		hv, err := engine.Evaluate(h)
		if err != nil {
			return 0, 0, err
		}
		if !hv.Busted {
			allBust = false
		}
	}
	if allBust {
		return -wagered, wagered, nil
	}

	dt, err := s.playDealer(dealer, deal)
	if err != nil {
		return 0, 0, err
	}

	for i, h := range hands {
		hv, err := engine.Evaluate(h)
		if err != nil {
			return 0, 0, err
		}
		switch {
		case hv.Busted:
			net -= bets[i]
		case dt > 21 || hv.Total > dt:
			net += bets[i]
		case hv.Total < dt:
			net -= bets[i]
		}
	}
	return net, wagered, nil
}

// playPlayer runs table strategy over the hand, expanding splits up to the
// rule cap. Returns the final hands with their per-hand bets.
func (s *Simulator) playPlayer(hand engine.Hand, up engine.Rank, deal func() (engine.Rank, error)) (hands []engine.Hand, bets []float64, surrendered bool, err error) {
	type live struct {
		hand      engine.Hand
		bet       float64
		fromSplit bool
		splitAce  bool
	}
	queue := []live{{hand: hand, bet: 1}}
	splits := 1

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for {
			hv, verr := engine.Evaluate(cur.hand)
			if verr != nil {
				return nil, nil, false, verr
			}
			if hv.Busted || hv.Total == 21 {
				break
			}
			if cur.splitAce && s.Rules.SplitAcesOneCard && len(cur.hand) == 2 {
				break
			}

			action, derr := s.decide(cur.hand, up, cur.fromSplit, hv, splits)
			if derr != nil {
				return nil, nil, false, derr
			}
			if action == engine.Stand {
				break
			}
			if action == engine.Surrender {
				return nil, nil, true, nil
			}
			if action == engine.Split && splits < s.Rules.MaxSplitHands {
				splits++
				c1, e1 := deal()
				if e1 != nil {
					return nil, nil, false, e1
				}
				c2, e2 := deal()
				if e2 != nil {
					return nil, nil, false, e2
				}
				isAce := cur.hand[0] == engine.Ace
				queue = append(queue,
					live{hand: engine.Hand{cur.hand[0], c1}, bet: cur.bet, fromSplit: true, splitAce: isAce},
					live{hand: engine.Hand{cur.hand[1], c2}, bet: cur.bet, fromSplit: true, splitAce: isAce},
				)
				cur.hand = nil
				break
			}

			card, derr2 := deal()
			if derr2 != nil {
				return nil, nil, false, derr2
			}
			cur.hand = append(cur.hand, card)
			if action == engine.Double {
				cur.bet *= 2
				break
			}
		}

		if cur.hand != nil {
			hands = append(hands, cur.hand)
			bets = append(bets, cur.bet)
		}
	}
	return hands, bets, false, nil
}

// decide maps the strategy table onto a legal action for the current shape.
func (s *Simulator) decide(hand engine.Hand, up engine.Rank, fromSplit bool, hv engine.HandValue, splits int) (engine.Action, error) {
	rules := s.Rules
	if fromSplit {
		rules.SurrenderAllowed = false
	}
	action, err := engine.Decide(hand, up, rules)
	if err != nil {
		return engine.Stand, err
	}
	switch action {
	case engine.Split:
		if splits >= s.Rules.MaxSplitHands || (fromSplit && !s.Rules.ResplitAllowed) {
			if hv.Total < 17 {
				return engine.Hit, nil
			}
			return engine.Stand, nil
		}
	case engine.Double:
		if fromSplit && s.Rules.DoubleAfterSplit == engine.DoubleAfterSplitNone {
			return engine.Hit, nil
		}
	}
	return action, nil
}

// playDealer draws out the dealer hand and returns its final total.
func (s *Simulator) playDealer(hand engine.Hand, deal func() (engine.Rank, error)) (int, error) {
	for {
		hv, err := engine.Evaluate(hand)
		if err != nil {
			return 0, err
		}
		if hv.Busted {
			return hv.Total, nil
		}
		soft := hv.Soft || (hv.Total == 21 && containsPromotedAce(hand))
		if hv.Total > 17 || (hv.Total == 17 && !(soft && s.Rules.DealerHitsSoft17)) {
			return hv.Total, nil
		}
		card, err := deal()
		if err != nil {
			return 0, err
		}
		hand = append(hand, card)
	}
}

func containsPromotedAce(hand engine.Hand) bool {
	total, aces := 0, 0
	for _, r := range hand {
		total += int(r)
		if r == engine.Ace {
			aces++
		}
	}
	return aces > 0 && total+10 <= 21
}
