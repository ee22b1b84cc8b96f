package engine

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxHitDepth caps the optimal-play hit recursion. Beyond the cap a
// drawn hand stands, so the tail falls back to a hit-once-then-stand
// approximation. An accepted precision/performance trade-off, not a
// correctness requirement.
const DefaultMaxHitDepth = 10

// DefaultEVCacheSize bounds the hit-recursion memoization cache.
const DefaultEVCacheSize = 1 << 18

// TrueCounter supplies a card-counting true count. The core consumes the
// scalar; running-count bookkeeping lives with the collaborator.
type TrueCounter interface {
	TrueCount() float64
}

// ActionEVs is the per-query result bundle: one EV per action in units of
// the original bet, the legal-action argmax, and any count adjustment that
// was applied. Unavailable actions hold EVUnavailable.
type ActionEVs struct {
	Stand     float64
	Hit       float64
	Double    float64
	Split     float64
	Surrender float64
	Insurance float64 // per unit of insurance wagered

	Best            Action
	BestEV          float64
	CountAdjustment float64
}

// EVEngine computes exact per-action expected values by recursive
// enumeration over the deck, delegating every terminal stand decision to a
// DealerEngine. Safe for concurrent use; both engines share-nothing except
// their internal caches.
type EVEngine struct {
	dealer      *DealerEngine
	hitCache    *lru.Cache[hitKey, float64]
	maxHitDepth int
}

// hitKey canonicalizes a hit-recursion state. Only the running total, the
// promoted-ace flag, the remaining depth budget, and the dealer-facing
// context influence the value, so nothing else goes in the key.
type hitKey struct {
	total  int8
	soft   bool
	depth  int8
	upcard Rank
	h17    bool
	deck   deckKey
}

// NewEVEngine constructs an EV engine on top of dealer. Non-positive
// cacheSize and maxHitDepth select the defaults.
func NewEVEngine(dealer *DealerEngine, cacheSize, maxHitDepth int) *EVEngine {
	if cacheSize < 1 {
		cacheSize = DefaultEVCacheSize
	}
	if maxHitDepth < 1 {
		maxHitDepth = DefaultMaxHitDepth
	}
	c, err := lru.New[hitKey, float64](cacheSize)
	if err != nil {
		panic(err)
	}
	return &EVEngine{dealer: dealer, hitCache: c, maxHitDepth: maxHitDepth}
}

// Dealer exposes the underlying dealer engine for standalone probability
// queries.
func (e *EVEngine) Dealer() *DealerEngine { return e.dealer }

// CacheLen returns the combined entry count of the EV and dealer caches.
func (e *EVEngine) CacheLen() int { return e.hitCache.Len() + e.dealer.CacheLen() }

// ClearCache drops both caches.
func (e *EVEngine) ClearCache() {
	e.hitCache.Purge()
	e.dealer.ClearCache()
}

// playState is Evaluate minus the shape flags: total plus whether an ace is
// currently promoted. Unlike HandValue.Soft it stays true at 21, which the
// hit recursion needs for demotion bookkeeping.
func playState(hand Hand) (total int, soft bool, err error) {
	if len(hand) == 0 {
		return 0, false, fmt.Errorf("%w: empty hand", ErrInvalidCard)
	}
	aces := 0
	for _, r := range hand {
		if !r.Valid() {
			return 0, false, fmt.Errorf("%w: %d", ErrInvalidCard, uint8(r))
		}
		total += int(r)
		if r == Ace {
			aces++
		}
	}
	if aces > 0 && total+10 <= 21 {
		total += 10
		soft = true
	}
	return total, soft, nil
}

// advance applies one drawn card to (total, soft), promoting a fresh ace
// when it fits and demoting the promoted ace instead of busting.
func advance(total int, soft bool, r Rank) (int, bool) {
	nt := total + int(r)
	if r == Ace && nt+10 <= 21 {
		return nt + 10, true
	}
	if nt > 21 && soft {
		return nt - 10, false
	}
	return nt, soft
}

// standValueTotal scores standing on a non-natural player total against a
// dealer distribution: +1 per winning bucket, -1 per losing one, 0 on a
// push. A dealer natural beats every non-natural hand, including 21.
func standValueTotal(total int, dist Distribution) float64 {
	if total > 21 {
		return -1
	}
	ev := dist.Bust - dist.Blackjack
	for _, b := range [5]struct {
		t int
		p float64
	}{{17, dist.P17}, {18, dist.P18}, {19, dist.P19}, {20, dist.P20}, {21, dist.P21}} {
		switch {
		case total > b.t:
			ev += b.p
		case total < b.t:
			ev -= b.p
		}
	}
	return ev
}

func dealerPeeks(upcard Rank, rules Rules) bool {
	return upcard == Ace || (upcard == Ten && rules.DealerPeekOnTen)
}

// StandEV returns the exact EV of standing. A player natural pays the
// configured bonus against every dealer non-natural and pushes a dealer
// natural.
func (e *EVEngine) StandEV(hand Hand, upcard Rank, deck Deck, rules Rules) (float64, error) {
	hv, err := Evaluate(hand)
	if err != nil {
		return 0, err
	}
	if hv.Busted {
		return -1, nil
	}
	dist, err := e.dealer.Probabilities(upcard, deck, rules)
	if err != nil {
		return 0, err
	}
	if hv.Blackjack {
		return (1 - dist.Blackjack) * rules.BlackjackPayout, nil
	}
	return standValueTotal(hv.Total, dist), nil
}

// HitEV returns the EV of taking a card and playing optimally from there.
// Returns EVUnavailable on an already busted hand.
func (e *EVEngine) HitEV(hand Hand, upcard Rank, deck Deck, rules Rules) (float64, error) {
	total, soft, err := playState(hand)
	if err != nil {
		return 0, err
	}
	if !upcard.Valid() {
		return 0, fmt.Errorf("%w: upcard %d", ErrInvalidCard, uint8(upcard))
	}
	if total > 21 {
		return EVUnavailable, nil
	}
	return e.hitValue(total, soft, deck, upcard, rules, e.maxHitDepth)
}

// hitValue enumerates the next card by exact probability. Each drawn hand
// either busts, stands, or recursively chooses max(hit again, stand) while
// depth budget remains.
func (e *EVEngine) hitValue(total int, soft bool, deck Deck, upcard Rank, rules Rules, depthLeft int) (float64, error) {
	key := hitKey{
		total: int8(total), soft: soft, depth: int8(depthLeft),
		upcard: upcard, h17: rules.DealerHitsSoft17, deck: deck.key(),
	}
	if v, ok := e.hitCache.Get(key); ok {
		return v, nil
	}

	deckTotal := deck.Total()
	if deckTotal == 0 {
		return 0, fmt.Errorf("hit enumeration: %w", ErrDeckExhausted)
	}
	var ev float64
	for r := Ace; r <= Ten; r++ {
		c := deck.Count(r)
		if c == 0 {
			continue
		}
		p := float64(c) / float64(deckTotal)
		nt, ns := advance(total, soft, r)
		if nt > 21 {
			ev -= p
			continue
		}
		nd := deck
		nd.Remove(r)
		dist, err := e.dealer.Probabilities(upcard, nd, rules)
		if err != nil {
			return 0, err
		}
		v := standValueTotal(nt, dist)
		if nt < 21 && depthLeft > 1 {
			again, err := e.hitValue(nt, ns, nd, upcard, rules, depthLeft-1)
			if err != nil {
				return 0, err
			}
			if again > v {
				v = again
			}
		}
		ev += p * v
	}

	e.hitCache.Add(key, ev)
	return ev, nil
}

// DoubleEV returns the EV of doubling a two-card hand: exactly one more
// card, forced stand, doubled outcome. When the dealer peeks, a dealer
// natural is resolved before the double, so only the original bet is lost;
// the peek add-back reflects that.
func (e *EVEngine) DoubleEV(hand Hand, upcard Rank, deck Deck, rules Rules) (float64, error) {
	if len(hand) != 2 {
		return EVUnavailable, nil
	}
	total, soft, err := playState(hand)
	if err != nil {
		return 0, err
	}
	dist0, err := e.dealer.Probabilities(upcard, deck, rules)
	if err != nil {
		return 0, err
	}
	ev, err := e.oneCardStandEV(total, soft, deck, upcard, rules)
	if err != nil {
		return 0, err
	}
	ev *= 2
	if dealerPeeks(upcard, rules) {
		ev += dist0.Blackjack
	}
	return ev, nil
}

// oneCardStandEV draws one card by exact probability and stands on the
// result. Shared by double and split-ace evaluation.
func (e *EVEngine) oneCardStandEV(total int, soft bool, deck Deck, upcard Rank, rules Rules) (float64, error) {
	deckTotal := deck.Total()
	if deckTotal == 0 {
		return 0, fmt.Errorf("double enumeration: %w", ErrDeckExhausted)
	}
	var ev float64
	for r := Ace; r <= Ten; r++ {
		c := deck.Count(r)
		if c == 0 {
			continue
		}
		p := float64(c) / float64(deckTotal)
		nt, _ := advance(total, soft, r)
		if nt > 21 {
			ev -= p
			continue
		}
		nd := deck
		nd.Remove(r)
		dist, err := e.dealer.Probabilities(upcard, nd, rules)
		if err != nil {
			return 0, err
		}
		ev += p * standValueTotal(nt, dist)
	}
	return ev, nil
}

// SurrenderEV is a fixed -0.5 on any two-card hand when the rules allow it.
func (e *EVEngine) SurrenderEV(hand Hand, rules Rules) float64 {
	if !rules.SurrenderAllowed || len(hand) != 2 {
		return EVUnavailable
	}
	return -0.5
}

// InsuranceEV returns the EV per unit of insurance wagered against an ace
// upcard: the bet pays 2:1 on a ten-value hole card.
func (e *EVEngine) InsuranceEV(upcard Rank, deck Deck) (float64, error) {
	if upcard != Ace {
		return EVUnavailable, nil
	}
	d := deck
	d.Remove(upcard)
	p, err := d.Probability(Ten)
	if err != nil {
		return 0, err
	}
	return 3*p - 1, nil
}

// SplitEV returns the combined EV, in original-bet units, of splitting a
// pair into two hands and playing each optimally. Each hand's second card
// is enumerated against the post-removal deck; the two hands are valued
// independently off the same deck, which is the standard tractable
// approximation of the joint draw. When the second card re-pairs and
// resplitting is allowed with hand budget left, the branch takes the better
// of resplitting again and playing the hand. Split aces under the one-card
// rule take exactly one card and stand, with no further recursion.
func (e *EVEngine) SplitEV(hand Hand, upcard Rank, deck Deck, rules Rules) (float64, error) {
	if len(hand) != 2 || hand[0] != hand[1] || rules.maxSplitHands() < 2 {
		return EVUnavailable, nil
	}
	pairRank := hand[0]
	if !pairRank.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCard, uint8(pairRank))
	}
	dist0, err := e.dealer.Probabilities(upcard, deck, rules)
	if err != nil {
		return 0, err
	}
	one, err := e.splitHandEV(pairRank, upcard, deck, rules, rules.maxSplitHands()-2)
	if err != nil {
		return 0, err
	}
	ev := 2 * one
	if dealerPeeks(upcard, rules) {
		ev += dist0.Blackjack
	}
	return ev, nil
}

// splitHandEV values one post-split hand holding pairRank, enumerating its
// second card. resplitsLeft is the remaining extra-hand budget.
func (e *EVEngine) splitHandEV(pairRank, upcard Rank, deck Deck, rules Rules, resplitsLeft int) (float64, error) {
	deckTotal := deck.Total()
	if deckTotal == 0 {
		return 0, fmt.Errorf("split enumeration: %w", ErrDeckExhausted)
	}
	var ev float64
	for r := Ace; r <= Ten; r++ {
		c := deck.Count(r)
		if c == 0 {
			continue
		}
		p := float64(c) / float64(deckTotal)
		nd := deck
		nd.Remove(r)

		var v float64
		var err error
		if pairRank == Ace && rules.SplitAcesOneCard {
			// One card, forced stand. An ace-ten here is a 21, not a natural.
			total, _, _ := playState(Hand{pairRank, r})
			dist, derr := e.dealer.Probabilities(upcard, nd, rules)
			if derr != nil {
				return 0, derr
			}
			v = standValueTotal(total, dist)
		} else {
			v, err = e.splitPlayEV(pairRank, r, upcard, nd, rules)
			if err != nil {
				return 0, err
			}
			if r == pairRank && rules.ResplitAllowed && resplitsLeft > 0 {
				again, rerr := e.splitHandEV(pairRank, upcard, nd, rules, resplitsLeft-1)
				if rerr != nil {
					return 0, rerr
				}
				if 2*again > v {
					v = 2 * again
				}
			}
		}
		ev += p * v
	}
	return ev, nil
}

// splitPlayEV plays a two-card post-split hand optimally: stand, hit, double
// under the DAS policy, or surrender where eligible.
func (e *EVEngine) splitPlayEV(first, second, upcard Rank, deck Deck, rules Rules) (float64, error) {
	total, soft, err := playState(Hand{first, second})
	if err != nil {
		return 0, err
	}
	dist, err := e.dealer.Probabilities(upcard, deck, rules)
	if err != nil {
		return 0, err
	}
	best := standValueTotal(total, dist)
	if total < 21 {
		hit, err := e.hitValue(total, soft, deck, upcard, rules, e.maxHitDepth)
		if err != nil {
			return 0, err
		}
		if hit > best {
			best = hit
		}
	}
	if doubleAfterSplitAllowed(total, soft, rules) {
		dbl, err := e.oneCardStandEV(total, soft, deck, upcard, rules)
		if err != nil {
			return 0, err
		}
		if 2*dbl > best {
			best = 2 * dbl
		}
	}
	if rules.SurrenderAllowed && -0.5 > best {
		best = -0.5
	}
	return best, nil
}

func doubleAfterSplitAllowed(total int, soft bool, rules Rules) bool {
	switch rules.DoubleAfterSplit {
	case DoubleAfterSplitAny:
		return true
	case DoubleAfterSplitTenEleven:
		return !soft && (total == 10 || total == 11)
	}
	return false
}

// Evaluate computes every action EV for a query and selects the optimal
// legal action. Ties break by the fixed priority Stand > Hit > Double >
// Split > Surrender. Insurance is reported but never competes for Best;
// it is a side bet, not a play.
func (e *EVEngine) Evaluate(hand Hand, upcard Rank, deck Deck, rules Rules) (ActionEVs, error) {
	hv, err := Evaluate(hand)
	if err != nil {
		return ActionEVs{}, err
	}
	if !upcard.Valid() {
		return ActionEVs{}, fmt.Errorf("%w: upcard %d", ErrInvalidCard, uint8(upcard))
	}

	var r ActionEVs
	if r.Stand, err = e.StandEV(hand, upcard, deck, rules); err != nil {
		return ActionEVs{}, err
	}
	if hv.Busted {
		r.Hit, r.Double, r.Split = EVUnavailable, EVUnavailable, EVUnavailable
		r.Surrender, r.Insurance = EVUnavailable, EVUnavailable
		r.Best, r.BestEV = Stand, r.Stand
		return r, nil
	}
	if r.Hit, err = e.HitEV(hand, upcard, deck, rules); err != nil {
		return ActionEVs{}, err
	}
	if r.Double, err = e.DoubleEV(hand, upcard, deck, rules); err != nil {
		return ActionEVs{}, err
	}
	if r.Split, err = e.SplitEV(hand, upcard, deck, rules); err != nil {
		return ActionEVs{}, err
	}
	r.Surrender = e.SurrenderEV(hand, rules)
	if r.Insurance, err = e.InsuranceEV(upcard, deck); err != nil {
		return ActionEVs{}, err
	}

	r.Best, r.BestEV = bestAction(r)
	return r, nil
}

// EvaluateWithCount applies the linear true-count adjustment on top of the
// exact EVs: adjustment = trueCount x Rules.CountEVCoeff for stand, hit and
// split, doubled for double. Surrender and insurance are fixed-odds and
// stay untouched.
func (e *EVEngine) EvaluateWithCount(hand Hand, upcard Rank, deck Deck, rules Rules, trueCount float64) (ActionEVs, error) {
	r, err := e.Evaluate(hand, upcard, deck, rules)
	if err != nil {
		return ActionEVs{}, err
	}
	adj := trueCount * rules.CountEVCoeff
	r.CountAdjustment = adj
	for _, f := range []*float64{&r.Stand, &r.Hit, &r.Split} {
		if *f != EVUnavailable {
			*f += adj
		}
	}
	if r.Double != EVUnavailable {
		r.Double += 2 * adj
	}
	r.Best, r.BestEV = bestAction(r)
	return r, nil
}

// EvaluateWithCounter is EvaluateWithCount fed from a counting collaborator.
func (e *EVEngine) EvaluateWithCounter(hand Hand, upcard Rank, deck Deck, rules Rules, tc TrueCounter) (ActionEVs, error) {
	return e.EvaluateWithCount(hand, upcard, deck, rules, tc.TrueCount())
}

// bestAction picks the argmax over available actions in tie-break order.
func bestAction(r ActionEVs) (Action, float64) {
	best, bestEV := Stand, r.Stand
	for _, c := range [4]struct {
		a  Action
		ev float64
	}{{Hit, r.Hit}, {Double, r.Double}, {Split, r.Split}, {Surrender, r.Surrender}} {
		if c.ev != EVUnavailable && c.ev > bestEV {
			best, bestEV = c.a, c.ev
		}
	}
	return best, bestEV
}
