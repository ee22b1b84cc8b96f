package engine

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultDealerCacheSize bounds the dealer memoization cache. Entries are
// small (a key and seven float64s), so the default is generous.
const DefaultDealerCacheSize = 1 << 18

// probEpsilon is the tolerance for branch-probability accumulation drift.
const probEpsilon = 1e-9

// DealerEngine enumerates every dealer draw sequence for an upcard and an
// exact deck composition, producing the seven-bucket terminal distribution.
// Sub-tree results are memoized in a bounded LRU keyed on the canonical
// recursion state, so the cache never changes an answer, only the latency.
// Safe for concurrent use.
type DealerEngine struct {
	cache  *lru.Cache[dealerKey, Distribution]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// dealerKey is the canonical recursion state: running total, soft flag, the
// aggregate deck fingerprint, and the one rule that drives dealer behavior.
// Comparable struct keys make collisions impossible without hashing.
type dealerKey struct {
	total int8
	soft  bool
	h17   bool
	deck  deckKey
}

// NewDealerEngine constructs an engine with a cache of the given size;
// sizes < 1 get DefaultDealerCacheSize.
func NewDealerEngine(cacheSize int) *DealerEngine {
	if cacheSize < 1 {
		cacheSize = DefaultDealerCacheSize
	}
	c, err := lru.New[dealerKey, Distribution](cacheSize)
	if err != nil {
		// lru.New only fails on size < 1, which is guarded above.
		panic(err)
	}
	return &DealerEngine{cache: c}
}

// Probabilities returns the dealer's exact terminal-outcome distribution for
// an upcard drawn from deck. The deck must describe every card not yet seen
// by the caller, upcard included; the engine removes the upcard itself
// (removal of an absent rank is a no-op, so pre-removed decks behave).
//
// Natural blackjacks exist only as the initial two cards. For an ace or ten
// upcard the hole-card natural probability is split off first, one
// completing card is removed, and the remaining recursion is scaled by the
// non-natural probability, which makes the seven buckets sum to exactly 1.
// Upcards 2–9 can never produce a natural and recurse plainly.
func (e *DealerEngine) Probabilities(upcard Rank, deck Deck, rules Rules) (Distribution, error) {
	if !upcard.Valid() {
		return Distribution{}, fmt.Errorf("%w: upcard %d", ErrInvalidCard, uint8(upcard))
	}
	d := deck
	d.Remove(upcard)
	if d.Total() == 0 {
		return Distribution{}, fmt.Errorf("dealer deck empty: %w", ErrDeckExhausted)
	}

	total, soft := int(upcard), false
	if upcard == Ace {
		total, soft = 11, true
	}

	var pBJ float64
	if upcard == Ace || upcard == Ten {
		needed := Ten
		if upcard == Ten {
			needed = Ace
		}
		pBJ = float64(d.Count(needed)) / float64(d.Total())
		if pBJ > 0 {
			d.Remove(needed)
		}
	}

	dist := e.outcomes(total, soft, d, rules.DealerHitsSoft17).scale(1 - pBJ)
	dist.Blackjack = pBJ
	if err := dist.Verify(1e-6); err != nil {
		return Distribution{}, err
	}
	return dist, nil
}

// outcomes runs the hit/stand state machine from (total, soft) over deck.
// Blackjack is never produced here; conditioning happens once at the top,
// so a drawn 21 always lands in P21.
func (e *DealerEngine) outcomes(total int, soft bool, deck Deck, h17 bool) Distribution {
	if !dealerMustHit(total, soft, h17) {
		return terminalBucket(total)
	}

	key := dealerKey{total: int8(total), soft: soft, h17: h17, deck: deck.key()}
	if dist, ok := e.cache.Get(key); ok {
		e.hits.Add(1)
		return dist
	}
	e.misses.Add(1)

	var dist Distribution
	var pSum float64
	deckTotal := float64(deck.Total())
	for r := Ace; r <= Ten; r++ {
		c := deck.Count(r)
		if c == 0 {
			continue
		}
		p := float64(c) / deckTotal
		pSum += p

		nt, ns := total+int(r), soft
		if r == Ace && nt+10 <= 21 {
			nt += 10
			ns = true
		}
		if nt > 21 && ns {
			nt -= 10
			ns = false
		}
		if nt > 21 {
			dist.Bust += p
			continue
		}
		nd := deck
		nd.Remove(r)
		dist.addScaled(e.outcomes(nt, ns, nd, h17), p)
	}

	// Branch probabilities always cover the whole deck, so pSum drifts from
	// 1 only through floating accumulation. Renormalize when it does.
	if pSum > 0 && (pSum < 1-probEpsilon || pSum > 1+probEpsilon) {
		dist = dist.scale(1 / pSum)
	}

	e.cache.Add(key, dist)
	return dist
}

// dealerMustHit: hit below 17, stand above, and at exactly 17 hit only a
// soft 17 under the H17 rule.
func dealerMustHit(total int, soft, h17 bool) bool {
	if total < 17 {
		return true
	}
	if total > 17 {
		return false
	}
	return soft && h17
}

func terminalBucket(total int) Distribution {
	switch total {
	case 17:
		return Distribution{P17: 1}
	case 18:
		return Distribution{P18: 1}
	case 19:
		return Distribution{P19: 1}
	case 20:
		return Distribution{P20: 1}
	case 21:
		return Distribution{P21: 1}
	}
	return Distribution{Bust: 1}
}

// CacheLen returns the number of memoized dealer sub-trees.
func (e *DealerEngine) CacheLen() int { return e.cache.Len() }

// ClearCache drops every memoized entry.
func (e *DealerEngine) ClearCache() { e.cache.Purge() }

// CacheStats returns cumulative hit and miss counts.
func (e *DealerEngine) CacheStats() (hits, misses uint64) {
	return e.hits.Load(), e.misses.Load()
}
