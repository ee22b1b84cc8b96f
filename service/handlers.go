package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"bjsolver/engine"
)

// rulesDTO carries optional rule overrides; absent fields keep the engine
// defaults.
type rulesDTO struct {
	Decks            *int     `json:"decks,omitempty"`
	DealerHitsSoft17 *bool    `json:"dealer_hits_soft_17,omitempty"`
	DoubleAfterSplit *string  `json:"double_after_split,omitempty"` // none | any | ten_eleven
	ResplitAllowed   *bool    `json:"resplit_allowed,omitempty"`
	MaxSplitHands    *int     `json:"max_split_hands,omitempty"`
	BlackjackPayout  *float64 `json:"blackjack_payout,omitempty"`
	SurrenderAllowed *bool    `json:"surrender_allowed,omitempty"`
	DealerPeekOnTen  *bool    `json:"dealer_peek_on_ten,omitempty"`
	SplitAcesOneCard *bool    `json:"split_aces_one_card,omitempty"`
	CountEVCoeff     *float64 `json:"count_ev_coeff,omitempty"`
}

func (d *rulesDTO) apply() (engine.Rules, error) {
	rules := engine.DefaultRules()
	if d == nil {
		return rules, nil
	}
	if d.Decks != nil {
		if *d.Decks < 1 || *d.Decks > 8 {
			return rules, fmt.Errorf("decks %d out of range 1-8", *d.Decks)
		}
		rules.Decks = *d.Decks
	}
	if d.DealerHitsSoft17 != nil {
		rules.DealerHitsSoft17 = *d.DealerHitsSoft17
	}
	if d.DoubleAfterSplit != nil {
		switch *d.DoubleAfterSplit {
		case "none":
			rules.DoubleAfterSplit = engine.DoubleAfterSplitNone
		case "any":
			rules.DoubleAfterSplit = engine.DoubleAfterSplitAny
		case "ten_eleven":
			rules.DoubleAfterSplit = engine.DoubleAfterSplitTenEleven
		default:
			return rules, fmt.Errorf("unknown double_after_split %q", *d.DoubleAfterSplit)
		}
	}
	if d.ResplitAllowed != nil {
		rules.ResplitAllowed = *d.ResplitAllowed
	}
	if d.MaxSplitHands != nil {
		rules.MaxSplitHands = *d.MaxSplitHands
	}
	if d.BlackjackPayout != nil {
		rules.BlackjackPayout = *d.BlackjackPayout
	}
	if d.SurrenderAllowed != nil {
		rules.SurrenderAllowed = *d.SurrenderAllowed
	}
	if d.DealerPeekOnTen != nil {
		rules.DealerPeekOnTen = *d.DealerPeekOnTen
	}
	if d.SplitAcesOneCard != nil {
		rules.SplitAcesOneCard = *d.SplitAcesOneCard
	}
	if d.CountEVCoeff != nil {
		rules.CountEVCoeff = *d.CountEVCoeff
	}
	return rules, nil
}

// buildDeck resolves the deck for a query: a fresh shoe for the rules'
// deck count, then any explicit per-rank overrides, then removal of the
// cards the caller reports as dealt. The player's hand is removed here;
// the dealer engine removes the upcard itself.
func buildDeck(rules engine.Rules, counts map[string]int, hand []int) (engine.Deck, error) {
	deck := engine.NewDeck(rules.Decks)
	for k, v := range counts {
		var rank int
		if _, err := fmt.Sscanf(k, "%d", &rank); err != nil {
			return deck, fmt.Errorf("bad deck rank %q", k)
		}
		if err := deck.SetCount(engine.Rank(rank), v); err != nil {
			return deck, err
		}
	}
	for _, c := range hand {
		deck.Remove(engine.Rank(c))
	}
	return deck, nil
}

func toHand(cards []int) (engine.Hand, error) {
	if len(cards) == 0 {
		return nil, errors.New("hand is empty")
	}
	h := make(engine.Hand, len(cards))
	for i, c := range cards {
		r := engine.Rank(c)
		if !r.Valid() {
			return nil, fmt.Errorf("hand card %d out of range 1-10", c)
		}
		h[i] = r
	}
	return h, nil
}

// evValue hides the sentinel: unavailable actions serialize as null.
func evValue(v float64) *float64 {
	if v == engine.EVUnavailable {
		return nil
	}
	return &v
}

type evRequest struct {
	Hand       []int          `json:"hand"`
	Upcard     int            `json:"upcard"`
	DeckCounts map[string]int `json:"deck_counts,omitempty"`
	Rules      *rulesDTO      `json:"rules,omitempty"`
	TrueCount  *float64       `json:"true_count,omitempty"`
}

type evResponse struct {
	Stand           *float64 `json:"stand"`
	Hit             *float64 `json:"hit"`
	Double          *float64 `json:"double"`
	Split           *float64 `json:"split"`
	Surrender       *float64 `json:"surrender"`
	Insurance       *float64 `json:"insurance"`
	Best            string   `json:"best"`
	BestEV          float64  `json:"best_ev"`
	CountAdjustment float64  `json:"count_adjustment,omitempty"`
}

func (s *Server) handleEV(w http.ResponseWriter, r *http.Request) {
	var req evRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, fmt.Errorf("decode request: %w", err))
		return
	}
	hand, err := toHand(req.Hand)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	upcard := engine.Rank(req.Upcard)
	if !upcard.Valid() {
		s.badRequest(w, fmt.Errorf("upcard %d out of range 1-10", req.Upcard))
		return
	}
	rules, err := req.Rules.apply()
	if err != nil {
		s.badRequest(w, err)
		return
	}
	deck, err := buildDeck(rules, req.DeckCounts, req.Hand)
	if err != nil {
		s.badRequest(w, err)
		return
	}

	var evs engine.ActionEVs
	if req.TrueCount != nil {
		evs, err = s.solver.EvaluateWithCount(hand, upcard, deck, rules, *req.TrueCount)
	} else {
		evs, err = s.solver.Evaluate(hand, upcard, deck, rules)
	}
	if err != nil {
		s.queryError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, evResponse{
		Stand:           evValue(evs.Stand),
		Hit:             evValue(evs.Hit),
		Double:          evValue(evs.Double),
		Split:           evValue(evs.Split),
		Surrender:       evValue(evs.Surrender),
		Insurance:       evValue(evs.Insurance),
		Best:            evs.Best.String(),
		BestEV:          evs.BestEV,
		CountAdjustment: evs.CountAdjustment,
	})
}

type dealerProbsRequest struct {
	Upcard     int            `json:"upcard"`
	DeckCounts map[string]int `json:"deck_counts,omitempty"`
	Rules      *rulesDTO      `json:"rules,omitempty"`
}

type dealerProbsResponse struct {
	P17       float64 `json:"p17"`
	P18       float64 `json:"p18"`
	P19       float64 `json:"p19"`
	P20       float64 `json:"p20"`
	P21       float64 `json:"p21"`
	Bust      float64 `json:"bust"`
	Blackjack float64 `json:"blackjack"`
	Total     float64 `json:"total"`
}

func (s *Server) handleDealerProbs(w http.ResponseWriter, r *http.Request) {
	var req dealerProbsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, fmt.Errorf("decode request: %w", err))
		return
	}
	upcard := engine.Rank(req.Upcard)
	if !upcard.Valid() {
		s.badRequest(w, fmt.Errorf("upcard %d out of range 1-10", req.Upcard))
		return
	}
	rules, err := req.Rules.apply()
	if err != nil {
		s.badRequest(w, err)
		return
	}
	deck, err := buildDeck(rules, req.DeckCounts, nil)
	if err != nil {
		s.badRequest(w, err)
		return
	}

	dist, err := s.solver.Dealer().Probabilities(upcard, deck, rules)
	if err != nil {
		s.queryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dealerProbsResponse{
		P17: dist.P17, P18: dist.P18, P19: dist.P19, P20: dist.P20, P21: dist.P21,
		Bust: dist.Bust, Blackjack: dist.Blackjack, Total: dist.Total(),
	})
}

type strategyRequest struct {
	Hand   []int     `json:"hand"`
	Upcard int       `json:"upcard"`
	Rules  *rulesDTO `json:"rules,omitempty"`
}

func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, fmt.Errorf("decode request: %w", err))
		return
	}
	hand, err := toHand(req.Hand)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	upcard := engine.Rank(req.Upcard)
	if !upcard.Valid() {
		s.badRequest(w, fmt.Errorf("upcard %d out of range 1-10", req.Upcard))
		return
	}
	rules, err := req.Rules.apply()
	if err != nil {
		s.badRequest(w, err)
		return
	}
	action, err := engine.Decide(hand, upcard, rules)
	if err != nil {
		s.queryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"action": action.String()})
}

func (s *Server) handleCacheSize(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]int{"entries": s.solver.CacheLen()})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, _ *http.Request) {
	s.solver.ClearCache()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("encode response")
	}
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

// queryError maps engine errors onto statuses: caller mistakes are 400s,
// invariant violations are 500s.
func (s *Server) queryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidCard), errors.Is(err, engine.ErrDeckExhausted):
		s.badRequest(w, err)
	default:
		s.log.WithError(err).Error("query failed")
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
