package analytics

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is an in-memory record of one playing session: per-hand net
// results in bet units. Nothing is persisted; a long-running host keeps
// sessions only as long as the tracker lives.
type Session struct {
	ID      uuid.UUID
	Started time.Time
	Results []float64
}

// Tracker holds active sessions. Safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewTracker returns an empty session tracker.
func NewTracker() *Tracker {
	return &Tracker{sessions: make(map[uuid.UUID]*Session)}
}

// Start opens a new session and returns its id.
func (t *Tracker) Start() uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := uuid.New()
	t.sessions[id] = &Session{ID: id, Started: time.Now()}
	return id
}

// Record appends one hand result, in bet units, to a session.
func (t *Tracker) Record(id uuid.UUID, result float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	if !ok {
		return fmt.Errorf("unknown session %s", id)
	}
	s.Results = append(s.Results, result)
	return nil
}

// End removes a session and returns its final analysis.
func (t *Tracker) End(id uuid.UUID) (SessionAnalysis, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	if !ok {
		return SessionAnalysis{}, fmt.Errorf("unknown session %s", id)
	}
	delete(t.sessions, id)
	return Analyze(s), nil
}

// Len returns the number of open sessions.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// SessionAnalysis summarizes a session.
type SessionAnalysis struct {
	Hands      int
	Net        float64 // total result in bet units
	MeanEV     float64 // per-hand mean
	StdDev     float64 // per-hand sample standard deviation
	HourlyEV   float64 // per-hour EV at the observed hand rate
	RiskOfRuin float64 // continuing at this edge with a 100-unit bankroll
}

// Analyze computes the summary statistics for a session.
func Analyze(s *Session) SessionAnalysis {
	a := SessionAnalysis{Hands: len(s.Results)}
	if a.Hands == 0 {
		return a
	}
	for _, r := range s.Results {
		a.Net += r
	}
	a.MeanEV = a.Net / float64(a.Hands)

	var ss float64
	for _, r := range s.Results {
		d := r - a.MeanEV
		ss += d * d
	}
	if a.Hands > 1 {
		a.StdDev = math.Sqrt(ss / float64(a.Hands-1))
	}

	elapsed := time.Since(s.Started).Hours()
	if elapsed > 0 {
		a.HourlyEV = a.Net / elapsed
	}
	a.RiskOfRuin = RiskOfRuin(a.MeanEV, a.StdDev, 100)
	return a
}

// ExpectedSessionStats projects EV and spread for a planned session of n
// hands at a given per-hand edge: the mean grows linearly, the standard
// deviation with the square root.
func ExpectedSessionStats(n int, edge, sigma float64) (ev, stdDev float64) {
	if sigma <= 0 {
		sigma = HandStdDev
	}
	return float64(n) * edge, sigma * math.Sqrt(float64(n))
}
