package ledger

import (
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/zeebo/xxh3"
)

// DecayKind selects how a violation score falls back toward zero.
type DecayKind uint8

const (
	DecayLinear DecayKind = iota
	DecayExponential
)

// CheckConfig is the per-check ledger tuning: decay behaviour and the action
// policy its score is compared against.
type CheckConfig struct {
	Decay DecayKind
	// Rate is score units per second for linear decay, or the exponential
	// rate constant.
	Rate   float32
	Policy Policy
}

// scoreFloor is where an exponentially decaying score snaps to zero.
const scoreFloor = float32(1e-3)

type counter struct {
	score      float32
	lastUpdate time.Time
}

// decay applies the configured decay lazily for the elapsed time. Scores
// never go negative.
func (c *counter) decay(cfg CheckConfig, now time.Time) {
	if c.score <= 0 || c.lastUpdate.IsZero() {
		c.lastUpdate = now
		return
	}
	elapsed := float32(now.Sub(c.lastUpdate).Seconds())
	if elapsed <= 0 {
		return
	}

	switch cfg.Decay {
	case DecayExponential:
		c.score *= math32.Exp(-cfg.Rate * elapsed)
		if c.score < scoreFloor {
			c.score = 0
		}
	default:
		c.score = math32.Max(0, c.score-cfg.Rate*elapsed)
	}
	c.lastUpdate = now
}

// Ledger accumulates and decays violation scores per (player, check). Decay
// happens lazily at read and write time; no background timer runs.
type Ledger struct {
	mu  sync.Mutex
	cfg map[string]CheckConfig
	// counters is keyed by the xxh3 hash of the player ID, then by check ID.
	counters map[uint64]map[string]*counter
}

// New ...
func New(cfg map[string]CheckConfig) *Ledger {
	return &Ledger{
		cfg:      cfg,
		counters: make(map[uint64]map[string]*counter),
	}
}

// Apply decays the (player, check) counter to now, adds severity and returns
// the new score together with the highest policy threshold crossed by this
// update. Severity below zero is treated as zero.
func (l *Ledger) Apply(playerID, checkID string, severity float32, now time.Time) (float32, Action) {
	if severity < 0 {
		severity = 0
	}
	cfg := l.cfg[checkID]

	l.mu.Lock()
	defer l.mu.Unlock()

	key := xxh3.HashString(playerID)
	byCheck, ok := l.counters[key]
	if !ok {
		byCheck = make(map[string]*counter)
		l.counters[key] = byCheck
	}
	c, ok := byCheck[checkID]
	if !ok {
		c = &counter{}
		byCheck[checkID] = c
	}

	c.decay(cfg, now)
	before := c.score
	c.score += severity
	c.lastUpdate = now

	return c.score, cfg.Policy.Crossed(before, c.score)
}

// Score returns the current decayed score for (player, check) without
// mutating the crossing state.
func (l *Ledger) Score(playerID, checkID string, now time.Time) float32 {
	l.mu.Lock()
	defer l.mu.Unlock()

	byCheck, ok := l.counters[xxh3.HashString(playerID)]
	if !ok {
		return 0
	}
	c, ok := byCheck[checkID]
	if !ok {
		return 0
	}
	c.decay(l.cfg[checkID], now)
	return c.score
}

// Reset drops all counters for a player, typically on disconnect.
func (l *Ledger) Reset(playerID string) {
	l.mu.Lock()
	delete(l.counters, xxh3.HashString(playerID))
	l.mu.Unlock()
}

// Config returns the ledger configuration for a check.
func (l *Ledger) Config(checkID string) CheckConfig {
	return l.cfg[checkID]
}
