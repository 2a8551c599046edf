// Package vigil is a server-authoritative anti-cheat engine. It observes each
// connected player's reported actions, re-derives what a legitimate client
// could have produced, and drives a graduated response from logging through
// cancellation to operator escalation. The host game server stays in control:
// the engine only returns decisions and requests corrections.
package vigil

import (
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"github.com/vigil-ac/vigil/check"
	"github.com/vigil-ac/vigil/ledger"
	"github.com/vigil-ac/vigil/oerror"
	"github.com/vigil-ac/vigil/physics"
	"github.com/vigil-ac/vigil/player"
	"github.com/vigil-ac/vigil/response"
	"github.com/vigil-ac/vigil/settings"
	"github.com/vigil-ac/vigil/sink"
	"github.com/vigil-ac/vigil/world"
	"github.com/vigil-ac/vigil/worker"
	"go.uber.org/atomic"
)

// Engine is the per-server anti-cheat instance. One engine serves all
// players; per-player state is owned by the store and serialized per player
// ID, so hosts may call Handle concurrently for disjoint players.
type Engine struct {
	log *logrus.Logger
	s   settings.Settings

	store      *player.Store
	oracle     *world.Cached
	sim        *physics.Simulator
	ledger     *ledger.Ledger
	dispatcher *response.Dispatcher
	pool       *worker.Pool

	checks *checkSets

	sinks   []sink.Sink
	applier response.CorrectionApplier

	evalBudget    time.Duration
	denyMalformed bool
	retainOnLeave bool
	clock         func() time.Time
	closed        atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithSinks attaches observability sinks receiving violation records and
// escalations.
func WithSinks(sinks ...sink.Sink) Option {
	return func(e *Engine) { e.sinks = append(e.sinks, sinks...) }
}

// WithCorrectionApplier attaches the host callback that forces corrected
// player state.
func WithCorrectionApplier(a response.CorrectionApplier) Option {
	return func(e *Engine) { e.applier = a }
}

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// New builds an engine from loaded settings. Configuration errors (invalid
// thresholds, unknown decay kinds) are fatal here, before any event flows.
func New(log *logrus.Logger, s settings.Settings, oracle world.Oracle, opts ...Option) (*Engine, error) {
	if log == nil {
		log = logrus.New()
	}

	e := &Engine{
		log:           log,
		s:             s,
		store:         player.NewStore(s.Engine.HistorySize, log),
		oracle:        world.NewCached(oracle, s.Engine.BlockCacheSize),
		checks:        newCheckSets(),
		clock:         time.Now,
		denyMalformed: s.Engine.MalformedPolicy != "allow",
		retainOnLeave: s.Engine.RetainScoresOnLeave,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.evalBudget = time.Duration(s.Engine.EvalBudgetMicros) * time.Microsecond
	if e.evalBudget <= 0 {
		e.evalBudget = 2 * time.Millisecond
	}

	e.sim = physics.NewSimulator(e.oracle, float32(s.Engine.Epsilon))

	cfg, punishments, err := ledgerConfig(s)
	if err != nil {
		return nil, err
	}
	e.ledger = ledger.New(cfg)

	e.pool = worker.NewPool(s.Engine.WorkerLanes)
	if len(e.sinks) == 0 {
		e.sinks = []sink.Sink{sink.NewLogSink(log)}
	}
	e.dispatcher = response.NewDispatcher(log, e.pool, e.applier, punishments, e.sinks...)
	return e, nil
}

// Join creates the player's record and check set. Must be called before any
// of the player's events are handled.
func (e *Engine) Join(playerID string) {
	rec := e.store.Add(playerID)
	e.checks.set(playerID, check.NewSet(e.s))
	rec.Log().Debug("player record created")
}

// Leave destroys the player's record on disconnect. Violation scores reset
// unless the engine is configured to retain them across reconnects.
func (e *Engine) Leave(playerID string) {
	e.store.Remove(playerID)
	e.checks.remove(playerID)
	if !e.retainOnLeave {
		e.ledger.Reset(playerID)
	}
}

// Exempt toggles the operator bypass for a player.
func (e *Engine) Exempt(playerID string, exempt bool) error {
	rec, err := e.store.Get(playerID)
	if err != nil {
		return err
	}
	rec.Exempt.Store(exempt)
	return nil
}

// Suspend pauses evaluation for a player without touching accumulated state.
func (e *Engine) Suspend(playerID string, suspended bool) error {
	rec, err := e.store.Get(playerID)
	if err != nil {
		return err
	}
	rec.Suspended.Store(suspended)
	return nil
}

// Knockback informs the engine of knockback the host applied to a player, so
// the next movement envelope accounts for it.
func (e *Engine) Knockback(playerID string, vel mgl32.Vec3) error {
	rec, err := e.store.Get(playerID)
	if err != nil {
		return err
	}
	rec.SetKnockback(vel)
	return nil
}

// Score returns the current decayed violation score for a player and check.
func (e *Engine) Score(playerID, checkID string) float32 {
	return e.ledger.Score(playerID, checkID, e.clock())
}

// Players returns the IDs of all active player records.
func (e *Engine) Players() []string {
	return e.store.IDs()
}

// InvalidateWorld drops the engine's block cache; hosts call this on block
// updates or chunk unloads.
func (e *Engine) InvalidateWorld() {
	e.oracle.Invalidate()
}

// Close drains async deliveries and shuts the sinks down.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.pool.Close()
	for _, s := range e.sinks {
		if err := s.Close(); err != nil {
			e.log.Debugf("sink close: %v", err)
		}
	}
	return nil
}

// ledgerConfig translates loaded settings into per-check ledger configs and
// punishment labels.
func ledgerConfig(s settings.Settings) (map[string]ledger.CheckConfig, map[string]string, error) {
	cfg := make(map[string]ledger.CheckConfig)
	punishments := make(map[string]string)

	add := func(checkID string, b settings.Basics) error {
		var p ledger.Policy
		if b.Log > 0 {
			p = append(p, ledger.Threshold{Score: float32(b.Log), Action: ledger.ActionLog})
		}
		if b.Cancel > 0 {
			p = append(p, ledger.Threshold{Score: float32(b.Cancel), Action: ledger.ActionCancel})
		}
		if b.Escalate > 0 {
			p = append(p, ledger.Threshold{Score: float32(b.Escalate), Action: ledger.ActionEscalate})
		}
		if err := p.Validate(); err != nil {
			return oerror.New("settings for %s invalid: %v", checkID, err)
		}

		kind := ledger.DecayLinear
		switch strings.ToLower(b.Decay.Kind) {
		case "", "linear":
		case "exponential":
			kind = ledger.DecayExponential
		default:
			return oerror.New("settings for %s invalid: unknown decay kind %q", checkID, b.Decay.Kind)
		}

		cfg[checkID] = ledger.CheckConfig{
			Decay:  kind,
			Rate:   float32(b.Decay.Rate),
			Policy: p,
		}
		punishments[checkID] = b.Punishment
		return nil
	}

	pairs := []struct {
		id string
		b  settings.Basics
	}{
		{check.CheckIDMovementA, s.Movement.A.Basics},
		{check.CheckIDMovementB, s.Movement.B.Basics},
		{check.CheckIDReachA, s.Reach.A.Basics},
		{check.CheckIDReachB, s.Reach.B.Basics},
		{check.CheckIDTimerA, s.Timer.A},
		{check.CheckIDFastPlaceA, s.FastPlace.A.Basics},
	}
	for _, p := range pairs {
		if err := add(p.id, p.b); err != nil {
			return nil, nil, err
		}
	}
	return cfg, punishments, nil
}
