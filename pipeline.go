package vigil

import (
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vigil-ac/vigil/check"
	"github.com/vigil-ac/vigil/event"
	"github.com/vigil-ac/vigil/game"
	"github.com/vigil-ac/vigil/internal/metrics"
	"github.com/vigil-ac/vigil/ledger"
	"github.com/vigil-ac/vigil/physics"
	"github.com/vigil-ac/vigil/player"
)

// checkSets holds the per-player check instances. Check buffer state is
// per-player and must not cross connections.
type checkSets struct {
	mu   sync.RWMutex
	sets map[string][]check.Check
}

func newCheckSets() *checkSets {
	return &checkSets{sets: make(map[string][]check.Check)}
}

func (c *checkSets) set(playerID string, checks []check.Check) {
	c.mu.Lock()
	c.sets[playerID] = checks
	c.mu.Unlock()
}

func (c *checkSets) get(playerID string) []check.Check {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sets[playerID]
}

func (c *checkSets) remove(playerID string) {
	c.mu.Lock()
	delete(c.sets, playerID)
	c.mu.Unlock()
}

// Handle runs one action event through the pipeline and returns the decision
// to the host. It executes inline with the host's loop: the whole path is
// synchronous, bounded, and never blocks on side effects. Events for disjoint
// players may be handled concurrently.
func (e *Engine) Handle(ev event.Event) event.Decision {
	start := e.clock()
	metrics.Events.WithLabelValues(ev.Kind().String()).Inc()

	decision := e.handle(ev, start)

	metrics.Decisions.WithLabelValues(decision.Kind.String()).Inc()
	metrics.EvalDuration.Observe(e.clock().Sub(start).Seconds())
	return decision
}

func (e *Engine) handle(ev event.Event, start time.Time) event.Decision {
	// Received → Normalized.
	if !structurallyValid(ev) {
		if e.denyMalformed {
			return event.Deny()
		}
		return event.Allow()
	}

	rec, err := e.store.Get(ev.Player())
	if err != nil {
		// Unknown player: fail open, discard the event.
		e.log.Debugf("discarding %s event for unknown player %s", ev.Kind(), ev.Player())
		return event.Allow()
	}

	rec.Lock()
	defer rec.Unlock()

	if err := rec.ValidateTime(ev.Time()); err != nil {
		// Stale or duplicate: no ledger mutation, no history mutation.
		metrics.StaleEvents.Inc()
		return event.Allow()
	}

	if rec.Exempt.Load() || rec.Suspended.Load() {
		e.commit(rec, ev, event.Allow(), nil)
		return event.Allow()
	}

	// Normalized → Evaluated.
	var env *physics.Envelope
	var moveCtx *physics.Context
	if mv, ok := ev.(*event.Move); ok {
		en, ctx := e.envelopeFor(rec, mv)
		env = &en
		moveCtx = &ctx
	}

	deadline := start.Add(e.evalBudget)
	var verdicts []*check.Verdict
	timedOut := false
	for _, c := range e.checks.get(ev.Player()) {
		if !c.Accepts(ev.Kind()) {
			continue
		}
		if e.clock().After(deadline) {
			timedOut = true
			break
		}
		if v := c.Evaluate(ev, rec, env); v != nil {
			metrics.Verdicts.WithLabelValues(v.CheckID).Inc()
			verdicts = append(verdicts, v)
		}
	}

	// Evaluated → Decided. Every verdict updates the ledger and emits its own
	// record; the most severe crossed action decides, ties broken by the
	// declared check order.
	decision := event.Allow()
	best := ledger.ActionNone
	now := e.clock()
	for _, v := range verdicts {
		score, crossed := e.ledger.Apply(ev.Player(), v.CheckID, v.Severity, now)
		if timedOut && crossed > ledger.ActionLog {
			// Guard tripped: fail open on this event, keep the record.
			crossed = ledger.ActionLog
		}
		d := e.dispatcher.Dispatch(ev.Player(), v, score, crossed, ev.Time())
		if crossed > best {
			best = crossed
			decision = d
		}
	}

	if timedOut {
		metrics.EvalTimeouts.Inc()
		e.log.Debugf("evaluation budget exceeded for %s, failing open", ev.Player())
		decision = event.Allow()
	}

	// Decided → Applied.
	e.commit(rec, ev, decision, moveCtx)
	return decision
}

// commit finalizes the event: the timestamp is recorded and, for allowed
// movement, the observation joins the history. Denied movement is never
// observed, so the last known-good state stays authoritative.
func (e *Engine) commit(rec *player.Record, ev event.Event, decision event.Decision, ctx *physics.Context) {
	rec.CommitTime(ev.Time())

	mv, ok := ev.(*event.Move)
	if !ok || decision.Kind != event.DecisionAllow {
		return
	}

	elapsed := e.elapsedTicks(rec, mv)
	vel := mv.To.Sub(mv.From).Mul(1 / float32(elapsed))
	// The stored velocity is what the client carries into its next tick:
	// gravity lands after the move, so the raw displacement overstates it. An
	// allowed vertical spike must not seed an envelope that legitimizes
	// holding the same climb rate.
	vel[1] = (vel.Y() - game.NormalGravity) * game.GravityMultiplier
	if ctx != nil && ctx.InWeb {
		// Webs cancel whatever momentum the client carried in.
		vel = mgl32.Vec3{}
	}

	// The client's on-ground claim is only trusted when the world around the
	// destination is loaded enough to verify it.
	onGround := mv.OnGround
	if ground, complete := e.sim.OnGroundAt(mv.To); complete {
		onGround = ground
	}
	rec.Observe(player.Observation{
		Position:  mv.To,
		Velocity:  vel,
		Rotation:  mv.Rotation,
		OnGround:  onGround,
		Timestamp: mv.Time(),
	})
	rec.ClearKnockback()
}

// envelopeFor derives the physics context along the player's path from the
// last accepted position and bounds the legal displacement for the elapsed
// ticks.
func (e *Engine) envelopeFor(rec *player.Record, mv *event.Move) (physics.Envelope, physics.Context) {
	from := mv.From
	if obs, ok := rec.Latest(); ok {
		from = obs.Position
	}
	ctx := e.sim.ContextAlong(mv.Player(), from, mv.To)
	if kb, ok := rec.Knockback(); ok {
		ctx.Knockback = kb
	}
	return e.sim.BoundsFor(rec, e.elapsedTicks(rec, mv), ctx), ctx
}

func (e *Engine) elapsedTicks(rec *player.Record, mv *event.Move) int {
	last := mv.Time() - game.TickDuration
	if obs, ok := rec.Latest(); ok {
		last = obs.Timestamp
	}
	ticks := int((mv.Time() - last) / game.TickDuration)
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}

// structurallyValid rejects events the adapter should never produce: NaN or
// infinite coordinates, zero timestamps.
func structurallyValid(ev event.Event) bool {
	if ev == nil || ev.Player() == "" || ev.Time() <= 0 {
		return false
	}
	switch e := ev.(type) {
	case *event.Move:
		return finiteVec(e.From) && finiteVec(e.To)
	case *event.Attack:
		return finiteVec(e.TargetPos) && finiteVec(e.FromPos) &&
			e.TargetWidth > 0 && e.TargetHeight > 0
	case *event.Interact:
		return finiteVec(e.FromPos)
	case *event.Place:
		return finiteVec(e.FromPos)
	}
	return true
}

func finiteVec(v mgl32.Vec3) bool {
	for _, c := range v {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}
