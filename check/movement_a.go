package check

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/vigil-ac/vigil/event"
	"github.com/vigil-ac/vigil/game"
	"github.com/vigil-ac/vigil/physics"
	"github.com/vigil-ac/vigil/player"
	"github.com/vigil-ac/vigil/settings"
)

const CheckIDMovementA = "vigil:movement_a"

// MovementA flags horizontal displacement outside the motion envelope.
type MovementA struct {
	BaseCheck
}

// NewMovementA ...
func NewMovementA(cfg settings.MovementCheck) *MovementA {
	c := &MovementA{}
	c.Type = "Movement"
	c.SubType = "A"

	c.FailBuffer = float32(cfg.FailBuffer)
	c.MaxBuffer = float32(cfg.MaxBuffer)
	return c
}

// ID ...
func (c *MovementA) ID() string {
	return CheckIDMovementA
}

// Accepts ...
func (c *MovementA) Accepts(k event.Kind) bool {
	return k == event.KindMove
}

// Evaluate ...
func (c *MovementA) Evaluate(ev event.Event, rec *player.Record, env *physics.Envelope) *Verdict {
	mv, ok := ev.(*event.Move)
	if !ok || env == nil {
		return nil
	}

	from := mv.From
	if obs, ok := rec.Latest(); ok {
		from = obs.Position
	}
	delta := mv.To.Sub(from)

	excess := env.ExceedsHorizontal(delta)
	if excess <= 0 {
		c.Debuff(0.1)
		return nil
	}
	if !c.Buff(1) {
		return nil
	}

	data := orderedmap.NewOrderedMap[string, any]()
	data.Set("dist", game.Round32(game.Vec3HzDist(delta), 4))
	data.Set("bound", game.Round32(env.Horizontal+env.Epsilon, 4))
	data.Set("excess", game.Round32(excess, 4))

	v := &Verdict{
		CheckID:  c.ID(),
		Severity: excess,
		Reason:   "horizontal displacement outside motion envelope",
		Data:     data,
	}
	if obs, ok := rec.LastKnownGood(); ok {
		v.Correction = &event.CorrectedState{
			Position: obs.Position,
			Velocity: obs.Velocity,
			OnGround: obs.OnGround,
		}
	}
	return v
}
