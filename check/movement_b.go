package check

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/vigil-ac/vigil/event"
	"github.com/vigil-ac/vigil/game"
	"github.com/vigil-ac/vigil/physics"
	"github.com/vigil-ac/vigil/player"
	"github.com/vigil-ac/vigil/settings"
)

const CheckIDMovementB = "vigil:movement_b"

// MovementB flags vertical motion inconsistent with the gravity model: jumps
// higher than any boost allows, or descent faster than terminal integration.
type MovementB struct {
	BaseCheck
}

// NewMovementB ...
func NewMovementB(cfg settings.MovementCheck) *MovementB {
	c := &MovementB{}
	c.Type = "Movement"
	c.SubType = "B"

	c.FailBuffer = float32(cfg.FailBuffer)
	c.MaxBuffer = float32(cfg.MaxBuffer)
	return c
}

// ID ...
func (c *MovementB) ID() string {
	return CheckIDMovementB
}

// Accepts ...
func (c *MovementB) Accepts(k event.Kind) bool {
	return k == event.KindMove
}

// Evaluate ...
func (c *MovementB) Evaluate(ev event.Event, rec *player.Record, env *physics.Envelope) *Verdict {
	mv, ok := ev.(*event.Move)
	if !ok || env == nil {
		return nil
	}

	fromY := mv.From.Y()
	if obs, ok := rec.Latest(); ok {
		fromY = obs.Position.Y()
	}
	dy := mv.To.Y() - fromY

	excess := env.ExceedsVertical(dy)
	if excess <= 0 {
		c.Debuff(0.1)
		return nil
	}
	if !c.Buff(1) {
		return nil
	}

	direction := "up"
	if dy < 0 {
		direction = "down"
	}

	data := orderedmap.NewOrderedMap[string, any]()
	data.Set("dy", game.Round32(dy, 4))
	data.Set("dir", direction)
	data.Set("excess", game.Round32(excess, 4))

	v := &Verdict{
		CheckID:  c.ID(),
		Severity: excess,
		Reason:   "vertical displacement outside gravity bounds",
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
