package check

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/ethaniccc/float32-cube/cube/trace"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vigil-ac/vigil/event"
	"github.com/vigil-ac/vigil/game"
	"github.com/vigil-ac/vigil/physics"
	"github.com/vigil-ac/vigil/player"
	"github.com/vigil-ac/vigil/settings"
)

const CheckIDReachA = "vigil:reach_a"

const interpolationSteps = 10
const noHit float32 = -1.0

// ReachA flags melee attacks landing from beyond the maximum reach. The
// attacker position is interpolated between its two latest accepted samples
// and raycast against the target's grown collision box, so a laggy but honest
// client never trips it on a single stale frame.
type ReachA struct {
	BaseCheck

	maxDist float32
}

// NewReachA ...
func NewReachA(cfg settings.ReachCheck) *ReachA {
	c := &ReachA{}
	c.Type = "Reach"
	c.SubType = "A"

	c.maxDist = float32(cfg.MaxDist)
	c.FailBuffer = float32(cfg.FailBuffer)
	c.MaxBuffer = float32(cfg.MaxBuffer)
	return c
}

// ID ...
func (c *ReachA) ID() string {
	return CheckIDReachA
}

// Accepts ...
func (c *ReachA) Accepts(k event.Kind) bool {
	return k == event.KindAttack
}

// Evaluate ...
func (c *ReachA) Evaluate(ev event.Event, rec *player.Record, _ *physics.Envelope) *Verdict {
	atk, ok := ev.(*event.Attack)
	if !ok {
		return nil
	}

	// The attacker may be sneaking, which lowers the eye line; both heights
	// are sampled and the shortest distance wins.
	type segment struct{ start, end mgl32.Vec3 }
	segments := []segment{{atk.FromPos, atk.FromPos}}
	if latest, ok := rec.Latest(); ok {
		startFeet := latest.Position
		if prev, ok := rec.Previous(); ok {
			startFeet = prev.Position
		}
		segments = segments[:0]
		for _, offset := range []float32{game.DefaultPlayerHeightOffset, game.SneakingPlayerHeightOffset} {
			eye := mgl32.Vec3{0, offset}
			segments = append(segments, segment{startFeet.Add(eye), latest.Position.Add(eye)})
		}
	}

	targetBB := targetBox(atk).Grow(0.1)
	useRay := atk.Rotation.LenSqr() > 0

	minDist := noHit
	for _, seg := range segments {
		posDelta := seg.end.Sub(seg.start)
		for i := 0; i <= interpolationSteps; i++ {
			attackPos := seg.start.Add(posDelta.Mul(float32(i) / interpolationSteps))

			var dist float32
			if useRay {
				dir := game.DirectionVector(atk.Rotation.Z(), atk.Rotation.X())
				result, hit := trace.BBoxIntercept(targetBB, attackPos, attackPos.Add(dir.Mul(14.0)))
				if !hit {
					continue
				}
				dist = result.Position().Sub(attackPos).Len()
			} else {
				dist = game.AABBVectorDistance(targetBB, attackPos)
			}

			if minDist == noHit || dist < minDist {
				minDist = dist
			}
		}
	}

	if minDist == noHit {
		// The aim never intercepted the target box; hitbox concerns belong to
		// a different check.
		return nil
	}

	if minDist <= c.maxDist {
		c.Debuff(0.002)
		return nil
	}
	if !c.Buff(1) {
		return nil
	}

	data := orderedmap.NewOrderedMap[string, any]()
	data.Set("dist", game.Round32(minDist, 4))
	data.Set("max", c.maxDist)

	return &Verdict{
		CheckID:  c.ID(),
		Severity: minDist - c.maxDist,
		Reason:   "attack landed beyond maximum reach",
		Data:     data,
	}
}

func targetBox(atk *event.Attack) cube.BBox {
	return game.AABBFromDimensions(atk.TargetWidth, atk.TargetHeight).Translate(atk.TargetPos)
}
