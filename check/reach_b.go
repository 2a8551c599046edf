package check

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vigil-ac/vigil/event"
	"github.com/vigil-ac/vigil/game"
	"github.com/vigil-ac/vigil/physics"
	"github.com/vigil-ac/vigil/player"
	"github.com/vigil-ac/vigil/settings"
)

const CheckIDReachB = "vigil:reach_b"

// ReachB flags block interactions and placements targeting a block farther
// than the build reach.
type ReachB struct {
	BaseCheck

	maxDist float32
}

// NewReachB ...
func NewReachB(cfg settings.ReachCheck) *ReachB {
	c := &ReachB{}
	c.Type = "Reach"
	c.SubType = "B"

	c.maxDist = float32(cfg.MaxDist)
	c.FailBuffer = float32(cfg.FailBuffer)
	c.MaxBuffer = float32(cfg.MaxBuffer)
	return c
}

// ID ...
func (c *ReachB) ID() string {
	return CheckIDReachB
}

// Accepts ...
func (c *ReachB) Accepts(k event.Kind) bool {
	return k == event.KindInteract || k == event.KindPlace
}

// Evaluate ...
func (c *ReachB) Evaluate(ev event.Event, rec *player.Record, _ *physics.Envelope) *Verdict {
	var (
		block cube.Pos
		eye   = eyePosition(ev, rec)
	)
	switch e := ev.(type) {
	case *event.Interact:
		block = e.Block
	case *event.Place:
		block = e.Block
	default:
		return nil
	}

	min := block.Vec3()
	blockBB := cube.Box(min.X(), min.Y(), min.Z(), min.X()+1, min.Y()+1, min.Z()+1)
	dist := game.AABBVectorDistance(blockBB, eye)

	if dist <= c.maxDist {
		c.Debuff(0.05)
		return nil
	}
	if !c.Buff(1) {
		return nil
	}

	data := orderedmap.NewOrderedMap[string, any]()
	data.Set("dist", game.Round32(dist, 4))
	data.Set("max", c.maxDist)
	data.Set("block", [3]int(block))

	return &Verdict{
		CheckID:  c.ID(),
		Severity: dist - c.maxDist,
		Reason:   "block interaction beyond build reach",
		Data:     data,
	}
}

func eyePosition(ev event.Event, rec *player.Record) (eye mgl32.Vec3) {
	switch e := ev.(type) {
	case *event.Interact:
		eye = e.FromPos
	case *event.Place:
		eye = e.FromPos
	}
	// Prefer the accepted history over the reported position when available.
	if obs, ok := rec.Latest(); ok {
		p := obs.Position
		p[1] += game.DefaultPlayerHeightOffset
		return p
	}
	return eye
}
