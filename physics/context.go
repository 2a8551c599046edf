package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vigil-ac/vigil/game"
	"github.com/vigil-ac/vigil/world"
)

// Context is the environment snapshot the simulator derives per event:
// everything about the player's surroundings and active effects that changes
// what legal motion looks like. Ephemeral, recomputed per event.
type Context struct {
	Gravity        float32
	GroundFriction float32

	InWater     bool
	InLava      bool
	OnClimbable bool
	InWeb       bool

	SpeedAmplifier      int
	JumpAmplifier       int
	SlowFalling         bool
	Levitation          bool
	LevitationAmplifier int

	// Knockback is pending host-applied knockback the adapter has told us
	// about; it widens the envelope on the affected axes.
	Knockback mgl32.Vec3

	// Incomplete is set when any block lookup around the player failed. The
	// resulting envelope is widened rather than the event failing.
	Incomplete bool
}

// DeriveContext builds the physics context for a player standing at pos.
func DeriveContext(o world.Oracle, playerID string, pos mgl32.Vec3) Context {
	ctx := Context{
		Gravity:        game.NormalGravity,
		GroundFriction: game.DefaultBlockFriction,
	}

	body := game.PlayerBox(pos).Grow(0.1)
	blocks, incomplete := world.BlocksWithin(o, body)
	ctx.Incomplete = incomplete

	for _, b := range blocks {
		switch {
		case b.Kind == world.BlockWater:
			ctx.InWater = true
		case b.Kind == world.BlockLava:
			ctx.InLava = true
		case b.Kind.Climbable():
			ctx.OnClimbable = true
		case b.Kind == world.BlockWeb:
			ctx.InWeb = true
		}
	}

	// The most slippery block under the player decides ground friction; the
	// envelope has to be permissive when the player could be sliding on ice.
	under := body.Translate(mgl32.Vec3{0, -0.6}).Grow(-0.05)
	underBlocks, underIncomplete := world.BlocksWithin(o, under)
	ctx.Incomplete = ctx.Incomplete || underIncomplete
	for _, b := range underBlocks {
		if b.Kind.Solid() {
			ctx.GroundFriction = math32.Max(ctx.GroundFriction, b.Kind.Friction())
		}
	}

	ctx.applyEffects(o, playerID)
	return ctx
}

// ContextAlong derives the context at from, widened by whatever the path to
// to passes through. A move that crosses water, a climbable column or
// unloaded chunks is judged under the most permissive medium on its way.
func ContextAlong(o world.Oracle, playerID string, from, to mgl32.Vec3) Context {
	ctx := DeriveContext(o, playerID, from)
	if to.Sub(from).LenSqr() < 1e-12 {
		return ctx
	}

	for pos := range game.BlocksBetween(from, to) {
		kind, ok := o.BlockAt(pos)
		if !ok {
			ctx.Incomplete = true
			continue
		}
		switch {
		case kind == world.BlockWater:
			ctx.InWater = true
		case kind == world.BlockLava:
			ctx.InLava = true
		case kind.Climbable():
			ctx.OnClimbable = true
		case kind == world.BlockWeb:
			ctx.InWeb = true
		}
	}
	return ctx
}

func (ctx *Context) applyEffects(o world.Oracle, playerID string) {
	for _, eff := range o.ActiveEffects(playerID) {
		switch eff.Kind {
		case world.EffectSpeed:
			if eff.Amplifier+1 > ctx.SpeedAmplifier {
				ctx.SpeedAmplifier = eff.Amplifier + 1
			}
		case world.EffectJumpBoost:
			if eff.Amplifier+1 > ctx.JumpAmplifier {
				ctx.JumpAmplifier = eff.Amplifier + 1
			}
		case world.EffectSlowFalling:
			ctx.SlowFalling = true
			ctx.Gravity = game.SlowFallingGravity
		case world.EffectLevitation:
			ctx.Levitation = true
			ctx.LevitationAmplifier = eff.Amplifier + 1
		}
	}
}
