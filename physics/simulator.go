package physics

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vigil-ac/vigil/game"
	"github.com/vigil-ac/vigil/player"
	"github.com/vigil-ac/vigil/world"
)

// maxSimTicks bounds the per-event integration cost. Longer gaps are
// extrapolated at terminal rates, so the envelope stays an upper bound
// without unbounded work on the hot path.
const maxSimTicks = 20

// widenFactor scales the envelope when environment data is incomplete.
const widenFactor = float32(4)

// Simulator replicates the host's motion integration to bound what a
// legitimate client could produce. The tick order has to match the host
// exactly (input force, move, gravity, air drag, friction): any drift becomes
// a systematic false-positive source.
type Simulator struct {
	oracle  world.Oracle
	epsilon float32
}

// NewSimulator ...
func NewSimulator(oracle world.Oracle, epsilon float32) *Simulator {
	if epsilon <= 0 {
		epsilon = 0.01
	}
	return &Simulator{oracle: oracle, epsilon: epsilon}
}

// Epsilon returns the configured envelope slack.
func (s *Simulator) Epsilon() float32 {
	return s.epsilon
}

// Context derives the environment snapshot for the given player position.
func (s *Simulator) Context(playerID string, pos mgl32.Vec3) Context {
	return DeriveContext(s.oracle, playerID, pos)
}

// ContextAlong derives the snapshot at from, widened by the media the path
// to to crosses.
func (s *Simulator) ContextAlong(playerID string, from, to mgl32.Vec3) Context {
	return ContextAlong(s.oracle, playerID, from, to)
}

// BoundsFor returns the maximum legal displacement for the player over
// elapsedTicks, given its last accepted state and the derived context.
func (s *Simulator) BoundsFor(rec *player.Record, elapsedTicks int, ctx Context) Envelope {
	if elapsedTicks < 1 {
		elapsedTicks = 1
	}

	var initial player.Observation
	if obs, ok := rec.Latest(); ok {
		initial = obs
	}

	env := Envelope{
		Epsilon: s.epsilon,
		Ticks:   elapsedTicks,
	}

	env.Horizontal = s.horizontalBound(initial, elapsedTicks, ctx)
	env.Up = s.upBound(initial, elapsedTicks, ctx)
	env.Down = s.downBound(initial, elapsedTicks, ctx)

	if ctx.Incomplete {
		env.Horizontal = env.Horizontal*widenFactor + 1
		env.Up = env.Up*widenFactor + 1
		env.Down = env.Down*widenFactor + 1
		env.Incomplete = true
	}
	return env
}

// horizontalBound integrates the worst-case legal horizontal speed: full
// sprint input with the most slippery friction the surroundings allow,
// a sprint-jump boost at every jump opportunity, and any pending knockback.
func (s *Simulator) horizontalBound(initial player.Observation, ticks int, ctx Context) float32 {
	friction := game.DefaultAirFriction * ctx.GroundFriction

	// Ground move force, matching the host's speed formula. The 0.162771336
	// constant is 0.6^3 * 0.1 / 0.1, kept in the host's own form.
	speed := game.DefaultMovementSpeed * game.SprintSpeedMultiplier
	speed *= 1 + game.SpeedBoostPerLevel*float32(ctx.SpeedAmplifier)
	force := speed * (0.162771336 / math32.Pow(friction, 3))

	vel := game.Vec3HzDist(initial.Velocity)
	if kb := game.Vec3HzDist(ctx.Knockback); kb > vel {
		vel = kb
	}

	simTicks := ticks
	if simTicks > maxSimTicks {
		simTicks = maxSimTicks
	}

	dist := float32(0)
	for i := 0; i < simTicks; i++ {
		vel += force
		if i%game.JumpDelayTicks == 0 {
			// Sprint-jump boost.
			vel += 0.2
		}
		dist += vel
		vel *= friction
	}

	if ticks > maxSimTicks {
		// Speed has converged; extrapolate the remaining ticks at the
		// terminal per-tick displacement.
		terminal := (force + 0.2/float32(game.JumpDelayTicks)) / (1 - friction)
		dist += terminal * float32(ticks-maxSimTicks)
	}
	return dist
}

// upBound integrates the highest legal ascent: a boosted jump from current
// upward velocity, a step up while grounded, or swimming, climbing and
// levitation where the context allows them.
func (s *Simulator) upBound(initial player.Observation, ticks int, ctx Context) float32 {
	jumpVel := game.DefaultJumpHeight + game.JumpBoostPerLevel*float32(ctx.JumpAmplifier)
	vel := math32.Max(initial.Velocity.Y(), jumpVel)
	if ctx.Knockback.Y() > vel {
		vel = ctx.Knockback.Y()
	}

	simTicks := ticks
	if simTicks > maxSimTicks {
		simTicks = maxSimTicks
	}

	dist := float32(0)
	for i := 0; i < simTicks; i++ {
		if ctx.Levitation {
			vel += game.LevitationAscend * float32(ctx.LevitationAmplifier)
		}
		if vel <= 0 && !ctx.Levitation {
			break
		}
		if vel > 0 {
			dist += vel
		}
		vel = (vel - ctx.Gravity) * game.GravityMultiplier
	}

	if initial.OnGround {
		// A grounded player steps up stairs and slabs without jumping, up to
		// StepHeight per tick.
		dist = math32.Max(dist, game.StepHeight*float32(ticks))
	}
	if ctx.InWater || ctx.InLava {
		drag := game.WaterDrag
		if ctx.InLava {
			drag = game.LavaDrag
		}
		// Holding jump in liquid sustains a terminal ascent of input/(1-drag)
		// per tick, unlike a jump arc that decays.
		dist = math32.Max(dist, game.DefaultAirSpeed/(1-drag)*float32(ticks)+1)
	}
	if ctx.OnClimbable {
		dist = math32.Max(dist, game.ClimbSpeed*float32(min(ticks, maxSimTicks))+1)
	}
	if ctx.Levitation && ticks > maxSimTicks {
		// Terminal ascent rate of the levitation recurrence.
		ascend := game.LevitationAscend * float32(ctx.LevitationAmplifier)
		terminal := (ascend - ctx.Gravity) * game.GravityMultiplier / (1 - game.GravityMultiplier)
		if terminal > 0 {
			dist += terminal * float32(ticks-maxSimTicks)
		}
	}
	return dist
}

// downBound integrates the fastest legal fall from the current velocity.
// Gravity is applied after the move (the host's post-move order), so the
// first tick's displacement uses the prior velocity.
func (s *Simulator) downBound(initial player.Observation, ticks int, ctx Context) float32 {
	vel := math32.Min(initial.Velocity.Y(), 0)

	simTicks := ticks
	if simTicks > maxSimTicks {
		simTicks = maxSimTicks
	}

	// Gravity hits the velocity before the client reports its first fall
	// displacement, so integrate before accumulating.
	dist := float32(0)
	for i := 0; i < simTicks; i++ {
		vel = (vel - ctx.Gravity) * game.GravityMultiplier
		dist += -vel
	}

	if ticks > maxSimTicks {
		// Terminal fall velocity: g * 0.98 / (1 - 0.98).
		terminal := ctx.Gravity * game.GravityMultiplier / (1 - game.GravityMultiplier)
		dist += terminal * float32(ticks-maxSimTicks)
	}
	return dist
}

// OnGroundAt reports whether a player box at pos is supported by a solid
// block, and whether the check had complete data. Support is decided the way
// the host resolves it: a small downward step clipped against the solid boxes
// underneath.
func (s *Simulator) OnGroundAt(pos mgl32.Vec3) (onGround, complete bool) {
	bb := game.PlayerBox(pos).Grow(-0.001)
	boxes, incomplete := world.BoxesWithin(s.oracle, bb.ExtendTowards(cube.FaceDown, 0.06))

	dy := float32(-0.05)
	for _, solid := range boxes {
		dy = game.BBClipYCollide(solid, bb, dy)
	}
	return dy > -0.05, !incomplete
}
