package game

// Movement constants replicated from the host's own tick integration. Any
// drift here versus the true host physics becomes a systematic false-positive
// source, so these values are validated against the host and never tuned.
const (
	TicksPerSecond = 20
	TickDuration   = 1000 / TicksPerSecond // milliseconds

	DefaultJumpHeight    = float32(0.42)
	DefaultAirFriction   = float32(0.91)
	DefaultBlockFriction = float32(0.6)
	GravityMultiplier    = float32(0.98)
	NormalGravity        = float32(0.08)
	SlowFallingGravity   = float32(0.01)
	LevitationAscend     = float32(0.05)
	StepHeight           = float32(0.6)

	// This can be validated in Mob::ascendLadder()
	ClimbSpeed = float32(0.2)

	SprintSpeedMultiplier = float32(1.3)
	DefaultMovementSpeed  = float32(0.1)
	DefaultAirSpeed       = float32(0.02)

	WaterDrag = float32(0.8)
	LavaDrag  = float32(0.5)

	DefaultPlayerHeightOffset  = float32(1.62)
	SneakingPlayerHeightOffset = float32(1.54)
	PlayerWidth                = float32(0.6)
	PlayerHeight               = float32(1.8)

	JumpBoostPerLevel  = float32(0.1)
	SpeedBoostPerLevel = float32(0.2)

	JumpDelayTicks = 10
)
