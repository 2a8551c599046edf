package physics

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vigil-ac/vigil/game"
)

// Envelope is the maximum displacement a legitimate client could have
// produced over the elapsed ticks, per axis. Observed deltas beyond the
// envelope (plus epsilon) cannot come from a vanilla client.
type Envelope struct {
	// Horizontal is the bound on XZ-plane displacement.
	Horizontal float32
	// Up and Down bound displacement on the Y axis, both positive.
	Up, Down float32
	// Epsilon is the configured slack absorbing floating point and network
	// jitter. It is applied on top of the bounds, never subtracted.
	Epsilon float32
	// Incomplete is set when environment data was unavailable and the bounds
	// were widened. Checks treat an incomplete envelope as always satisfied:
	// false negatives are preferred over false positives on missing data.
	Incomplete bool
	// Ticks is how many simulation ticks the envelope covers.
	Ticks int
}

// ExceedsHorizontal returns how far delta's horizontal component lies outside
// the envelope, or 0 when within it.
func (e Envelope) ExceedsHorizontal(delta mgl32.Vec3) float32 {
	if e.Incomplete {
		return 0
	}
	d := game.Vec3HzDist(delta)
	bound := e.Horizontal + e.Epsilon
	if d <= bound {
		return 0
	}
	return d - bound
}

// ExceedsVertical returns how far the vertical displacement dy lies outside
// the envelope, or 0 when within it.
func (e Envelope) ExceedsVertical(dy float32) float32 {
	if e.Incomplete {
		return 0
	}
	if dy > 0 {
		bound := e.Up + e.Epsilon
		if dy <= bound {
			return 0
		}
		return dy - bound
	}
	bound := e.Down + e.Epsilon
	if -dy <= bound {
		return 0
	}
	return -dy - bound
}
