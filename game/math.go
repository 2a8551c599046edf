package game

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// sinTable ...
var sinTable []float32

// init initializes the sinTable.
func init() {
	for i := float32(0.0); i < 65536; i++ {
		sinTable = append(sinTable, math32.Sin(i*math32.Pi*2/65536))
	}
}

// MCSin returns the Minecraft sin of the given angle. The host uses a 65536
// entry lookup table rather than the libm function, and the envelope math has
// to reproduce its rounding exactly.
func MCSin(val float32) float32 {
	return sinTable[uint16(val*10430.378)&65535]
}

// MCCos returns the Minecraft cos of the given angle.
func MCCos(val float32) float32 {
	return sinTable[uint16(val*10430.378+16384.0)&65535]
}

// Round32 will round a float32 to a given precision.
func Round32(val float32, precision int) float32 {
	pwr := math32.Pow(10, float32(precision))
	return math32.Round(val*pwr) / pwr
}

// Round64 will round a float64 to a given precision.
func Round64(val float64, precision int) float64 {
	pwr := math.Pow(10, float64(precision))
	return math.Round(val*pwr) / pwr
}

// Vec3HzDistSqr returns the squared horizontal distance in a vector.
func Vec3HzDistSqr(vec3 mgl32.Vec3) float32 {
	return vec3.X()*vec3.X() + vec3.Z()*vec3.Z()
}

// Vec3HzDist returns the horizontal distance in a vector.
func Vec3HzDist(vec3 mgl32.Vec3) float32 {
	return math32.Sqrt(Vec3HzDistSqr(vec3))
}

// DirectionVector returns a direction vector from the given yaw and pitch
// values, using the same lookup-table trig the client aims with.
func DirectionVector(yaw, pitch float32) mgl32.Vec3 {
	yawRad, pitchRad := mgl32.DegToRad(yaw), mgl32.DegToRad(pitch)
	m := MCCos(pitchRad)

	return mgl32.Vec3{
		-m * MCSin(yawRad),
		-MCSin(pitchRad),
		m * MCCos(yawRad),
	}
}

// Returns -1 if x < y, 0 if x == y, or 1 if x > y
func SpaceshipOp(x, y float32) float32 {
	if x < y {
		return -1
	} else if x == y {
		return 0
	}

	return 1
}
