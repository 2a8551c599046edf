package game

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// AABBFromDimensions returns a bounding box from the given dimensions, centred
// on the XZ origin with its base at Y zero.
func AABBFromDimensions(width, height float32) cube.BBox {
	h := width / 2
	return cube.Box(
		-h, 0, -h,
		h, height, h,
	)
}

// PlayerBox returns the player collision box translated to pos.
func PlayerBox(pos mgl32.Vec3) cube.BBox {
	return AABBFromDimensions(PlayerWidth, PlayerHeight).Translate(pos)
}

// AABBVectorDistance calculates the distance between an AABB and a vector.
func AABBVectorDistance(a cube.BBox, v mgl32.Vec3) float32 {
	x := math32.Max(a.Min().X()-v.X(), math32.Max(0, v.X()-a.Max().X()))
	y := math32.Max(a.Min().Y()-v.Y(), math32.Max(0, v.Y()-a.Max().Y()))
	z := math32.Max(a.Min().Z()-v.Z(), math32.Max(0, v.Z()-a.Max().Z()))

	dist := math32.Sqrt(math32.Pow(x, 2) + math32.Pow(y, 2) + math32.Pow(z, 2))
	if dist == mgl32.NaN {
		dist = 0
	}

	return dist
}

// BBClipYCollide clips movement on the Y axis.
func BBClipYCollide(stationary, moving cube.BBox, dy float32) float32 {
	if moving.Max().X() <= stationary.Min().X() || moving.Min().X() >= stationary.Max().X() {
		return dy
	}
	if moving.Max().Z() <= stationary.Min().Z() || moving.Min().Z() >= stationary.Max().Z() {
		return dy
	}

	if dy > 0 && moving.Max().Y() <= stationary.Min().Y() {
		dy = math32.Min(dy, stationary.Min().Y()-moving.Max().Y())
	} else if dy < 0 && moving.Min().Y() >= stationary.Max().Y() {
		dy = math32.Max(dy, stationary.Max().Y()-moving.Min().Y())
	}
	return dy
}

