package world

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
)

// BlockResult pairs a looked-up block with its position.
type BlockResult struct {
	Position cube.Pos
	Kind     BlockKind
}

// BlocksWithin returns every block whose position overlaps bb. incomplete is
// true when any position inside bb was outside the loaded world.
func BlocksWithin(o Oracle, bb cube.BBox) (results []BlockResult, incomplete bool) {
	min, max := bb.Min(), bb.Max()
	minX, minY, minZ := int(math32.Floor(min.X())), int(math32.Floor(min.Y())), int(math32.Floor(min.Z()))
	maxX, maxY, maxZ := int(math32.Floor(max.X())), int(math32.Floor(max.Y())), int(math32.Floor(max.Z()))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for z := minZ; z <= maxZ; z++ {
				pos := cube.Pos{x, y, z}
				kind, ok := o.BlockAt(pos)
				if !ok {
					incomplete = true
					continue
				}
				results = append(results, BlockResult{Position: pos, Kind: kind})
			}
		}
	}
	return results, incomplete
}

// BoxesWithin returns the collision boxes of all solid blocks overlapping bb.
func BoxesWithin(o Oracle, bb cube.BBox) (boxes []cube.BBox, incomplete bool) {
	results, incomplete := BlocksWithin(o, bb)
	for _, r := range results {
		box, ok := r.Kind.Box(r.Position)
		if !ok {
			continue
		}
		if box.IntersectsWith(bb) {
			boxes = append(boxes, box)
		}
	}
	return boxes, incomplete
}
