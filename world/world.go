package world

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/vigil-ac/vigil/game"
)

// BlockKind is the coarse classification of a block the physics model cares
// about. The host adapter maps its own block registry down to these.
type BlockKind uint8

const (
	// BlockUnknown marks positions the host has no loaded data for. The
	// physics model widens its envelope instead of failing when it sees one.
	BlockUnknown BlockKind = iota
	BlockAir
	BlockSolid
	BlockWater
	BlockLava
	BlockLadder
	BlockVine
	BlockWeb
	BlockSlime
	BlockIce
	BlockSoulSand
	BlockFence
	BlockSlab
)

// Friction returns the ground friction multiplier applied while standing on
// the block.
func (k BlockKind) Friction() float32 {
	switch k {
	case BlockIce:
		return 0.98
	case BlockSlime:
		return 0.8
	default:
		return game.DefaultBlockFriction
	}
}

// Solid reports whether the block has a collision box.
func (k BlockKind) Solid() bool {
	switch k {
	case BlockSolid, BlockIce, BlockSlime, BlockSoulSand, BlockFence, BlockSlab:
		return true
	}
	return false
}

// Liquid ...
func (k BlockKind) Liquid() bool {
	return k == BlockWater || k == BlockLava
}

// Climbable ...
func (k BlockKind) Climbable() bool {
	return k == BlockLadder || k == BlockVine
}

// Box returns the collision box of the block at pos, and whether it has one.
func (k BlockKind) Box(pos cube.Pos) (cube.BBox, bool) {
	if !k.Solid() {
		return cube.BBox{}, false
	}
	height := float32(1.0)
	switch k {
	case BlockFence:
		// Fences collide half a block above their model.
		height = 1.5
	case BlockSoulSand:
		height = 0.875
	case BlockSlab:
		height = 0.5
	}
	min := pos.Vec3()
	return cube.Box(min.X(), min.Y(), min.Z(), min.X()+1, min.Y()+height, min.Z()+1), true
}

// EffectKind is a movement-relevant status effect active on a player.
type EffectKind uint8

const (
	EffectSpeed EffectKind = iota
	EffectSlowness
	EffectJumpBoost
	EffectSlowFalling
	EffectLevitation
)

// Effect pairs an effect kind with its amplifier (level - 1, as the host
// reports it).
type Effect struct {
	Kind      EffectKind
	Amplifier int
}

// Oracle answers block and effect queries from the host. Both methods run on
// the event hot path and must be O(1); hosts backed by slower lookups should
// be wrapped in a Cached oracle.
type Oracle interface {
	// BlockAt returns the block at pos. ok is false when the position is
	// outside the loaded world.
	BlockAt(pos cube.Pos) (kind BlockKind, ok bool)
	// ActiveEffects returns the movement-relevant effects on the player.
	ActiveEffects(playerID string) []Effect
}
