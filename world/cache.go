package world

import (
	"encoding/binary"
	"sync"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/zeebo/xxh3"
)

// Cached wraps an Oracle with a bounded block cache so that repeated lookups
// within an evaluation never hit a slow host query twice. Unknown blocks are
// not cached: the host may load the chunk at any moment.
type Cached struct {
	src Oracle

	mu      sync.Mutex
	blocks  map[uint64]BlockKind
	maxSize int
}

// NewCached ...
func NewCached(src Oracle, maxSize int) *Cached {
	if maxSize <= 0 {
		maxSize = 4096
	}
	return &Cached{
		src:     src,
		blocks:  make(map[uint64]BlockKind, maxSize),
		maxSize: maxSize,
	}
}

// BlockAt ...
func (c *Cached) BlockAt(pos cube.Pos) (BlockKind, bool) {
	key := posKey(pos)

	c.mu.Lock()
	if k, ok := c.blocks[key]; ok {
		c.mu.Unlock()
		return k, true
	}
	c.mu.Unlock()

	k, ok := c.src.BlockAt(pos)
	if !ok {
		return BlockUnknown, false
	}

	c.mu.Lock()
	if len(c.blocks) >= c.maxSize {
		clear(c.blocks)
	}
	c.blocks[key] = k
	c.mu.Unlock()
	return k, true
}

// ActiveEffects ...
func (c *Cached) ActiveEffects(playerID string) []Effect {
	return c.src.ActiveEffects(playerID)
}

// Invalidate drops all cached blocks. Hosts call this when world state
// changes (block updates, chunk unloads).
func (c *Cached) Invalidate() {
	c.mu.Lock()
	clear(c.blocks)
	c.mu.Unlock()
}

// InvalidateBlock drops a single cached position.
func (c *Cached) InvalidateBlock(pos cube.Pos) {
	c.mu.Lock()
	delete(c.blocks, posKey(pos))
	c.mu.Unlock()
}

func posKey(pos cube.Pos) uint64 {
	var b [12]byte
	binary.LittleEndian.PutUint32(b[0:], uint32(pos.X()))
	binary.LittleEndian.PutUint32(b[4:], uint32(pos.Y()))
	binary.LittleEndian.PutUint32(b[8:], uint32(pos.Z()))
	return xxh3.Hash(b[:])
}
