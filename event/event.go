package event

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// Kind identifies the category of an action event.
type Kind uint8

const (
	KindMove Kind = iota
	KindAttack
	KindInteract
	KindPlace
)

// String ...
func (k Kind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindAttack:
		return "attack"
	case KindInteract:
		return "interact"
	case KindPlace:
		return "place"
	}
	return "unknown"
}

// Event is a normalized player action supplied by the host adapter. Events are
// immutable, consumed once, and must carry monotonically increasing per-player
// timestamps.
type Event interface {
	// Player returns the identity of the player that produced the action.
	Player() string
	// Kind returns the category of the action.
	Kind() Kind
	// Time returns the event timestamp in milliseconds.
	Time() int64
}

type base struct {
	PlayerID string
	EvTime   int64
}

func (b base) Player() string { return b.PlayerID }
func (b base) Time() int64    { return b.EvTime }

// Move is a reported movement from one position to another.
type Move struct {
	base

	From, To mgl32.Vec3
	// FromVel is the client-reported velocity at From. The physics model only
	// trusts it within the envelope it derives itself.
	FromVel  mgl32.Vec3
	Rotation mgl32.Vec3
	OnGround bool
	Sprinting, Sneaking, Jumping bool
}

func (Move) Kind() Kind { return KindMove }

// NewMove ...
func NewMove(player string, t int64, from, to mgl32.Vec3) *Move {
	return &Move{base: base{PlayerID: player, EvTime: t}, From: from, To: to}
}

// Attack is a reported melee attack against a target entity.
type Attack struct {
	base

	// Target is the runtime ID of the attacked entity.
	Target uint64
	// TargetPos is the host-authoritative position of the target at the time
	// of the attack, and TargetWidth/TargetHeight its collision box
	// dimensions.
	TargetPos    mgl32.Vec3
	TargetWidth  float32
	TargetHeight float32
	// FromPos is the attacker eye position reported with the swing.
	FromPos  mgl32.Vec3
	Rotation mgl32.Vec3
}

func (Attack) Kind() Kind { return KindAttack }

// NewAttack ...
func NewAttack(player string, t int64, target uint64, targetPos, fromPos mgl32.Vec3) *Attack {
	return &Attack{
		base:         base{PlayerID: player, EvTime: t},
		Target:       target,
		TargetPos:    targetPos,
		FromPos:      fromPos,
		TargetWidth:  0.6,
		TargetHeight: 1.8,
	}
}

// Interact is a reported use of a block (open, break start, use item on).
type Interact struct {
	base

	Block   cube.Pos
	FromPos mgl32.Vec3
}

func (Interact) Kind() Kind { return KindInteract }

// NewInteract ...
func NewInteract(player string, t int64, block cube.Pos, fromPos mgl32.Vec3) *Interact {
	return &Interact{base: base{PlayerID: player, EvTime: t}, Block: block, FromPos: fromPos}
}

// Place is a reported block placement.
type Place struct {
	base

	Block   cube.Pos
	FromPos mgl32.Vec3
}

func (Place) Kind() Kind { return KindPlace }

// NewPlace ...
func NewPlace(player string, t int64, block cube.Pos, fromPos mgl32.Vec3) *Place {
	return &Place{base: base{PlayerID: player, EvTime: t}, Block: block, FromPos: fromPos}
}
