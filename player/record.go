package player

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"github.com/vigil-ac/vigil/oerror"
	"github.com/vigil-ac/vigil/utils"
	"go.uber.org/atomic"
)

// Observation is one accepted sample of a player's reported state.
type Observation struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Rotation mgl32.Vec3
	OnGround bool
	// Timestamp is the event time in milliseconds.
	Timestamp int64
}

// Record is the per-player mutable state the engine keeps between events. A
// record is exclusively owned per player ID: the store serializes access so
// that near-simultaneous event sources (movement and combat packets) never
// race on it.
type Record struct {
	ID string

	mu      sync.Mutex
	history *utils.CircularQueue[Observation]
	// lastTimestamp is the timestamp of the last processed event of any kind,
	// used to reject stale or duplicate events.
	lastTimestamp int64
	seq           uint64

	// knockback is host-applied knockback waiting to widen the next movement
	// envelope.
	knockback    mgl32.Vec3
	hasKnockback bool

	// Exempt disables all checks for the player (operator bypass). Suspended
	// pauses evaluation without destroying accumulated state.
	Exempt    atomic.Bool
	Suspended atomic.Bool

	log *logrus.Entry
}

func newRecord(id string, historySize int, log *logrus.Logger) *Record {
	return &Record{
		ID:      id,
		history: utils.NewCircularQueue[Observation](historySize),
		log:     log.WithField("player", id),
	}
}

// Log returns the player-scoped log entry.
func (r *Record) Log() *logrus.Entry {
	return r.log
}

// Lock serializes event processing for this player. The pipeline holds the
// lock for the whole Received→Decided transition.
func (r *Record) Lock() {
	r.mu.Lock()
}

// Unlock ...
func (r *Record) Unlock() {
	r.mu.Unlock()
}

// ValidateTime checks an incoming event timestamp against the last processed
// one. Timestamps must be strictly increasing per player; regressions and
// duplicates are stale. Callers must hold the record lock.
func (r *Record) ValidateTime(t int64) error {
	if r.lastTimestamp != 0 && t <= r.lastTimestamp {
		return oerror.ErrStaleEvent
	}
	return nil
}

// CommitTime marks t as the last processed event timestamp. Callers must hold
// the record lock.
func (r *Record) CommitTime(t int64) {
	r.lastTimestamp = t
	r.seq++
}

// Seq returns the number of events processed for this record.
func (r *Record) Seq() uint64 {
	return r.seq
}

// SetKnockback records knockback the host has applied to the player. It
// stays pending until a movement is accepted under it.
func (r *Record) SetKnockback(vel mgl32.Vec3) {
	r.mu.Lock()
	r.knockback = vel
	r.hasKnockback = true
	r.mu.Unlock()
}

// Knockback returns the pending knockback, if any. Callers must hold the
// record lock.
func (r *Record) Knockback() (mgl32.Vec3, bool) {
	return r.knockback, r.hasKnockback
}

// ClearKnockback consumes the pending knockback. Callers must hold the
// record lock.
func (r *Record) ClearKnockback() {
	r.knockback = mgl32.Vec3{}
	r.hasKnockback = false
}

// Observe appends an accepted movement sample to the history buffer. The
// buffer is append-only within a connection and strictly time-ordered; stale
// samples were already rejected by ValidateTime.
func (r *Record) Observe(obs Observation) {
	r.history.Append(obs)
}

// Latest returns the most recent accepted observation.
func (r *Record) Latest() (Observation, bool) {
	return r.history.Latest()
}

// Previous returns the observation before the latest one.
func (r *Record) Previous() (Observation, bool) {
	return r.history.At(r.history.Len() - 2)
}

// LastKnownGood returns the state a correction should force the player back
// to. The latest accepted observation is by construction one a legitimate
// client could have produced.
func (r *Record) LastKnownGood() (Observation, bool) {
	return r.Latest()
}

// History iterates the accepted observations from oldest to newest. Callers
// must hold the record lock.
func (r *Record) History() *utils.CircularQueue[Observation] {
	return r.history
}
