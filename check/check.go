package check

import (
	"github.com/chewxy/math32"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/vigil-ac/vigil/event"
	"github.com/vigil-ac/vigil/physics"
	"github.com/vigil-ac/vigil/player"
)

// Verdict is the output of one check for one event. Severity grows with how
// far the observation exceeded the legal bound, so responses can be
// proportional rather than binary.
type Verdict struct {
	CheckID  string
	Severity float32
	Reason   string
	Data     *orderedmap.OrderedMap[string, any]
	// Correction, when set, is the state the player should be forced back to
	// if the responding action cancels the event.
	Correction *event.CorrectedState
}

// Check is a single independent detector. Checks are instantiated per player:
// buffer state lives on the instance and never crosses players. Within one
// event no check may depend on another's verdict.
type Check interface {
	// ID returns the stable identifier of the check, e.g. "vigil:movement_a".
	ID() string
	// Name returns the check type and subtype, e.g. ("Movement", "A").
	Name() (string, string)
	// Accepts reports whether the check evaluates events of the given kind.
	Accepts(k event.Kind) bool
	// Evaluate runs the check against one event. env is nil for event kinds
	// that carry no motion envelope. A nil verdict means no violation.
	Evaluate(ev event.Event, rec *player.Record, env *physics.Envelope) *Verdict
}

// BaseCheck carries the buffering state shared by all checks. A check only
// fails once its buffer has filled past the fail threshold, which smooths
// over one-off jitter without letting sustained abuse hide.
type BaseCheck struct {
	Type    string
	SubType string

	Buffer     float32
	FailBuffer float32
	MaxBuffer  float32
}

// Name ...
func (b *BaseCheck) Name() (string, string) {
	return b.Type, b.SubType
}

// Buff raises the buffer by n and reports whether it has reached the fail
// threshold.
func (b *BaseCheck) Buff(n float32) bool {
	b.Buffer = math32.Min(b.Buffer+n, b.MaxBuffer)
	return b.Buffer >= b.FailBuffer
}

// Debuff lowers the buffer on legitimate behaviour.
func (b *BaseCheck) Debuff(amount float32) {
	b.Buffer = math32.Max(b.Buffer-amount, 0)
}
