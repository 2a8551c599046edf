package check

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/vigil-ac/vigil/event"
	"github.com/vigil-ac/vigil/game"
	"github.com/vigil-ac/vigil/physics"
	"github.com/vigil-ac/vigil/player"
)

const CheckIDTimerA = "vigil:timer_a"

const (
	// timerBalanceLimit is how many milliseconds ahead of the host tick rate
	// the client may run before flagging.
	timerBalanceLimit = float64(-150)
	// timerBalanceCap stops a client from banking a large positive balance
	// with negative timer and spending it later.
	timerBalanceCap = float64(500)
)

// TimerA detects clients simulating ahead of the server: movement events
// arriving faster than the host's minimum tick interval allows. It keeps a
// running balance of observed inter-event gaps against the expected 50ms.
type TimerA struct {
	BaseCheck

	balance     float64
	lastTime    int64
	initialized bool
}

// NewTimerA ...
func NewTimerA() *TimerA {
	c := &TimerA{}
	c.Type = "Timer"
	c.SubType = "A"
	return c
}

// ID ...
func (c *TimerA) ID() string {
	return CheckIDTimerA
}

// Accepts ...
func (c *TimerA) Accepts(k event.Kind) bool {
	return k == event.KindMove
}

// Evaluate ...
func (c *TimerA) Evaluate(ev event.Event, _ *player.Record, _ *physics.Envelope) *Verdict {
	if _, ok := ev.(*event.Move); !ok {
		return nil
	}

	curr := ev.Time()
	timeDiff := float64(curr - c.lastTime)
	defer func() {
		c.lastTime = curr
	}()

	if !c.initialized {
		c.initialized = true
		return nil
	}

	c.balance += timeDiff - game.TickDuration
	if c.balance > timerBalanceCap {
		c.balance = timerBalanceCap
	}
	if c.balance > timerBalanceLimit {
		return nil
	}

	severity := float32((timerBalanceLimit - c.balance) / game.TickDuration)
	if severity < 1 {
		severity = 1
	}

	data := orderedmap.NewOrderedMap[string, any]()
	data.Set("balance", game.Round64(c.balance, 2))
	c.balance = 0

	return &Verdict{
		CheckID:  c.ID(),
		Severity: severity,
		Reason:   "actions arriving faster than the host tick interval",
		Data:     data,
	}
}
