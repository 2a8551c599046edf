package check

import (
	"github.com/chewxy/math32"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/vigil-ac/vigil/event"
	"github.com/vigil-ac/vigil/game"
	"github.com/vigil-ac/vigil/physics"
	"github.com/vigil-ac/vigil/player"
	"github.com/vigil-ac/vigil/settings"
)

const CheckIDFastPlaceA = "vigil:fastplace_a"

const (
	fastPlaceBuckets        = 5
	fastPlaceBucketDuration = 1000 // milliseconds
)

// FastPlaceA flags players placing blocks faster than a human can. Two
// windows run side by side: a full-period bucket score catching sustained
// spam and a short-term tick window catching bursts.
type FastPlaceA struct {
	BaseCheck

	freq *frequency
	// limit is the maximum placements per full window.
	limit float32

	shortTermTicks int64
	shortTermLimit int
	shortTermStart int64
	shortTermCount int
}

// NewFastPlaceA ...
func NewFastPlaceA(cfg settings.FastPlaceCheck) *FastPlaceA {
	c := &FastPlaceA{}
	c.Type = "FastPlace"
	c.SubType = "A"

	c.freq = newFrequency(fastPlaceBuckets, fastPlaceBucketDuration)
	c.limit = float32(cfg.Limit)
	c.shortTermTicks = int64(cfg.ShortTermTicks)
	c.shortTermLimit = cfg.ShortTermLimit
	return c
}

// ID ...
func (c *FastPlaceA) ID() string {
	return CheckIDFastPlaceA
}

// Accepts ...
func (c *FastPlaceA) Accepts(k event.Kind) bool {
	return k == event.KindPlace
}

// Evaluate ...
func (c *FastPlaceA) Evaluate(ev event.Event, _ *player.Record, _ *physics.Envelope) *Verdict {
	if _, ok := ev.(*event.Place); !ok {
		return nil
	}
	now := ev.Time()

	c.freq.add(now, 1)
	fullScore := c.freq.score(1)

	// Short term arrivals.
	window := c.shortTermTicks * game.TickDuration
	if now < c.shortTermStart {
		// Host clock got reset.
		c.shortTermStart = now
		c.shortTermCount = 1
	} else if now-c.shortTermStart < window {
		c.shortTermCount++
	} else {
		c.shortTermStart = now
		c.shortTermCount = 1
	}

	fullViolation := float32(0)
	if fullScore > c.limit {
		fullViolation = fullScore - c.limit
	}
	shortTermViolation := float32(c.shortTermCount - c.shortTermLimit)
	violation := math32.Max(fullViolation, shortTermViolation)

	if violation <= 0 {
		return nil
	}

	data := orderedmap.NewOrderedMap[string, any]()
	data.Set("full", game.Round32(fullScore, 2))
	data.Set("short", c.shortTermCount)

	return &Verdict{
		CheckID:  c.ID(),
		Severity: violation,
		Reason:   "blocks placed faster than the placement limit",
		Data:     data,
	}
}
