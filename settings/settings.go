package settings

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// Settings contains everything that can be configured for the engine and each
// check. It is read once at startup and never mutated by the engine.
type Settings struct {
	Engine Engine

	Movement struct {
		A MovementCheck
		B MovementCheck
	}
	Reach struct {
		A ReachCheck
		B ReachCheck
	}
	Timer struct {
		A Basics
	}
	FastPlace struct {
		A FastPlaceCheck
	}
}

// Engine holds the pipeline-wide knobs.
type Engine struct {
	// HistorySize is the capacity of the per-player observation buffer.
	HistorySize int
	// Epsilon is the envelope slack in blocks absorbing float and network jitter.
	Epsilon float64
	// EvalBudgetMicros is the wall-clock guard around check evaluation, in
	// microseconds. On expiry remaining checks abort and the event fails open.
	EvalBudgetMicros int64
	// MalformedPolicy decides the terminal decision for structurally invalid
	// events: "deny" or "allow".
	MalformedPolicy string
	// WorkerLanes is the number of ordered async delivery lanes. Zero means
	// one per CPU.
	WorkerLanes int
	// BlockCacheSize bounds the world block cache.
	BlockCacheSize int
	// RetainScoresOnLeave keeps a player's violation scores across
	// reconnects instead of resetting them on disconnect.
	RetainScoresOnLeave bool
}

// Basics are the settings every check shares.
type Basics struct {
	// Enabled is whether the check should run at all.
	Enabled bool
	// Decay configures how the check's violation score decays over time.
	Decay Decay
	// Log, Cancel and Escalate are the score thresholds of the graduated
	// response, strictly increasing. A zero threshold disables that tier.
	Log      float64
	Cancel   float64
	Escalate float64
	// Punishment is the operator-facing label attached to escalations:
	// "none", "kick" or "ban". The engine never enforces it itself.
	Punishment string
}

// Decay ...
type Decay struct {
	// Kind is "linear" or "exponential".
	Kind string
	// Rate is score units per second (linear) or the exponent rate
	// (exponential).
	Rate float64
}

// MovementCheck ...
type MovementCheck struct {
	Basics
	FailBuffer float64
	MaxBuffer  float64
}

// ReachCheck ...
type ReachCheck struct {
	Basics
	// MaxDist is the maximum legal reach in blocks.
	MaxDist    float64
	FailBuffer float64
	MaxBuffer  float64
}

// FastPlaceCheck ...
type FastPlaceCheck struct {
	Basics
	// Limit is the maximum number of placements per bucket period.
	Limit float64
	// ShortTermTicks is the short-term window length and ShortTermLimit the
	// maximum placements within it.
	ShortTermTicks int
	ShortTermLimit int
}

// DefaultSettings returns the default settings for the engine and all checks.
func DefaultSettings() Settings {
	s := Settings{}
	s.Engine.HistorySize = 40
	s.Engine.Epsilon = 0.01
	s.Engine.EvalBudgetMicros = 2000
	s.Engine.MalformedPolicy = "deny"
	s.Engine.BlockCacheSize = 4096

	basics := Basics{
		Enabled:    true,
		Decay:      Decay{Kind: "linear", Rate: 0.05},
		Log:        1,
		Cancel:     5,
		Escalate:   20,
		Punishment: "kick",
	}

	s.Movement.A.Basics = basics
	s.Movement.A.FailBuffer = 3
	s.Movement.A.MaxBuffer = 6

	s.Movement.B.Basics = basics
	s.Movement.B.FailBuffer = 3
	s.Movement.B.MaxBuffer = 6

	s.Reach.A.Basics = basics
	s.Reach.A.MaxDist = 3.0
	s.Reach.A.FailBuffer = 1
	s.Reach.A.MaxBuffer = 2.5

	s.Reach.B.Basics = basics
	s.Reach.B.MaxDist = 6.0
	s.Reach.B.FailBuffer = 1
	s.Reach.B.MaxBuffer = 2.5

	s.Timer.A = basics

	s.FastPlace.A.Basics = basics
	s.FastPlace.A.Limit = 15
	s.FastPlace.A.ShortTermTicks = 10
	s.FastPlace.A.ShortTermLimit = 6
	return s
}

// SaveDefault will create and save the default settings file. If the file
// already exists, it will return an error.
func SaveDefault(path string) error {
	s := DefaultSettings()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if data, err := toml.Marshal(s); err != nil {
			return fmt.Errorf("failed encoding default settings: %v", err)
		} else if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed creating settings file: %v", err)
		}
		return nil
	}
	return errors.New("settings file already exists")
}

// Load will load the settings from your settings file, and return an error if
// the file does not exist.
func Load(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Settings{}, errors.New("settings file doesn't exist")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("error reading config: %v", err)
	}

	var s Settings
	if err = toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("error decoding config: %v", err)
	}
	return s, nil
}
