package main

import (
	"net/http"
	"os"
	"time"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/vigil-ac/vigil"
	"github.com/vigil-ac/vigil/event"
	"github.com/vigil-ac/vigil/settings"
	"github.com/vigil-ac/vigil/sink"
	"github.com/vigil-ac/vigil/world"
)

// flatOracle is a stand-in for the host's world: solid ground at or below
// y=64, air above, no active effects.
type flatOracle struct{}

func (flatOracle) BlockAt(pos cube.Pos) (world.BlockKind, bool) {
	if pos.Y() <= 64 {
		return world.BlockSolid, true
	}
	return world.BlockAir, true
}

func (flatOracle) ActiveEffects(string) []world.Effect {
	return nil
}

// printApplier stands in for the host-side correction callback.
type printApplier struct {
	log *logrus.Logger
}

func (a printApplier) ApplyCorrection(playerID string, state event.CorrectedState) {
	a.log.Infof("correcting %s back to %v", playerID, state.Position)
}

// The following program feeds a synthetic session through the engine: one
// player walking legitimately, then teleport-cheating.
func main() {
	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{ForceColors: true}
	log.Level = logrus.DebugLevel

	const settingsPath = "settings.toml"
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := settings.SaveDefault(settingsPath); err != nil {
			log.Fatalf("error creating settings: %v", err)
		}
	}
	cfg, err := settings.Load(settingsPath)
	if err != nil {
		log.Fatalf("error loading settings: %v", err)
	}

	engine, err := vigil.New(log, cfg, flatOracle{},
		vigil.WithSinks(sink.NewLogSink(log)),
		vigil.WithCorrectionApplier(printApplier{log: log}),
	)
	if err != nil {
		log.Fatalf("error building engine: %v", err)
	}
	defer engine.Close()

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe("localhost:9182", nil); err != nil {
			log.Debugf("metrics server: %v", err)
		}
	}()

	const id = "steve"
	engine.Join(id)
	defer engine.Leave(id)

	now := time.Now().UnixMilli()
	pos := mgl32.Vec3{0.5, 65, 0.5}

	// Legitimate walking.
	for i := 0; i < 40; i++ {
		next := pos.Add(mgl32.Vec3{0.2, 0, 0})
		d := engine.Handle(event.NewMove(id, now, pos, next))
		log.Infof("walk tick %d: %s", i, d.Kind)
		pos = next
		now += 50
	}

	// A 12 block horizontal teleport every tick.
	for i := 0; i < 10; i++ {
		next := pos.Add(mgl32.Vec3{12, 0, 0})
		d := engine.Handle(event.NewMove(id, now, pos, next))
		log.Infof("cheat tick %d: %s (score=%.2f)", i, d.Kind, engine.Score(id, "vigil:movement_a"))
		if d.Kind == event.DecisionAllow {
			pos = next
		}
		now += 50
	}
}
