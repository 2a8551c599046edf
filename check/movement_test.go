package check

import (
	"io"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"github.com/vigil-ac/vigil/event"
	"github.com/vigil-ac/vigil/physics"
	"github.com/vigil-ac/vigil/player"
	"github.com/vigil-ac/vigil/settings"
)

func testRecord(pos mgl32.Vec3) *player.Record {
	log := logrus.New()
	log.SetOutput(io.Discard)
	rec := player.NewStore(40, log).Add("steve")
	rec.Observe(player.Observation{Position: pos, OnGround: true, Timestamp: 50})
	return rec
}

func moveEnvelope() *physics.Envelope {
	return &physics.Envelope{Horizontal: 0.4, Up: 0.5, Down: 0.1, Epsilon: 0.01, Ticks: 1}
}

func TestMovementAWithinEnvelope(t *testing.T) {
	c := NewMovementA(settings.MovementCheck{FailBuffer: 1, MaxBuffer: 2})
	rec := testRecord(mgl32.Vec3{0, 65, 0})

	mv := event.NewMove("steve", 100, mgl32.Vec3{0, 65, 0}, mgl32.Vec3{0.3, 65, 0})
	if v := c.Evaluate(mv, rec, moveEnvelope()); v != nil {
		t.Fatalf("move inside the envelope produced a verdict: %+v", v)
	}
}

func TestMovementABufferGatesVerdict(t *testing.T) {
	c := NewMovementA(settings.MovementCheck{FailBuffer: 2, MaxBuffer: 4})
	rec := testRecord(mgl32.Vec3{0, 65, 0})
	mv := event.NewMove("steve", 100, mgl32.Vec3{0, 65, 0}, mgl32.Vec3{5, 65, 0})

	if v := c.Evaluate(mv, rec, moveEnvelope()); v != nil {
		t.Fatal("first excess should only fill the buffer")
	}
	v := c.Evaluate(mv, rec, moveEnvelope())
	if v == nil {
		t.Fatal("second excess should produce a verdict")
	}
	if v.CheckID != CheckIDMovementA {
		t.Errorf("CheckID = %q", v.CheckID)
	}
	if v.Correction == nil || v.Correction.Position != (mgl32.Vec3{0, 65, 0}) {
		t.Errorf("Correction = %+v, want last accepted position", v.Correction)
	}
}

func TestMovementASeverityScalesWithExcess(t *testing.T) {
	rec := testRecord(mgl32.Vec3{0, 65, 0})
	small := NewMovementA(settings.MovementCheck{FailBuffer: 1, MaxBuffer: 2}).
		Evaluate(event.NewMove("steve", 100, mgl32.Vec3{}, mgl32.Vec3{2, 65, 0}), rec, moveEnvelope())
	large := NewMovementA(settings.MovementCheck{FailBuffer: 1, MaxBuffer: 2}).
		Evaluate(event.NewMove("steve", 100, mgl32.Vec3{}, mgl32.Vec3{12, 65, 0}), rec, moveEnvelope())

	if small == nil || large == nil {
		t.Fatal("both moves should produce verdicts")
	}
	if large.Severity <= small.Severity {
		t.Errorf("severity not monotonic: %v <= %v", large.Severity, small.Severity)
	}
}

func TestMovementAIncompleteEnvelope(t *testing.T) {
	c := NewMovementA(settings.MovementCheck{FailBuffer: 1, MaxBuffer: 2})
	rec := testRecord(mgl32.Vec3{0, 65, 0})
	env := moveEnvelope()
	env.Incomplete = true

	mv := event.NewMove("steve", 100, mgl32.Vec3{0, 65, 0}, mgl32.Vec3{50, 65, 0})
	if v := c.Evaluate(mv, rec, env); v != nil {
		t.Fatal("incomplete envelope must never produce a verdict")
	}
}

func TestMovementBVertical(t *testing.T) {
	c := NewMovementB(settings.MovementCheck{FailBuffer: 1, MaxBuffer: 2})
	rec := testRecord(mgl32.Vec3{0, 65, 0})
	env := moveEnvelope()

	legit := event.NewMove("steve", 100, mgl32.Vec3{0, 65, 0}, mgl32.Vec3{0, 65.42, 0})
	if v := c.Evaluate(legit, rec, env); v != nil {
		t.Fatalf("jump inside the envelope produced a verdict: %+v", v)
	}

	flight := event.NewMove("steve", 150, mgl32.Vec3{0, 65, 0}, mgl32.Vec3{0, 70, 0})
	v := c.Evaluate(flight, rec, env)
	if v == nil {
		t.Fatal("five-block ascent should produce a verdict")
	}
	if want := float32(5) - (env.Up + env.Epsilon); v.Severity != want {
		t.Errorf("Severity = %v, want %v", v.Severity, want)
	}

	fall := event.NewMove("steve", 200, mgl32.Vec3{0, 65, 0}, mgl32.Vec3{0, 60, 0})
	if v := NewMovementB(settings.MovementCheck{FailBuffer: 1, MaxBuffer: 2}).Evaluate(fall, rec, env); v == nil {
		t.Fatal("five-block instant drop should produce a verdict")
	}
}

func TestMovementDebuffRecovers(t *testing.T) {
	c := NewMovementA(settings.MovementCheck{FailBuffer: 2, MaxBuffer: 4})
	rec := testRecord(mgl32.Vec3{0, 65, 0})
	cheat := event.NewMove("steve", 100, mgl32.Vec3{}, mgl32.Vec3{5, 65, 0})
	legit := event.NewMove("steve", 150, mgl32.Vec3{}, mgl32.Vec3{0.2, 65, 0})

	c.Evaluate(cheat, rec, moveEnvelope())

	// Enough clean moves drain the buffer back below the fail line.
	for i := 0; i < 10; i++ {
		c.Evaluate(legit, rec, moveEnvelope())
	}
	if v := c.Evaluate(cheat, rec, moveEnvelope()); v != nil {
		t.Fatal("buffer did not recover after sustained clean movement")
	}
}
