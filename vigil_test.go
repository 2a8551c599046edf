package vigil

import (
	"io"
	"math"
	"sync"
	"testing"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"github.com/vigil-ac/vigil/check"
	"github.com/vigil-ac/vigil/event"
	"github.com/vigil-ac/vigil/settings"
	"github.com/vigil-ac/vigil/sink"
	"github.com/vigil-ac/vigil/world"
)

// flatOracle is a superflat test world: solid up to y 64, air above.
type flatOracle struct{}

func (flatOracle) BlockAt(pos cube.Pos) (world.BlockKind, bool) {
	if pos.Y() <= 64 {
		return world.BlockSolid, true
	}
	return world.BlockAir, true
}

func (flatOracle) ActiveEffects(string) []world.Effect { return nil }

// stairOracle is a slab staircase rising half a block per block of x from
// x 2 onward, on top of a superflat world.
type stairOracle struct{}

func (stairOracle) BlockAt(pos cube.Pos) (world.BlockKind, bool) {
	if pos.X() >= 1 {
		top := 64 + (pos.X()-1)/2
		if pos.Y() <= top {
			return world.BlockSolid, true
		}
		if pos.X()%2 == 0 && pos.Y() == top+1 {
			return world.BlockSlab, true
		}
	}
	if pos.Y() <= 64 {
		return world.BlockSolid, true
	}
	return world.BlockAir, true
}

func (stairOracle) ActiveEffects(string) []world.Effect { return nil }

// stairSurface returns the walkable height of the staircase column at x.
func stairSurface(x float32) float32 {
	col := int(x)
	if col < 1 {
		return 65
	}
	top := float32(65 + (col-1)/2)
	if col%2 == 0 {
		top += 0.5
	}
	return top
}

// webOracle is superflat with a cobweb column at x 0, z 0.
type webOracle struct{}

func (webOracle) BlockAt(pos cube.Pos) (world.BlockKind, bool) {
	if pos.X() == 0 && pos.Z() == 0 && pos.Y() >= 65 && pos.Y() <= 66 {
		return world.BlockWeb, true
	}
	if pos.Y() <= 64 {
		return world.BlockSolid, true
	}
	return world.BlockAir, true
}

func (webOracle) ActiveEffects(string) []world.Effect { return nil }

// captureSink records every delivery for assertions after Close drains the
// worker pool.
type captureSink struct {
	mu          sync.Mutex
	records     []sink.Record
	escalations []sink.Escalation
}

func (c *captureSink) Record(r sink.Record) error {
	c.mu.Lock()
	c.records = append(c.records, r)
	c.mu.Unlock()
	return nil
}

func (c *captureSink) Escalate(e sink.Escalation) error {
	c.mu.Lock()
	c.escalations = append(c.escalations, e)
	c.mu.Unlock()
	return nil
}

func (c *captureSink) Close() error { return nil }

type captureApplier struct {
	mu      sync.Mutex
	applied []event.CorrectedState
}

func (c *captureApplier) ApplyCorrection(_ string, state event.CorrectedState) {
	c.mu.Lock()
	c.applied = append(c.applied, state)
	c.mu.Unlock()
}

func testSettings() settings.Settings {
	s := settings.DefaultSettings()
	// Single-strike buffers and no decay keep the scenarios deterministic.
	s.Movement.A.FailBuffer = 1
	s.Movement.B.FailBuffer = 1
	for _, d := range []*settings.Decay{
		&s.Movement.A.Decay, &s.Movement.B.Decay,
		&s.Reach.A.Decay, &s.Reach.B.Decay,
		&s.Timer.A.Decay, &s.FastPlace.A.Decay,
	} {
		d.Rate = 0
	}
	return s
}

func testEngine(t *testing.T, s settings.Settings) (*Engine, *captureSink, *captureApplier) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	cs := &captureSink{}
	ca := &captureApplier{}
	e, err := New(log, s, flatOracle{}, WithSinks(cs), WithCorrectionApplier(ca))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, cs, ca
}

func TestLegitimateMovementAllows(t *testing.T) {
	e, cs, _ := testEngine(t, testSettings())
	e.Join("steve")

	pos := mgl32.Vec3{0, 65, 0}
	for i := 0; i < 40; i++ {
		to := pos.Add(mgl32.Vec3{0.2, 0, 0})
		d := e.Handle(event.NewMove("steve", int64(i+1)*50, pos, to))
		if d.Kind != event.DecisionAllow {
			t.Fatalf("tick %d: decision = %v, want allow", i, d.Kind)
		}
		pos = to
	}

	for _, id := range []string{check.CheckIDMovementA, check.CheckIDMovementB, check.CheckIDTimerA} {
		if score := e.Score("steve", id); score != 0 {
			t.Errorf("score for %s = %v, want 0", id, score)
		}
	}
	e.Close()
	if len(cs.records) != 0 {
		t.Errorf("legit movement produced %d records", len(cs.records))
	}
}

func TestStairClimbAccumulatesNothing(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	e, err := New(log, testSettings(), stairOracle{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()
	e.Join("steve")

	// Walking up the staircase steps half a block on riser ticks without a
	// jump arc.
	x := float32(1.0)
	pos := mgl32.Vec3{x, stairSurface(x), 0.5}
	e.Handle(event.NewMove("steve", 50, pos, pos))
	for i := 1; i <= 11; i++ {
		x += 0.3
		to := mgl32.Vec3{x, stairSurface(x), 0.5}
		d := e.Handle(event.NewMove("steve", int64(i+1)*50, pos, to))
		if d.Kind != event.DecisionAllow {
			t.Fatalf("stair tick %d (dy %v): decision = %v, want allow", i, to.Y()-pos.Y(), d.Kind)
		}
		pos = to
	}

	for _, id := range []string{check.CheckIDMovementA, check.CheckIDMovementB} {
		if score := e.Score("steve", id); score != 0 {
			t.Errorf("stair climb accumulated %s score %v", id, score)
		}
	}
}

func TestKnockbackWidensEnvelope(t *testing.T) {
	e, _, _ := testEngine(t, testSettings())
	defer e.Close()
	e.Join("steve")
	e.Join("alex")

	start := mgl32.Vec3{0, 65, 0}
	e.Handle(event.NewMove("steve", 50, start, start))
	e.Handle(event.NewMove("alex", 50, start, start))

	if err := e.Knockback("steve", mgl32.Vec3{4, 0, 0}); err != nil {
		t.Fatal(err)
	}
	shoved := e.Handle(event.NewMove("steve", 100, start, mgl32.Vec3{4, 65, 0}))
	if shoved.Kind != event.DecisionAllow {
		t.Fatalf("knocked-back move = %v, want allow", shoved.Kind)
	}
	if score := e.Score("steve", check.CheckIDMovementA); score != 0 {
		t.Errorf("knocked-back move accumulated score %v", score)
	}

	// The same displacement without knockback is impossible.
	e.Handle(event.NewMove("alex", 100, start, mgl32.Vec3{4, 65, 0}))
	if score := e.Score("alex", check.CheckIDMovementA); score <= 0 {
		t.Error("four blocks in one tick without knockback accumulated no score")
	}

	// The accepted move consumes the knockback.
	rec, err := e.store.Get("steve")
	if err != nil {
		t.Fatal(err)
	}
	rec.Lock()
	_, pending := rec.Knockback()
	rec.Unlock()
	if pending {
		t.Error("knockback still pending after an accepted move")
	}
}

func TestWebCancelsMomentum(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	e, err := New(log, testSettings(), webOracle{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()
	e.Join("steve")

	high := mgl32.Vec3{0.5, 70, 0.5}
	e.Handle(event.NewMove("steve", 50, high, high))
	d := e.Handle(event.NewMove("steve", 100, high, mgl32.Vec3{0.5, 65.2, 0.5}))
	if d.Kind != event.DecisionAllow {
		t.Fatalf("fall into web = %v, want allow", d.Kind)
	}

	rec, err := e.store.Get("steve")
	if err != nil {
		t.Fatal(err)
	}
	rec.Lock()
	obs, ok := rec.Latest()
	rec.Unlock()
	if !ok || obs.Velocity != (mgl32.Vec3{}) {
		t.Errorf("velocity after landing in web = %v, want zero", obs.Velocity)
	}
}

func TestFlightEscalatesToCorrection(t *testing.T) {
	e, _, ca := testEngine(t, testSettings())
	e.Join("steve")

	// Establish an accepted position.
	start := mgl32.Vec3{0, 65, 0}
	e.Handle(event.NewMove("steve", 50, start, start))

	// First five-block ascent only crosses the log threshold: graduated
	// response starts quiet.
	first := e.Handle(event.NewMove("steve", 100, start, mgl32.Vec3{0, 70, 0}))
	if first.Kind != event.DecisionAllow {
		t.Fatalf("first flight tick = %v, want allow (logged)", first.Kind)
	}
	if score := e.Score("steve", check.CheckIDMovementB); score <= 0 {
		t.Fatal("first flight tick did not accumulate score")
	}

	// The second, larger ascent crosses cancel: the move is rejected and the
	// player is forced back to the last accepted state.
	second := e.Handle(event.NewMove("steve", 150, mgl32.Vec3{0, 70, 0}, mgl32.Vec3{0, 85, 0}))
	if second.Kind != event.DecisionCorrect {
		t.Fatalf("second flight tick = %v, want correct", second.Kind)
	}
	if second.Correction == nil || second.Correction.Position != (mgl32.Vec3{0, 70, 0}) {
		t.Fatalf("Correction = %+v, want last accepted position", second.Correction)
	}

	// The denied move never joins the history.
	e.Close()
	ca.mu.Lock()
	defer ca.mu.Unlock()
	if len(ca.applied) != 1 {
		t.Fatalf("applier called %d times, want 1", len(ca.applied))
	}
}

func TestDeniedMoveNotObserved(t *testing.T) {
	e, _, _ := testEngine(t, testSettings())
	defer e.Close()
	e.Join("steve")

	start := mgl32.Vec3{0, 65, 0}
	e.Handle(event.NewMove("steve", 50, start, start))
	e.Handle(event.NewMove("steve", 100, start, mgl32.Vec3{0, 70, 0}))
	if d := e.Handle(event.NewMove("steve", 150, mgl32.Vec3{0, 70, 0}, mgl32.Vec3{0, 85, 0})); d.Kind != event.DecisionCorrect {
		t.Fatalf("rejected ascent = %v, want correct", d.Kind)
	}

	// Continuing the climb is still judged from the last accepted position,
	// not from the rejected one.
	d := e.Handle(event.NewMove("steve", 200, mgl32.Vec3{0, 85, 0}, mgl32.Vec3{0, 90, 0}))
	if d.Kind != event.DecisionCorrect {
		t.Fatalf("continued climb = %v, want correct", d.Kind)
	}
	if d.Correction == nil || d.Correction.Position != (mgl32.Vec3{0, 70, 0}) {
		t.Fatalf("Correction = %+v, want the last accepted position", d.Correction)
	}
}

func TestReachEscalatesExactlyOnce(t *testing.T) {
	e, cs, _ := testEngine(t, testSettings())
	e.Join("steve")

	// Each hit lands ~6.6 blocks past the limit; the escalate threshold of
	// 20 is crossed on the fourth and never again.
	for i := 0; i < 5; i++ {
		e.Handle(event.NewAttack("steve", int64(i+1)*50, 7,
			mgl32.Vec3{10, 65, 0}, mgl32.Vec3{0, 66.62, 0}))
	}
	e.Close()

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if len(cs.escalations) != 1 {
		t.Fatalf("escalations = %d, want exactly 1", len(cs.escalations))
	}
	esc := cs.escalations[0]
	if esc.CheckID != check.CheckIDReachA {
		t.Errorf("escalation check = %q", esc.CheckID)
	}
	if esc.Punishment != "kick" {
		t.Errorf("punishment = %q, want configured label", esc.Punishment)
	}
	if len(cs.records) == 0 {
		t.Error("no violation records delivered")
	}
}

func TestStaleEventIgnored(t *testing.T) {
	e, _, _ := testEngine(t, testSettings())
	defer e.Close()
	e.Join("steve")

	start := mgl32.Vec3{0, 65, 0}
	e.Handle(event.NewMove("steve", 100, start, start))

	// A duplicate timestamp carrying an absurd move must be discarded
	// without touching the ledger or the history.
	d := e.Handle(event.NewMove("steve", 100, start, mgl32.Vec3{500, 65, 0}))
	if d.Kind != event.DecisionAllow {
		t.Fatalf("stale event decision = %v, want allow", d.Kind)
	}
	if score := e.Score("steve", check.CheckIDMovementA); score != 0 {
		t.Errorf("stale event mutated the ledger: score %v", score)
	}

	d = e.Handle(event.NewMove("steve", 90, start, mgl32.Vec3{500, 65, 0}))
	if d.Kind != event.DecisionAllow {
		t.Fatalf("regressed event decision = %v, want allow", d.Kind)
	}
}

func TestUnknownPlayerFailsOpen(t *testing.T) {
	e, _, _ := testEngine(t, testSettings())
	defer e.Close()

	d := e.Handle(event.NewMove("nobody", 50, mgl32.Vec3{}, mgl32.Vec3{500, 0, 0}))
	if d.Kind != event.DecisionAllow {
		t.Fatalf("unknown player decision = %v, want allow", d.Kind)
	}
}

func TestMalformedEventPolicy(t *testing.T) {
	s := testSettings()
	e, _, _ := testEngine(t, s)
	defer e.Close()
	e.Join("steve")

	bad := event.NewMove("steve", 50, mgl32.Vec3{0, 65, 0},
		mgl32.Vec3{float32(math.NaN()), 65, 0})
	if d := e.Handle(bad); d.Kind != event.DecisionDeny {
		t.Fatalf("NaN move under deny policy = %v, want deny", d.Kind)
	}
	zeroBox := event.NewAttack("steve", 60, 7, mgl32.Vec3{1, 65, 0}, mgl32.Vec3{0, 66.62, 0})
	zeroBox.TargetWidth = 0
	if d := e.Handle(zeroBox); d.Kind != event.DecisionDeny {
		t.Fatalf("degenerate hitbox under deny policy = %v, want deny", d.Kind)
	}

	s.Engine.MalformedPolicy = "allow"
	lenient, _, _ := testEngine(t, s)
	defer lenient.Close()
	lenient.Join("steve")
	if d := lenient.Handle(bad); d.Kind != event.DecisionAllow {
		t.Fatalf("NaN move under allow policy = %v, want allow", d.Kind)
	}
}

func TestExemptPlayerBypassesChecks(t *testing.T) {
	e, cs, _ := testEngine(t, testSettings())
	e.Join("steve")
	if err := e.Exempt("steve", true); err != nil {
		t.Fatal(err)
	}

	start := mgl32.Vec3{0, 65, 0}
	for i := 0; i < 5; i++ {
		d := e.Handle(event.NewMove("steve", int64(i+1)*50, start, mgl32.Vec3{500, 65, 0}))
		if d.Kind != event.DecisionAllow {
			t.Fatalf("exempt player decision = %v, want allow", d.Kind)
		}
	}
	if score := e.Score("steve", check.CheckIDMovementA); score != 0 {
		t.Errorf("exempt player accumulated score %v", score)
	}
	e.Close()
	if len(cs.records) != 0 {
		t.Errorf("exempt player produced %d records", len(cs.records))
	}
}

func TestLeaveResetsScores(t *testing.T) {
	e, _, _ := testEngine(t, testSettings())
	defer e.Close()
	e.Join("steve")

	start := mgl32.Vec3{0, 65, 0}
	e.Handle(event.NewMove("steve", 50, start, start))
	e.Handle(event.NewMove("steve", 100, start, mgl32.Vec3{0, 70, 0}))
	if e.Score("steve", check.CheckIDMovementB) <= 0 {
		t.Fatal("flight did not accumulate score")
	}

	e.Leave("steve")
	e.Join("steve")
	if score := e.Score("steve", check.CheckIDMovementB); score != 0 {
		t.Errorf("score survived a leave without retention: %v", score)
	}
}

func TestRetainScoresOnLeave(t *testing.T) {
	s := testSettings()
	s.Engine.RetainScoresOnLeave = true
	e, _, _ := testEngine(t, s)
	defer e.Close()
	e.Join("steve")

	start := mgl32.Vec3{0, 65, 0}
	e.Handle(event.NewMove("steve", 50, start, start))
	e.Handle(event.NewMove("steve", 100, start, mgl32.Vec3{0, 70, 0}))
	want := e.Score("steve", check.CheckIDMovementB)
	if want <= 0 {
		t.Fatal("flight did not accumulate score")
	}

	e.Leave("steve")
	e.Join("steve")
	if got := e.Score("steve", check.CheckIDMovementB); got != want {
		t.Errorf("retained score = %v, want %v", got, want)
	}
}

func TestFastPlaceThroughPipeline(t *testing.T) {
	e, _, _ := testEngine(t, testSettings())
	defer e.Close()
	e.Join("steve")

	for i := 0; i < 8; i++ {
		e.Handle(event.NewPlace("steve", 100+int64(i), cube.Pos{1, 65, 1},
			mgl32.Vec3{0, 66.62, 0}))
	}
	if score := e.Score("steve", check.CheckIDFastPlaceA); score <= 0 {
		t.Error("one-tick placement burst accumulated no score")
	}
}

func TestPlayersRoster(t *testing.T) {
	e, _, _ := testEngine(t, testSettings())
	defer e.Close()

	e.Join("steve")
	e.Join("alex")
	if got := len(e.Players()); got != 2 {
		t.Fatalf("Players = %d, want 2", got)
	}
	e.Leave("alex")
	if got := len(e.Players()); got != 1 {
		t.Fatalf("Players after leave = %d, want 1", got)
	}
}

func TestInvalidSettingsRejected(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	s := testSettings()
	s.Movement.A.Cancel = 0.5 // below the log threshold
	if _, err := New(log, s, flatOracle{}); err == nil {
		t.Error("non-increasing thresholds accepted")
	}

	s = testSettings()
	s.Timer.A.Decay.Kind = "quadratic"
	if _, err := New(log, s, flatOracle{}); err == nil {
		t.Error("unknown decay kind accepted")
	}
}
