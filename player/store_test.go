package player

import (
	"errors"
	"io"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"github.com/vigil-ac/vigil/oerror"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestStoreLifecycle(t *testing.T) {
	s := NewStore(40, testLogger())

	if _, err := s.Get("steve"); !errors.Is(err, oerror.ErrUnknownPlayer) {
		t.Fatalf("Get before Add: err = %v, want ErrUnknownPlayer", err)
	}

	rec := s.Add("steve")
	got, err := s.Get("steve")
	if err != nil || got != rec {
		t.Fatalf("Get after Add returned (%v, %v)", got, err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}

	s.Remove("steve")
	if _, err := s.Get("steve"); !errors.Is(err, oerror.ErrUnknownPlayer) {
		t.Fatalf("Get after Remove: err = %v, want ErrUnknownPlayer", err)
	}
}

func TestStoreRejoinReplacesRecord(t *testing.T) {
	s := NewStore(40, testLogger())

	old := s.Add("steve")
	old.Lock()
	old.CommitTime(100)
	old.Unlock()

	fresh := s.Add("steve")
	if fresh == old {
		t.Fatal("rejoin returned the stale record")
	}
	fresh.Lock()
	defer fresh.Unlock()
	if err := fresh.ValidateTime(100); err != nil {
		t.Errorf("fresh record rejected an old-session timestamp: %v", err)
	}
}

func TestValidateTime(t *testing.T) {
	rec := NewStore(40, testLogger()).Add("steve")
	rec.Lock()
	defer rec.Unlock()

	if err := rec.ValidateTime(1000); err != nil {
		t.Fatalf("first timestamp rejected: %v", err)
	}
	rec.CommitTime(1000)

	if err := rec.ValidateTime(1000); !errors.Is(err, oerror.ErrStaleEvent) {
		t.Errorf("duplicate timestamp: err = %v, want ErrStaleEvent", err)
	}
	if err := rec.ValidateTime(950); !errors.Is(err, oerror.ErrStaleEvent) {
		t.Errorf("regressed timestamp: err = %v, want ErrStaleEvent", err)
	}
	if err := rec.ValidateTime(1050); err != nil {
		t.Errorf("advancing timestamp rejected: %v", err)
	}
	if rec.Seq() != 1 {
		t.Errorf("Seq = %d, want 1", rec.Seq())
	}
}

func TestHistoryEviction(t *testing.T) {
	rec := NewStore(3, testLogger()).Add("steve")
	rec.Lock()
	defer rec.Unlock()

	for i := 0; i < 5; i++ {
		rec.Observe(Observation{
			Position:  mgl32.Vec3{float32(i), 65, 0},
			Timestamp: int64(i+1) * 50,
		})
	}

	if rec.History().Len() != 3 {
		t.Fatalf("history length = %d, want 3", rec.History().Len())
	}
	latest, ok := rec.Latest()
	if !ok || latest.Position.X() != 4 {
		t.Errorf("Latest = %v, want x=4", latest.Position)
	}
	prev, ok := rec.Previous()
	if !ok || prev.Position.X() != 3 {
		t.Errorf("Previous = %v, want x=3", prev.Position)
	}
	oldest, ok := rec.History().At(0)
	if !ok || oldest.Position.X() != 2 {
		t.Errorf("oldest = %v, want x=2 after eviction", oldest.Position)
	}
}

func TestLastKnownGood(t *testing.T) {
	rec := NewStore(40, testLogger()).Add("steve")
	rec.Lock()
	defer rec.Unlock()

	if _, ok := rec.LastKnownGood(); ok {
		t.Error("empty history reported a last known good state")
	}
	rec.Observe(Observation{Position: mgl32.Vec3{1, 65, 1}, Timestamp: 50})
	lkg, ok := rec.LastKnownGood()
	if !ok || lkg.Position != (mgl32.Vec3{1, 65, 1}) {
		t.Errorf("LastKnownGood = %v, %v", lkg, ok)
	}
}
