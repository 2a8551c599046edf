package sink

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

func TestWebSinkStreamsRecords(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan []byte, 8)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- msg
		}
	}))
	defer srv.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)
	s := NewWebSink("ws"+strings.TrimPrefix(srv.URL, "http"), log)
	defer s.Close()

	rec := Record{ID: "r1", PlayerID: "steve", CheckID: "vigil:movement_a", Severity: 2, Score: 3, Action: "log", Timestamp: 100}
	if err := s.Record(rec); err != nil {
		t.Fatal(err)
	}
	if err := s.Escalate(Escalation{Record: rec, Punishment: "kick"}); err != nil {
		t.Fatal(err)
	}

	var msgs []map[string]any
	for len(msgs) < 2 {
		select {
		case raw := <-received:
			var m map[string]any
			if err := json.Unmarshal(raw, &m); err != nil {
				t.Fatalf("bad frame %q: %v", raw, err)
			}
			msgs = append(msgs, m)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out after %d frames", len(msgs))
		}
	}

	if msgs[0]["kind"] != "violation" || msgs[0]["player"] != "steve" {
		t.Errorf("first frame = %v", msgs[0])
	}
	if msgs[1]["kind"] != "escalation" || msgs[1]["punishment"] != "kick" {
		t.Errorf("second frame = %v", msgs[1])
	}
}

func TestWebSinkSurvivesDeadEndpoint(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	// Nothing listens here; enqueueing must neither block nor fail.
	s := NewWebSink("ws://127.0.0.1:1/stream", log)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			_ = s.Record(Record{ID: "r", PlayerID: "steve"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on an unreachable endpoint")
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
