package sink

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/vigil-ac/vigil/internal"
	"go.uber.org/atomic"
)

const (
	webSinkQueueSize    = 256
	webSinkWriteTimeout = 5 * time.Second
	webSinkMinBackoff   = time.Second
	webSinkMaxBackoff   = 30 * time.Second
)

type webMessage struct {
	Kind string `json:"kind"`
	Record
	Punishment string `json:"punishment,omitempty"`
}

// WebSink streams violation records to an operator endpoint over a websocket.
// Delivery is best-effort: the sink reconnects with backoff on failure and
// drops the oldest queued messages under sustained saturation, never blocking
// a caller.
type WebSink struct {
	url  string
	log  *logrus.Logger
	msgs chan webMessage
	done chan struct{}

	closed  atomic.Bool
	dropped atomic.Uint64
}

// NewWebSink dials url in the background and starts streaming.
func NewWebSink(url string, log *logrus.Logger) *WebSink {
	s := &WebSink{
		url:  url,
		log:  log,
		msgs: make(chan webMessage, webSinkQueueSize),
		done: make(chan struct{}),
	}
	go s.run()
	return s
}

// Record ...
func (s *WebSink) Record(r Record) error {
	s.enqueue(webMessage{Kind: "violation", Record: r})
	return nil
}

// Escalate ...
func (s *WebSink) Escalate(e Escalation) error {
	s.enqueue(webMessage{Kind: "escalation", Record: e.Record, Punishment: e.Punishment})
	return nil
}

func (s *WebSink) enqueue(m webMessage) {
	if s.closed.Load() {
		return
	}
	select {
	case s.msgs <- m:
	default:
		// Queue full: drop the oldest message to keep the stream recent.
		select {
		case <-s.msgs:
			s.dropped.Inc()
		default:
		}
		select {
		case s.msgs <- m:
		default:
			s.dropped.Inc()
		}
	}
}

func (s *WebSink) run() {
	backoff := webSinkMinBackoff
	for {
		conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
		if err != nil {
			s.log.Debugf("violation stream: dial %s failed: %v", s.url, err)
			select {
			case <-s.done:
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, webSinkMaxBackoff)
			continue
		}
		backoff = webSinkMinBackoff

		if !s.stream(conn) {
			_ = conn.Close()
			return
		}
		_ = conn.Close()
	}
}

// stream writes queued messages until the connection fails (true, reconnect)
// or the sink closes (false).
func (s *WebSink) stream(conn *websocket.Conn) bool {
	for {
		select {
		case <-s.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return false
		case m := <-s.msgs:
			buf := internal.BufferPool.Get().(*bytes.Buffer)
			buf.Reset()
			if err := json.NewEncoder(buf).Encode(m); err != nil {
				internal.BufferPool.Put(buf)
				s.log.Debugf("violation stream: encode failed: %v", err)
				continue
			}

			_ = conn.SetWriteDeadline(time.Now().Add(webSinkWriteTimeout))
			err := conn.WriteMessage(websocket.TextMessage, buf.Bytes())
			internal.BufferPool.Put(buf)
			if err != nil {
				s.log.Debugf("violation stream: write failed, reconnecting: %v", err)
				// The message is lost; the stream stays best-effort.
				s.dropped.Inc()
				return true
			}
		}
	}
}

// Dropped returns how many messages were discarded.
func (s *WebSink) Dropped() uint64 {
	return s.dropped.Load()
}

// Close stops the stream.
func (s *WebSink) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		close(s.done)
	}
	return nil
}
