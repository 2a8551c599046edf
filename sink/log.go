package sink

import "github.com/sirupsen/logrus"

// LogSink writes violation records to a logrus logger in the engine's flag
// format.
type LogSink struct {
	log *logrus.Logger
}

// NewLogSink ...
func NewLogSink(log *logrus.Logger) *LogSink {
	return &LogSink{log: log}
}

// Record ...
func (s *LogSink) Record(r Record) error {
	s.log.Warnf("%s flagged %s <x%.2f> (score=%.2f action=%s) %s", r.PlayerID, r.CheckID, r.Severity, r.Score, r.Action, r.Data)
	return nil
}

// Escalate ...
func (s *LogSink) Escalate(e Escalation) error {
	s.log.Warnf("%s escalated on %s (score=%.2f punishment=%s) %s", e.PlayerID, e.CheckID, e.Score, e.Punishment, e.Data)
	return nil
}

// Close ...
func (s *LogSink) Close() error {
	return nil
}
