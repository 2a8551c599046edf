package sink

// Record is one structured violation log entry delivered to operators.
type Record struct {
	ID       string  `json:"id"`
	PlayerID string  `json:"player"`
	CheckID  string  `json:"check"`
	Severity float32 `json:"severity"`
	Score    float32 `json:"score"`
	Action   string  `json:"action"`
	// Timestamp is the triggering event's time in milliseconds.
	Timestamp int64 `json:"timestamp"`
	// Data is the check's extra data rendered as "[k=v k=v]".
	Data string `json:"data,omitempty"`
}

// Escalation is an operator-facing moderation event emitted when a player
// crosses a check's escalate threshold.
type Escalation struct {
	Record

	// Punishment is the configured label for the check: "none", "kick" or
	// "ban". Enforcement is the operator's call, never the engine's.
	Punishment string `json:"punishment"`
}

// Sink receives violation records and escalations. Delivery is best-effort
// and asynchronous: implementations retry internally and must never block or
// propagate failures back to the event pipeline.
type Sink interface {
	Record(r Record) error
	Escalate(e Escalation) error
	Close() error
}
