package oerror

import "fmt"

// VigilError is the error type returned by the engine for failures on the
// detection path.
type VigilError struct {
	Err string
}

func New(format string, args ...any) *VigilError {
	return &VigilError{Err: fmt.Sprintf(format, args...)}
}

func (e *VigilError) Error() string {
	return e.Err
}

// Sentinel errors for the event pipeline. All of these are handled locally by
// the engine with a fail-open default and are never propagated to the host.
var (
	// ErrUnknownPlayer is returned when an event references a player with no
	// active record (before join or after disconnect).
	ErrUnknownPlayer = New("vigil: no active record for player")
	// ErrStaleEvent is returned when an event's timestamp regresses or
	// duplicates the last processed one for the player.
	ErrStaleEvent = New("vigil: event timestamp is stale")
	// ErrIncompleteEnvironment signals that world data needed by the physics
	// model was unavailable and the motion envelope was widened instead.
	ErrIncompleteEnvironment = New("vigil: environment data incomplete")
	// ErrEvaluationTimeout signals the wall-clock guard around check
	// evaluation tripped and the remaining checks were aborted.
	ErrEvaluationTimeout = New("vigil: evaluation exceeded time budget")
)
