package event

import "github.com/go-gl/mathgl/mgl32"

// DecisionKind is the verdict the pipeline hands back to the host for a single
// event.
type DecisionKind uint8

const (
	// DecisionAllow lets the event take effect unchanged.
	DecisionAllow DecisionKind = iota
	// DecisionDeny cancels the event.
	DecisionDeny
	// DecisionCorrect cancels the event and requests the host force the
	// player back to the attached corrected state.
	DecisionCorrect
)

// String ...
func (k DecisionKind) String() string {
	switch k {
	case DecisionAllow:
		return "allow"
	case DecisionDeny:
		return "deny"
	case DecisionCorrect:
		return "correct"
	}
	return "unknown"
}

// CorrectedState is the authoritative position/velocity the host should force
// on the player when a movement event is rejected.
type CorrectedState struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	OnGround bool
}

// Decision is the terminal output of the pipeline for one event. The engine
// never mutates host state itself; corrections are requests.
type Decision struct {
	Kind       DecisionKind
	Correction *CorrectedState
}

// Allow ...
func Allow() Decision {
	return Decision{Kind: DecisionAllow}
}

// Deny ...
func Deny() Decision {
	return Decision{Kind: DecisionDeny}
}

// Correct ...
func Correct(s CorrectedState) Decision {
	return Decision{Kind: DecisionCorrect, Correction: &s}
}
