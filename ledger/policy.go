package ledger

import "github.com/vigil-ac/vigil/oerror"

// Action is one tier of the graduated response, ordered by severity.
type Action uint8

const (
	ActionNone Action = iota
	ActionLog
	ActionCancel
	ActionEscalate
)

// String ...
func (a Action) String() string {
	switch a {
	case ActionLog:
		return "log"
	case ActionCancel:
		return "cancel"
	case ActionEscalate:
		return "escalate"
	}
	return "none"
}

// Threshold binds a score to the action dispatched when it is crossed.
type Threshold struct {
	Score  float32
	Action Action
}

// Policy is the ordered threshold list for one check. Thresholds must be
// strictly increasing in both score and action severity.
type Policy []Threshold

// Validate ...
func (p Policy) Validate() error {
	for i := 1; i < len(p); i++ {
		if p[i].Score <= p[i-1].Score {
			return oerror.New("ledger: policy thresholds must be strictly increasing (%v <= %v)", p[i].Score, p[i-1].Score)
		}
		if p[i].Action <= p[i-1].Action {
			return oerror.New("ledger: policy actions must escalate with score")
		}
	}
	return nil
}

// Crossed returns the highest threshold crossed by moving the score from
// before to after in a single update. A score already above a threshold does
// not cross it again, so one spike cannot re-trigger lower tiers and a held
// high score cannot re-escalate until it has decayed back below.
func (p Policy) Crossed(before, after float32) Action {
	crossed := ActionNone
	for _, t := range p {
		if before < t.Score && after >= t.Score {
			crossed = t.Action
		}
	}
	return crossed
}
