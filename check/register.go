package check

import "github.com/vigil-ac/vigil/settings"

// NewSet builds a fresh check set for one player from the loaded settings.
// The returned order is the declared priority order: when two checks demand
// different actions for the same event, the earlier one wins ties.
func NewSet(s settings.Settings) []Check {
	checks := make([]Check, 0, 6)
	if s.Movement.A.Enabled {
		checks = append(checks, NewMovementA(s.Movement.A))
	}
	if s.Movement.B.Enabled {
		checks = append(checks, NewMovementB(s.Movement.B))
	}
	if s.Reach.A.Enabled {
		checks = append(checks, NewReachA(s.Reach.A))
	}
	if s.Reach.B.Enabled {
		checks = append(checks, NewReachB(s.Reach.B))
	}
	if s.Timer.A.Enabled {
		checks = append(checks, NewTimerA())
	}
	if s.FastPlace.A.Enabled {
		checks = append(checks, NewFastPlaceA(s.FastPlace.A))
	}
	return checks
}
