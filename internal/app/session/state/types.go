// Package state provides session state management.
package state

import playerv1 "github.com/osa030/podbox/internal/api/playerv1"

// Phase represents the session lifecycle phase.
type Phase int

const (
	PhaseIdle       Phase = iota // Created, not started
	PhaseActive                  // Serving the player
	PhaseTerminated              // Session has ended
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Proto returns the wire representation of the phase.
func (p Phase) Proto() playerv1.SessionPhase {
	switch p {
	case PhaseIdle:
		return playerv1.SessionPhase_SESSION_PHASE_IDLE
	case PhaseActive:
		return playerv1.SessionPhase_SESSION_PHASE_ACTIVE
	case PhaseTerminated:
		return playerv1.SessionPhase_SESSION_PHASE_TERMINATED
	default:
		return playerv1.SessionPhase_SESSION_PHASE_UNSPECIFIED
	}
}
