// Package connectivity reports network reachability as a stream of states.
// A Monitor shares one OS-level Source between any number of subscribers.
package connectivity

type Status int

const (
	Unavailable Status = iota
	Available
	Losing
	Lost
)

func (s Status) String() string {
	switch s {
	case Available:
		return "available"
	case Losing:
		return "losing"
	case Lost:
		return "lost"
	default:
		return "unavailable"
	}
}

// Source is the platform side of the monitor.
type Source interface {
	// Current computes the state from the capabilities visible right now.
	Current() Status
	// Start begins delivering state changes to onChange. It must not call
	// onChange before returning.
	Start(onChange func(Status)) error
	// Stop ends delivery. No callback runs after Stop returns.
	Stop()
}
