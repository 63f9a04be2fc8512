package supervisor

import "github.com/ayoisaiah/lapse/session"

// Safety is the answer to "may a disruptive maintenance operation run
// right now?". Network recovery and similar interventions consult it
// before touching shared infrastructure.
type Safety struct {
	Safe          bool
	Reason        string
	BlockingState session.State
}

// CheckOperationSafety reports whether a disruptive operation may run
// while a session is in the given state. A paused session still blocks:
// it may resume at any moment.
func CheckOperationSafety(state session.State) Safety {
	switch state {
	case session.StateRunning, session.StatePaused:
		return Safety{
			Safe:          false,
			Reason:        "a capture session is " + string(state),
			BlockingState: state,
		}
	default:
		return Safety{Safe: true}
	}
}

// IsOperationSafe applies CheckOperationSafety to the active session.
// With no session in the slot, everything is safe.
func (s *Supervisor) IsOperationSafe() Safety {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()

	if active == nil {
		return Safety{Safe: true}
	}

	return CheckOperationSafety(active.Status().State)
}
