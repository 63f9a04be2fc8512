package supervisor

import "github.com/ayoisaiah/lapse/internal/apperr"

var (
	// ErrSessionActive means the ownership slot is taken by a live
	// session.
	ErrSessionActive = &apperr.Error{
		Message: "session %q is still active: stop it before starting another",
	}

	// ErrNoSession means a session command was issued with nothing in
	// the ownership slot.
	ErrNoSession = &apperr.Error{
		Message: "no capture session is active",
	}

	// ErrNoRecovery means there is no recovery record to resolve.
	ErrNoRecovery = &apperr.Error{
		Message: "no unsaved session is awaiting a decision",
	}
)
