package session

import "github.com/ayoisaiah/lapse/internal/apperr"

var (
	// ErrInvalidState is returned when a command is issued in a state
	// that does not permit it.
	ErrInvalidState = &apperr.Error{
		Message: "cannot %s a session in the %s state",
	}

	errInvalidInterval = &apperr.Error{
		Message: "interval must be greater than zero, got %v",
	}

	errInvalidShotCount = &apperr.Error{
		Message: "shot count must be at least 1, got %d",
	}

	errStopTimeInPast = &apperr.Error{
		Message: "stop time %v is not in the future",
	}

	errUnknownStopCondition = &apperr.Error{
		Message: "unknown stop condition: %s",
	}

	errInvalidFailureBound = &apperr.Error{
		Message: "consecutive failure bound must be at least 1, got %d",
	}
)
