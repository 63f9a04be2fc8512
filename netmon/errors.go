package netmon

import "github.com/ayoisaiah/lapse/internal/apperr"

var (
	// ErrRecoveryFailed means an interface bounce did not complete. The
	// next periodic check retries.
	ErrRecoveryFailed = &apperr.Error{
		Message: "network recovery on %s failed: %v",
	}

	errBadCameraIP = &apperr.Error{
		Message: "invalid camera IP address: %s",
	}
)
