package camera

import "github.com/ayoisaiah/lapse/internal/apperr"

var (
	// ErrNoCamera is returned before any request is issued when a nil
	// camera handle is supplied.
	ErrNoCamera = &apperr.Error{
		Message: "no camera handle supplied",
	}

	// ErrCaptureTimeout means the completion budget elapsed without the
	// camera ever reporting a new file.
	ErrCaptureTimeout = &apperr.Error{
		Message: "capture timed out: no new file reported within %v",
	}

	// ErrDisconnected means the transport reported the camera
	// unreachable.
	ErrDisconnected = &apperr.Error{
		Message: "camera is unreachable",
	}

	// ErrCameraBusy is a camera-side failure status from the event feed
	// or shutter endpoint.
	ErrCameraBusy = &apperr.Error{
		Message: "camera is busy or malfunctioning",
	}

	errNoShutterEndpoint = &apperr.Error{
		Message: "no shutter button endpoint found: is the camera in a shooting mode (not playback)?",
	}

	errShutterPress = &apperr.Error{
		Message: "shutter press failed with status %d",
	}

	errStuckShutter = &apperr.Error{
		Message: "could not release shutter: camera may need a manual reset",
	}

	errUnexpectedStatus = &apperr.Error{
		Message: "unexpected camera response status: %d",
	}
)
