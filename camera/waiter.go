package camera

import (
	"context"
	"errors"
	"time"
)

// DefaultCompletionBudget is the camera's worst-case shutter time plus
// margin (long exposures take up to 30s; the event feed long-poll is
// ~30s per request).
const DefaultCompletionBudget = 35 * time.Second

// PollResult is one response from the camera's event feed.
type PollResult struct {
	// AddedFiles lists files the camera finished writing since the last
	// poll. RAW/JPEG pairs are reported together; the first entry is
	// canonical.
	AddedFiles []string
}

// EventFeed is the camera event long-poll consumed by WaitForCompletion.
type EventFeed interface {
	PollEvents(ctx context.Context) (*PollResult, error)
}

// WaitForCompletion blocks until the camera reports that a requested
// shot produced a file, then returns its path. It polls the event feed
// with a shrinking time budget and terminates with exactly one of: the
// file path, ErrCaptureTimeout once the budget is exhausted, or
// ErrDisconnected/ErrCameraBusy surfaced from the feed. A zero budget
// selects DefaultCompletionBudget.
func WaitForCompletion(
	ctx context.Context,
	feed EventFeed,
	budget time.Duration,
) (string, error) {
	if feed == nil {
		return "", ErrNoCamera
	}

	if budget <= 0 {
		budget = DefaultCompletionBudget
	}

	remaining := budget

	for remaining > 0 {
		start := time.Now()

		pollCtx, cancel := context.WithTimeout(ctx, remaining)
		res, err := feed.PollEvents(pollCtx)

		cancel()

		if err != nil {
			switch {
			case ctx.Err() != nil:
				return "", ctx.Err()
			case errors.Is(err, context.DeadlineExceeded):
				// remaining budget elapsed mid-poll
				return "", ErrCaptureTimeout.Fmt(budget)
			default:
				// busy, disconnected, and camera-side errors are final
				return "", err
			}
		}

		if res != nil && len(res.AddedFiles) > 0 {
			return res.AddedFiles[0], nil
		}

		remaining -= time.Since(start)
	}

	return "", ErrCaptureTimeout.Fmt(budget)
}
