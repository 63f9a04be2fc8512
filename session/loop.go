package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ayoisaiah/lapse/camera"
	"github.com/ayoisaiah/lapse/internal/models"
)

// run is the shot loop. Shot n is due at start + n*interval regardless
// of how long earlier shots took, so the schedule never drifts. It runs
// in its own goroutine from Start until a terminal state is reached.
func (s *Session) run() {
	startTime := s.stats.StartTime

	for n := 1; ; n++ {
		if s.deadlinePassed() {
			s.finalize(StateCompleted, ReasonCompleted)
			return
		}

		due := startTime.Add(time.Duration(n) * s.opts.Interval)

		if behind := time.Since(due); behind > 0 && n > 1 {
			s.log.Warn("shot overran its interval, firing immediately",
				slog.Int("shot", n),
				slog.Duration("behind", behind),
			)
		}

		if !s.waitUntil(due) {
			s.finalize(StateStopped, ReasonStopped)
			return
		}

		// a pause or an overrun may have carried us past the deadline
		if s.deadlinePassed() {
			s.finalize(StateCompleted, ReasonCompleted)
			return
		}

		if fatal := s.takeShot(n); fatal {
			s.finalize(StateError, ReasonError)
			return
		}

		if s.stopping() {
			s.finalize(StateStopped, ReasonStopped)
			return
		}

		if s.opts.StopCondition == StopAfterCount && n >= s.opts.ShotCount {
			s.finalize(StateCompleted, ReasonCompleted)
			return
		}
	}
}

// waitUntil blocks until the due time, honouring pause and stop along
// the way. A paused session holds here indefinitely; once resumed, any
// missed due times fire back to back. Returns false when the session is
// stopping.
func (s *Session) waitUntil(due time.Time) bool {
	for {
		s.mu.Lock()
		state := s.state
		s.mu.Unlock()

		switch state {
		case StateStopping:
			return false
		case StatePaused:
			select {
			case <-s.wake:
				continue
			case <-s.stopC:
				return false
			}
		}

		wait := time.Until(due)
		if wait <= 0 {
			return true
		}

		timer := time.NewTimer(wait)

		select {
		case <-timer.C:
		case <-s.wake:
			timer.Stop()
		case <-s.stopC:
			timer.Stop()
			return false
		}
	}
}

// takeShot triggers the camera and waits for the resulting file,
// updating statistics either way. It reports true when the failure
// policy demands the error state: the consecutive-failure bound was
// reached, or the camera is gone entirely.
func (s *Session) takeShot(n int) bool {
	ctx := context.Background()
	start := time.Now()

	err := s.cam.Trigger(ctx)

	var file string
	if err == nil {
		file, err = camera.WaitForCompletion(ctx, s.cam, s.opts.CompletionBudget)
	}

	elapsed := time.Since(start)

	s.mu.Lock()
	s.stats.ShotsAttempted++
	attempted := s.stats.ShotsAttempted
	// avg += (elapsed - avg) / n
	s.stats.AvgShotDuration += (elapsed - s.stats.AvgShotDuration) /
		time.Duration(attempted)

	if err != nil {
		s.stats.ShotsFailed++
		s.stats.Errors = append(s.stats.Errors, models.ShotError{
			Shot:    n,
			Time:    time.Now(),
			Message: err.Error(),
		})
		s.consecutiveFailures++
		failures := s.consecutiveFailures
		s.mu.Unlock()

		s.log.Error("shot failed",
			slog.Int("shot", n),
			slog.Int("consecutive_failures", failures),
			slog.Any("error", err),
		)

		s.writeStatusFile()

		if errors.Is(err, camera.ErrDisconnected) && !s.cam.Connected(ctx) {
			s.log.Error("camera connectivity lost, aborting session")
			return true
		}

		if failures >= s.opts.MaxConsecutiveFailures {
			s.log.Error("too many consecutive failures, aborting session",
				slog.Int("bound", s.opts.MaxConsecutiveFailures),
			)

			return true
		}

		return false
	}

	s.stats.ShotsSucceeded++
	s.stats.LastFile = file
	s.consecutiveFailures = 0
	succeeded := s.stats.ShotsSucceeded
	s.mu.Unlock()

	s.log.Info("shot completed",
		slog.Int("shot", n),
		slog.Int("succeeded", succeeded),
		slog.String("file", file),
		slog.Duration("duration", elapsed.Round(time.Millisecond)),
	)

	s.writeStatusFile()

	return false
}

// deadlinePassed reports whether a stop-time condition has been reached.
func (s *Session) deadlinePassed() bool {
	return s.opts.StopCondition == StopAtTime &&
		!time.Now().Before(s.opts.StopTime)
}

func (s *Session) stopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state == StateStopping
}

// finalize moves the session to its terminal state, emits the terminal
// event, and closes the event channel. It runs exactly once per session.
func (s *Session) finalize(terminal State, reason string) {
	s.mu.Lock()
	s.state = terminal
	s.stats.EndTime = time.Now()
	s.mu.Unlock()

	s.writeStatusFile()

	var kind EventKind

	switch terminal {
	case StateCompleted:
		kind = EventCompleted
	case StateError:
		kind = EventError
	default:
		kind = EventStopped
	}

	s.emit(kind, reason)

	close(s.events)
	close(s.done)

	s.log.Info("session finished",
		slog.String("id", s.id),
		slog.String("state", string(terminal)),
	)
}
