// Package session operates the capture session state machine: it paces
// shots at a fixed cadence, tracks progress, and survives individual
// camera faults.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayoisaiah/lapse/camera"
	"github.com/ayoisaiah/lapse/internal/models"
)

// State is the lifecycle state of a capture session.
type State string

const (
	StateCreated   State = "created"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateStopping  State = "stopping"
	StateCompleted State = "completed"
	StateStopped   State = "stopped"
	StateError     State = "error"
)

// Terminal reports whether the state is absorbing: no further
// transitions, no further shots.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateStopped || s == StateError
}

// StopCondition determines when a session ends on its own.
type StopCondition string

const (
	StopAfterCount StopCondition = "shot-count"
	StopAtTime     StopCondition = "stop-time"
	StopManual     StopCondition = "manual"
)

// Options configures a capture session. It is immutable once the
// session is running.
type Options struct {
	Title                  string
	Interval               time.Duration
	StopCondition          StopCondition
	ShotCount              int
	StopTime               time.Time
	MaxConsecutiveFailures int
	CompletionBudget       time.Duration
	StatusPath             string
}

const defaultMaxConsecutiveFailures = 3

// Validate checks the options and fills in defaults.
func (o *Options) Validate() error {
	if o.Interval <= 0 {
		return errInvalidInterval.Fmt(o.Interval)
	}

	switch o.StopCondition {
	case StopAfterCount:
		if o.ShotCount < 1 {
			return errInvalidShotCount.Fmt(o.ShotCount)
		}
	case StopAtTime:
		if time.Until(o.StopTime) <= 0 {
			return errStopTimeInPast.Fmt(o.StopTime)
		}
	case StopManual:
	default:
		return errUnknownStopCondition.Fmt(o.StopCondition)
	}

	if o.MaxConsecutiveFailures == 0 {
		o.MaxConsecutiveFailures = defaultMaxConsecutiveFailures
	}

	if o.MaxConsecutiveFailures < 1 {
		return errInvalidFailureBound.Fmt(o.MaxConsecutiveFailures)
	}

	if o.CompletionBudget <= 0 {
		o.CompletionBudget = camera.DefaultCompletionBudget
	}

	return nil
}

// Snapshot is a point-in-time copy of a session's state, statistics,
// and configuration. It never aliases live session data.
type Snapshot struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	State         State         `json:"state"`
	Interval      time.Duration `json:"interval"`
	StopCondition StopCondition `json:"stop_condition"`
	ShotCount     int           `json:"shot_count,omitempty"`
	StopTime      time.Time     `json:"stop_time,omitempty"`
	Stats         models.Stats  `json:"stats"`
}

// Session is one capture run from creation to a terminal state.
type Session struct {
	id   string
	opts Options
	cam  camera.Controller
	log  *slog.Logger

	mu                  sync.Mutex
	state               State
	stats               models.Stats
	consecutiveFailures int

	events   chan Event
	wake     chan struct{}
	stopC    chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a session in the created state. Start must be called to
// begin taking shots.
func New(
	opts Options,
	cam camera.Controller,
	logger *slog.Logger,
) (*Session, error) {
	if cam == nil {
		return nil, camera.ErrNoCamera
	}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &Session{
		id:     uuid.NewString(),
		opts:   opts,
		cam:    cam,
		log:    logger.With(slog.String("session", opts.Title)),
		state:  StateCreated,
		events: make(chan Event, 4),
		wake:   make(chan struct{}, 1),
		stopC:  make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Title() string {
	return s.opts.Title
}

// Events returns the lifecycle notification channel. It is closed after
// the terminal event has been delivered.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Done is closed once the session has reached a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Start begins the shot loop. It fails unless the session is in the
// created state.
func (s *Session) Start() error {
	s.mu.Lock()

	if s.state != StateCreated {
		state := s.state
		s.mu.Unlock()

		return ErrInvalidState.Fmt("start", state)
	}

	s.state = StateRunning
	s.stats.StartTime = time.Now()
	s.mu.Unlock()

	s.writeStatusFile()

	s.emit(EventStarted, "")

	s.log.Info("session started",
		slog.String("id", s.id),
		slog.Duration("interval", s.opts.Interval),
		slog.String("stop_condition", string(s.opts.StopCondition)),
	)

	go s.run()

	return nil
}

// Pause suspends the shot loop. It fails unless the session is running.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return ErrInvalidState.Fmt("pause", s.state)
	}

	s.state = StatePaused
	s.nudge()

	s.log.Info("session paused", slog.String("id", s.id))

	return nil
}

// Resume continues a paused session. Due times are still computed from
// the original start time, so the schedule never shifts.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaused {
		return ErrInvalidState.Fmt("resume", s.state)
	}

	s.state = StateRunning
	s.nudge()

	s.log.Info("session resumed", slog.String("id", s.id))

	return nil
}

// Stop requests termination. It is valid from any non-terminal state
// and idempotent once stopping has begun. A wait in progress is
// interrupted; a shot already in flight runs to its own completion.
func (s *Session) Stop() error {
	s.mu.Lock()

	switch {
	case s.state == StateCreated:
		s.state = StateStopping
		s.mu.Unlock()

		s.finalize(StateStopped, ReasonStopped)

		return nil
	case s.state == StateRunning || s.state == StatePaused:
		s.state = StateStopping
		s.mu.Unlock()

		s.stopOnce.Do(func() {
			close(s.stopC)
		})

		return nil
	default:
		// already stopping or terminal
		s.mu.Unlock()

		return nil
	}
}

// Status returns a snapshot of the session.
func (s *Session) Status() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		ID:            s.id,
		Title:         s.opts.Title,
		State:         s.state,
		Interval:      s.opts.Interval,
		StopCondition: s.opts.StopCondition,
		ShotCount:     s.opts.ShotCount,
		StopTime:      s.opts.StopTime,
		Stats:         cloneStats(s.stats),
	}
}

// nudge wakes the run loop so it re-reads the session state. Callers
// must hold s.mu.
func (s *Session) nudge() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func cloneStats(stats models.Stats) models.Stats {
	out := stats
	out.Errors = append([]models.ShotError(nil), stats.Errors...)

	return out
}
