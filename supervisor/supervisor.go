// Package supervisor owns the single active capture session and
// guarantees that every finished session ends up either in the report
// store or in the recovery slot, never lost.
package supervisor

import (
	"log/slog"
	"sync"

	"github.com/davecgh/go-spew/spew"

	"github.com/ayoisaiah/lapse/camera"
	"github.com/ayoisaiah/lapse/session"
	"github.com/ayoisaiah/lapse/store"
)

// Supervisor tracks at most one live session and reacts to its
// lifecycle events.
type Supervisor struct {
	db     store.DB
	cam    camera.Controller
	log    *slog.Logger
	onSave func(SaveOutcome)

	mu      sync.Mutex
	active  *session.Session
	watched chan struct{}
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithSaveCallback registers a function invoked after every terminal
// save attempt, successful or fallback. It runs on the watcher
// goroutine.
func WithSaveCallback(fn func(SaveOutcome)) Option {
	return func(s *Supervisor) {
		s.onSave = fn
	}
}

// New returns a supervisor with no active session.
func New(
	db store.DB,
	cam camera.Controller,
	logger *slog.Logger,
	opts ...Option,
) *Supervisor {
	s := &Supervisor{
		db:  db,
		cam: cam,
		log: logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// StartSession creates and starts a new capture session, claiming the
// ownership slot. It fails with ErrSessionActive while a previous
// session is still live.
func (s *Supervisor) StartSession(
	opts session.Options,
) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil && !s.active.Status().State.Terminal() {
		return nil, ErrSessionActive.Fmt(s.active.Title())
	}

	sess, err := session.New(opts, s.cam, s.log)
	if err != nil {
		return nil, err
	}

	err = sess.Start()
	if err != nil {
		return nil, err
	}

	s.active = sess
	s.watched = make(chan struct{})

	// lifecycle events are buffered, so the watcher never misses the
	// started event even though it attaches after Start
	go s.watch(sess, s.watched)

	return sess, nil
}

// Active returns the session currently holding the ownership slot, or
// nil. A terminal session keeps the slot until the next StartSession so
// its final status stays inspectable.
func (s *Supervisor) Active() *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

// Pause suspends the active session.
func (s *Supervisor) Pause() error {
	sess := s.Active()
	if sess == nil {
		return ErrNoSession
	}

	return sess.Pause()
}

// Resume continues the active session.
func (s *Supervisor) Resume() error {
	sess := s.Active()
	if sess == nil {
		return ErrNoSession
	}

	return sess.Resume()
}

// Stop requests termination of the active session.
func (s *Supervisor) Stop() error {
	sess := s.Active()
	if sess == nil {
		return ErrNoSession
	}

	return sess.Stop()
}

// Wait blocks until the active session has terminated and its report
// has been handled. It returns immediately when no session was started.
func (s *Supervisor) Wait() {
	s.mu.Lock()
	watched := s.watched
	s.mu.Unlock()

	if watched != nil {
		<-watched
	}
}

// watch consumes the session's lifecycle events. The terminal event
// carries the final statistics and hands off to the save path.
func (s *Supervisor) watch(sess *session.Session, done chan struct{}) {
	defer close(done)

	for ev := range sess.Events() {
		switch {
		case ev.Terminal():
			s.handleTerminal(ev)
		case ev.Kind == session.EventStarted:
			s.log.Info("supervising session",
				slog.String("id", ev.SessionID),
				slog.String("title", ev.Title),
			)
		default:
			s.log.Warn("unexpected session event",
				slog.String("dump", spew.Sdump(ev)),
			)
		}
	}
}
