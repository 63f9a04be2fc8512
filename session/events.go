package session

import (
	"github.com/ayoisaiah/lapse/internal/models"
)

// EventKind labels a session lifecycle notification.
type EventKind string

const (
	EventStarted   EventKind = "started"
	EventStopped   EventKind = "stopped"
	EventCompleted EventKind = "completed"
	EventError     EventKind = "error"
)

// Completion reasons recorded on the final report.
const (
	ReasonCompleted = "completed"
	ReasonStopped   = "stopped"
	ReasonError     = "error"
)

// Event is a lifecycle notification. Terminal events carry the final
// statistics so observers never have to reach back into the session.
type Event struct {
	Kind      EventKind
	SessionID string
	Title     string
	Reason    string
	Stats     models.Stats
}

// Terminal reports whether the event ends the session's lifecycle.
func (e Event) Terminal() bool {
	return e.Kind == EventStopped || e.Kind == EventCompleted ||
		e.Kind == EventError
}

// emit delivers a lifecycle event. The channel is buffered beyond the
// maximum number of events a session can produce, so sends never block.
func (s *Session) emit(kind EventKind, reason string) {
	s.mu.Lock()
	stats := cloneStats(s.stats)
	s.mu.Unlock()

	s.events <- Event{
		Kind:      kind,
		SessionID: s.id,
		Title:     s.opts.Title,
		Reason:    reason,
		Stats:     stats,
	}
}
