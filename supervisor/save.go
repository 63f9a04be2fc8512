package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/ayoisaiah/lapse/internal/models"
	"github.com/ayoisaiah/lapse/session"
)

// SaveOutcome records where a finished session's report ended up.
// Exactly one of Saved and Fallback is true.
type SaveOutcome struct {
	Report *models.Report
	// Saved means the report reached the report store.
	Saved bool
	// Fallback means the store rejected the report and it was parked in
	// the recovery slot for a later user decision.
	Fallback bool
	// Err is the store failure that triggered the fallback.
	Err error
}

// handleTerminal builds the final report for a terminated session,
// enriches it with camera metadata, and persists it. A store failure
// never loses the report: it is parked in the recovery slot instead.
func (s *Supervisor) handleTerminal(ev session.Event) {
	report := &models.Report{
		ID:               ev.SessionID,
		Title:            ev.Title,
		CompletionReason: ev.Reason,
		Stats:            ev.Stats,
	}

	meta, err := s.cam.Metadata(context.Background())
	if err != nil {
		s.log.Warn("unable to read camera metadata for report",
			slog.Any("error", err),
		)
	}

	report.Camera = meta

	outcome := s.saveReport(report)

	if s.onSave != nil {
		s.onSave(outcome)
	}
}

// saveReport persists the report, falling back to the recovery slot on
// failure. On success any stale recovery record for the same session is
// cleared.
func (s *Supervisor) saveReport(report *models.Report) SaveOutcome {
	saved, err := s.db.SaveReport(report)
	if err != nil {
		s.log.Error("unable to save session report, using recovery slot",
			slog.String("id", report.ID),
			slog.Any("error", err),
		)

		rec := &models.RecoveryRecord{
			Report:            *report,
			FailureReason:     err.Error(),
			NeedsUserDecision: true,
			RecordedAt:        time.Now(),
		}

		recErr := s.db.SaveUnsavedSession(rec)
		if recErr != nil {
			// both stores failed: the log line is the last copy
			s.log.Error("unable to write recovery record",
				slog.String("id", report.ID),
				slog.Any("error", recErr),
			)
		}

		return SaveOutcome{Report: report, Fallback: true, Err: err}
	}

	s.clearMatchingRecovery(saved.ID)

	s.log.Info("session report saved",
		slog.String("id", saved.ID),
		slog.String("title", saved.Title),
		slog.String("reason", saved.CompletionReason),
	)

	return SaveOutcome{Report: saved, Saved: true}
}

// clearMatchingRecovery removes a recovery record left over from an
// earlier failed save of the same session.
func (s *Supervisor) clearMatchingRecovery(id string) {
	rec, err := s.db.UnsavedSession()
	if err != nil || rec == nil {
		return
	}

	if rec.Report.ID != id {
		return
	}

	err = s.db.ClearUnsavedSession()
	if err != nil {
		s.log.Warn("unable to clear recovery slot", slog.Any("error", err))
	}
}

// PendingRecovery returns the recovery record awaiting a user decision,
// or nil when the slot is empty. Call it at startup before starting a
// new session.
func (s *Supervisor) PendingRecovery() (*models.RecoveryRecord, error) {
	return s.db.UnsavedSession()
}

// ResolveRecovery settles the pending recovery record. With save set,
// the parked report is written to the report store first; either way
// the slot is cleared. The settled report is returned when saving.
func (s *Supervisor) ResolveRecovery(save bool) (*models.Report, error) {
	rec, err := s.db.UnsavedSession()
	if err != nil {
		return nil, err
	}

	if rec == nil {
		return nil, ErrNoRecovery
	}

	var report *models.Report

	if save {
		report, err = s.db.SaveReport(&rec.Report)
		if err != nil {
			return nil, err
		}
	}

	err = s.db.ClearUnsavedSession()
	if err != nil {
		return nil, err
	}

	return report, nil
}
