package store

import (
	"github.com/ayoisaiah/lapse/internal/models"
)

// DB is the database storage interface.
type DB interface {
	// SaveReport durably persists a report. It either writes the full
	// report before returning or fails with no partial write observable
	// on a subsequent Reports call.
	SaveReport(report *models.Report) (*models.Report, error)
	// Reports returns all saved reports, newest first.
	Reports() ([]*models.Report, error)
	// GetReport returns the report saved under the given session id.
	GetReport(id string) (*models.Report, error)
	// UpdateReportTitle renames a saved report. All other report fields
	// are immutable.
	UpdateReportTitle(id, title string) error
	// DeleteReport removes a saved report.
	DeleteReport(id string) error
	// SaveUnsavedSession writes the single recovery record, overwriting
	// any existing one.
	SaveUnsavedSession(rec *models.RecoveryRecord) error
	// UnsavedSession returns the pending recovery record, or nil if the
	// slot is empty.
	UnsavedSession() (*models.RecoveryRecord, error)
	// ClearUnsavedSession empties the recovery slot.
	ClearUnsavedSession() error
	// Close ends the database connection.
	Close() error
}
