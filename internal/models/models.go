// Package models defines the records lapse persists to the data store.
package models

import "time"

// CameraMetadata is a snapshot of the camera state taken when a report
// is assembled.
type CameraMetadata struct {
	Model string `json:"model"`
	Av    string `json:"av"`
	Tv    string `json:"tv"`
	ISO   string `json:"iso"`
}

// ShotError summarises a single failed shot.
type ShotError struct {
	Shot    int       `json:"shot"`
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// Stats holds the accumulated statistics of a capture session.
type Stats struct {
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	ShotsAttempted  int           `json:"shots_attempted"`
	ShotsSucceeded  int           `json:"shots_succeeded"`
	ShotsFailed     int           `json:"shots_failed"`
	Errors          []ShotError   `json:"errors,omitempty"`
	AvgShotDuration time.Duration `json:"avg_shot_duration"`
	LastFile        string        `json:"last_file,omitempty"`
}

// Report is the record of a terminated session. Once saved it is never
// mutated except through an explicit title rename.
type Report struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	CompletionReason string         `json:"completion_reason"`
	Stats            Stats          `json:"stats"`
	Camera           CameraMetadata `json:"camera"`
	SavedAt          time.Time      `json:"saved_at"`
}

// RecoveryRecord is the single-slot snapshot of a report whose normal
// save failed. Its presence means a session terminated but its report is
// not confirmed durable.
type RecoveryRecord struct {
	Report            Report    `json:"report"`
	FailureReason     string    `json:"failure_reason"`
	NeedsUserDecision bool      `json:"needs_user_decision"`
	RecordedAt        time.Time `json:"recorded_at"`
}
