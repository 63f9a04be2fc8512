package session

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"
)

// StatusFile is the on-disk snapshot other processes read to inspect a
// live session. It is rewritten whole on every state change and shot.
type StatusFile struct {
	Snapshot

	UpdatedAt time.Time `json:"updated_at"`
}

// writeStatusFile persists the current snapshot to the configured
// status path. Failures are logged, never fatal: status reporting must
// not break a capture run.
func (s *Session) writeStatusFile() {
	if s.opts.StatusPath == "" {
		return
	}

	status := StatusFile{
		Snapshot:  s.Status(),
		UpdatedAt: time.Now(),
	}

	b, err := json.MarshalIndent(&status, "", "  ")
	if err != nil {
		s.log.Warn("unable to encode status file", slog.Any("error", err))
		return
	}

	err = os.WriteFile(s.opts.StatusPath, b, 0o644)
	if err != nil {
		s.log.Warn("unable to write status file", slog.Any("error", err))
	}
}

// ReadStatusFile loads the last written status snapshot from path.
func ReadStatusFile(path string) (*StatusFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var status StatusFile

	err = json.Unmarshal(b, &status)
	if err != nil {
		return nil, err
	}

	return &status, nil
}
