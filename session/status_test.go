package session

import (
	"path/filepath"
	"testing"
	"time"
)

func TestStatusFileRoundTrip(t *testing.T) {
	statusPath := filepath.Join(t.TempDir(), "status.json")

	sess, err := New(Options{
		Title:         "window view",
		Interval:      5 * time.Millisecond,
		StopCondition: StopAfterCount,
		ShotCount:     2,
		StatusPath:    statusPath,
	}, &camMock{}, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	err = sess.Start()
	if err != nil {
		t.Fatal(err)
	}

	waitForDone(t, sess)

	status, err := ReadStatusFile(statusPath)
	if err != nil {
		t.Fatal(err)
	}

	if status.ID != sess.ID() {
		t.Errorf("Expected session id %s, but got: %s", sess.ID(), status.ID)
	}

	if status.Title != "window view" {
		t.Errorf("Expected the session title, but got: %q", status.Title)
	}

	if status.State != StateCompleted {
		t.Errorf("Expected the terminal state, but got: %s", status.State)
	}

	if status.Stats.ShotsAttempted != 2 {
		t.Errorf(
			"Expected 2 attempted shots, but got: %d",
			status.Stats.ShotsAttempted,
		)
	}

	if status.UpdatedAt.IsZero() {
		t.Error("Expected the update timestamp to be set")
	}
}

func TestReadStatusFileMissing(t *testing.T) {
	_, err := ReadStatusFile(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("Expected an error for a missing status file")
	}
}
