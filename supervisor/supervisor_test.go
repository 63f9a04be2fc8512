package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ayoisaiah/lapse/camera"
	"github.com/ayoisaiah/lapse/internal/models"
	"github.com/ayoisaiah/lapse/session"
)

type dbMock struct {
	mu      sync.Mutex
	reports map[string]*models.Report
	rec     *models.RecoveryRecord
	saveErr error
}

func newDBMock() *dbMock {
	return &dbMock{reports: make(map[string]*models.Report)}
}

func (d *dbMock) SaveReport(report *models.Report) (*models.Report, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.saveErr != nil {
		return nil, d.saveErr
	}

	saved := *report
	saved.SavedAt = time.Now()
	d.reports[saved.ID] = &saved

	return &saved, nil
}

func (d *dbMock) Reports() ([]*models.Report, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []*models.Report
	for _, r := range d.reports {
		out = append(out, r)
	}

	return out, nil
}

func (d *dbMock) GetReport(id string) (*models.Report, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.reports[id]
	if !ok {
		return nil, errors.New("not found")
	}

	return r, nil
}

func (d *dbMock) UpdateReportTitle(id, title string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.reports[id]
	if !ok {
		return errors.New("not found")
	}

	r.Title = title

	return nil
}

func (d *dbMock) DeleteReport(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.reports, id)

	return nil
}

func (d *dbMock) SaveUnsavedSession(rec *models.RecoveryRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.rec = rec

	return nil
}

func (d *dbMock) UnsavedSession() (*models.RecoveryRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.rec, nil
}

func (d *dbMock) ClearUnsavedSession() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.rec = nil

	return nil
}

func (d *dbMock) Close() error {
	return nil
}

func (d *dbMock) recovery() *models.RecoveryRecord {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.rec
}

func (d *dbMock) report(id string) *models.Report {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.reports[id]
}

type camMock struct{}

func (camMock) Trigger(_ context.Context) error {
	return nil
}

func (camMock) PollEvents(_ context.Context) (*camera.PollResult, error) {
	return &camera.PollResult{AddedFiles: []string{"IMG_0001.JPG"}}, nil
}

func (camMock) Connected(_ context.Context) bool {
	return true
}

func (camMock) Metadata(_ context.Context) (models.CameraMetadata, error) {
	return models.CameraMetadata{
		Model: "Canon EOS R6",
		Av:    "f5.6",
		Tv:    "1/125",
		ISO:   "400",
	}, nil
}

// flakyCam fails its first shot and succeeds afterwards.
type flakyCam struct {
	mu       sync.Mutex
	attempts int
}

func (c *flakyCam) Trigger(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.attempts++

	if c.attempts == 1 {
		return errors.New("shutter press failed with status 503")
	}

	return nil
}

func (c *flakyCam) PollEvents(_ context.Context) (*camera.PollResult, error) {
	return &camera.PollResult{AddedFiles: []string{"IMG_0002.JPG"}}, nil
}

func (c *flakyCam) Connected(_ context.Context) bool {
	return true
}

func (c *flakyCam) Metadata(_ context.Context) (models.CameraMetadata, error) {
	return models.CameraMetadata{Model: "Canon EOS R6"}, nil
}

func (c *flakyCam) shots() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.attempts
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func quickOptions(title string) session.Options {
	return session.Options{
		Title:         title,
		Interval:      5 * time.Millisecond,
		StopCondition: session.StopAfterCount,
		ShotCount:     1,
	}
}

func TestStartSessionConflict(t *testing.T) {
	sup := New(newDBMock(), camMock{}, testLogger())

	first, err := sup.StartSession(session.Options{
		Title:         "first",
		Interval:      10 * time.Millisecond,
		StopCondition: session.StopManual,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = sup.StartSession(quickOptions("second"))
	if !errors.Is(err, ErrSessionActive) {
		t.Fatalf("Expected ErrSessionActive, but got: %v", err)
	}

	err = first.Stop()
	if err != nil {
		t.Fatal(err)
	}

	sup.Wait()

	// the slot frees up once the first session terminates
	_, err = sup.StartSession(quickOptions("third"))
	if err != nil {
		t.Fatalf("Expected a new session after termination, but got: %v", err)
	}

	sup.Wait()
}

func TestAutoSaveOnCompletion(t *testing.T) {
	db := newDBMock()

	var (
		mu       sync.Mutex
		outcomes []SaveOutcome
	)

	sup := New(db, camMock{}, testLogger(), WithSaveCallback(
		func(o SaveOutcome) {
			mu.Lock()
			outcomes = append(outcomes, o)
			mu.Unlock()
		},
	))

	sess, err := sup.StartSession(quickOptions("sunset"))
	if err != nil {
		t.Fatal(err)
	}

	sup.Wait()

	saved := db.report(sess.ID())
	if saved == nil {
		t.Fatal("Expected the report to be saved on completion")
	}

	if saved.CompletionReason != session.ReasonCompleted {
		t.Errorf(
			"Expected completion reason %q, but got: %q",
			session.ReasonCompleted,
			saved.CompletionReason,
		)
	}

	if saved.Camera.Model != "Canon EOS R6" {
		t.Errorf(
			"Expected the report to carry camera metadata, but got: %+v",
			saved.Camera,
		)
	}

	if saved.SavedAt.IsZero() {
		t.Error("Expected the save timestamp to be set")
	}

	if db.recovery() != nil {
		t.Error("Expected no recovery record after a successful save")
	}

	mu.Lock()
	defer mu.Unlock()

	if len(outcomes) != 1 || !outcomes[0].Saved || outcomes[0].Fallback {
		t.Fatalf("Expected one successful save outcome, but got: %+v", outcomes)
	}
}

func TestStoppedSessionWithMixedResultsIsSaved(t *testing.T) {
	db := newDBMock()
	cam := &flakyCam{}

	sup := New(db, cam, testLogger())

	sess, err := sup.StartSession(session.Options{
		Title:                  "mixed",
		Interval:               5 * time.Millisecond,
		StopCondition:          session.StopManual,
		MaxConsecutiveFailures: 3,
	})
	if err != nil {
		t.Fatal(err)
	}

	// let one failed and at least one successful shot through
	deadline := time.Now().Add(5 * time.Second)
	for cam.shots() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("session never reached two shots")
		}

		time.Sleep(time.Millisecond)
	}

	err = sup.Stop()
	if err != nil {
		t.Fatal(err)
	}

	sup.Wait()

	saved := db.report(sess.ID())
	if saved == nil {
		t.Fatal("Expected the stopped session's report to be saved")
	}

	if saved.CompletionReason != session.ReasonStopped {
		t.Errorf(
			"Expected completion reason %q, but got: %q",
			session.ReasonStopped,
			saved.CompletionReason,
		)
	}

	if saved.Stats.ShotsFailed != 1 {
		t.Errorf(
			"Expected exactly 1 failed shot, but got: %d",
			saved.Stats.ShotsFailed,
		)
	}

	if saved.Stats.ShotsSucceeded < 1 {
		t.Errorf(
			"Expected at least 1 successful shot, but got: %d",
			saved.Stats.ShotsSucceeded,
		)
	}
}

func TestSaveFallbackToRecoverySlot(t *testing.T) {
	db := newDBMock()
	db.saveErr = errors.New("disk full")

	var (
		mu       sync.Mutex
		outcomes []SaveOutcome
	)

	sup := New(db, camMock{}, testLogger(), WithSaveCallback(
		func(o SaveOutcome) {
			mu.Lock()
			outcomes = append(outcomes, o)
			mu.Unlock()
		},
	))

	sess, err := sup.StartSession(quickOptions("doomed"))
	if err != nil {
		t.Fatal(err)
	}

	sup.Wait()

	if db.report(sess.ID()) != nil {
		t.Error("Expected no saved report after a store failure")
	}

	rec := db.recovery()
	if rec == nil {
		t.Fatal("Expected a recovery record after a store failure")
	}

	if !rec.NeedsUserDecision {
		t.Error("Expected the recovery record to require a user decision")
	}

	if rec.Report.ID != sess.ID() {
		t.Errorf(
			"Expected the recovery record to hold session %s, but got: %s",
			sess.ID(),
			rec.Report.ID,
		)
	}

	if rec.FailureReason != "disk full" {
		t.Errorf(
			"Expected the failure reason to be recorded, but got: %q",
			rec.FailureReason,
		)
	}

	mu.Lock()
	defer mu.Unlock()

	if len(outcomes) != 1 || !outcomes[0].Fallback || outcomes[0].Saved {
		t.Fatalf("Expected one fallback outcome, but got: %+v", outcomes)
	}
}

func TestSuccessfulSaveClearsMatchingRecovery(t *testing.T) {
	db := newDBMock()
	db.saveErr = errors.New("disk full")

	sup := New(db, camMock{}, testLogger())

	sess, err := sup.StartSession(quickOptions("retried"))
	if err != nil {
		t.Fatal(err)
	}

	sup.Wait()

	if db.recovery() == nil {
		t.Fatal("Expected a recovery record after the failed save")
	}

	// the store recovers and the same session's report is saved again
	db.mu.Lock()
	db.saveErr = nil
	db.mu.Unlock()

	outcome := sup.saveReport(&models.Report{
		ID:    sess.ID(),
		Title: "retried",
	})

	if !outcome.Saved {
		t.Fatalf("Expected the retried save to succeed, but got: %+v", outcome)
	}

	if db.recovery() != nil {
		t.Error("Expected the matching recovery record to be cleared")
	}
}

func TestResolveRecoverySave(t *testing.T) {
	db := newDBMock()
	db.rec = &models.RecoveryRecord{
		Report:            models.Report{ID: "abc", Title: "parked"},
		FailureReason:     "disk full",
		NeedsUserDecision: true,
		RecordedAt:        time.Now(),
	}

	sup := New(db, camMock{}, testLogger())

	report, err := sup.ResolveRecovery(true)
	if err != nil {
		t.Fatal(err)
	}

	if report == nil || report.ID != "abc" {
		t.Fatalf("Expected the parked report to be saved, but got: %+v", report)
	}

	if db.report("abc") == nil {
		t.Error("Expected the report in the store after resolving with save")
	}

	if db.recovery() != nil {
		t.Error("Expected the recovery slot to be cleared")
	}

	_, err = sup.ResolveRecovery(true)
	if !errors.Is(err, ErrNoRecovery) {
		t.Errorf("Expected ErrNoRecovery on an empty slot, but got: %v", err)
	}
}

func TestResolveRecoveryDiscard(t *testing.T) {
	db := newDBMock()
	db.rec = &models.RecoveryRecord{
		Report: models.Report{ID: "abc", Title: "parked"},
	}

	sup := New(db, camMock{}, testLogger())

	report, err := sup.ResolveRecovery(false)
	if err != nil {
		t.Fatal(err)
	}

	if report != nil {
		t.Errorf("Expected no report when discarding, but got: %+v", report)
	}

	if db.report("abc") != nil {
		t.Error("Expected the report to stay out of the store when discarding")
	}

	if db.recovery() != nil {
		t.Error("Expected the recovery slot to be cleared")
	}
}

func TestSessionCommandsThroughSupervisor(t *testing.T) {
	sup := New(newDBMock(), camMock{}, testLogger())

	if err := sup.Pause(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession without a session, but got: %v", err)
	}

	if err := sup.Stop(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession without a session, but got: %v", err)
	}

	sess, err := sup.StartSession(session.Options{
		Title:         "remote",
		Interval:      10 * time.Millisecond,
		StopCondition: session.StopManual,
	})
	if err != nil {
		t.Fatal(err)
	}

	err = sup.Pause()
	if err != nil {
		t.Fatal(err)
	}

	if state := sess.Status().State; state != session.StatePaused {
		t.Fatalf("Expected paused state, but got: %s", state)
	}

	err = sup.Resume()
	if err != nil {
		t.Fatal(err)
	}

	err = sup.Stop()
	if err != nil {
		t.Fatal(err)
	}

	sup.Wait()

	if state := sess.Status().State; state != session.StateStopped {
		t.Fatalf("Expected stopped state, but got: %s", state)
	}
}

func TestCheckOperationSafety(t *testing.T) {
	cases := []struct {
		state session.State
		safe  bool
	}{
		{session.StateCreated, true},
		{session.StateRunning, false},
		{session.StatePaused, false},
		{session.StateStopping, true},
		{session.StateCompleted, true},
		{session.StateStopped, true},
		{session.StateError, true},
	}

	for _, tc := range cases {
		t.Run(string(tc.state), func(t *testing.T) {
			got := CheckOperationSafety(tc.state)

			if got.Safe != tc.safe {
				t.Errorf(
					"Expected safe=%t for state %s, but got: %t",
					tc.safe,
					tc.state,
					got.Safe,
				)
			}

			if !got.Safe && got.BlockingState != tc.state {
				t.Errorf(
					"Expected the blocking state to be %s, but got: %s",
					tc.state,
					got.BlockingState,
				)
			}
		})
	}
}

func TestIsOperationSafeWithoutSession(t *testing.T) {
	sup := New(newDBMock(), camMock{}, testLogger())

	if got := sup.IsOperationSafe(); !got.Safe {
		t.Errorf("Expected safety with no active session, but got: %+v", got)
	}
}

func TestIsOperationSafeWithRunningSession(t *testing.T) {
	sup := New(newDBMock(), camMock{}, testLogger())

	sess, err := sup.StartSession(session.Options{
		Title:         "busy",
		Interval:      10 * time.Millisecond,
		StopCondition: session.StopManual,
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := sup.IsOperationSafe(); got.Safe {
		t.Error("Expected a running session to block disruptive operations")
	}

	err = sess.Stop()
	if err != nil {
		t.Fatal(err)
	}

	sup.Wait()

	if got := sup.IsOperationSafe(); !got.Safe {
		t.Errorf(
			"Expected safety after the session terminated, but got: %+v",
			got,
		)
	}
}
