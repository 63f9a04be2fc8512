// Package store connects to the data store and manages reports and the
// unsaved-session recovery slot.
package store

import (
	"cmp"
	"encoding/json"
	"errors"
	"io/fs"
	"slices"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/lapse/internal/apperr"
	"github.com/ayoisaiah/lapse/internal/models"
)

var (
	reportsBucket  = []byte("reports")
	recoveryBucket = []byte("recovery")

	// recoveryKey is the single key in the recovery bucket. The slot is
	// overwrite-in-place, never a log.
	recoveryKey = []byte("current")
)

var (
	ErrLapseRunning = &apperr.Error{
		Message: "is lapse already running? Only one instance can be active at a time",
	}

	ErrReportNotFound = &apperr.Error{
		Message: "no report found for session %s",
	}
)

// Client is a BoltDB database client.
type Client struct {
	*bolt.DB
}

// SaveReport persists the report under its session id in a single write
// transaction and returns the stored copy with its save timestamp set.
func (c *Client) SaveReport(report *models.Report) (*models.Report, error) {
	saved := *report
	saved.SavedAt = time.Now()

	value, err := json.Marshal(&saved)
	if err != nil {
		return nil, err
	}

	err = c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(reportsBucket).Put([]byte(saved.ID), value)
	})
	if err != nil {
		return nil, err
	}

	return &saved, nil
}

// Reports returns all saved reports ordered newest first by session
// start time.
func (c *Client) Reports() ([]*models.Report, error) {
	var reports []*models.Report

	err := c.View(func(tx *bolt.Tx) error {
		return tx.Bucket(reportsBucket).ForEach(func(_, v []byte) error {
			var r models.Report

			err := json.Unmarshal(v, &r)
			if err != nil {
				return err
			}

			reports = append(reports, &r)

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(reports, func(a, b *models.Report) int {
		return cmp.Compare(
			b.Stats.StartTime.UnixNano(),
			a.Stats.StartTime.UnixNano(),
		)
	})

	return reports, nil
}

func (c *Client) GetReport(id string) (*models.Report, error) {
	var r models.Report

	err := c.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(reportsBucket).Get([]byte(id))
		if len(b) == 0 {
			return ErrReportNotFound.Fmt(id)
		}

		return json.Unmarshal(b, &r)
	})
	if err != nil {
		return nil, err
	}

	return &r, nil
}

func (c *Client) UpdateReportTitle(id, title string) error {
	return c.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(reportsBucket)

		b := bucket.Get([]byte(id))
		if len(b) == 0 {
			return ErrReportNotFound.Fmt(id)
		}

		var r models.Report

		err := json.Unmarshal(b, &r)
		if err != nil {
			return err
		}

		r.Title = title

		value, err := json.Marshal(&r)
		if err != nil {
			return err
		}

		return bucket.Put([]byte(id), value)
	})
}

func (c *Client) DeleteReport(id string) error {
	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(reportsBucket).Delete([]byte(id))
	})
}

// SaveUnsavedSession overwrites the recovery slot with the given record.
func (c *Client) SaveUnsavedSession(rec *models.RecoveryRecord) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(recoveryBucket).Put(recoveryKey, value)
	})
}

// UnsavedSession returns the pending recovery record, or nil if the slot
// is empty.
func (c *Client) UnsavedSession() (*models.RecoveryRecord, error) {
	var rec *models.RecoveryRecord

	err := c.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(recoveryBucket).Get(recoveryKey)
		if len(b) == 0 {
			return nil
		}

		rec = &models.RecoveryRecord{}

		return json.Unmarshal(b, rec)
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

func (c *Client) ClearUnsavedSession() error {
	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(recoveryBucket).Delete(recoveryKey)
	})
}

// openDB creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		pathToDB,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseOpen) ||
			errors.Is(err, bolt.ErrTimeout) {
			return nil, ErrLapseRunning
		}

		return nil, err
	}

	return db, nil
}

// NewClient returns a wrapper to a BoltDB connection.
func NewClient(dbPath string) (*Client, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}
	// Create the necessary buckets for storing data if they do not exist already
	err = db.Update(func(tx *bolt.Tx) error {
		_, err = tx.CreateBucketIfNotExists(reportsBucket)
		if err != nil {
			return err
		}

		_, err = tx.CreateBucketIfNotExists(recoveryBucket)

		return err
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		db,
	}, nil
}
