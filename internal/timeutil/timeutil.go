// Package timeutil provides utility functions for parsing time values.
package timeutil

import (
	"time"

	"github.com/markusmobius/go-dateparser"
)

// FromStr parses a formatted or natural-language time string.
func FromStr(s string) (time.Time, error) {
	cfg := &dateparser.Configuration{
		CurrentTime: time.Now(),
	}

	dt, err := dateparser.Parse(cfg, s)
	if err != nil {
		return time.Time{}, err
	}

	return dt.Time, nil
}

// StopTimeFromStr parses a stop time for a capture session. A result in
// the past is moved to the following day since a stop time is always
// ahead of now ("06:30" given at night means tomorrow morning).
func StopTimeFromStr(s string) (time.Time, error) {
	t, err := FromStr(s)
	if err != nil {
		return time.Time{}, err
	}

	if time.Until(t) < -time.Minute {
		t = t.AddDate(0, 0, 1)
	}

	return t, nil
}
