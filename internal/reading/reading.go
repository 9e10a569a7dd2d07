// Package reading holds the blood-pressure reading model and the pure rules
// applied to it: validation, classification and summary statistics.
package reading

import (
	"encoding/json"
	"time"
)

// TimeLayout is the canonical text form of a reading timestamp.
const TimeLayout = "2006-01-02 15:04:05"

// Reading is a single blood-pressure and heart-rate measurement.
// ID is assigned by the storage layer on creation.
type Reading struct {
	ID        int64
	Timestamp time.Time
	Systolic  int
	Diastolic int
	HeartRate int
	Location  string
	Notes     string
}

// Category returns the classification band of the reading.
func (r Reading) Category() Category {
	return Classify(r.Systolic, r.Diastolic)
}

// DateTime returns the timestamp formatted with TimeLayout.
func (r Reading) DateTime() string {
	return r.Timestamp.Format(TimeLayout)
}

type readingJSON struct {
	ID        int64    `json:"id"`
	DateTime  string   `json:"dateTime"`
	Systolic  int      `json:"systolic"`
	Diastolic int      `json:"diastolic"`
	HeartRate int      `json:"heartRate"`
	Location  string   `json:"location"`
	Notes     string   `json:"notes"`
	Category  Category `json:"category"`
}

// MarshalJSON renders the reading with its timestamp in TimeLayout and its
// derived category.
func (r Reading) MarshalJSON() ([]byte, error) {
	return json.Marshal(readingJSON{
		ID:        r.ID,
		DateTime:  r.DateTime(),
		Systolic:  r.Systolic,
		Diastolic: r.Diastolic,
		HeartRate: r.HeartRate,
		Location:  r.Location,
		Notes:     r.Notes,
		Category:  r.Category(),
	})
}

// UnmarshalJSON is the inverse of MarshalJSON. The category is ignored.
func (r *Reading) UnmarshalJSON(data []byte) error {
	var raw readingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ts, err := ParseTimestamp(raw.DateTime)
	if err != nil {
		return err
	}
	*r = Reading{
		ID:        raw.ID,
		Timestamp: ts,
		Systolic:  raw.Systolic,
		Diastolic: raw.Diastolic,
		HeartRate: raw.HeartRate,
		Location:  raw.Location,
		Notes:     raw.Notes,
	}
	return nil
}

// ParseTimestamp accepts TimeLayout or RFC 3339 and returns the instant in UTC,
// truncated to whole seconds.
func ParseTimestamp(s string) (time.Time, error) {
	var (
		t   time.Time
		err error
	)
	for _, layout := range []string{TimeLayout, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		t, err = time.Parse(layout, s)
		if err == nil {
			return t.UTC().Truncate(time.Second), nil
		}
	}
	return time.Time{}, err
}
