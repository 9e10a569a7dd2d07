package api

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/starford/bptracker/internal/reading"
)

// rawField accepts a JSON string, number or null and keeps its text so that
// the shared validator decides whether it is acceptable.
type rawField string

func (f *rawField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = rawField(s)
	default:
		// 120.0 is the same measurement as 120.
		if v, err := strconv.ParseFloat(string(b), 64); err == nil && v == math.Trunc(v) && math.Abs(v) < 1e9 {
			*f = rawField(strconv.FormatInt(int64(v), 10))
			return nil
		}
		*f = rawField(b)
	}
	return nil
}

// CreateEntryRequest is the request body for creating an entry. Numeric
// fields may be JSON numbers or numeric strings. timestamp is accepted as an
// alias of dateTime.
type CreateEntryRequest struct {
	DateTime  rawField `json:"dateTime" example:"2025-01-15 08:00:00" validate:"required"`
	Timestamp rawField `json:"timestamp,omitempty"`
	Systolic  rawField `json:"systolic" example:"120" validate:"required"`
	Diastolic rawField `json:"diastolic" example:"80" validate:"required"`
	HeartRate rawField `json:"heartRate" example:"70" validate:"required"`
	Location  rawField `json:"location,omitempty" example:"Home"`
	Notes     rawField `json:"notes,omitempty" example:"after walk"`
}

func (req CreateEntryRequest) input() reading.Input {
	ts := req.DateTime
	if ts == "" {
		ts = req.Timestamp
	}
	return reading.Input{
		Timestamp: string(ts),
		Systolic:  string(req.Systolic),
		Diastolic: string(req.Diastolic),
		HeartRate: string(req.HeartRate),
		Location:  string(req.Location),
		Notes:     string(req.Notes),
	}
}

// APIInfo is returned by GET /.
type APIInfo struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// Info describes the API surface.
var Info = APIInfo{
	Message: "Blood Pressure Tracker API",
	Version: "2.0",
	Endpoints: map[string]string{
		"GET /api/entries":        "Get all entries",
		"GET /api/entries/:id":    "Get entry by ID",
		"POST /api/entries":       "Add new entry",
		"DELETE /api/entries/:id": "Delete entry",
		"GET /api/stats":          "Get statistics",
		"GET /api/events":         "Live entry and statistics events (SSE)",
	},
}
