package reading

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Accepted measurement ranges, inclusive.
const (
	SystolicMin  = 70
	SystolicMax  = 250
	DiastolicMin = 40
	DiastolicMax = 150
	HeartRateMin = 30
	HeartRateMax = 200
)

// Rejection reasons. Validate wraps them in a *ValidationError.
var (
	ErrMissingField        = errors.New("missing required field")
	ErrInvalidTimestamp    = errors.New("invalid timestamp")
	ErrSystolicOutOfRange  = errors.New("systolic out of range")
	ErrDiastolicOutOfRange = errors.New("diastolic out of range")
	ErrHeartRateOutOfRange = errors.New("heart rate out of range")
)

// ValidationError is a user-facing rejection. Message is safe to show to the
// person who typed the value.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

// Input carries the raw, unparsed field values of a candidate reading.
type Input struct {
	Timestamp string
	Systolic  string
	Diastolic string
	HeartRate string
	Location  string
	Notes     string
}

// Defaults is the default policy of one entry point.
//
// When Now is nil the timestamp is required; otherwise an empty timestamp
// becomes Now(). Location and Notes replace empty values.
type Defaults struct {
	Now      func() time.Time
	Location string
	Notes    string
}

type bound struct {
	field string
	label string
	min   int
	max   int
	err   error
}

var (
	systolicBound  = bound{field: "systolic", label: "Systolic", min: SystolicMin, max: SystolicMax, err: ErrSystolicOutOfRange}
	diastolicBound = bound{field: "diastolic", label: "Diastolic", min: DiastolicMin, max: DiastolicMax, err: ErrDiastolicOutOfRange}
	heartRateBound = bound{field: "heartRate", label: "Heart rate", min: HeartRateMin, max: HeartRateMax, err: ErrHeartRateOutOfRange}
)

// check parses raw as an integer within the bound. Unparseable input is
// reported exactly like an out-of-range value.
func (b bound) check(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err == nil {
		// Required also rejects 0, which Min/Max skip as an empty value.
		err = validation.Validate(v, validation.Required, validation.Min(b.min), validation.Max(b.max))
	}
	if err != nil {
		return 0, &ValidationError{
			Field:   b.field,
			Message: fmt.Sprintf("%s must be between %d and %d", b.label, b.min, b.max),
			Err:     b.err,
		}
	}
	return v, nil
}

// ValidateSystolic checks a single raw systolic value.
func ValidateSystolic(raw string) (int, error) { return systolicBound.check(raw) }

// ValidateDiastolic checks a single raw diastolic value.
func ValidateDiastolic(raw string) (int, error) { return diastolicBound.check(raw) }

// ValidateHeartRate checks a single raw heart-rate value.
func ValidateHeartRate(raw string) (int, error) { return heartRateBound.check(raw) }

// ValidateTimestamp parses a raw timestamp, substituting d.Now() for an empty
// value when the policy allows it.
func ValidateTimestamp(raw string, d Defaults) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if d.Now == nil {
			return time.Time{}, missing([]string{"dateTime"})
		}
		return d.Now().UTC().Truncate(time.Second), nil
	}
	ts, err := ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, &ValidationError{
			Field:   "dateTime",
			Message: "Date/time must be in YYYY-MM-DD HH:MM:SS format",
			Err:     ErrInvalidTimestamp,
		}
	}
	return ts, nil
}

// Validate checks a candidate reading and returns it normalized. Checks run in
// a fixed order (presence, timestamp format, systolic, diastolic, heart rate)
// and the first failure is returned.
func Validate(in Input, d Defaults) (Reading, error) {
	var absent []string
	if d.Now == nil && isBlank(in.Timestamp) {
		absent = append(absent, "dateTime")
	}
	for _, f := range []struct{ name, value string }{
		{"systolic", in.Systolic},
		{"diastolic", in.Diastolic},
		{"heartRate", in.HeartRate},
	} {
		if isBlank(f.value) {
			absent = append(absent, f.name)
		}
	}
	if len(absent) > 0 {
		return Reading{}, missing(absent)
	}

	ts, err := ValidateTimestamp(in.Timestamp, d)
	if err != nil {
		return Reading{}, err
	}
	sys, err := ValidateSystolic(in.Systolic)
	if err != nil {
		return Reading{}, err
	}
	dia, err := ValidateDiastolic(in.Diastolic)
	if err != nil {
		return Reading{}, err
	}
	hr, err := ValidateHeartRate(in.HeartRate)
	if err != nil {
		return Reading{}, err
	}

	return Reading{
		Timestamp: ts,
		Systolic:  sys,
		Diastolic: dia,
		HeartRate: hr,
		Location:  orDefault(in.Location, d.Location),
		Notes:     orDefault(in.Notes, d.Notes),
	}, nil
}

func isBlank(s string) bool {
	return validation.Validate(strings.TrimSpace(s), validation.Required) != nil
}

func missing(fields []string) error {
	noun := "field"
	if len(fields) > 1 {
		noun = "fields"
	}
	return &ValidationError{
		Field:   strings.Join(fields, ","),
		Message: fmt.Sprintf("Missing required %s: %s", noun, strings.Join(fields, ", ")),
		Err:     ErrMissingField,
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
