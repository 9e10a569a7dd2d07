package reading

import (
	"encoding/json"
	"math"
)

// MetricStats is the average, minimum and maximum of one metric.
type MetricStats struct {
	Average float64
	Min     int
	Max     int
}

// Rounded returns the average rounded half-up to the nearest integer.
func (m MetricStats) Rounded() int {
	return int(math.Floor(m.Average + 0.5))
}

// MarshalJSON includes the rounded average next to the exact one.
func (m MetricStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Average float64 `json:"average"`
		Rounded int     `json:"rounded"`
		Min     int     `json:"min"`
		Max     int     `json:"max"`
	}{m.Average, m.Rounded(), m.Min, m.Max})
}

// Summary holds descriptive statistics over a set of readings. It is derived
// on demand and never stored.
type Summary struct {
	Count     int         `json:"count"`
	Systolic  MetricStats `json:"systolic"`
	Diastolic MetricStats `json:"diastolic"`
	HeartRate MetricStats `json:"heartRate"`
}

type accumulator struct {
	sum      int64
	min, max int
}

func (a *accumulator) add(v int, first bool) {
	a.sum += int64(v)
	if first || v < a.min {
		a.min = v
	}
	if first || v > a.max {
		a.max = v
	}
}

func (a accumulator) stats(n int) MetricStats {
	return MetricStats{Average: float64(a.sum) / float64(n), Min: a.min, Max: a.max}
}

// Summarize computes count, average, min and max for systolic, diastolic and
// heart rate in a single pass. ok is false when readings is empty; the caller
// should report that no data is available rather than show zeros.
func Summarize(readings []Reading) (s Summary, ok bool) {
	if len(readings) == 0 {
		return Summary{}, false
	}
	var sys, dia, hr accumulator
	for i, r := range readings {
		first := i == 0
		sys.add(r.Systolic, first)
		dia.add(r.Diastolic, first)
		hr.add(r.HeartRate, first)
	}
	n := len(readings)
	return Summary{
		Count:     n,
		Systolic:  sys.stats(n),
		Diastolic: dia.stats(n),
		HeartRate: hr.stats(n),
	}, true
}
