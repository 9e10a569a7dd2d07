package reading

import (
	"encoding/json"
	"strings"
	"testing"
)

func sample() []Reading {
	return []Reading{
		{Systolic: 120, Diastolic: 80, HeartRate: 70},
		{Systolic: 130, Diastolic: 85, HeartRate: 75},
		{Systolic: 110, Diastolic: 70, HeartRate: 65},
	}
}

func TestSummarize_Empty(t *testing.T) {
	if _, ok := Summarize(nil); ok {
		t.Error("nil input should report no data")
	}
	if _, ok := Summarize([]Reading{}); ok {
		t.Error("empty input should report no data")
	}
}

func TestSummarize_Sample(t *testing.T) {
	s, ok := Summarize(sample())
	if !ok {
		t.Fatal("expected data")
	}
	if s.Count != 3 {
		t.Errorf("count = %d", s.Count)
	}
	check := func(name string, m MetricStats, avg, lo, hi int) {
		t.Helper()
		if m.Rounded() != avg || m.Min != lo || m.Max != hi {
			t.Errorf("%s = avg %d min %d max %d, want %d/%d/%d", name, m.Rounded(), m.Min, m.Max, avg, lo, hi)
		}
	}
	check("systolic", s.Systolic, 120, 110, 130)
	check("diastolic", s.Diastolic, 78, 70, 85)
	check("heartRate", s.HeartRate, 70, 65, 75)

	if s.Diastolic.Average < 78.33 || s.Diastolic.Average > 78.34 {
		t.Errorf("diastolic average = %v, want 78.33...", s.Diastolic.Average)
	}
}

func TestSummarize_SingleReading(t *testing.T) {
	s, ok := Summarize([]Reading{{Systolic: 200, Diastolic: 100, HeartRate: 40}})
	if !ok || s.Count != 1 {
		t.Fatalf("ok = %v count = %d", ok, s.Count)
	}
	if s.Systolic.Min != 200 || s.Systolic.Max != 200 || s.Systolic.Rounded() != 200 {
		t.Errorf("systolic = %+v", s.Systolic)
	}
}

func TestSummarize_OrderIndependentAndIdempotent(t *testing.T) {
	in := sample()
	first, _ := Summarize(in)
	again, _ := Summarize(in)
	if first != again {
		t.Errorf("repeated call differs: %+v vs %+v", first, again)
	}
	permuted := []Reading{in[2], in[0], in[1]}
	p, _ := Summarize(permuted)
	if p != first {
		t.Errorf("permuted = %+v, want %+v", p, first)
	}
}

func TestMetricStats_RoundHalfUp(t *testing.T) {
	cases := []struct {
		avg  float64
		want int
	}{
		{120.5, 121},
		{120.49, 120},
		{77.5, 78},
		{78.333, 78},
	}
	for _, tc := range cases {
		if got := (MetricStats{Average: tc.avg}).Rounded(); got != tc.want {
			t.Errorf("Rounded(%v) = %d, want %d", tc.avg, got, tc.want)
		}
	}
}

func TestSummary_JSON(t *testing.T) {
	s, _ := Summarize(sample())
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"diastolic":{"average":78.33333333333333,"rounded":78,"min":70,"max":85}`) {
		t.Errorf("json = %s", data)
	}
}
