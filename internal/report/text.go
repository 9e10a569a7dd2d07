// Package report renders readings and their summary as console text and as
// an Excel workbook.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/starford/bptracker/internal/reading"
)

// NoDataMessage is printed when there is nothing to summarize.
const NoDataMessage = "No data available yet."

// Marker returns the console symbol of a category's severity.
func Marker(c reading.Category) string {
	switch c.Severity() {
	case reading.SeverityOK:
		return "✅"
	case reading.SeverityAlert:
		return "🚨"
	default:
		return "⚠"
	}
}

// WriteSummary prints the statistics block. ok=false prints NoDataMessage.
func WriteSummary(w io.Writer, s reading.Summary, ok bool) error {
	if !ok {
		_, err := fmt.Fprintf(w, "\n%s\n\n", NoDataMessage)
		return err
	}
	_, err := fmt.Fprintf(w,
		"\n=== Statistics ===\n\n"+
			"Total Readings: %d\n\n"+
			"Blood Pressure (mmHg):\n"+
			"  Average: %d/%d\n"+
			"  Highest: %d/%d\n"+
			"  Lowest:  %d/%d\n\n"+
			"Heart Rate (bpm):\n"+
			"  Average: %d\n"+
			"  Highest: %d\n"+
			"  Lowest:  %d\n\n",
		s.Count,
		s.Systolic.Rounded(), s.Diastolic.Rounded(),
		s.Systolic.Max, s.Diastolic.Max,
		s.Systolic.Min, s.Diastolic.Min,
		s.HeartRate.Rounded(), s.HeartRate.Max, s.HeartRate.Min,
	)
	return err
}

// WriteHistory prints every reading as an aligned table followed by the total.
func WriteHistory(w io.Writer, readings []reading.Reading) error {
	if len(readings) == 0 {
		_, err := fmt.Fprint(w, "\nNo entries found. Add your first entry!\n\n")
		return err
	}
	if _, err := fmt.Fprint(w, "\n=== Blood Pressure History ===\n\n"); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, " \tID\tDate/Time\tBP (mmHg)\tHR (bpm)\tCategory\tLocation\tNotes")
	for _, r := range readings {
		cat := r.Category()
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d/%d\t%d\t%s\t%s\t%s\n",
			Marker(cat), r.ID, r.DateTime(), r.Systolic, r.Diastolic, r.HeartRate, cat, r.Location, r.Notes)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nTotal entries: %d\n\n", len(readings))
	return err
}
