package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/bptracker/internal/reading"
)

// CategoriesURI is the resource URI of the classification reference.
const CategoriesURI = "bptracker://categories"

// CategoriesDoc renders the classification bands and accepted input ranges
// as Markdown for LLM consumers.
func CategoriesDoc() string {
	var b strings.Builder
	b.WriteString("# Blood Pressure Categories\n\n")
	b.WriteString("Rules are evaluated top to bottom; the first match wins.\n\n")
	b.WriteString("| Category | Condition | Severity |\n|---|---|---|\n")
	for _, band := range reading.Bands() {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", band.Category, band.Condition, band.Category.Severity())
	}
	b.WriteString("\n## Accepted ranges\n\n")
	fmt.Fprintf(&b, "- systolic: %d-%d mmHg\n", reading.SystolicMin, reading.SystolicMax)
	fmt.Fprintf(&b, "- diastolic: %d-%d mmHg\n", reading.DiastolicMin, reading.DiastolicMax)
	fmt.Fprintf(&b, "- heart rate: %d-%d bpm\n", reading.HeartRateMin, reading.HeartRateMax)
	fmt.Fprintf(&b, "- dateTime: %s\n", "YYYY-MM-DD HH:MM:SS")
	return b.String()
}
