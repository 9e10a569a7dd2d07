package reading

// Category is a clinical blood-pressure band. It is display-only and never
// persisted.
type Category string

// Categories in order of increasing severity.
const (
	CategoryNormal   Category = "Normal"
	CategoryElevated Category = "Elevated"
	CategoryStage1   Category = "High BP Stage 1"
	CategoryStage2   Category = "High BP Stage 2"
)

// Severity groups categories for rendering.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityAlert
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityAlert:
		return "alert"
	default:
		return "warning"
	}
}

// Severity returns how a category should be highlighted.
func (c Category) Severity() Severity {
	switch c {
	case CategoryNormal:
		return SeverityOK
	case CategoryStage2:
		return SeverityAlert
	default:
		return SeverityWarning
	}
}

// Band describes one classification rule.
type Band struct {
	Category  Category `json:"category"`
	Condition string   `json:"condition"`
}

type rule struct {
	band    Band
	matches func(sys, dia int) bool
}

// classification is evaluated top to bottom; the first matching rule wins.
var classification = []rule{
	{
		band:    Band{CategoryNormal, "systolic < 120 and diastolic < 80"},
		matches: func(sys, dia int) bool { return sys < 120 && dia < 80 },
	},
	{
		band:    Band{CategoryElevated, "systolic < 130 and diastolic < 80"},
		matches: func(sys, dia int) bool { return sys < 130 && dia < 80 },
	},
	{
		band:    Band{CategoryStage1, "systolic < 140 or diastolic < 90"},
		matches: func(sys, dia int) bool { return sys < 140 || dia < 90 },
	},
	{
		band:    Band{CategoryStage2, "otherwise"},
		matches: func(int, int) bool { return true },
	},
}

// Classify maps a systolic/diastolic pair to its category. It accepts any
// integers, including values outside the accepted measurement ranges.
func Classify(systolic, diastolic int) Category {
	for _, r := range classification {
		if r.matches(systolic, diastolic) {
			return r.band.Category
		}
	}
	return CategoryStage2
}

// Bands lists the classification rules in evaluation order.
func Bands() []Band {
	out := make([]Band, len(classification))
	for i, r := range classification {
		out[i] = r.band
	}
	return out
}
