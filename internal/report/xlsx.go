package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/starford/bptracker/internal/reading"
)

// Sheet names of the exported workbook.
const (
	ReadingsSheet   = "Readings"
	StatisticsSheet = "Statistics"
)

// ReadingsHeader is the header row of the Readings sheet.
var ReadingsHeader = []string{
	"ID", "Date/Time", "Systolic", "Diastolic", "Heart Rate", "Category", "Location", "Notes",
}

var readingsColumnWidths = []float64{8, 20, 10, 10, 12, 18, 18, 30}

// WriteXLSX writes a workbook with one row per reading and a statistics sheet.
func WriteXLSX(w io.Writer, readings []reading.Reading) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ReadingsSheet)
	if err != nil {
		return fmt.Errorf("report: create sheet: %w", err)
	}
	if _, err := f.NewSheet(StatisticsSheet); err != nil {
		return fmt.Errorf("report: create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("report: delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("report: header style: %w", err)
	}

	if err := writeRow(f, ReadingsSheet, 1, toCells(ReadingsHeader)); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(ReadingsHeader))
	if err := f.SetCellStyle(ReadingsSheet, "A1", last+"1", headerStyle); err != nil {
		return fmt.Errorf("report: set header style: %w", err)
	}
	for i, width := range readingsColumnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(ReadingsSheet, col, col, width); err != nil {
			return fmt.Errorf("report: set column width: %w", err)
		}
	}

	for i, r := range readings {
		row := []any{r.ID, r.DateTime(), r.Systolic, r.Diastolic, r.HeartRate, string(r.Category()), r.Location, r.Notes}
		if err := writeRow(f, ReadingsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := writeStatistics(f, readings, headerStyle); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("report: write workbook: %w", err)
	}
	return nil
}

func writeStatistics(f *excelize.File, readings []reading.Reading, headerStyle int) error {
	s, ok := reading.Summarize(readings)
	if !ok {
		return writeRow(f, StatisticsSheet, 1, []any{NoDataMessage})
	}
	rows := [][]any{
		{"Metric", "Average", "Min", "Max"},
		{"Systolic", s.Systolic.Average, s.Systolic.Min, s.Systolic.Max},
		{"Diastolic", s.Diastolic.Average, s.Diastolic.Min, s.Diastolic.Max},
		{"Heart Rate", s.HeartRate.Average, s.HeartRate.Min, s.HeartRate.Max},
		{},
		{"Total Readings", s.Count},
	}
	for i, row := range rows {
		if err := writeRow(f, StatisticsSheet, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(StatisticsSheet, "A1", "D1", headerStyle); err != nil {
		return fmt.Errorf("report: set header style: %w", err)
	}
	return f.SetColWidth(StatisticsSheet, "A", "A", 16)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("report: row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("report: row %d: %w", row, err)
	}
	return nil
}

func toCells(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
