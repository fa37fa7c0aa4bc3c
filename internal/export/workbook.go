// Package export renders reports as Excel workbooks.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/racane123/schoolboard/internal/domain/models"
)

const (
	attendanceSheet = "Attendance"
	resultsSheet    = "Results"
	defaultSheet    = "Sheet1"
)

var (
	attendanceHeader = []interface{}{"Student", "Days", "Present", "Absent", "Late", "Present %", "Absent %", "Late %", "Attendance %"}
	resultsHeader    = []interface{}{"Student", "Exam", "Marks", "Total", "Percentage", "Grade", "Status"}
)

// AttendanceWorkbook lays out one row per student followed by the class average.
func AttendanceWorkbook(classID string, report models.AttendanceReport) (*excelize.File, error) {
	f, err := newWorkbook(attendanceSheet, fmt.Sprintf("Attendance report, class %s", classID), attendanceHeader)
	if err != nil {
		return nil, err
	}

	row := 3
	for _, r := range report.Rows {
		values := []interface{}{
			r.StudentID, r.TotalDays, r.PresentDays, r.AbsentDays, r.LateDays,
			r.PresentPercent, r.AbsentPercent, r.LatePercent, r.AttendanceRate,
		}
		if err := setRow(f, attendanceSheet, row, values); err != nil {
			return nil, err
		}
		row++
	}

	footer := []interface{}{"Class average", nil, nil, nil, nil, nil, nil, nil, report.ClassAverage}
	if err := setRow(f, attendanceSheet, row+1, footer); err != nil {
		return nil, err
	}
	return f, nil
}

// ResultsWorkbook lays out one row per result followed by the exam summary.
// Values that cannot be derived are written as the placeholder.
func ResultsWorkbook(classID string, report models.AcademicReport) (*excelize.File, error) {
	title := fmt.Sprintf("Results, class %s", classID)
	if report.ExamID != "" {
		title += fmt.Sprintf(", exam %s", report.ExamID)
	}
	f, err := newWorkbook(resultsSheet, title, resultsHeader)
	if err != nil {
		return nil, err
	}

	row := 3
	for _, r := range report.Results {
		var pct interface{} = models.Placeholder
		if r.Percentage != nil {
			pct = *r.Percentage
		}
		values := []interface{}{r.StudentID, r.ExamID, r.MarksObtained, r.TotalMarks, pct, string(r.Grade), string(r.Status)}
		if err := setRow(f, resultsSheet, row, values); err != nil {
			return nil, err
		}
		row++
	}

	s := report.Summary
	footer := [][]interface{}{
		{"Average", s.Average},
		{"Highest", s.Highest},
		{"Lowest", s.Lowest},
		{"Passed", s.PassCount},
		{"Failed", s.FailCount},
		{"Pass rate %", s.PassRate},
	}
	row++
	for _, values := range footer {
		if err := setRow(f, resultsSheet, row, values); err != nil {
			return nil, err
		}
		row++
	}
	return f, nil
}

func newWorkbook(sheet, title string, header []interface{}) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRow(f, sheet, 1, []interface{}{title}); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := setRow(f, sheet, 2, header); err != nil {
		_ = f.Close()
		return nil, err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 2)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("apply header style: %w", err)
	}
	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
