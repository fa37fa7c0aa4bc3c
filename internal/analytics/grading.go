package analytics

import "github.com/racane123/schoolboard/internal/domain/models"

type gradeBand struct {
	min   float64
	grade models.Grade
}

// gradeScale is checked from the highest band down; each band includes its
// lower bound.
var gradeScale = []gradeBand{
	{90, models.GradeA},
	{80, models.GradeB},
	{70, models.GradeC},
	{60, models.GradeD},
	{0, models.GradeF},
}

// Percentage returns marksObtained as a percentage of totalMarks, clamped
// to [0, 100]. ok is false when totalMarks is not positive or either input
// is not a finite number, or when marksObtained is negative.
func Percentage(marksObtained, totalMarks float64) (pct float64, ok bool) {
	if !finite(marksObtained) || !finite(totalMarks) || marksObtained < 0 || totalMarks <= 0 {
		return 0, false
	}
	// multiply first so whole-number marks land exactly on band boundaries
	pct = marksObtained * 100 / totalMarks
	if pct > 100 {
		pct = 100
	}
	return pct, true
}

// LetterGrade maps a percentage onto the A–F scale.
func LetterGrade(pct float64) models.Grade {
	if !finite(pct) {
		return models.GradeUnknown
	}
	for _, band := range gradeScale {
		if pct >= band.min {
			return band.grade
		}
	}
	return models.GradeF
}

// PassStatus compares raw marks against the passing mark.
func PassStatus(marksObtained float64, passingMarks *float64) models.ResultStatus {
	if passingMarks == nil || !finite(*passingMarks) || !finite(marksObtained) {
		return models.ResultUnknown
	}
	if marksObtained >= *passingMarks {
		return models.ResultPassed
	}
	return models.ResultFailed
}

// CalculateGrade derives percentage, letter grade and pass status from a
// mark. Invalid input yields a nil percentage and placeholder grade and
// status rather than an error.
func CalculateGrade(marksObtained, totalMarks float64, passingMarks *float64) models.GradeResult {
	pct, ok := Percentage(marksObtained, totalMarks)
	if !ok {
		return models.GradeResult{Grade: models.GradeUnknown, Status: models.ResultUnknown}
	}
	return models.GradeResult{
		Percentage: &pct,
		Grade:      LetterGrade(pct),
		Status:     PassStatus(marksObtained, passingMarks),
	}
}

// GradeRecord derives the GradeResult of a single MarkRecord.
func GradeRecord(rec models.MarkRecord) models.GradeResult {
	return CalculateGrade(rec.MarksObtained, rec.TotalMarks, rec.PassingMarks)
}

// ResultRows augments every record with its derived grade fields, keeping
// the input order.
func ResultRows(records []models.MarkRecord) []models.ResultRow {
	rows := make([]models.ResultRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, models.ResultRow{MarkRecord: rec, GradeResult: GradeRecord(rec)})
	}
	return rows
}
