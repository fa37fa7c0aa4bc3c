package analytics

import (
	"time"

	"github.com/racane123/schoolboard/internal/domain/models"
)

// SuggestExamStatus proposes a status from the exam day: Completed once it
// has passed, Ongoing on the day, Scheduled before it or when no day is
// set. The caller is free to keep a different status.
func SuggestExamStatus(examDate *models.Date, today time.Time) models.ExamStatus {
	if !examDate.IsSet() {
		return models.ExamScheduled
	}
	switch c := examDate.Compare(models.Day(today)); {
	case c < 0:
		return models.ExamCompleted
	case c == 0:
		return models.ExamOngoing
	default:
		return models.ExamScheduled
	}
}

// ExamRows pairs each exam with its suggested status.
func ExamRows(exams []models.ExamRecord, today time.Time) []models.ExamRow {
	rows := make([]models.ExamRow, 0, len(exams))
	for _, e := range exams {
		rows = append(rows, models.ExamRow{ExamRecord: e, SuggestedStatus: SuggestExamStatus(e.ExamDate, today)})
	}
	return rows
}
