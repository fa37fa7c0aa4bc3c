package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racane123/schoolboard/internal/domain/models"
)

func TestAcademicSummary(t *testing.T) {
	t.Run("exam pipeline", func(t *testing.T) {
		records := []models.MarkRecord{
			{StudentID: "s1", MarksObtained: 95, TotalMarks: 100, PassingMarks: ptr(40)},
			{StudentID: "s2", MarksObtained: 30, TotalMarks: 100, PassingMarks: ptr(40)},
		}

		got := AcademicSummary(records)

		assert.Equal(t, 62.5, got.Average)
		assert.Equal(t, 1, got.PassCount)
		assert.Equal(t, 1, got.FailCount)
		assert.Equal(t, 95.0, got.Highest)
		assert.Equal(t, 30.0, got.Lowest)
		assert.Equal(t, 50.0, got.PassRate)
	})

	t.Run("first record sets the threshold", func(t *testing.T) {
		records := []models.MarkRecord{
			{StudentID: "s1", MarksObtained: 50, TotalMarks: 100, PassingMarks: ptr(60)},
			{StudentID: "s2", MarksObtained: 55, TotalMarks: 100, PassingMarks: ptr(40)},
		}

		got := AcademicSummary(records)

		assert.Equal(t, 0, got.PassCount)
		assert.Equal(t, 2, got.FailCount)
	})

	t.Run("no threshold", func(t *testing.T) {
		got := AcademicSummary([]models.MarkRecord{{StudentID: "s1", MarksObtained: 80, TotalMarks: 100}})
		assert.Equal(t, 0, got.PassCount)
		assert.Equal(t, 1, got.FailCount)
	})

	t.Run("empty", func(t *testing.T) {
		got := AcademicSummary(nil)
		assert.Equal(t, models.AcademicSummary{}, got)
	})
}

func TestFinancialSummary(t *testing.T) {
	fees := []models.FeeRecord{
		{StudentID: "s1", TotalAmount: 500, PaidAmount: 500, DueDate: datePtr(2020, time.January, 1)},
		{StudentID: "s2", TotalAmount: 300, PaidAmount: 100, DueDate: datePtr(2024, time.June, 1)},
		{StudentID: "s3", TotalAmount: 200, PaidAmount: 50, DueDate: datePtr(2024, time.June, 15)},
		{StudentID: "s4", TotalAmount: 100, PaidAmount: 0},
	}

	got := FinancialSummary(fees, fixedNow)

	assert.Equal(t, 1100.0, got.TotalBilled)
	assert.Equal(t, 650.0, got.TotalCollected)
	assert.Equal(t, 250.0, got.Pending)
	assert.Equal(t, 200.0, got.Overdue)
	assert.Equal(t, 450.0, got.Outstanding)
	assert.Equal(t, 1, got.PaidCount)
	assert.Equal(t, 2, got.PendingCount)
	assert.Equal(t, 1, got.OverdueCount)
}

func TestFinancialSummaryEmpty(t *testing.T) {
	assert.Equal(t, models.FinancialSummary{}, FinancialSummary(nil, fixedNow))
}

func TestBuildFinancialReport(t *testing.T) {
	report := BuildFinancialReport([]models.FeeRecord{
		{StudentID: "s1", TotalAmount: 100, PaidAmount: 20, DueDate: datePtr(2024, time.May, 1)},
	}, fixedNow)

	require.Len(t, report.Fees, 1)
	assert.Equal(t, models.NewDate(2024, time.June, 15), report.AsOf)
	assert.Equal(t, 80.0, report.Summary.Overdue)
}

func TestBuildAcademicReport(t *testing.T) {
	report := BuildAcademicReport([]models.MarkRecord{
		{StudentID: "s1", MarksObtained: 72, TotalMarks: 80, PassingMarks: ptr(32)},
	})

	require.Len(t, report.Results, 1)
	require.NotNil(t, report.Results[0].Percentage)
	assert.Equal(t, 90.0, *report.Results[0].Percentage)
	assert.Equal(t, models.GradeA, report.Results[0].Grade)
	assert.Equal(t, 1, report.Summary.PassCount)
}
