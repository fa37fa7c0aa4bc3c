package analytics

import (
	"time"

	"github.com/racane123/schoolboard/internal/domain/models"
)

// AcademicSummary aggregates the marks of one exam. The first record's
// passing mark is used as the threshold for every row, so the input should
// hold a single exam's results. Records without a passing mark count as
// failed when no threshold is known.
func AcademicSummary(records []models.MarkRecord) models.AcademicSummary {
	summary := models.AcademicSummary{Count: len(records)}
	if len(records) == 0 {
		return summary
	}

	// callers pass one exam's marks, so one threshold serves every row
	threshold := records[0].PassingMarks

	var sum float64
	summary.Highest = records[0].MarksObtained
	summary.Lowest = records[0].MarksObtained
	for _, r := range records {
		sum += r.MarksObtained
		if r.MarksObtained > summary.Highest {
			summary.Highest = r.MarksObtained
		}
		if r.MarksObtained < summary.Lowest {
			summary.Lowest = r.MarksObtained
		}
		if threshold != nil && r.MarksObtained >= *threshold {
			summary.PassCount++
		}
	}
	summary.Average = sum / float64(len(records))
	summary.FailCount = summary.Count - summary.PassCount
	summary.PassRate = percentOf(summary.PassCount, summary.Count)
	return summary
}

// BuildAcademicReport derives result rows and their summary.
func BuildAcademicReport(records []models.MarkRecord) models.AcademicReport {
	return models.AcademicReport{
		Results: ResultRows(records),
		Summary: AcademicSummary(records),
	}
}

// FinancialSummary totals what has been collected and buckets every open
// balance as pending or overdue using that fee's own due date.
func FinancialSummary(fees []models.FeeRecord, today time.Time) models.FinancialSummary {
	return summarizeFeeRows(FeeRows(fees, today))
}

// BuildFinancialReport derives fee rows and their summary.
func BuildFinancialReport(fees []models.FeeRecord, today time.Time) models.FinancialReport {
	rows := FeeRows(fees, today)
	return models.FinancialReport{
		AsOf:    models.Day(today),
		Fees:    rows,
		Summary: summarizeFeeRows(rows),
	}
}

func summarizeFeeRows(rows []models.FeeRow) models.FinancialSummary {
	var s models.FinancialSummary
	for _, r := range rows {
		s.TotalBilled += r.TotalAmount
		s.TotalCollected += r.PaidAmount
		switch r.Status {
		case models.FeePaid:
			s.PaidCount++
		case models.FeePending:
			s.Pending += r.Balance
			s.PendingCount++
		case models.FeeOverdue:
			s.Overdue += r.Balance
			s.OverdueCount++
		}
	}
	s.Outstanding = s.Pending + s.Overdue
	return s
}
