package analytics

import (
	"time"

	"github.com/racane123/schoolboard/internal/domain/models"
)

// FeeStatus classifies a fee from its balance and due date as of today.
// A settled balance is Paid whatever the due date. An open balance is
// Overdue only once today is strictly past the due day.
func FeeStatus(balance float64, dueDate *models.Date, today time.Time) models.FeeStatus {
	if balance <= 0 {
		return models.FeePaid
	}
	if !dueDate.IsSet() {
		return models.FeePending
	}
	if models.Day(today).Compare(*dueDate) > 0 {
		return models.FeeOverdue
	}
	return models.FeePending
}

// FeeRows augments every fee with its balance and status.
func FeeRows(fees []models.FeeRecord, today time.Time) []models.FeeRow {
	rows := make([]models.FeeRow, 0, len(fees))
	for _, f := range fees {
		balance := f.Balance()
		rows = append(rows, models.FeeRow{
			FeeRecord: f,
			Balance:   balance,
			Status:    FeeStatus(balance, f.DueDate, today),
		})
	}
	return rows
}

// OverdueFees returns the rows whose status is Overdue.
func OverdueFees(rows []models.FeeRow) []models.FeeRow {
	var overdue []models.FeeRow
	for _, r := range rows {
		if r.Status == models.FeeOverdue {
			overdue = append(overdue, r)
		}
	}
	return overdue
}
