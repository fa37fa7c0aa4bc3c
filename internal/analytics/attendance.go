package analytics

import (
	"sort"

	"github.com/racane123/schoolboard/internal/domain/models"
)

// AttendanceRate returns the share of days attended, as a percentage
// rounded to one decimal. Late days count as attended. No days gives 0.
func AttendanceRate(records []models.AttendanceDayRecord) float64 {
	attended := 0
	for _, r := range records {
		if r.Status.Attended() {
			attended++
		}
	}
	return percentOf(attended, len(records))
}

// ClassAttendanceRate is the unweighted mean of each student's rate, so a
// student with fewer recorded days weighs the same as any other. Rates are
// summed in first-appearance order.
func ClassAttendanceRate(records []models.AttendanceDayRecord) float64 {
	byStudent, order := groupByStudent(records)
	rates := make([]float64, 0, len(order))
	for _, id := range order {
		rates = append(rates, AttendanceRate(byStudent[id]))
	}
	return mean(rates)
}

// AttendanceRow summarises one student's day records.
func AttendanceRow(studentID string, records []models.AttendanceDayRecord) models.AttendanceRow {
	row := models.AttendanceRow{StudentID: studentID, TotalDays: len(records)}
	for _, r := range records {
		switch r.Status {
		case models.AttendancePresent:
			row.PresentDays++
		case models.AttendanceAbsent:
			row.AbsentDays++
		case models.AttendanceLate:
			row.LateDays++
		}
	}
	row.PresentPercent = percentOf(row.PresentDays, row.TotalDays)
	row.AbsentPercent = percentOf(row.AbsentDays, row.TotalDays)
	row.LatePercent = percentOf(row.LateDays, row.TotalDays)
	row.AttendanceRate = AttendanceRate(records)
	return row
}

// BuildAttendanceReport produces one row per student, in the order each
// student first appears, and the mean of the row rates.
func BuildAttendanceReport(records []models.AttendanceDayRecord) models.AttendanceReport {
	byStudent, order := groupByStudent(records)
	report := models.AttendanceReport{Rows: make([]models.AttendanceRow, 0, len(order))}
	rates := make([]float64, 0, len(order))
	for _, id := range order {
		row := AttendanceRow(id, byStudent[id])
		report.Rows = append(report.Rows, row)
		rates = append(rates, row.AttendanceRate)
	}
	report.ClassAverage = mean(rates)
	return report
}

// GroupSessions collects day records into one Session per class and day,
// ordered by day then class.
func GroupSessions(records []models.AttendanceDayRecord) []models.Session {
	type key struct {
		classID string
		day     models.Date
	}
	index := make(map[key]int)
	var sessions []models.Session
	for _, r := range records {
		k := key{r.ClassID, r.Date}
		i, ok := index[k]
		if !ok {
			i = len(sessions)
			index[k] = i
			sessions = append(sessions, models.Session{ClassID: r.ClassID, Date: r.Date})
		}
		sessions[i].Records = append(sessions[i].Records, r)
	}
	sort.SliceStable(sessions, func(a, b int) bool {
		if c := sessions[a].Date.Compare(sessions[b].Date); c != 0 {
			return c < 0
		}
		return sessions[a].ClassID < sessions[b].ClassID
	})
	return sessions
}

func groupByStudent(records []models.AttendanceDayRecord) (map[string][]models.AttendanceDayRecord, []string) {
	byStudent := make(map[string][]models.AttendanceDayRecord)
	var order []string
	for _, r := range records {
		if _, ok := byStudent[r.StudentID]; !ok {
			order = append(order, r.StudentID)
		}
		byStudent[r.StudentID] = append(byStudent[r.StudentID], r)
	}
	return byStudent, order
}
