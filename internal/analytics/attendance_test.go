package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racane123/schoolboard/internal/domain/models"
)

func days(studentID string, attended, total int) []models.AttendanceDayRecord {
	records := make([]models.AttendanceDayRecord, 0, total)
	for i := 0; i < total; i++ {
		status := models.AttendanceAbsent
		if i < attended {
			status = models.AttendancePresent
		}
		records = append(records, models.AttendanceDayRecord{
			StudentID: studentID,
			ClassID:   "c1",
			Date:      models.NewDate(2024, time.March, 1+i),
			Status:    status,
		})
	}
	return records
}

func TestAttendanceRate(t *testing.T) {
	tests := []struct {
		name    string
		records []models.AttendanceDayRecord
		want    float64
	}{
		{name: "no days", want: 0},
		{name: "late counts as attended", records: []models.AttendanceDayRecord{
			{Status: models.AttendanceLate},
			{Status: models.AttendanceAbsent},
		}, want: 50},
		{name: "rounded to one decimal", records: []models.AttendanceDayRecord{
			{Status: models.AttendancePresent},
			{Status: models.AttendanceAbsent},
			{Status: models.AttendanceAbsent},
		}, want: 33.3},
		{name: "two of three", records: []models.AttendanceDayRecord{
			{Status: models.AttendancePresent},
			{Status: models.AttendanceLate},
			{Status: models.AttendanceAbsent},
		}, want: 66.7},
		{name: "all present", records: days("s1", 4, 4), want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AttendanceRate(tt.records))
		})
	}
}

func TestClassAttendanceRateIsRateOfRates(t *testing.T) {
	t.Run("equal day counts", func(t *testing.T) {
		records := append(days("s1", 9, 10), days("s2", 5, 10)...)
		assert.InDelta(t, 70.0, ClassAttendanceRate(records), 1e-9)
	})

	t.Run("uneven day counts", func(t *testing.T) {
		records := append(days("s1", 9, 10), days("s2", 5, 8)...)
		got := ClassAttendanceRate(records)
		assert.InDelta(t, 76.25, got, 1e-9)
		assert.NotEqual(t, float64(14)/18*100, got)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, 0.0, ClassAttendanceRate(nil))
	})
}

func TestClassAttendanceRateIsStable(t *testing.T) {
	var records []models.AttendanceDayRecord
	for s := 0; s < 12; s++ {
		records = append(records, days(fmt.Sprintf("s%d", s), s%7, 7+s%5)...)
	}

	want := ClassAttendanceRate(records)
	for i := 0; i < 500; i++ {
		require.Equal(t, want, ClassAttendanceRate(records), "call %d", i)
	}
	assert.Equal(t, want, BuildAttendanceReport(records).ClassAverage)
}

func TestBuildAttendanceReport(t *testing.T) {
	records := []models.AttendanceDayRecord{
		{StudentID: "s1", Status: models.AttendancePresent},
		{StudentID: "s2", Status: models.AttendanceAbsent},
		{StudentID: "s1", Status: models.AttendanceLate},
		{StudentID: "s1", Status: models.AttendanceAbsent},
		{StudentID: "s2", Status: models.AttendancePresent},
	}

	report := BuildAttendanceReport(records)

	require.Len(t, report.Rows, 2)
	s1 := report.Rows[0]
	assert.Equal(t, "s1", s1.StudentID)
	assert.Equal(t, 3, s1.TotalDays)
	assert.Equal(t, 33.3, s1.PresentPercent)
	assert.Equal(t, 33.3, s1.AbsentPercent)
	assert.Equal(t, 33.3, s1.LatePercent)
	assert.Equal(t, 66.7, s1.AttendanceRate)

	s2 := report.Rows[1]
	assert.Equal(t, "s2", s2.StudentID)
	assert.Equal(t, 50.0, s2.AttendanceRate)

	assert.InDelta(t, (66.7+50)/2, report.ClassAverage, 1e-9)
}

func TestBuildAttendanceReportEmpty(t *testing.T) {
	report := BuildAttendanceReport(nil)
	assert.Empty(t, report.Rows)
	assert.Equal(t, 0.0, report.ClassAverage)
}

func TestGroupSessions(t *testing.T) {
	mon := models.NewDate(2024, time.March, 4)
	tue := models.NewDate(2024, time.March, 5)
	records := []models.AttendanceDayRecord{
		{StudentID: "s1", ClassID: "c2", Date: tue, Status: models.AttendancePresent},
		{StudentID: "s1", ClassID: "c1", Date: tue, Status: models.AttendancePresent},
		{StudentID: "s2", ClassID: "c1", Date: mon, Status: models.AttendanceLate},
		{StudentID: "s3", ClassID: "c1", Date: mon, Status: models.AttendanceAbsent},
	}

	sessions := GroupSessions(records)

	require.Len(t, sessions, 3)
	assert.Equal(t, "c1", sessions[0].ClassID)
	assert.Equal(t, mon, sessions[0].Date)
	assert.Len(t, sessions[0].Records, 2)
	assert.Equal(t, "c1", sessions[1].ClassID)
	assert.Equal(t, tue, sessions[1].Date)
	assert.Equal(t, "c2", sessions[2].ClassID)

	assert.True(t, models.SessionExists(sessions, "c1", mon))
	assert.False(t, models.SessionExists(sessions, "c2", mon))
}
