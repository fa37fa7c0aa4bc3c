package models

import (
	"errors"
	"time"
)

// ErrSnapshotNotFound indicates no snapshot has been stored for a class.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// AcademicSummary aggregates the marks of one exam for one class.
type AcademicSummary struct {
	Count     int     `bson:"count" json:"count"`
	Average   float64 `bson:"average" json:"average"`
	Highest   float64 `bson:"highest" json:"highest"`
	Lowest    float64 `bson:"lowest" json:"lowest"`
	PassCount int     `bson:"pass_count" json:"passCount"`
	FailCount int     `bson:"fail_count" json:"failCount"`
	PassRate  float64 `bson:"pass_rate" json:"passRate"`
}

// FinancialSummary aggregates collected and outstanding fee amounts.
type FinancialSummary struct {
	TotalBilled    float64 `bson:"total_billed" json:"totalBilled"`
	TotalCollected float64 `bson:"total_collected" json:"totalCollected"`
	Pending        float64 `bson:"pending" json:"pending"`
	Overdue        float64 `bson:"overdue" json:"overdue"`
	Outstanding    float64 `bson:"outstanding" json:"outstanding"`
	PaidCount      int     `bson:"paid_count" json:"paidCount"`
	PendingCount   int     `bson:"pending_count" json:"pendingCount"`
	OverdueCount   int     `bson:"overdue_count" json:"overdueCount"`
}

// AttendanceRow is one student's line in the attendance report.
type AttendanceRow struct {
	StudentID      string  `bson:"student_id" json:"studentId"`
	TotalDays      int     `bson:"total_days" json:"totalDays"`
	PresentDays    int     `bson:"present_days" json:"presentDays"`
	AbsentDays     int     `bson:"absent_days" json:"absentDays"`
	LateDays       int     `bson:"late_days" json:"lateDays"`
	PresentPercent float64 `bson:"present_percent" json:"presentPercent"`
	AbsentPercent  float64 `bson:"absent_percent" json:"absentPercent"`
	LatePercent    float64 `bson:"late_percent" json:"latePercent"`
	AttendanceRate float64 `bson:"attendance_rate" json:"attendanceRate"`
}

// AttendanceReport holds per-student rows and the mean of their rates.
type AttendanceReport struct {
	Rows         []AttendanceRow `bson:"rows" json:"rows"`
	ClassAverage float64         `bson:"class_average" json:"classAverage"`
}

// AcademicReport pairs the per-student results with their summary.
type AcademicReport struct {
	ClassID string          `json:"classId,omitempty"`
	ExamID  string          `json:"examId,omitempty"`
	Results []ResultRow     `json:"results"`
	Summary AcademicSummary `json:"summary"`
}

// FinancialReport pairs the per-fee rows with their summary.
type FinancialReport struct {
	ClassID string           `json:"classId,omitempty"`
	AsOf    Date             `json:"asOf"`
	Fees    []FeeRow         `json:"fees"`
	Summary FinancialSummary `json:"summary"`
}

// ReportSnapshot is the stored record of a class's figures on one day.
type ReportSnapshot struct {
	ID         string           `bson:"_id" json:"id"`
	ClassID    string           `bson:"class_id" json:"classId"`
	Day        time.Time        `bson:"day" json:"day"`
	Academic   AcademicSummary  `bson:"academic" json:"academic"`
	Financial  FinancialSummary `bson:"financial" json:"financial"`
	Attendance AttendanceReport `bson:"attendance" json:"attendance"`
	CreatedAt  time.Time        `bson:"created_at" json:"createdAt"`
}
