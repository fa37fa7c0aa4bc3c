package models

import (
	"errors"
	"fmt"
)

// ErrDuplicateSession indicates a session already exists for the class and day.
var ErrDuplicateSession = errors.New("attendance session already exists")

// AttendanceStatus is the status recorded for a student on a school day.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	default:
		return false
	}
}

// Attended reports whether the status counts towards the attendance rate.
// Late arrivals count as attended.
func (s AttendanceStatus) Attended() bool {
	return s == AttendancePresent || s == AttendanceLate
}

// AttendanceDayRecord is one student's status on one day.
type AttendanceDayRecord struct {
	StudentID string           `json:"studentId" binding:"required"`
	ClassID   string           `json:"classId"`
	Date      Date             `json:"date"`
	Status    AttendanceStatus `json:"status" binding:"required,oneof=present absent late"`
}

// Session groups the day records of one class on one day.
type Session struct {
	ClassID string                `json:"classId" binding:"required"`
	Date    Date                  `json:"date"`
	Records []AttendanceDayRecord `json:"records"`
}

// SessionExists reports whether sessions already holds one for classID on day.
func SessionExists(sessions []Session, classID string, day Date) bool {
	for _, s := range sessions {
		if s.ClassID == classID && s.Date.Compare(day) == 0 {
			return true
		}
	}
	return false
}

// ValidateSessionUnique returns ErrDuplicateSession when a session for the
// candidate's class and day is already present.
func ValidateSessionUnique(sessions []Session, candidate Session) error {
	if SessionExists(sessions, candidate.ClassID, candidate.Date) {
		return fmt.Errorf("class %s on %s: %w", candidate.ClassID, candidate.Date, ErrDuplicateSession)
	}
	return nil
}
