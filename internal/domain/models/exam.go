package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateExam indicates another exam already uses the same class, subject and name.
var ErrDuplicateExam = errors.New("exam already exists")

// ExamStatus is the lifecycle stage of an exam.
type ExamStatus string

const (
	ExamScheduled ExamStatus = "Scheduled"
	ExamOngoing   ExamStatus = "Ongoing"
	ExamCompleted ExamStatus = "Completed"
)

// ExamRecord describes a scheduled exam for a class and subject.
type ExamRecord struct {
	ID           string     `json:"id,omitempty"`
	ClassID      string     `json:"classId" binding:"required"`
	SubjectID    string     `json:"subjectId" binding:"required"`
	Name         string     `json:"name" binding:"required"`
	ExamDate     *Date      `json:"examDate,omitempty"`
	StartTime    string     `json:"startTime,omitempty"`
	EndTime      string     `json:"endTime,omitempty"`
	TotalMarks   float64    `json:"totalMarks"`
	PassingMarks *float64   `json:"passingMarks,omitempty"`
	Status       ExamStatus `json:"status,omitempty"`
}

// SameExam reports whether two exams share class, subject and name. Names
// are compared case-insensitively, ignoring surrounding spaces.
func (e ExamRecord) SameExam(other ExamRecord) bool {
	return e.ClassID == other.ClassID &&
		e.SubjectID == other.SubjectID &&
		strings.EqualFold(strings.TrimSpace(e.Name), strings.TrimSpace(other.Name))
}

// ExamExists reports whether exams already holds one matching candidate.
// An exam never conflicts with itself, so records sharing the candidate's
// non-empty ID are skipped.
func ExamExists(exams []ExamRecord, candidate ExamRecord) bool {
	for _, e := range exams {
		if candidate.ID != "" && e.ID == candidate.ID {
			continue
		}
		if e.SameExam(candidate) {
			return true
		}
	}
	return false
}

// ValidateExamUnique returns ErrDuplicateExam when candidate collides with
// an existing exam.
func ValidateExamUnique(exams []ExamRecord, candidate ExamRecord) error {
	if ExamExists(exams, candidate) {
		return fmt.Errorf("%q for class %s, subject %s: %w", candidate.Name, candidate.ClassID, candidate.SubjectID, ErrDuplicateExam)
	}
	return nil
}

// ExamRow is an ExamRecord with the status suggested for today.
type ExamRow struct {
	ExamRecord
	SuggestedStatus ExamStatus `json:"suggestedStatus"`
}
