package models

// Placeholder is rendered wherever a derived value cannot be computed.
const Placeholder = "—"

// Grade is a letter grade on the A–F scale.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"

	GradeUnknown Grade = Placeholder
)

// ResultStatus is the pass/fail outcome of a mark.
type ResultStatus string

const (
	ResultPassed  ResultStatus = "Passed"
	ResultFailed  ResultStatus = "Failed"
	ResultUnknown ResultStatus = Placeholder
)

// MarkRecord is one student's mark for one exam. Updates replace the whole
// record.
type MarkRecord struct {
	StudentID     string   `json:"studentId" binding:"required"`
	ExamID        string   `json:"examId"`
	MarksObtained float64  `json:"marksObtained"`
	TotalMarks    float64  `json:"totalMarks"`
	PassingMarks  *float64 `json:"passingMarks,omitempty"`
}

// GradeResult holds the figures derived from a single mark. Percentage is
// nil when the inputs cannot produce one.
type GradeResult struct {
	Percentage *float64     `json:"percentage"`
	Grade      Grade        `json:"grade"`
	Status     ResultStatus `json:"status"`
}

// ResultRow is a MarkRecord augmented with its GradeResult.
type ResultRow struct {
	MarkRecord
	GradeResult
}
