package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/racane123/schoolboard/internal/analytics"
	"github.com/racane123/schoolboard/internal/domain/models"
)

type gradeRequest struct {
	MarksObtained *float64 `json:"marksObtained" binding:"required"`
	TotalMarks    *float64 `json:"totalMarks" binding:"required"`
	PassingMarks  *float64 `json:"passingMarks"`
}

type marksRequest struct {
	Records []models.MarkRecord `json:"records" binding:"dive"`
}

type attendanceRequest struct {
	Records []models.AttendanceDayRecord `json:"records" binding:"dive"`
}

type feesRequest struct {
	Fees []models.FeeRecord `json:"fees" binding:"dive"`
}

type examsRequest struct {
	Exams []models.ExamRecord `json:"exams" binding:"dive"`
}

type sessionValidationRequest struct {
	Candidate models.Session   `json:"candidate"`
	Sessions  []models.Session `json:"sessions"`
}

type examValidationRequest struct {
	Candidate models.ExamRecord   `json:"candidate"`
	Exams     []models.ExamRecord `json:"exams"`
}

// CalculateGrade derives percentage, grade and status for one mark.
func (h *Handler) CalculateGrade(c *gin.Context) {
	var req gradeRequest
	if !h.bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, analytics.CalculateGrade(*req.MarksObtained, *req.TotalMarks, req.PassingMarks))
}

// ResultRows augments posted marks with their grades.
func (h *Handler) ResultRows(c *gin.Context) {
	var req marksRequest
	if !h.bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": analytics.ResultRows(req.Records)})
}

// AttendanceRate computes one student's rate from posted day records.
func (h *Handler) AttendanceRate(c *gin.Context) {
	var req attendanceRequest
	if !h.bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"totalDays":      len(req.Records),
		"attendanceRate": analytics.AttendanceRate(req.Records),
	})
}

// AttendanceReport builds per-student rows from posted day records.
func (h *Handler) AttendanceReport(c *gin.Context) {
	var req attendanceRequest
	if !h.bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, analytics.BuildAttendanceReport(req.Records))
}

// AttendanceSessions groups posted day records by class and day.
func (h *Handler) AttendanceSessions(c *gin.Context) {
	var req attendanceRequest
	if !h.bind(c, &req) {
		return
	}
	sessions := analytics.GroupSessions(req.Records)
	if sessions == nil {
		sessions = []models.Session{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// ValidateSession checks that no posted session already covers the
// candidate's class and day.
func (h *Handler) ValidateSession(c *gin.Context) {
	var req sessionValidationRequest
	if !h.bind(c, &req) {
		return
	}
	if !req.Candidate.Date.IsSet() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "candidate date is required"})
		return
	}
	if err := models.ValidateSessionUnique(req.Sessions, req.Candidate); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// FeeStatus classifies posted fees as of today or ?asOf.
func (h *Handler) FeeStatus(c *gin.Context) {
	asOf, ok := h.queryDate(c, "asOf")
	if !ok {
		return
	}
	var req feesRequest
	if !h.bind(c, &req) {
		return
	}
	today := h.svc.Today(asOf)
	c.JSON(http.StatusOK, gin.H{
		"asOf": models.Day(today),
		"fees": analytics.FeeRows(req.Fees, today),
	})
}

// ApplyPayment records a payment against a posted fee and returns the
// updated fee with its new status.
func (h *Handler) ApplyPayment(c *gin.Context) {
	asOf, ok := h.queryDate(c, "asOf")
	if !ok {
		return
	}
	var req models.PaymentRequest
	if !h.bind(c, &req) {
		return
	}
	updated, err := req.Fee.ApplyPayment(*req.Amount)
	if err != nil {
		h.fail(c, err)
		return
	}
	rows := analytics.FeeRows([]models.FeeRecord{updated}, h.svc.Today(asOf))
	c.JSON(http.StatusOK, rows[0])
}

// ExamStatus suggests a status for each posted exam.
func (h *Handler) ExamStatus(c *gin.Context) {
	asOf, ok := h.queryDate(c, "asOf")
	if !ok {
		return
	}
	var req examsRequest
	if !h.bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"exams": analytics.ExamRows(req.Exams, h.svc.Today(asOf))})
}

// ValidateExam checks a candidate against the posted exams.
func (h *Handler) ValidateExam(c *gin.Context) {
	var req examValidationRequest
	if !h.bind(c, &req) {
		return
	}
	if err := models.ValidateExamUnique(req.Exams, req.Candidate); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// AcademicSummary builds the academic report of posted marks.
func (h *Handler) AcademicSummary(c *gin.Context) {
	var req marksRequest
	if !h.bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, analytics.BuildAcademicReport(req.Records))
}

// FinancialSummary builds the financial report of posted fees.
func (h *Handler) FinancialSummary(c *gin.Context) {
	asOf, ok := h.queryDate(c, "asOf")
	if !ok {
		return
	}
	var req feesRequest
	if !h.bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, analytics.BuildFinancialReport(req.Fees, h.svc.Today(asOf)))
}
