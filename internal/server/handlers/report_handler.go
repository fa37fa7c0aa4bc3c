package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/racane123/schoolboard/internal/domain/models"
	"github.com/racane123/schoolboard/internal/export"
	"github.com/racane123/schoolboard/pkg/clients/backend"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ClassAcademic serves the academic report of one exam (?examId, required).
func (h *Handler) ClassAcademic(c *gin.Context) {
	examID, ok := requireExamID(c)
	if !ok {
		return
	}
	report, err := h.svc.AcademicReport(c.Request.Context(), c.Param("classId"), examID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ClassFinancial serves the fee report of a class.
func (h *Handler) ClassFinancial(c *gin.Context) {
	asOf, ok := h.queryDate(c, "asOf")
	if !ok {
		return
	}
	report, err := h.svc.FinancialReport(c.Request.Context(), c.Param("classId"), asOf)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ClassAttendance serves the attendance report of a class, optionally
// narrowed with ?studentId, ?from and ?to.
func (h *Handler) ClassAttendance(c *gin.Context) {
	q, ok := h.attendanceQuery(c)
	if !ok {
		return
	}
	report, err := h.svc.AttendanceReport(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ClassExams serves the exam schedule with suggested statuses.
func (h *Handler) ClassExams(c *gin.Context) {
	asOf, ok := h.queryDate(c, "asOf")
	if !ok {
		return
	}
	rows, err := h.svc.ExamSchedule(c.Request.Context(), c.Param("classId"), asOf)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exams": rows})
}

// ValidateClassExam checks a candidate exam against the class's stored exams.
func (h *Handler) ValidateClassExam(c *gin.Context) {
	var candidate models.ExamRecord
	if !h.bind(c, &candidate) {
		return
	}
	if candidate.ClassID != c.Param("classId") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "classId does not match the path"})
		return
	}
	if err := h.svc.ValidateExam(c.Request.Context(), candidate); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// AttendanceWorkbook streams the attendance report as an xlsx file.
func (h *Handler) AttendanceWorkbook(c *gin.Context) {
	q, ok := h.attendanceQuery(c)
	if !ok {
		return
	}
	report, err := h.svc.AttendanceReport(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	f, err := export.AttendanceWorkbook(q.ClassID, report)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.sendWorkbook(c, f, fmt.Sprintf("attendance-%s.xlsx", q.ClassID))
}

// ResultsWorkbook streams the results of one exam as an xlsx file.
func (h *Handler) ResultsWorkbook(c *gin.Context) {
	examID, ok := requireExamID(c)
	if !ok {
		return
	}
	classID := c.Param("classId")
	report, err := h.svc.AcademicReport(c.Request.Context(), classID, examID)
	if err != nil {
		h.fail(c, err)
		return
	}
	f, err := export.ResultsWorkbook(classID, report)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.sendWorkbook(c, f, fmt.Sprintf("results-%s.xlsx", classID))
}

// CreateSnapshot computes and stores the class's figures for today or ?asOf.
func (h *Handler) CreateSnapshot(c *gin.Context) {
	asOf, ok := h.queryDate(c, "asOf")
	if !ok {
		return
	}
	snapshot, err := h.svc.Snapshot(c.Request.Context(), c.Param("classId"), asOf)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, snapshot)
}

// LatestSnapshot serves the most recent stored snapshot of a class.
func (h *Handler) LatestSnapshot(c *gin.Context) {
	snapshot, err := h.svc.LatestSnapshot(c.Request.Context(), c.Param("classId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// SendDigest sends the class's overdue-fee digest over WhatsApp.
func (h *Handler) SendDigest(c *gin.Context) {
	asOf, ok := h.queryDate(c, "asOf")
	if !ok {
		return
	}
	var req models.DigestRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}
	to := req.To
	if to == "" {
		to = h.bursarID
	}
	if to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no recipient given and no bursar configured"})
		return
	}

	classID := c.Param("classId")
	digest, err := h.svc.OverdueDigest(c.Request.Context(), classID, asOf)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.notifier.Notify(c.Request.Context(), to, digest); err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info("digest sent", zap.String("class_id", classID), zap.String("to", to))
	c.JSON(http.StatusAccepted, gin.H{"status": "sent", "message": digest})
}

// requireExamID reads ?examId. Academic figures are per exam, so a missing
// id is rejected rather than summarising every mark of the class.
func requireExamID(c *gin.Context) (string, bool) {
	examID := c.Query("examId")
	if examID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "examId is required"})
		return "", false
	}
	return examID, true
}

func (h *Handler) attendanceQuery(c *gin.Context) (backend.AttendanceQuery, bool) {
	q := backend.AttendanceQuery{ClassID: c.Param("classId"), StudentID: c.Query("studentId")}
	var ok bool
	if q.From, ok = h.queryDate(c, "from"); !ok {
		return q, false
	}
	if q.To, ok = h.queryDate(c, "to"); !ok {
		return q, false
	}
	return q, true
}

func (h *Handler) sendWorkbook(c *gin.Context, f *excelize.File, filename string) {
	defer func() {
		if err := f.Close(); err != nil {
			h.logger.Warn("failed to close workbook", zap.Error(err))
		}
	}()

	buf, err := f.WriteToBuffer()
	if err != nil {
		h.fail(c, fmt.Errorf("render workbook: %w", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
