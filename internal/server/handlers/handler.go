package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/racane123/schoolboard/internal/domain/models"
	"github.com/racane123/schoolboard/internal/service/notify"
	"github.com/racane123/schoolboard/internal/service/reporting"
	"github.com/racane123/schoolboard/pkg/clients/backend"
)

// ReportService is what the HTTP layer needs from the reporting service.
type ReportService interface {
	Today(asOf *models.Date) time.Time
	AcademicReport(ctx context.Context, classID, examID string) (models.AcademicReport, error)
	FinancialReport(ctx context.Context, classID string, asOf *models.Date) (models.FinancialReport, error)
	AttendanceReport(ctx context.Context, q backend.AttendanceQuery) (models.AttendanceReport, error)
	ExamSchedule(ctx context.Context, classID string, asOf *models.Date) ([]models.ExamRow, error)
	ValidateExam(ctx context.Context, candidate models.ExamRecord) error
	Snapshot(ctx context.Context, classID string, asOf *models.Date) (models.ReportSnapshot, error)
	LatestSnapshot(ctx context.Context, classID string) (models.ReportSnapshot, error)
	OverdueDigest(ctx context.Context, classID string, asOf *models.Date) (string, error)
}

// Handler serves the dashboard API.
type Handler struct {
	svc      ReportService
	notifier notify.Notifier
	bursarID string
	logger   *zap.Logger
}

// NewHandler constructs the HTTP handler adapter. notifier may be nil, in
// which case digests cannot be sent.
func NewHandler(svc ReportService, notifier notify.Notifier, bursarID string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Disabled{}
	}
	return &Handler{svc: svc, notifier: notifier, bursarID: bursarID, logger: logger}
}

// bind decodes and validates a JSON body, answering 400 on failure.
func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return false
	}
	return true
}

// queryDate reads an optional YYYY-MM-DD query parameter, answering 400
// when it is malformed.
func (h *Handler) queryDate(c *gin.Context, name string) (*models.Date, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name, "details": err.Error()})
		return nil, false
	}
	return &d, true
}

// fail maps a service error onto a status code and logs it.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, backend.ErrUpstream):
		status, message = http.StatusBadGateway, "school api unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		status, message = http.StatusGatewayTimeout, "school api timed out"
	case errors.Is(err, models.ErrDuplicateExam), errors.Is(err, models.ErrDuplicateSession):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, models.ErrInvalidPayment):
		status, message = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, models.ErrSnapshotNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, notify.ErrNotConfigured), errors.Is(err, reporting.ErrSnapshotsDisabled):
		status, message = http.StatusServiceUnavailable, err.Error()
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	} else {
		h.logger.Warn("request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": message})
}
