package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/racane123/schoolboard/internal/analytics"
	"github.com/racane123/schoolboard/internal/domain/models"
	"github.com/racane123/schoolboard/pkg/clients/backend"
)

// SnapshotStore persists report snapshots.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot models.ReportSnapshot) error
	LatestSnapshot(ctx context.Context, classID string) (models.ReportSnapshot, error)
}

// SnapshotReader is implemented by exporters that can read their own
// snapshots back.
type SnapshotReader interface {
	LatestSnapshot(ctx context.Context, classID string) (models.ReportSnapshot, error)
}

// ErrSnapshotsDisabled is returned when no snapshot store is configured.
var ErrSnapshotsDisabled = errors.New("snapshot storage is not configured")

// SnapshotExporter publishes report snapshots outside the service.
type SnapshotExporter interface {
	AppendSnapshot(ctx context.Context, snapshot models.ReportSnapshot) error
}

// Service fetches school records and derives the dashboard reports from them.
type Service struct {
	source   backend.Source
	store    SnapshotStore
	exporter SnapshotExporter
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// Option customises a Service.
type Option func(*Service)

// WithSnapshotStore enables snapshot persistence.
func WithSnapshotStore(store SnapshotStore) Option {
	return func(s *Service) { s.store = store }
}

// WithExporter enables snapshot export.
func WithExporter(exporter SnapshotExporter) Option {
	return func(s *Service) { s.exporter = exporter }
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a new reporting service instance. loc decides which
// calendar day "today" is; nil means UTC.
func NewService(source backend.Source, loc *time.Location, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		source: source,
		loc:    loc,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the reference time for date-dependent figures: the pinned
// day when asOf is set, the current time in the service's zone otherwise.
func (s *Service) Today(asOf *models.Date) time.Time {
	if asOf.IsSet() {
		return asOf.Time
	}
	return s.now().In(s.loc)
}

// AcademicReport derives result rows and the class summary for one exam.
func (s *Service) AcademicReport(ctx context.Context, classID, examID string) (models.AcademicReport, error) {
	marks, err := s.source.ListMarks(ctx, backend.MarkQuery{ClassID: classID, ExamID: examID})
	if err != nil {
		return models.AcademicReport{}, fmt.Errorf("load marks: %w", err)
	}
	report := analytics.BuildAcademicReport(marks)
	report.ClassID = classID
	report.ExamID = examID
	return report, nil
}

// FinancialReport derives fee rows and the revenue summary of a class.
func (s *Service) FinancialReport(ctx context.Context, classID string, asOf *models.Date) (models.FinancialReport, error) {
	fees, err := s.source.ListFees(ctx, backend.FeeQuery{ClassID: classID})
	if err != nil {
		return models.FinancialReport{}, fmt.Errorf("load fees: %w", err)
	}
	report := analytics.BuildFinancialReport(fees, s.Today(asOf))
	report.ClassID = classID
	return report, nil
}

// AttendanceReport derives per-student attendance rows for the query.
func (s *Service) AttendanceReport(ctx context.Context, q backend.AttendanceQuery) (models.AttendanceReport, error) {
	records, err := s.source.ListAttendance(ctx, q)
	if err != nil {
		return models.AttendanceReport{}, fmt.Errorf("load attendance: %w", err)
	}
	return analytics.BuildAttendanceReport(records), nil
}

// ExamSchedule lists a class's exams by date with their suggested status.
// Exams without a date come last.
func (s *Service) ExamSchedule(ctx context.Context, classID string, asOf *models.Date) ([]models.ExamRow, error) {
	exams, err := s.source.ListExams(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("load exams: %w", err)
	}
	sort.SliceStable(exams, func(i, j int) bool {
		a, b := exams[i].ExamDate, exams[j].ExamDate
		switch {
		case !a.IsSet():
			return false
		case !b.IsSet():
			return true
		default:
			return a.Compare(*b) < 0
		}
	})
	return analytics.ExamRows(exams, s.Today(asOf)), nil
}

// ValidateExam checks that no other exam of the candidate's class shares
// its subject and name.
func (s *Service) ValidateExam(ctx context.Context, candidate models.ExamRecord) error {
	exams, err := s.source.ListExams(ctx, candidate.ClassID)
	if err != nil {
		return fmt.Errorf("load exams: %w", err)
	}
	return models.ValidateExamUnique(exams, candidate)
}

// Snapshot computes a class's headline figures, stores them and exports
// them when those integrations are enabled. The academic summary covers the
// most recent exam held on or before the snapshot day.
func (s *Service) Snapshot(ctx context.Context, classID string, asOf *models.Date) (models.ReportSnapshot, error) {
	today := s.Today(asOf)

	schedule, err := s.ExamSchedule(ctx, classID, asOf)
	if err != nil {
		return models.ReportSnapshot{}, err
	}

	var academic models.AcademicSummary
	if exam, ok := latestHeldExam(schedule); ok {
		report, err := s.AcademicReport(ctx, classID, exam.ID)
		if err != nil {
			return models.ReportSnapshot{}, err
		}
		academic = report.Summary
	}

	financial, err := s.FinancialReport(ctx, classID, asOf)
	if err != nil {
		return models.ReportSnapshot{}, err
	}

	attendance, err := s.AttendanceReport(ctx, backend.AttendanceQuery{ClassID: classID})
	if err != nil {
		return models.ReportSnapshot{}, err
	}

	snapshot := models.ReportSnapshot{
		ID:         s.newID(),
		ClassID:    classID,
		Day:        models.Day(today).Time,
		Academic:   academic,
		Financial:  financial.Summary,
		Attendance: attendance,
		CreatedAt:  s.now().UTC(),
	}

	if s.store != nil {
		if err := s.store.SaveSnapshot(ctx, snapshot); err != nil {
			return snapshot, fmt.Errorf("save snapshot: %w", err)
		}
	}

	if s.exporter != nil {
		if err := s.exporter.AppendSnapshot(ctx, snapshot); err != nil {
			// the stored snapshot stays the source of truth
			s.logger.Warn("snapshot export failed", zap.String("class_id", classID), zap.Error(err))
		}
	}

	s.logger.Info("snapshot created",
		zap.String("class_id", classID),
		zap.String("snapshot_id", snapshot.ID),
		zap.Float64("attendance_average", attendance.ClassAverage),
		zap.Float64("overdue", financial.Summary.Overdue))

	return snapshot, nil
}

// LatestSnapshot returns the most recently stored snapshot of a class. The
// store answers when configured; otherwise an exporter that can read back
// its rows does.
func (s *Service) LatestSnapshot(ctx context.Context, classID string) (models.ReportSnapshot, error) {
	if s.store != nil {
		return s.store.LatestSnapshot(ctx, classID)
	}
	if reader, ok := s.exporter.(SnapshotReader); ok {
		return reader.LatestSnapshot(ctx, classID)
	}
	return models.ReportSnapshot{}, ErrSnapshotsDisabled
}

// OverdueDigest renders a plain-text list of a class's overdue fees.
func (s *Service) OverdueDigest(ctx context.Context, classID string, asOf *models.Date) (string, error) {
	report, err := s.FinancialReport(ctx, classID, asOf)
	if err != nil {
		return "", err
	}

	overdue := analytics.OverdueFees(report.Fees)
	if len(overdue) == 0 {
		return fmt.Sprintf("No overdue fees for class %s as of %s.", classID, report.AsOf), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Overdue fees for class %s as of %s: %d fee(s), %.2f outstanding.",
		classID, report.AsOf, len(overdue), report.Summary.Overdue)
	for _, row := range overdue {
		feeType := string(row.FeeType)
		if feeType == "" {
			feeType = "Fee"
		}
		fmt.Fprintf(&b, "\n- %s %s: %.2f (due %s)", row.StudentID, feeType, row.Balance, row.DueDate)
	}
	return b.String(), nil
}

// latestHeldExam picks the last dated exam in a date-ordered schedule that
// is no longer in the future.
func latestHeldExam(schedule []models.ExamRow) (models.ExamRow, bool) {
	for i := len(schedule) - 1; i >= 0; i-- {
		row := schedule[i]
		if !row.ExamDate.IsSet() {
			continue
		}
		if row.SuggestedStatus == models.ExamCompleted || row.SuggestedStatus == models.ExamOngoing {
			return row, true
		}
	}
	return models.ExamRow{}, false
}
