package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/racane123/schoolboard/internal/config"
	"github.com/racane123/schoolboard/internal/domain/models"
)

const (
	snapshotRange = "Snapshots!A:J"
	dateFormat    = "2006-01-02"
)

// Repository defines the persistence operations supported by the Google Sheets adapter.
type Repository interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends the provided values to the supplied sheet range.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

// ReadRange fetches a rectangular data range from the spreadsheet.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return resp.Values, nil
}

// Exporter appends one spreadsheet row per report snapshot.
type Exporter struct {
	repo Repository
}

// NewExporter wraps a sheet repository.
func NewExporter(repo Repository) *Exporter {
	return &Exporter{repo: repo}
}

// AppendSnapshot writes the headline figures of a snapshot as one row.
func (e *Exporter) AppendSnapshot(ctx context.Context, snapshot models.ReportSnapshot) error {
	return e.repo.WriteRow(ctx, snapshotRange, SnapshotRow(snapshot))
}

// LatestSnapshot reads the Snapshots sheet back and returns the last row
// written for classID. Rows are appended in creation order. Only the
// columns of SnapshotRow are recovered.
func (e *Exporter) LatestSnapshot(ctx context.Context, classID string) (models.ReportSnapshot, error) {
	rows, err := e.repo.ReadRange(ctx, snapshotRange)
	if err != nil {
		return models.ReportSnapshot{}, err
	}

	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		if len(row) < 10 || cell(row, 1) != classID {
			continue
		}
		snapshot, err := parseSnapshotRow(row)
		if err != nil {
			return models.ReportSnapshot{}, fmt.Errorf("snapshot row %d: %w", i+1, err)
		}
		return snapshot, nil
	}
	return models.ReportSnapshot{}, fmt.Errorf("class %s: %w", classID, models.ErrSnapshotNotFound)
}

// SnapshotRow lays a snapshot out in the column order of the Snapshots sheet:
// day, class, average, pass, fail, attendance, collected, pending, overdue, id.
func SnapshotRow(s models.ReportSnapshot) []interface{} {
	return []interface{}{
		s.Day.Format(dateFormat),
		s.ClassID,
		s.Academic.Average,
		s.Academic.PassCount,
		s.Academic.FailCount,
		s.Attendance.ClassAverage,
		s.Financial.TotalCollected,
		s.Financial.Pending,
		s.Financial.Overdue,
		s.ID,
	}
}

func parseSnapshotRow(row []interface{}) (models.ReportSnapshot, error) {
	day, err := models.ParseDate(cell(row, 0))
	if err != nil {
		return models.ReportSnapshot{}, err
	}

	var nums [7]float64
	for i := range nums {
		raw := strings.ReplaceAll(cell(row, i+2), ",", "")
		if nums[i], err = strconv.ParseFloat(raw, 64); err != nil {
			return models.ReportSnapshot{}, fmt.Errorf("column %d: %w", i+3, err)
		}
	}

	pass, fail := int(nums[1]), int(nums[2])
	return models.ReportSnapshot{
		ID:      cell(row, 9),
		ClassID: cell(row, 1),
		Day:     day.Time,
		Academic: models.AcademicSummary{
			Count:     pass + fail,
			Average:   nums[0],
			PassCount: pass,
			FailCount: fail,
		},
		Attendance: models.AttendanceReport{ClassAverage: nums[3]},
		Financial: models.FinancialSummary{
			TotalCollected: nums[4],
			Pending:        nums[5],
			Overdue:        nums[6],
			Outstanding:    nums[5] + nums[6],
		},
	}, nil
}

func cell(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}
