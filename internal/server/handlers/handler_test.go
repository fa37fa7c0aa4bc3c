package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racane123/schoolboard/internal/analytics"
	"github.com/racane123/schoolboard/internal/domain/models"
	"github.com/racane123/schoolboard/internal/service/notify"
	"github.com/racane123/schoolboard/internal/service/reporting"
	"github.com/racane123/schoolboard/pkg/clients/backend"
)

var fixedToday = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	marks      []models.MarkRecord
	attendance []models.AttendanceDayRecord
	fees       []models.FeeRecord
	digest     string
	err        error

	lastAttendance backend.AttendanceQuery
	lastAsOf       *models.Date
}

func (f *fakeService) Today(asOf *models.Date) time.Time {
	f.lastAsOf = asOf
	if asOf.IsSet() {
		return asOf.Time
	}
	return fixedToday
}

func (f *fakeService) AcademicReport(_ context.Context, classID, examID string) (models.AcademicReport, error) {
	if f.err != nil {
		return models.AcademicReport{}, f.err
	}
	report := analytics.BuildAcademicReport(f.marks)
	report.ClassID, report.ExamID = classID, examID
	return report, nil
}

func (f *fakeService) FinancialReport(_ context.Context, classID string, asOf *models.Date) (models.FinancialReport, error) {
	if f.err != nil {
		return models.FinancialReport{}, f.err
	}
	report := analytics.BuildFinancialReport(f.fees, f.Today(asOf))
	report.ClassID = classID
	return report, nil
}

func (f *fakeService) AttendanceReport(_ context.Context, q backend.AttendanceQuery) (models.AttendanceReport, error) {
	f.lastAttendance = q
	if f.err != nil {
		return models.AttendanceReport{}, f.err
	}
	return analytics.BuildAttendanceReport(f.attendance), nil
}

func (f *fakeService) ExamSchedule(context.Context, string, *models.Date) ([]models.ExamRow, error) {
	return []models.ExamRow{}, f.err
}

func (f *fakeService) ValidateExam(_ context.Context, candidate models.ExamRecord) error {
	if f.err != nil {
		return f.err
	}
	if candidate.Name == "Midterm" {
		return models.ErrDuplicateExam
	}
	return nil
}

func (f *fakeService) Snapshot(_ context.Context, classID string, asOf *models.Date) (models.ReportSnapshot, error) {
	if f.err != nil {
		return models.ReportSnapshot{}, f.err
	}
	return models.ReportSnapshot{ID: "snap-1", ClassID: classID, Day: models.Day(f.Today(asOf)).Time}, nil
}

func (f *fakeService) LatestSnapshot(_ context.Context, classID string) (models.ReportSnapshot, error) {
	if f.err != nil {
		return models.ReportSnapshot{}, f.err
	}
	return models.ReportSnapshot{ID: "snap-0", ClassID: classID}, nil
}

func (f *fakeService) OverdueDigest(context.Context, string, *models.Date) (string, error) {
	return f.digest, f.err
}

type fakeNotifier struct {
	to, message string
	err         error
}

func (n *fakeNotifier) Notify(_ context.Context, to, message string) error {
	n.to, n.message = to, message
	return n.err
}

func serve(h gin.HandlerFunc, method, route, target, body string) *httptest.ResponseRecorder {
	engine := gin.New()
	engine.Handle(method, route, h)

	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCalculateGrade(t *testing.T) {
	h := NewHandler(&fakeService{}, nil, "", nil)

	rec := serve(h.CalculateGrade, http.MethodPost, "/grades", "/grades",
		`{"marksObtained": 85, "totalMarks": 100, "passingMarks": 40}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, 85.0, body["percentage"])
	assert.Equal(t, "B", body["grade"])
	assert.Equal(t, "Passed", body["status"])

	rec = serve(h.CalculateGrade, http.MethodPost, "/grades", "/grades",
		`{"marksObtained": 10, "totalMarks": 0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Nil(t, body["percentage"])
	assert.Equal(t, models.Placeholder, body["grade"])
	assert.Equal(t, models.Placeholder, body["status"])
}

func TestCalculateGradeRejectsMissingFields(t *testing.T) {
	h := NewHandler(&fakeService{}, nil, "", nil)

	rec := serve(h.CalculateGrade, http.MethodPost, "/grades", "/grades", `{"totalMarks": 100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendanceRate(t *testing.T) {
	h := NewHandler(&fakeService{}, nil, "", nil)

	rec := serve(h.AttendanceRate, http.MethodPost, "/rate", "/rate", `{"records": [
		{"studentId": "s1", "classId": "c1", "date": "2024-06-10", "status": "present"},
		{"studentId": "s1", "classId": "c1", "date": "2024-06-11", "status": "absent"},
		{"studentId": "s1", "classId": "c1", "date": "2024-06-12", "status": "late"},
		{"studentId": "s1", "classId": "c1", "date": "2024-06-13", "status": "absent"}
	]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, 50.0, body["attendanceRate"])
	assert.Equal(t, 4.0, body["totalDays"])
}

func TestAttendanceRateRejectsUnknownStatus(t *testing.T) {
	h := NewHandler(&fakeService{}, nil, "", nil)

	rec := serve(h.AttendanceRate, http.MethodPost, "/rate", "/rate",
		`{"records": [{"studentId": "s1", "classId": "c1", "date": "2024-06-10", "status": "excused"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendanceSessionsEmpty(t *testing.T) {
	h := NewHandler(&fakeService{}, nil, "", nil)

	rec := serve(h.AttendanceSessions, http.MethodPost, "/sessions", "/sessions", `{"records": []}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sessions": []}`, rec.Body.String())
}

func TestValidateSession(t *testing.T) {
	h := NewHandler(&fakeService{}, nil, "", nil)
	existing := `"sessions": [{"classId": "c1", "date": "2024-06-10", "records": []}]`

	rec := serve(h.ValidateSession, http.MethodPost, "/validate", "/validate",
		`{"candidate": {"classId": "c1", "date": "2024-06-10T08:00:00Z"}, `+existing+`}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(h.ValidateSession, http.MethodPost, "/validate", "/validate",
		`{"candidate": {"classId": "c2", "date": "2024-06-10"}, `+existing+`}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h.ValidateSession, http.MethodPost, "/validate", "/validate",
		`{"candidate": {"classId": "c1"}, `+existing+`}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeeStatusUsesAsOf(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc, nil, "", nil)
	body := `{"fees": [{"studentId": "s1", "feeType": "Tuition", "totalAmount": 500, "paidAmount": 200, "dueDate": "2024-06-10"}]}`

	rec := serve(h.FeeStatus, http.MethodPost, "/fees", "/fees", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"Overdue"`)
	assert.Contains(t, rec.Body.String(), `"asOf":"2024-06-15"`)

	rec = serve(h.FeeStatus, http.MethodPost, "/fees", "/fees?asOf=2024-06-10", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"Pending"`)
	require.NotNil(t, svc.lastAsOf)
	assert.Equal(t, "2024-06-10", svc.lastAsOf.String())

	for _, bad := range []string{"tomorrow", "2024-06-10xyz"} {
		rec = serve(h.FeeStatus, http.MethodPost, "/fees", "/fees?asOf="+bad, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestApplyPayment(t *testing.T) {
	h := NewHandler(&fakeService{}, nil, "", nil)

	rec := serve(h.ApplyPayment, http.MethodPost, "/pay", "/pay",
		`{"fee": {"studentId": "s1", "totalAmount": 500, "paidAmount": 200}, "amount": 300}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, 500.0, body["paidAmount"])
	assert.Equal(t, 0.0, body["balance"])
	assert.Equal(t, "Paid", body["status"])

	for _, amount := range []string{"301", "0", "-5"} {
		rec = serve(h.ApplyPayment, http.MethodPost, "/pay", "/pay",
			`{"fee": {"studentId": "s1", "totalAmount": 500, "paidAmount": 200}, "amount": `+amount+`}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "amount %s", amount)
	}

	rec = serve(h.ApplyPayment, http.MethodPost, "/pay", "/pay",
		`{"fee": {"studentId": "s1", "totalAmount": 500, "paidAmount": 200}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateExamAgainstPostedList(t *testing.T) {
	h := NewHandler(&fakeService{}, nil, "", nil)
	existing := `[{"id": "e1", "classId": "c1", "subjectId": "math", "name": "Midterm"}]`

	rec := serve(h.ValidateExam, http.MethodPost, "/validate", "/validate",
		`{"candidate": {"classId": "c1", "subjectId": "math", "name": " midterm "}, "exams": `+existing+`}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(h.ValidateExam, http.MethodPost, "/validate", "/validate",
		`{"candidate": {"id": "e1", "classId": "c1", "subjectId": "math", "name": "Midterm"}, "exams": `+existing+`}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAcademicSummary(t *testing.T) {
	h := NewHandler(&fakeService{}, nil, "", nil)

	rec := serve(h.AcademicSummary, http.MethodPost, "/academic", "/academic", `{"records": [
		{"studentId": "s1", "marksObtained": 95, "totalMarks": 100, "passingMarks": 40},
		{"studentId": "s2", "marksObtained": 30, "totalMarks": 100, "passingMarks": 40}
	]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var report models.AcademicReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 62.5, report.Summary.Average)
	assert.Equal(t, 1, report.Summary.PassCount)
	assert.Equal(t, 1, report.Summary.FailCount)
	require.Len(t, report.Results, 2)
	assert.Equal(t, models.GradeA, report.Results[0].Grade)
}

func TestClassAttendanceQuery(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc, nil, "", nil)

	rec := serve(h.ClassAttendance, http.MethodGet, "/classes/:classId/attendance",
		"/classes/c1/attendance?studentId=s1&from=2024-06-01&to=2024-06-30", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c1", svc.lastAttendance.ClassID)
	assert.Equal(t, "s1", svc.lastAttendance.StudentID)
	assert.Equal(t, "2024-06-01", svc.lastAttendance.From.String())
	assert.Equal(t, "2024-06-30", svc.lastAttendance.To.String())
}

func TestUpstreamErrorsMapToBadGateway(t *testing.T) {
	h := NewHandler(&fakeService{err: errors.Join(errors.New("load marks"), backend.ErrUpstream)}, nil, "", nil)

	rec := serve(h.ClassAcademic, http.MethodGet, "/classes/:classId/academic", "/classes/c1/academic?examId=mid", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAcademicEndpointsRequireExamID(t *testing.T) {
	h := NewHandler(&fakeService{}, nil, "", nil)

	rec := serve(h.ClassAcademic, http.MethodGet, "/classes/:classId/academic", "/classes/c1/academic", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h.ResultsWorkbook, http.MethodGet, "/classes/:classId/results.xlsx", "/classes/c1/results.xlsx", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h.ClassAcademic, http.MethodGet, "/classes/:classId/academic", "/classes/c1/academic?examId=mid", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mid", decode(t, rec)["examId"])
}

func TestValidateClassExam(t *testing.T) {
	h := NewHandler(&fakeService{}, nil, "", nil)
	route := "/classes/:classId/exams/validate"

	rec := serve(h.ValidateClassExam, http.MethodPost, route, "/classes/c1/exams/validate",
		`{"classId": "c1", "subjectId": "math", "name": "Midterm"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(h.ValidateClassExam, http.MethodPost, route, "/classes/c1/exams/validate",
		`{"classId": "c2", "subjectId": "math", "name": "Final"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h.ValidateClassExam, http.MethodPost, route, "/classes/c1/exams/validate",
		`{"classId": "c1", "subjectId": "math", "name": "Final"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAttendanceWorkbook(t *testing.T) {
	svc := &fakeService{attendance: []models.AttendanceDayRecord{
		{StudentID: "s1", Status: models.AttendancePresent},
		{StudentID: "s1", Status: models.AttendanceAbsent},
	}}
	h := NewHandler(svc, nil, "", nil)

	rec := serve(h.AttendanceWorkbook, http.MethodGet, "/classes/:classId/attendance.xlsx", "/classes/c1/attendance.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="attendance-c1.xlsx"`, rec.Header().Get("Content-Disposition"))
	// xlsx files are zip archives
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}

func TestSnapshotEndpoints(t *testing.T) {
	h := NewHandler(&fakeService{}, nil, "", nil)

	rec := serve(h.CreateSnapshot, http.MethodPost, "/classes/:classId/snapshots", "/classes/c1/snapshots?asOf=2024-06-01", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "snap-1", body["id"])
	assert.Equal(t, "2024-06-01T00:00:00Z", body["day"])

	disabled := NewHandler(&fakeService{err: reporting.ErrSnapshotsDisabled}, nil, "", nil)
	rec = serve(disabled.LatestSnapshot, http.MethodGet, "/classes/:classId/snapshots/latest", "/classes/c1/snapshots/latest", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	missing := NewHandler(&fakeService{err: models.ErrSnapshotNotFound}, nil, "", nil)
	rec = serve(missing.LatestSnapshot, http.MethodGet, "/classes/:classId/snapshots/latest", "/classes/c1/snapshots/latest", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendDigest(t *testing.T) {
	notifier := &fakeNotifier{}
	h := NewHandler(&fakeService{digest: "No overdue fees."}, notifier, "bursar", nil)
	route := "/classes/:classId/digest"

	rec := serve(h.SendDigest, http.MethodPost, route, "/classes/c1/digest", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "bursar", notifier.to)
	assert.Equal(t, "No overdue fees.", notifier.message)

	rec = serve(h.SendDigest, http.MethodPost, route, "/classes/c1/digest", `{"to": "256700000000"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "256700000000", notifier.to)
}

func TestSendDigestWithoutRecipientOrNotifier(t *testing.T) {
	route := "/classes/:classId/digest"

	h := NewHandler(&fakeService{}, &fakeNotifier{}, "", nil)
	rec := serve(h.SendDigest, http.MethodPost, route, "/classes/c1/digest", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h = NewHandler(&fakeService{}, notify.Disabled{}, "bursar", nil)
	rec = serve(h.SendDigest, http.MethodPost, route, "/classes/c1/digest", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
