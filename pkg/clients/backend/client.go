package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/racane123/schoolboard/internal/config"
	"github.com/racane123/schoolboard/internal/domain/models"
)

// ErrUpstream wraps every non-2xx answer from the school API.
var ErrUpstream = errors.New("backend api error")

// MarkQuery filters result records.
type MarkQuery struct {
	ClassID string
	ExamID  string
}

// AttendanceQuery filters day records for a class, optionally bounded by day.
type AttendanceQuery struct {
	ClassID   string
	StudentID string
	From      *models.Date
	To        *models.Date
}

// FeeQuery filters fee records.
type FeeQuery struct {
	ClassID   string
	StudentID string
	FeeType   models.FeeType
}

// Source is what the reporting layer needs from the school API.
type Source interface {
	ListMarks(ctx context.Context, q MarkQuery) ([]models.MarkRecord, error)
	ListAttendance(ctx context.Context, q AttendanceQuery) ([]models.AttendanceDayRecord, error)
	ListFees(ctx context.Context, q FeeQuery) ([]models.FeeRecord, error)
	ListExams(ctx context.Context, classID string) ([]models.ExamRecord, error)
}

// APIClient is a resty-backed implementation of Source.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a client for the school API using the provided configuration values.
func NewClient(cfg config.BackendConfig) *APIClient {
	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}
	if cfg.Timeout <= 0 {
		restyClient.SetTimeout(15 * time.Second)
	}

	return &APIClient{httpClient: restyClient}
}

// apiError is the error body the school API sends alongside 4xx/5xx codes.
type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// ListMarks fetches result records for a class and/or exam.
func (c *APIClient) ListMarks(ctx context.Context, q MarkQuery) ([]models.MarkRecord, error) {
	params := map[string]string{}
	setParam(params, "classId", q.ClassID)
	setParam(params, "examId", q.ExamID)

	var out []models.MarkRecord
	if err := c.list(ctx, "/results", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAttendance fetches day records. An unknown status fails the call
// with ErrUpstream.
func (c *APIClient) ListAttendance(ctx context.Context, q AttendanceQuery) ([]models.AttendanceDayRecord, error) {
	params := map[string]string{}
	setParam(params, "classId", q.ClassID)
	setParam(params, "studentId", q.StudentID)
	if q.From.IsSet() {
		params["from"] = q.From.String()
	}
	if q.To.IsSet() {
		params["to"] = q.To.String()
	}

	var out []models.AttendanceDayRecord
	if err := c.list(ctx, "/attendance", params, &out); err != nil {
		return nil, err
	}
	for i, r := range out {
		if !r.Status.Valid() {
			return nil, fmt.Errorf("get /attendance: record %d has status %q: %w", i, r.Status, ErrUpstream)
		}
	}
	return out, nil
}

// ListFees fetches fee records. An unknown non-empty fee type fails the
// call with ErrUpstream.
func (c *APIClient) ListFees(ctx context.Context, q FeeQuery) ([]models.FeeRecord, error) {
	params := map[string]string{}
	setParam(params, "classId", q.ClassID)
	setParam(params, "studentId", q.StudentID)
	setParam(params, "feeType", string(q.FeeType))

	var out []models.FeeRecord
	if err := c.list(ctx, "/fees", params, &out); err != nil {
		return nil, err
	}
	for i, r := range out {
		if r.FeeType != "" && !r.FeeType.Valid() {
			return nil, fmt.Errorf("get /fees: record %d has fee type %q: %w", i, r.FeeType, ErrUpstream)
		}
	}
	return out, nil
}

// ListExams fetches the exams of a class.
func (c *APIClient) ListExams(ctx context.Context, classID string) ([]models.ExamRecord, error) {
	params := map[string]string{}
	setParam(params, "classId", classID)

	var out []models.ExamRecord
	if err := c.list(ctx, "/exams", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) list(ctx context.Context, path string, params map[string]string, out any) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetError(apiErr).
		Get(path)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		if message == "" {
			message = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("get %s: status=%d, message=%s: %w", path, resp.StatusCode(), message, ErrUpstream)
	}

	if err := DecodeList(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// DecodeList unmarshals a list response into out, a pointer to a slice. The
// school API answers either with a bare array or with an envelope holding
// the array under "data" or "list"; any other shape decodes to nothing.
func DecodeList(body []byte, out any) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil
	}

	if body[0] == '[' {
		return json.Unmarshal(body, out)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
		List json.RawMessage `json:"list"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return err
	}

	for _, candidate := range []json.RawMessage{envelope.Data, envelope.List} {
		candidate = bytes.TrimSpace(candidate)
		if len(candidate) > 0 && candidate[0] == '[' {
			return json.Unmarshal(candidate, out)
		}
	}
	return nil
}

func setParam(params map[string]string, key, value string) {
	if value != "" {
		params[key] = value
	}
}
