package models

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day wire format used by the backend.
const DateLayout = "2006-01-02"

// Date is a calendar day. The wrapped time is always midnight UTC so two
// Dates compare by day regardless of the zone they were read in.
type Date struct {
	time.Time
}

// Day strips the time of day from t, keeping the calendar day t has in its
// own location.
func Day(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// NewDate builds a Date from its parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts a bare day or a timestamp starting with one (RFC 3339,
// or a day followed by 'T' or a space), of which only the day part is kept.
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	if len(value) > len(DateLayout) {
		if ts, err := time.Parse(time.RFC3339, value); err == nil {
			return Day(ts), nil
		}
		// only a time-of-day suffix may be dropped
		if sep := value[len(DateLayout)]; sep != 'T' && sep != ' ' {
			return Date{}, fmt.Errorf("parse date %q: unexpected suffix", value)
		}
		value = value[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return Date{t}, nil
}

// IsSet reports whether d carries a day. Both nil and the zero Date mean
// "no date".
func (d *Date) IsSet() bool {
	return d != nil && !d.IsZero()
}

// Compare returns -1, 0 or +1 depending on whether d is before, the same
// day as, or after other.
func (d Date) Compare(other Date) int {
	return d.Time.Compare(other.Time)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON writes the day as "YYYY-MM-DD", or null when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON reads "YYYY-MM-DD" or an RFC 3339 timestamp. An empty
// string or null leaves the Date unset.
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("date must be a string, got %s", data)
	}
	raw := string(data[1 : len(data)-1])
	if strings.TrimSpace(raw) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
