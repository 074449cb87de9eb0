package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day or zone. The zero value means "no date".
type Date struct {
	t time.Time
}

// NewDate returns the calendar date y-m-d.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// spreadsheet and legacy layouts accepted besides YYYY-MM-DD
var altDateLayouts = []string{
	"01-02-06",
	"1/2/2006",
	"1/2/06",
	"02.01.2006",
}

// ParseDate parses a calendar date. Besides YYYY-MM-DD it accepts RFC 3339 timestamps
// (keeping the date as written, with no zone conversion), the date formats spreadsheets
// produce, and Excel serial day numbers.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if len(s) >= len(dateLayout) {
		if t, err := time.Parse(dateLayout, s[:len(dateLayout)]); err == nil {
			if len(s) == len(dateLayout) || s[len(dateLayout)] == 'T' || s[len(dateLayout)] == ' ' {
				return DateOf(t), nil
			}
		}
	}
	for _, layout := range altDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		return fromExcelSerial(serial), nil
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}

// fromExcelSerial converts a 1900-system spreadsheet serial to a date.
func fromExcelSerial(serial float64) Date {
	epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	return DateOf(epoch.AddDate(0, 0, int(serial)))
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time { return d.t }

func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// DaysUntil returns the number of whole days from d to o.
func (d Date) DaysUntil(o Date) int {
	return int(o.t.Sub(d.t).Hours() / 24)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a date string, null, or a {"seconds": N} timestamp object.
func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	if b[0] == '{' {
		var ts struct {
			Seconds int64 `json:"seconds"`
		}
		if err := json.Unmarshal(b, &ts); err != nil {
			return fmt.Errorf("invalid timestamp object: %w", err)
		}
		*d = DateOf(time.Unix(ts.Seconds, 0).UTC())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
