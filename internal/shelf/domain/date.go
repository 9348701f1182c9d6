package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// DateLayout is the wire format used in storage, API payloads and prompts.
const DateLayout = "DD.MM.YYYY"

var datePattern = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`)

// ErrInvalidDate is matched by every date parsing failure.
var ErrInvalidDate = errors.New("invalid date")

// InvalidDateError carries the rejected input.
type InvalidDateError struct {
	Input  string
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Input, e.Reason)
}

func (e *InvalidDateError) Is(target error) bool {
	return target == ErrInvalidDate
}

// Date is a calendar day without time of day or zone. The zero value is "no date".
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate builds a Date, failing when the day does not exist in the calendar.
func NewDate(year int, month time.Month, day int) (Date, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, &InvalidDateError{
			Input:  fmt.Sprintf("%02d.%02d.%04d", day, int(month), year),
			Reason: "no such calendar day",
		}
	}
	return Date{year: year, month: month, day: day}, nil
}

// ParseDate accepts exactly DD.MM.YYYY naming a real calendar day.
// Anything else, including partial matches, is rejected.
func ParseDate(text string) (Date, error) {
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return Date{}, &InvalidDateError{Input: text, Reason: "expected " + DateLayout}
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 1 {
		return Date{}, &InvalidDateError{Input: text, Reason: "year out of range"}
	}

	d, err := NewDate(year, time.Month(month), day)
	if err != nil {
		return Date{}, &InvalidDateError{Input: text, Reason: "no such calendar day"}
	}
	return d, nil
}

// MustParseDate panics on invalid input. For tests and constants only.
func MustParseDate(text string) Date {
	d, err := ParseDate(text)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// Today returns the calendar day of now in loc. Passing now explicitly keeps
// classification deterministic under test.
func Today(now time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

func (d Date) Year() int          { return d.year }
func (d Date) Month() time.Month  { return d.month }
func (d Date) Day() int           { return d.day }
func (d Date) IsZero() bool       { return d.year == 0 && d.month == 0 && d.day == 0 }
func (d Date) Before(o Date) bool { return d.Ordinal() < o.Ordinal() }
func (d Date) After(o Date) bool  { return d.Ordinal() > o.Ordinal() }
func (d Date) Equal(o Date) bool  { return d == o }

// String formats as DD.MM.YYYY, zero padded.
func (d Date) String() string {
	return fmt.Sprintf("%02d.%02d.%04d", d.day, int(d.month), d.year)
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// Ordinal is the number of days since 01.01.1970. It orders dates chronologically.
func (d Date) Ordinal() int64 {
	return d.Time().Unix() / 86400
}

// AddDays returns the date n calendar days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// DaysBetween returns to - from in whole calendar days.
func DaysBetween(from, to Date) int {
	return int(to.Ordinal() - from.Ordinal())
}

// MarshalJSON emits the canonical string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON is strict: only DD.MM.YYYY is accepted.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &InvalidDateError{Input: string(data), Reason: "expected a string"}
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the day as a DATE.
func (d Date) Value() (driver.Value, error) {
	return d.Time(), nil
}

// Scan reads DATE columns returned as time.Time or ISO text.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case []byte:
		return d.scanText(string(v))
	case string:
		return d.scanText(v)
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanText(s string) error {
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("cannot scan %q into Date: %w", s, err)
	}
	*d = DateOf(t)
	return nil
}
