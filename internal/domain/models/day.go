package models

import (
	"errors"
	"fmt"
	"time"
)

// DayLayout is the canonical calendar-day key format. Keys sort lexicographically in
// chronological order, which the repositories rely on for range queries.
const DayLayout = "2006-01-02"

const monthLayout = "2006-01"

// ErrInvalidDay indicates a day or month value could not be parsed.
var ErrInvalidDay = errors.New("invalid day")

// StartOfDay truncates t to midnight of its calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayOf returns the day key t falls on in loc.
func DayOf(t time.Time, loc *time.Location) string {
	return StartOfDay(t, loc).Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD key into midnight of that day in loc.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DayLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, value)
	}
	return t, nil
}

// Month is the half-open day-key range [Start, End) of one calendar month.
type Month struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// MonthOf returns the month bucket containing anchor in loc.
func MonthOf(anchor time.Time, loc *time.Location) Month {
	if loc == nil {
		loc = time.Local
	}
	y, m, _ := anchor.In(loc).Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	return Month{
		Start: start.Format(DayLayout),
		End:   start.AddDate(0, 1, 0).Format(DayLayout),
	}
}

// ParseMonth parses a YYYY-MM value into its month bucket.
func ParseMonth(value string, loc *time.Location) (Month, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(monthLayout, value, loc)
	if err != nil {
		return Month{}, fmt.Errorf("%w: month %q", ErrInvalidDay, value)
	}
	return MonthOf(t, loc), nil
}

// Contains reports whether the day key falls inside the bucket.
func (m Month) Contains(day string) bool {
	return day >= m.Start && day < m.End
}

// Label returns the YYYY-MM form of the month.
func (m Month) Label() string {
	if len(m.Start) < len(monthLayout) {
		return m.Start
	}
	return m.Start[:len(monthLayout)]
}

// ValidateDay checks that value is a well-formed day key.
func ValidateDay(value string) error {
	if _, err := time.Parse(DayLayout, value); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDay, value)
	}
	return nil
}
