package core

import (
	"strings"
	"time"
)

// Day is an opaque calendar-day string in `YYYY-MM-DD` form. Ledger key
// lookups compare days for exact string equality only; no timezone
// normalization is applied anywhere.
type Day string

const dayLayout = "2006-01-02"

// ParseDay validates a `YYYY-MM-DD` string.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(dayLayout, s); err != nil {
		return "", ErrInvalidDate
	}
	return Day(s), nil
}

// DayFromCompact converts the 8-digit `YYYYMMDD` interchange form to a Day.
func DayFromCompact(s string) (Day, error) {
	s = strings.TrimSpace(s)
	if len(s) != 8 {
		return "", ErrInvalidDate
	}
	return ParseDay(s[0:4] + "-" + s[4:6] + "-" + s[6:8])
}

func (d Day) Validate() error {
	_, err := ParseDay(string(d))
	return err
}

// Compact returns the 8-digit `YYYYMMDD` form used by the export format.
func (d Day) Compact() string {
	return strings.ReplaceAll(string(d), "-", "")
}

func (d Day) time() (time.Time, bool) {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DayOfMonth returns 1-31, or 0 when the day is unparseable.
func (d Day) DayOfMonth() int {
	t, ok := d.time()
	if !ok {
		return 0
	}
	return t.Day()
}

// DaysInMonth returns the calendar-aware month length (28-31) of the month
// this day falls in, or 0 when the day is unparseable.
func (d Day) DaysInMonth() int {
	t, ok := d.time()
	if !ok {
		return 0
	}
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
