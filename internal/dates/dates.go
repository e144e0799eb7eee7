// Package dates handles the calendar strings used throughout the tracker.
//
// Record dates are plain zero-padded "YYYY-MM-DD" strings, so lexicographic
// order equals chronological order and range queries can compare strings
// directly. Months are "YYYY-MM".
package dates

import (
	"fmt"
	"time"
)

// Layout is the record date format.
const Layout = "2006-01-02"

// MonthLayout is the month selector format.
const MonthLayout = "2006-01"

// Format renders t as a record date.
func Format(t time.Time) string { return t.Format(Layout) }

// Today returns the local current date as a record date.
func Today() string { return Format(time.Now()) }

// Timestamp renders t as an RFC 3339 UTC timestamp.
func Timestamp(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

// Now returns the current instant as a timestamp string.
func Now() string { return Timestamp(time.Now()) }

// Parse parses a strict "YYYY-MM-DD" date at midnight UTC.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q want format %q: %w", s, Layout, err)
	}
	return t, nil
}

// Valid reports whether s is a well-formed record date.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// CurrentMonth returns the local current month.
func CurrentMonth() Month { return MonthOf(time.Now()) }

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q want format %q: %w", s, MonthLayout, err)
	}
	return MonthOf(t), nil
}

// String formats the month as "YYYY-MM".
func (m Month) String() string { return m.first().Format(MonthLayout) }

func (m Month) first() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// FirstDay returns the first date of the month.
func (m Month) FirstDay() string { return Format(m.first()) }

// LastDay returns the last date of the month.
func (m Month) LastDay() string { return Format(m.first().AddDate(0, 1, -1)) }

// NumDays returns the number of days in the month.
func (m Month) NumDays() int { return m.first().AddDate(0, 1, -1).Day() }

// Contains reports whether date falls inside the month.
func (m Month) Contains(date string) bool {
	return date >= m.FirstDay() && date <= m.LastDay()
}

// Next returns the following month.
func (m Month) Next() Month { return MonthOf(m.first().AddDate(0, 1, 0)) }

// Prev returns the preceding month.
func (m Month) Prev() Month { return MonthOf(m.first().AddDate(0, -1, 0)) }

// Days lists every date of the month in order.
func (m Month) Days() []string {
	n := m.NumDays()
	days := make([]string, n)
	start := m.first()
	for i := 0; i < n; i++ {
		days[i] = Format(start.AddDate(0, 0, i))
	}
	return days
}

// Weeks partitions the month's days into Monday-start weeks. The first and
// last weeks may be shorter than seven days.
func (m Month) Weeks() [][]string {
	var weeks [][]string
	var current []string
	start := m.first()
	for i := 0; i < m.NumDays(); i++ {
		day := start.AddDate(0, 0, i)
		if day.Weekday() == time.Monday && len(current) > 0 {
			weeks = append(weeks, current)
			current = nil
		}
		current = append(current, Format(day))
	}
	if len(current) > 0 {
		weeks = append(weeks, current)
	}
	return weeks
}
