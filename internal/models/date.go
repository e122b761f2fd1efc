package models

import "time"

// DateLayout is the canonical wire/date-key format for stay dates.
const DateLayout = "2006-01-02"

// Day truncates a timestamp to a UTC calendar date. All per-date facts are
// keyed on this normalized form.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey renders a date as its canonical map/cache key.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// DateRange expands [from, to] inclusive into individual days.
func DateRange(from, to time.Time) []time.Time {
	from, to = Day(from), Day(to)
	if to.Before(from) {
		return nil
	}
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
