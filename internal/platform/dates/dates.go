// Package dates holds the two calendar-date parsing entry points used by the
// service. They deliberately differ in failure policy: doctor-entered dates
// are validated strictly, dates arriving from the external booking system are
// parsed leniently and dropped on failure. Do not unify them.
package dates

import (
	"fmt"
	"time"
)

// VisitDateLayout is the wire format for calendar dates (ISO-8601 date).
const VisitDateLayout = "2006-01-02"

// ParseVisitDate parses a doctor-entered visit date. A malformed value is a
// validation error surfaced to the caller.
func ParseVisitDate(s string) (time.Time, error) {
	t, err := time.Parse(VisitDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("visit_date must be ISO format YYYY-MM-DD")
	}
	return t, nil
}

// ParseVisitDateLenient parses a date from an external booking payload.
// Empty or malformed values are swallowed and reported as absent.
func ParseVisitDateLenient(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(VisitDateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// FormatVisitDate renders a calendar date for API responses.
func FormatVisitDate(t time.Time) string {
	return t.Format(VisitDateLayout)
}
