package dates

import (
	"testing"
	"time"
)

func TestParseVisitDate_Strict(t *testing.T) {
	d, err := ParseVisitDate("2025-03-14")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2025 || d.Month() != time.March || d.Day() != 14 {
		t.Errorf("unexpected date: %v", d)
	}

	for _, bad := range []string{"", "14-03-2025", "2025/03/14", "2025-13-40", "tomorrow"} {
		if _, err := ParseVisitDate(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseVisitDateLenient_SwallowsFailures(t *testing.T) {
	if d := ParseVisitDateLenient("2025-03-14"); d == nil || d.Day() != 14 {
		t.Errorf("expected parsed date, got %v", d)
	}
	for _, bad := range []string{"", "not-a-date", "14/03/2025"} {
		if d := ParseVisitDateLenient(bad); d != nil {
			t.Errorf("expected nil for %q, got %v", bad, d)
		}
	}
}

func TestFormatVisitDate(t *testing.T) {
	d := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	if got := FormatVisitDate(d); got != "2025-03-14" {
		t.Errorf("expected 2025-03-14, got %s", got)
	}
}
