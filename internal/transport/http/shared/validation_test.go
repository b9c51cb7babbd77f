package shared

import (
	"testing"
	"time"
)

func TestDateOrderAllowsEqualDates(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	v := NewValidator()
	v.DateOrder("startDate", day, "endDate", day)
	if v.HasIssues() {
		t.Fatalf("equal start and end dates should pass, got %v", v.Issues())
	}

	v = NewValidator()
	v.DateOrder("startDate", day.AddDate(0, 0, 1), "endDate", day)
	if !v.HasIssues() {
		t.Fatal("reversed window should be rejected")
	}

	v = NewValidator()
	v.DateOrder("startDate", time.Time{}, "endDate", day)
	if v.HasIssues() {
		t.Fatal("a missing side skips the order check")
	}
}

func TestRangeInclusiveBounds(t *testing.T) {
	cases := []struct {
		value   float64
		invalid bool
	}{
		{1, false},
		{10, false},
		{0.999, true},
		{10.001, true},
	}
	for _, tc := range cases {
		v := NewValidator()
		v.Range("confidence", tc.value, 1, 10, "out of range")
		if v.HasIssues() != tc.invalid {
			t.Errorf("Range(%v, 1, 10): invalid = %v, want %v", tc.value, v.HasIssues(), tc.invalid)
		}
	}
}
