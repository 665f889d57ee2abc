package core

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAcademicYearAt(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "spring", t: date(2025, time.March, 15), want: "2024-2025"},
		{name: "autumn", t: date(2025, time.October, 1), want: "2025-2026"},
		{name: "september boundary", t: date(2025, time.September, 1), want: "2025-2026"},
		{name: "august", t: date(2025, time.August, 31), want: "2024-2025"},
		{name: "january", t: date(2026, time.January, 10), want: "2025-2026"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AcademicYearAt(tt.t); got != tt.want {
				t.Errorf("AcademicYearAt(%v) = %q; want %q", tt.t, got, tt.want)
			}
		})
	}
}

func TestSemesterAt(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want int
	}{
		{name: "spring", t: date(2025, time.March, 15), want: 2},
		{name: "autumn", t: date(2025, time.October, 1), want: 1},
		{name: "january is still semester 1", t: date(2026, time.January, 5), want: 1},
		{name: "june", t: date(2025, time.June, 20), want: 2},
		{name: "summer defaults to next semester 1", t: date(2025, time.July, 1), want: 1},
		{name: "august too", t: date(2025, time.August, 15), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SemesterAt(tt.t); got != tt.want {
				t.Errorf("SemesterAt(%v) = %d; want %d", tt.t, got, tt.want)
			}
		})
	}
}

func TestValidAcademicYear(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2024-2025", true},
		{"1999-2000", true},
		{"2024-2026", false},
		{"2025-2024", false},
		{"2024/2025", false},
		{"2024-25", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidAcademicYear(tt.in); got != tt.want {
			t.Errorf("ValidAcademicYear(%q) = %t; want %t", tt.in, got, tt.want)
		}
	}
}
