package attendance

import "testing"

func records(statuses ...Status) []Attendance {
	recs := make([]Attendance, len(statuses))
	for i, s := range statuses {
		recs[i] = Attendance{Status: s}
	}
	return recs
}

func TestComputeStatistics(t *testing.T) {
	t.Run("empty set yields zeros, not NaN", func(t *testing.T) {
		stats := ComputeStatistics(nil)
		if stats.Total != 0 || stats.Rate != 0 {
			t.Errorf("got total=%d rate=%d; want zeros", stats.Total, stats.Rate)
		}
	})

	t.Run("late counts as attended", func(t *testing.T) {
		stats := ComputeStatistics(records(StatusPresent, StatusLate, StatusAbsent, StatusExcused))
		if stats.Rate != 50 {
			t.Errorf("Rate = %d; want 50", stats.Rate)
		}
		if stats.Present != 1 || stats.Late != 1 || stats.Absent != 1 || stats.Excused != 1 || stats.Total != 4 {
			t.Errorf("counts = %+v; want one of each", stats)
		}
	})

	t.Run("percentages rounded independently", func(t *testing.T) {
		// 3 records: each share rounds on its own, summing to 99.
		stats := ComputeStatistics(records(StatusPresent, StatusAbsent, StatusLate))
		for _, s := range []Status{StatusPresent, StatusAbsent, StatusLate} {
			if got := stats.Percentages[string(s)]; got != 33 {
				t.Errorf("Percentages[%s] = %d; want 33", s, got)
			}
		}
		if stats.Percentages[string(StatusExcused)] != 0 {
			t.Errorf("Percentages[excused] = %d; want 0", stats.Percentages[string(StatusExcused)])
		}
		if stats.Rate != 67 { // (1 present + 1 late) / 3
			t.Errorf("Rate = %d; want 67", stats.Rate)
		}
	})
}
