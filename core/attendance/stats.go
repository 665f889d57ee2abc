package attendance

import "github.com/maktabuz/maktab/core"

// Statistics summarizes an attendance record set. Rate is the share of
// attended records (present + late) as a whole percentage; the per-status
// percentages are each rounded independently, so they need not sum to 100.
// All fields are zero on an empty set.
type Statistics struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Excused int `json:"excused"`
	Total   int `json:"total"`

	Rate        int            `json:"attendance_rate"`
	Percentages map[string]int `json:"percentages"`
}

func ComputeStatistics(records []Attendance) Statistics {
	var stats Statistics
	for _, att := range records {
		switch att.Status {
		case StatusPresent:
			stats.Present++
		case StatusAbsent:
			stats.Absent++
		case StatusLate:
			stats.Late++
		case StatusExcused:
			stats.Excused++
		}
	}
	stats.Total = stats.Present + stats.Absent + stats.Late + stats.Excused
	stats.Rate = core.RoundPct(stats.Present+stats.Late, stats.Total)
	stats.Percentages = map[string]int{
		string(StatusPresent): core.RoundPct(stats.Present, stats.Total),
		string(StatusAbsent):  core.RoundPct(stats.Absent, stats.Total),
		string(StatusLate):    core.RoundPct(stats.Late, stats.Total),
		string(StatusExcused): core.RoundPct(stats.Excused, stats.Total),
	}
	return stats
}
