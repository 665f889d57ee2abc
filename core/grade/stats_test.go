package grade

import "testing"

func grades(values ...float64) []Grade {
	gs := make([]Grade, len(values))
	for i, v := range values {
		gs[i] = Grade{Value: v, Weight: 1}
	}
	return gs
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		in   []Grade
		want Summary
	}{
		{name: "empty set yields zeros", in: nil, want: Summary{}},
		{name: "single", in: grades(73), want: Summary{Average: 73, Highest: 73, Lowest: 73, Count: 1}},
		{
			name: "mixed",
			in:   grades(80, 90, 70),
			want: Summary{Average: 80, Highest: 90, Lowest: 70, Count: 3},
		},
		{
			name: "average rounded to 2 decimals",
			in:   grades(80, 90, 95),
			want: Summary{Average: 88.33, Highest: 95, Lowest: 80, Count: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.in); got != tt.want {
				t.Errorf("Summarize() = %+v; want %+v", got, tt.want)
			}
		})
	}
}

func TestDistribute(t *testing.T) {
	tests := []struct {
		name string
		in   []Grade
		want Distribution
	}{
		{name: "empty", in: nil, want: Distribution{}},
		{
			name: "boundaries",
			in:   grades(100, 85, 84.99, 70, 69.99, 60, 59.99, 0),
			want: Distribution{Excellent: 2, Good: 2, Satisfactory: 2, Unsatisfactory: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distribute(tt.in); got != tt.want {
				t.Errorf("Distribute() = %+v; want %+v", got, tt.want)
			}
		})
	}
}

// Every value in [0,100] lands in exactly one bucket, and the bucket counts
// always sum to the input size.
func TestDistributionPartition(t *testing.T) {
	var gs []Grade
	for v := 0.0; v <= 100; v += 0.5 {
		gs = append(gs, Grade{Value: v})
	}
	dist := Distribute(gs)
	if dist.Total() != len(gs) {
		t.Errorf("Total() = %d; want %d", dist.Total(), len(gs))
	}
}

func TestGPA(t *testing.T) {
	half := 0.5
	tests := []struct {
		name string
		in   []Grade
		want float64
	}{
		{name: "empty set yields 0", in: nil, want: 0},
		{name: "all zero weights yield 0", in: []Grade{{Value: 90, Weight: 0}}, want: 0},
		{name: "uniform weights reduce to the mean", in: grades(80, 90), want: 85},
		{
			name: "weighted",
			in:   []Grade{{Value: 80, Weight: 1}, {Value: 90, Weight: half}},
			want: 83.33, // (80*1 + 90*0.5) / 1.5
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GPA(tt.in); got != tt.want {
				t.Errorf("GPA() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestComputeStatisticsEmpty(t *testing.T) {
	stats := ComputeStatistics(nil)
	if stats.Summary != (Summary{}) || stats.Distribution != (Distribution{}) || stats.GPA != 0 {
		t.Errorf("ComputeStatistics(nil) = %+v; want all zeros", stats)
	}
}
