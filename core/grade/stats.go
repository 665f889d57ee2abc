package grade

import "github.com/maktabuz/maktab/core"

// Summary is the aggregate picture of a grade set. All fields are zero on an
// empty set.
type Summary struct {
	Average float64 `json:"average"`
	Highest float64 `json:"highest"`
	Lowest  float64 `json:"lowest"`
	Count   int     `json:"count"`
}

func Summarize(grades []Grade) Summary {
	if len(grades) == 0 {
		return Summary{}
	}
	sum := Summary{
		Highest: grades[0].Value,
		Lowest:  grades[0].Value,
		Count:   len(grades),
	}
	var total float64
	for _, grd := range grades {
		total += grd.Value
		if grd.Value > sum.Highest {
			sum.Highest = grd.Value
		}
		if grd.Value < sum.Lowest {
			sum.Lowest = grd.Value
		}
	}
	sum.Average = core.Round2(total / float64(len(grades)))
	return sum
}

// Distribution buckets a grade set into the fixed performance bands:
// excellent [85,100], good [70,85), satisfactory [60,70), unsatisfactory
// [0,60). The buckets are disjoint and cover every value.
type Distribution struct {
	Excellent      int `json:"excellent"`
	Good           int `json:"good"`
	Satisfactory   int `json:"satisfactory"`
	Unsatisfactory int `json:"unsatisfactory"`
}

func Distribute(grades []Grade) Distribution {
	var dist Distribution
	for _, grd := range grades {
		switch {
		case grd.Value >= 85:
			dist.Excellent++
		case grd.Value >= 70:
			dist.Good++
		case grd.Value >= 60:
			dist.Satisfactory++
		default:
			dist.Unsatisfactory++
		}
	}
	return dist
}

func (d Distribution) Total() int {
	return d.Excellent + d.Good + d.Satisfactory + d.Unsatisfactory
}

// GPA is the weight-averaged grade value, rounded to 2 decimals. Zero-weight
// grades contribute nothing; an all-zero-weight or empty set yields 0.
func GPA(grades []Grade) float64 {
	var weightedSum, weightTotal float64
	for _, grd := range grades {
		weightedSum += grd.Value * grd.Weight
		weightTotal += grd.Weight
	}
	if weightTotal == 0 {
		return 0
	}
	return core.Round2(weightedSum / weightTotal)
}

// Statistics is the payload of the grade statistics endpoint.
type Statistics struct {
	Summary      Summary      `json:"summary"`
	Distribution Distribution `json:"distribution"`
	GPA          float64      `json:"gpa"`
}

func ComputeStatistics(grades []Grade) Statistics {
	return Statistics{
		Summary:      Summarize(grades),
		Distribution: Distribute(grades),
		GPA:          GPA(grades),
	}
}
