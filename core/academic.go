package core

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// The school year runs September through August; semester 1 covers Sep-Jan,
// semester 2 covers Feb-Jun. July and August roll over to semester 1 of the
// upcoming year.

var (
	nowFunc = time.Now // mockable

	academicYearRegex = regexp.MustCompile(`^(\d{4})-(\d{4})$`)
)

// AcademicYearAt returns the "YYYY-YYYY" academic year containing t.
func AcademicYearAt(t time.Time) string {
	year := t.Year()
	if int(t.Month()) < 9 {
		year--
	}
	return fmt.Sprintf("%d-%d", year, year+1)
}

// SemesterAt returns the semester (1 or 2) containing t.
func SemesterAt(t time.Time) int {
	switch int(t.Month()) {
	case 9, 10, 11, 12, 1:
		return 1
	case 7, 8:
		return 1 // summer break counts towards the upcoming semester
	default:
		return 2
	}
}

func CurrentAcademicYear() string {
	return AcademicYearAt(nowFunc())
}

func CurrentSemester() int {
	return SemesterAt(nowFunc())
}

// ValidAcademicYear reports whether s is of the form "YYYY-YYYY" with
// consecutive years.
func ValidAcademicYear(s string) bool {
	m := academicYearRegex.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	return second == first+1
}
