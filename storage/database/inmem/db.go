// Package inmemdb provides in-memory repository implementations used as test
// doubles. Filtering reuses each entity's QueryFilter.Match, so the reference
// semantics and the doubles cannot drift apart.
package inmemdb

import (
	"sync"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/attendance"
	"github.com/maktabuz/maktab/core/class"
	"github.com/maktabuz/maktab/core/grade"
	"github.com/maktabuz/maktab/core/guardian"
	"github.com/maktabuz/maktab/core/student"
	"github.com/maktabuz/maktab/core/subject"
	"github.com/maktabuz/maktab/core/teacher"
	"github.com/maktabuz/maktab/core/user"
)

type link struct {
	left, right string
}

type DB struct {
	mu sync.RWMutex

	users      map[string]*user.User
	students   map[string]*student.Student
	teachers   map[string]*teacher.Teacher
	guardians  map[string]*guardian.Guardian
	classes    map[string]*class.Class
	subjects   map[string]*subject.Subject
	grades     map[string]*grade.Grade
	attendance map[string]*attendance.Attendance

	guardianStudents map[link]struct{}
	classTeachers    map[link]struct{}
	subjectTeachers  map[link]struct{}
}

func NewDB() *DB {
	return &DB{
		users:            make(map[string]*user.User),
		students:         make(map[string]*student.Student),
		teachers:         make(map[string]*teacher.Teacher),
		guardians:        make(map[string]*guardian.Guardian),
		classes:          make(map[string]*class.Class),
		subjects:         make(map[string]*subject.Subject),
		grades:           make(map[string]*grade.Grade),
		attendance:       make(map[string]*attendance.Attendance),
		guardianStudents: make(map[link]struct{}),
		classTeachers:    make(map[link]struct{}),
		subjectTeachers:  make(map[link]struct{}),
	}
}

// pageBounds applies the pagination window to a slice of length n. A zero
// window means "everything".
func pageBounds(n int, page core.Pagination) (start, end int) {
	if page.Limit <= 0 {
		return 0, n
	}
	start = page.Offset()
	if start > n {
		start = n
	}
	end = start + page.Limit
	if end > n {
		end = n
	}
	return start, end
}
