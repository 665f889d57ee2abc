package class

import (
	"strconv"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/maktabuz/maktab/core"
)

const (
	MinGrade = 1
	MaxGrade = 11
)

type Class struct {
	ID             string      `json:"id"`
	Grade          int         `json:"grade"`
	Section        string      `json:"section"`
	AcademicYear   string      `json:"academic_year"`
	ClassTeacherID null.String `json:"class_teacher_id"`
	CreatedAt      time.Time   `json:"created_at"` // UTC
	UpdatedAt      time.Time   `json:"updated_at"` // UTC
}

// Name renders the conventional class label, e.g. "7-B".
func (c *Class) Name() string {
	return strconv.Itoa(c.Grade) + "-" + c.Section
}

type NewClass struct {
	Grade          int    `json:"grade" validate:"required,min=1,max=11"`
	Section        string `json:"section" validate:"required,alpha,uppercase"`
	AcademicYear   string `json:"academic_year" validate:"required,academicyear"`
	ClassTeacherID string `json:"class_teacher_id" validate:"omitempty,uuid4"`
}

func (nc *NewClass) Clean() {
	nc.Section = core.CleanString(nc.Section)
	nc.AcademicYear = core.CleanString(nc.AcademicYear)
}

// UpdateClass carries the updatable fields; grade, section and academic year
// identify the class and stay fixed. A nil ClassTeacherID leaves the class
// teacher unchanged; an empty one removes them.
type UpdateClass struct {
	ClassTeacherID *string `json:"class_teacher_id" validate:"omitempty,uuid4|eq="`
}

type QueryFilter struct {
	Grade        int    `query:"grade"`
	Section      string `query:"section"`
	AcademicYear string `query:"academic_year"`
	// TeacherID filters to classes the teacher is assigned to.
	TeacherID string `query:"teacher_id"`
}

func (qf *QueryFilter) Clean() {
	qf.Section = core.CleanString(qf.Section)
	qf.AcademicYear = core.CleanString(qf.AcademicYear)
	qf.TeacherID = core.CleanString(qf.TeacherID, true /* lower */)
}

func (qf *QueryFilter) Validate() error {
	if qf.Grade != 0 && (qf.Grade < MinGrade || qf.Grade > MaxGrade) {
		return core.NewValidationError(nil, core.FieldError{Field: "grade", Error: "must be between 1 and 11"})
	}
	if qf.AcademicYear != "" && !core.ValidAcademicYear(qf.AcademicYear) {
		return core.NewValidationError(nil, core.FieldError{Field: "academic_year", Error: "must be of the form YYYY-YYYY"})
	}
	return core.ValidateUUIDField("teacher_id", qf.TeacherID)
}

// Match reports whether cls satisfies the filter, ignoring TeacherID which
// needs the join table.
func (qf QueryFilter) Match(cls Class) bool {
	if qf.Grade != 0 && cls.Grade != qf.Grade {
		return false
	}
	if qf.Section != "" && cls.Section != qf.Section {
		return false
	}
	if qf.AcademicYear != "" && cls.AcademicYear != qf.AcademicYear {
		return false
	}
	return true
}

type GetFilter struct {
	ID string
}

// OrderFields is the sort allow-list for class listings.
var OrderFields = []string{"grade", "section", "academic_year", "created_at"}

func DefaultOrdering() []core.DBOrdering {
	return []core.DBOrdering{
		{Field: "grade", Ascending: true},
		{Field: "section", Ascending: true},
	}
}
