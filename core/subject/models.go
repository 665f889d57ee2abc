package subject

import (
	"time"

	"github.com/maktabuz/maktab/core"
)

type Subject struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Code       string    `json:"code"`
	GradeLevel int       `json:"grade_level"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

type NewSubject struct {
	Name       string `json:"name" validate:"required"`
	Code       string `json:"code" validate:"required,alphanum,uppercase"`
	GradeLevel int    `json:"grade_level" validate:"required,min=1,max=11"`
}

func (ns *NewSubject) Clean() {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code)
}

type UpdateSubject struct {
	Name       string `json:"name"`
	GradeLevel int    `json:"grade_level" validate:"omitempty,min=1,max=11"`
}

func (us *UpdateSubject) Clean() {
	us.Name = core.CleanString(us.Name)
}

type QueryFilter struct {
	Search     string `query:"search"`
	GradeLevel int    `query:"grade_level"`
	// TeacherID filters to subjects the teacher is assigned to.
	TeacherID string `query:"teacher_id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.TeacherID = core.CleanString(qf.TeacherID, true /* lower */)
}

func (qf *QueryFilter) Validate() error {
	if qf.GradeLevel != 0 && (qf.GradeLevel < 1 || qf.GradeLevel > 11) {
		return core.NewValidationError(nil, core.FieldError{Field: "grade_level", Error: "must be between 1 and 11"})
	}
	return core.ValidateUUIDField("teacher_id", qf.TeacherID)
}

// Match reports whether sbj satisfies the filter, ignoring TeacherID which
// needs the join table.
func (qf QueryFilter) Match(sbj Subject) bool {
	if qf.Search != "" {
		if !core.ContainsFold(sbj.Name, qf.Search) && !core.ContainsFold(sbj.Code, qf.Search) {
			return false
		}
	}
	if qf.GradeLevel != 0 && sbj.GradeLevel != qf.GradeLevel {
		return false
	}
	return true
}

type GetFilter struct {
	ID   string
	Code string
}

// OrderFields is the sort allow-list for subject listings.
var OrderFields = []string{"name", "code", "grade_level", "created_at"}

func DefaultOrdering() []core.DBOrdering {
	return []core.DBOrdering{{Field: "name", Ascending: true}}
}
