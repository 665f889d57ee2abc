package grade

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/access"
)

type Type string

const (
	TypeAssignment    Type = "assignment"
	TypeQuiz          Type = "quiz"
	TypeExam          Type = "exam"
	TypeProject       Type = "project"
	TypeParticipation Type = "participation"
)

var Types = []Type{TypeAssignment, TypeQuiz, TypeExam, TypeProject, TypeParticipation}

func (t Type) Valid() bool {
	switch t {
	case TypeAssignment, TypeQuiz, TypeExam, TypeProject, TypeParticipation:
		return true
	}
	return false
}

type Grade struct {
	ID           string      `json:"id"`
	StudentID    string      `json:"student_id"`
	SubjectID    string      `json:"subject_id"`
	ClassID      string      `json:"class_id"`
	TeacherID    string      `json:"teacher_id"`
	Value        float64     `json:"grade_value"`
	Type         Type        `json:"grade_type"`
	Semester     int         `json:"semester"`
	AcademicYear string      `json:"academic_year"`
	Weight       float64     `json:"weight"`
	GradeDate    time.Time   `json:"grade_date"`
	Comment      null.String `json:"comment"`
	CreatedAt    time.Time   `json:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at"` // UTC
}

type NewGrade struct {
	StudentID string `json:"student_id" validate:"required,uuid4"`
	SubjectID string `json:"subject_id" validate:"required,uuid4"`
	ClassID   string `json:"class_id" validate:"required,uuid4"`
	// TeacherID is forced to the caller's own profile id for teacher callers;
	// admins must supply it.
	TeacherID    string    `json:"teacher_id" validate:"omitempty,uuid4"`
	Value        float64   `json:"grade_value" validate:"min=0,max=100"`
	Type         Type      `json:"grade_type" validate:"required,oneof=assignment quiz exam project participation"`
	Semester     int       `json:"semester" validate:"required,oneof=1 2"`
	AcademicYear string    `json:"academic_year" validate:"omitempty,academicyear"`
	Weight       *float64  `json:"weight" validate:"omitempty,min=0,max=1"`
	GradeDate    time.Time `json:"grade_date"`
	Comment      string    `json:"comment"`
}

func (ng *NewGrade) Clean() {
	ng.AcademicYear = core.CleanString(ng.AcademicYear)
	ng.Comment = core.CleanString(ng.Comment)
}

type UpdateGrade struct {
	Value     *float64  `json:"grade_value" validate:"omitempty,min=0,max=100"`
	Type      Type      `json:"grade_type" validate:"omitempty,oneof=assignment quiz exam project participation"`
	Weight    *float64  `json:"weight" validate:"omitempty,min=0,max=1"`
	GradeDate time.Time `json:"grade_date"`
	Comment   *string   `json:"comment"`
}

type QueryFilter struct {
	StudentID    string    `query:"student_id"`
	SubjectID    string    `query:"subject_id"`
	ClassID      string    `query:"class_id"`
	TeacherID    string    `query:"teacher_id"`
	Type         string    `query:"grade_type"`
	Semester     int       `query:"semester"`
	AcademicYear string    `query:"academic_year"`
	DateFrom     time.Time `query:"date_from"`
	DateTo       time.Time `query:"date_to"`

	// StudentIDs restricts results to an explicit student set. Populated by
	// Narrow for parent callers, never bound from the request.
	StudentIDs []string `query:"-"`
	// None marks a narrowing that can match no rows.
	None bool `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID, true /* lower */)
	qf.SubjectID = core.CleanString(qf.SubjectID, true)
	qf.ClassID = core.CleanString(qf.ClassID, true)
	qf.TeacherID = core.CleanString(qf.TeacherID, true)
	qf.Type = core.CleanString(qf.Type, true)
	qf.AcademicYear = core.CleanString(qf.AcademicYear)
}

func (qf *QueryFilter) Validate() error {
	for _, fld := range []struct{ name, value string }{
		{"student_id", qf.StudentID},
		{"subject_id", qf.SubjectID},
		{"class_id", qf.ClassID},
		{"teacher_id", qf.TeacherID},
	} {
		if err := core.ValidateUUIDField(fld.name, fld.value); err != nil {
			return err
		}
	}
	if qf.Type != "" && !Type(qf.Type).Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "grade_type", Error: "unknown grade type"})
	}
	if qf.Semester != 0 && qf.Semester != 1 && qf.Semester != 2 {
		return core.NewValidationError(nil, core.FieldError{Field: "semester", Error: "must be 1 or 2"})
	}
	if qf.AcademicYear != "" && !core.ValidAcademicYear(qf.AcademicYear) {
		return core.NewValidationError(nil, core.FieldError{Field: "academic_year", Error: "must be of the form YYYY-YYYY"})
	}
	if !qf.DateFrom.IsZero() && !qf.DateTo.IsZero() && qf.DateTo.Before(qf.DateFrom) {
		return core.NewValidationError(nil, core.FieldError{Field: "date_to", Error: "must not precede date_from"})
	}
	return nil
}

// Narrow applies role-forced constraints after validation, overriding any
// caller-supplied values. Students only ever see their own grades, teachers
// their own authored grades, parents their linked children's.
func (qf *QueryFilter) Narrow(actor access.Actor) {
	switch actor.Role {
	case access.RoleStudent:
		qf.StudentID = actor.ProfileID
		qf.StudentIDs = nil
	case access.RoleTeacher:
		qf.TeacherID = actor.ProfileID
	case access.RoleParent:
		if len(actor.ChildIDs) == 0 {
			qf.None = true
			return
		}
		if qf.StudentID != "" {
			for _, id := range actor.ChildIDs {
				if id == qf.StudentID {
					return // already narrowed to a linked child
				}
			}
			qf.StudentID = ""
		}
		qf.StudentIDs = actor.ChildIDs
	}
}

// Match reports whether grd satisfies the filter. It is the reference
// semantics for repository implementations.
func (qf QueryFilter) Match(grd Grade) bool {
	if qf.None {
		return false
	}
	if len(qf.StudentIDs) > 0 {
		var found bool
		for _, id := range qf.StudentIDs {
			if grd.StudentID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if qf.StudentID != "" && grd.StudentID != qf.StudentID {
		return false
	}
	if qf.SubjectID != "" && grd.SubjectID != qf.SubjectID {
		return false
	}
	if qf.ClassID != "" && grd.ClassID != qf.ClassID {
		return false
	}
	if qf.TeacherID != "" && grd.TeacherID != qf.TeacherID {
		return false
	}
	if qf.Type != "" && string(grd.Type) != qf.Type {
		return false
	}
	if qf.Semester != 0 && grd.Semester != qf.Semester {
		return false
	}
	if qf.AcademicYear != "" && grd.AcademicYear != qf.AcademicYear {
		return false
	}
	if !qf.DateFrom.IsZero() && grd.GradeDate.Before(qf.DateFrom) {
		return false
	}
	if !qf.DateTo.IsZero() && grd.GradeDate.After(qf.DateTo) {
		return false
	}
	return true
}

type GetFilter struct {
	ID string
}

// OrderFields is the sort allow-list for grade listings.
var OrderFields = []string{"grade_date", "grade_value", "semester", "created_at"}

func DefaultOrdering() []core.DBOrdering {
	return []core.DBOrdering{{Field: "grade_date", Ascending: false}}
}
