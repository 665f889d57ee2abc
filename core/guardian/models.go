package guardian

import (
	"time"

	"github.com/maktabuz/maktab/core"
)

type Relationship string

const (
	RelFather   Relationship = "father"
	RelMother   Relationship = "mother"
	RelGuardian Relationship = "guardian"
	RelOther    Relationship = "other"
)

var Relationships = []Relationship{RelFather, RelMother, RelGuardian, RelOther}

func (r Relationship) Valid() bool {
	switch r {
	case RelFather, RelMother, RelGuardian, RelOther:
		return true
	}
	return false
}

type Guardian struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	FirstName    string       `json:"first_name"`
	LastName     string       `json:"last_name"`
	Relationship Relationship `json:"relationship"`
	Phone        string       `json:"phone"`
	CreatedAt    time.Time    `json:"created_at"` // UTC
	UpdatedAt    time.Time    `json:"updated_at"` // UTC
}

func (g *Guardian) FullName() string {
	return g.FirstName + " " + g.LastName
}

type NewGuardian struct {
	UserID       string       `json:"user_id" validate:"required,uuid4"`
	FirstName    string       `json:"first_name" validate:"required"`
	LastName     string       `json:"last_name" validate:"required"`
	Relationship Relationship `json:"relationship" validate:"required,oneof=father mother guardian other"`
	Phone        string       `json:"phone"`
}

func (ng *NewGuardian) Clean() {
	ng.FirstName = core.CleanString(ng.FirstName)
	ng.LastName = core.CleanString(ng.LastName)
	ng.Phone = core.CleanString(ng.Phone)
}

type UpdateGuardian struct {
	FirstName    string       `json:"first_name"`
	LastName     string       `json:"last_name"`
	Relationship Relationship `json:"relationship" validate:"omitempty,oneof=father mother guardian other"`
	Phone        string       `json:"phone"`
}

func (ug *UpdateGuardian) Clean() {
	ug.FirstName = core.CleanString(ug.FirstName)
	ug.LastName = core.CleanString(ug.LastName)
	ug.Phone = core.CleanString(ug.Phone)
}

type QueryFilter struct {
	Search       string `query:"search"`
	Relationship string `query:"relationship"`
	// StudentID filters to guardians linked to the student.
	StudentID string `query:"student_id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Relationship = core.CleanString(qf.Relationship, true /* lower */)
	qf.StudentID = core.CleanString(qf.StudentID, true)
}

func (qf *QueryFilter) Validate() error {
	if qf.Relationship != "" && !Relationship(qf.Relationship).Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "relationship", Error: "unknown relationship"})
	}
	return core.ValidateUUIDField("student_id", qf.StudentID)
}

// Match reports whether grd satisfies the filter, ignoring StudentID which
// needs the join table.
func (qf QueryFilter) Match(grd Guardian) bool {
	if qf.Search != "" {
		if !core.ContainsFold(grd.FirstName, qf.Search) && !core.ContainsFold(grd.LastName, qf.Search) && !core.ContainsFold(grd.Phone, qf.Search) {
			return false
		}
	}
	if qf.Relationship != "" && string(grd.Relationship) != qf.Relationship {
		return false
	}
	return true
}

type GetFilter struct {
	ID     string
	UserID string
}

// OrderFields is the sort allow-list for guardian listings.
var OrderFields = []string{"first_name", "last_name", "relationship", "created_at"}

func DefaultOrdering() []core.DBOrdering {
	return []core.DBOrdering{{Field: "last_name", Ascending: true}}
}
