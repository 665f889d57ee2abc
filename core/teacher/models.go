package teacher

import (
	"time"

	"github.com/maktabuz/maktab/core"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusTerminated Status = "terminated"
)

var Statuses = []Status{StatusActive, StatusInactive, StatusTerminated}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusTerminated:
		return true
	}
	return false
}

type Teacher struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	EmployeeNumber string    `json:"employee_number"`
	Status         Status    `json:"status"`
	HireDate       time.Time `json:"hire_date"`
	CreatedAt      time.Time `json:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at"` // UTC
}

func (t *Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}

func (t *Teacher) Active() bool {
	return t.Status == StatusActive
}

type NewTeacher struct {
	UserID         string    `json:"user_id" validate:"required,uuid4"`
	FirstName      string    `json:"first_name" validate:"required"`
	LastName       string    `json:"last_name" validate:"required"`
	EmployeeNumber string    `json:"employee_number" validate:"required"`
	HireDate       time.Time `json:"hire_date" validate:"required"`
}

func (nt *NewTeacher) Clean() {
	nt.FirstName = core.CleanString(nt.FirstName)
	nt.LastName = core.CleanString(nt.LastName)
	nt.EmployeeNumber = core.CleanString(nt.EmployeeNumber)
}

type UpdateTeacher struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Status    Status `json:"status" validate:"omitempty,oneof=active inactive terminated"`
}

func (ut *UpdateTeacher) Clean() {
	ut.FirstName = core.CleanString(ut.FirstName)
	ut.LastName = core.CleanString(ut.LastName)
}

type QueryFilter struct {
	Search string `query:"search"`
	Status string `query:"status"`
	// SubjectID filters to teachers assigned to the subject.
	SubjectID string `query:"subject_id"`
	// ClassID filters to teachers assigned to the class.
	ClassID string `query:"class_id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.SubjectID = core.CleanString(qf.SubjectID, true)
	qf.ClassID = core.CleanString(qf.ClassID, true)
}

func (qf *QueryFilter) Validate() error {
	if qf.Status != "" && !Status(qf.Status).Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "unknown status"})
	}
	if err := core.ValidateUUIDField("subject_id", qf.SubjectID); err != nil {
		return err
	}
	return core.ValidateUUIDField("class_id", qf.ClassID)
}

// Match reports whether tch satisfies the filter, ignoring the assignment
// fields (SubjectID, ClassID) which need the join tables.
func (qf QueryFilter) Match(tch Teacher) bool {
	if qf.Search != "" {
		s := qf.Search
		if !core.ContainsFold(tch.FirstName, s) && !core.ContainsFold(tch.LastName, s) && !core.ContainsFold(tch.EmployeeNumber, s) {
			return false
		}
	}
	if qf.Status != "" && string(tch.Status) != qf.Status {
		return false
	}
	return true
}

type GetFilter struct {
	ID             string
	UserID         string
	EmployeeNumber string
}

// OrderFields is the sort allow-list for teacher listings.
var OrderFields = []string{"first_name", "last_name", "employee_number", "hire_date", "created_at"}

func DefaultOrdering() []core.DBOrdering {
	return []core.DBOrdering{{Field: "last_name", Ascending: true}}
}
