package student

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/access"
)

type Status string

const (
	StatusActive      Status = "active"
	StatusGraduated   Status = "graduated"
	StatusTransferred Status = "transferred"
	StatusWithdrawn   Status = "withdrawn"
)

var Statuses = []Status{StatusActive, StatusGraduated, StatusTransferred, StatusWithdrawn}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusGraduated, StatusTransferred, StatusWithdrawn:
		return true
	}
	return false
}

// Terminal reports whether the status ends the enrollment. Terminal statuses
// are how students leave the system; rows are never hard-deleted.
func (s Status) Terminal() bool {
	return s == StatusGraduated || s == StatusTransferred || s == StatusWithdrawn
}

type Student struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	StudentNumber  string      `json:"student_number"`
	ClassID        null.String `json:"class_id"`
	Status         Status      `json:"status"`
	EnrollmentDate time.Time   `json:"enrollment_date"`
	CreatedAt      time.Time   `json:"created_at"` // UTC
	UpdatedAt      time.Time   `json:"updated_at"` // UTC
}

func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

func (s *Student) Active() bool {
	return s.Status == StatusActive
}

type NewStudent struct {
	UserID         string    `json:"user_id" validate:"required,uuid4"`
	FirstName      string    `json:"first_name" validate:"required"`
	LastName       string    `json:"last_name" validate:"required"`
	StudentNumber  string    `json:"student_number" validate:"required"`
	ClassID        string    `json:"class_id" validate:"omitempty,uuid4"`
	EnrollmentDate time.Time `json:"enrollment_date" validate:"required"`
}

func (ns *NewStudent) Clean() {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.StudentNumber = core.CleanString(ns.StudentNumber)
}

// UpdateStudent carries the updatable fields. A nil ClassID leaves the class
// assignment unchanged; an empty one unassigns the student.
type UpdateStudent struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	ClassID   *string `json:"class_id" validate:"omitempty,uuid4|eq="`
	Status    Status  `json:"status" validate:"omitempty,oneof=active graduated transferred withdrawn"`
}

func (us *UpdateStudent) Clean() {
	us.FirstName = core.CleanString(us.FirstName)
	us.LastName = core.CleanString(us.LastName)
}

type QueryFilter struct {
	Search       string    `query:"search"`
	ClassID      string    `query:"class_id"`
	Status       string    `query:"status"`
	EnrolledFrom time.Time `query:"enrolled_from"`
	EnrolledTo   time.Time `query:"enrolled_to"`

	// IDs restricts results to an explicit id set. Populated by Narrow, never
	// bound from the request.
	IDs []string `query:"-"`
	// None marks a narrowing that can match no rows (a parent with no linked
	// students). Repositories must return an empty result set.
	None bool `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ClassID = core.CleanString(qf.ClassID, true /* lower */)
	qf.Status = core.CleanString(qf.Status, true)
}

func (qf *QueryFilter) Validate() error {
	if err := core.ValidateUUIDField("class_id", qf.ClassID); err != nil {
		return err
	}
	if qf.Status != "" && !Status(qf.Status).Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "unknown status"})
	}
	if !qf.EnrolledFrom.IsZero() && !qf.EnrolledTo.IsZero() && qf.EnrolledTo.Before(qf.EnrolledFrom) {
		return core.NewValidationError(nil, core.FieldError{Field: "enrolled_to", Error: "must not precede enrolled_from"})
	}
	return nil
}

// Narrow applies role-forced constraints after validation, overriding any
// caller-supplied values. Students only ever see themselves; parents only
// their linked children.
func (qf *QueryFilter) Narrow(actor access.Actor) {
	switch actor.Role {
	case access.RoleStudent:
		qf.IDs = []string{actor.ProfileID}
	case access.RoleParent:
		if len(actor.ChildIDs) == 0 {
			qf.None = true
			return
		}
		qf.IDs = actor.ChildIDs
	}
}

// Match reports whether std satisfies the filter. It is the reference
// semantics for repository implementations.
func (qf QueryFilter) Match(std Student) bool {
	if qf.None {
		return false
	}
	if len(qf.IDs) > 0 {
		var found bool
		for _, id := range qf.IDs {
			if std.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if qf.Search != "" {
		s := core.CleanString(qf.Search, true)
		if !core.ContainsFold(std.FirstName, s) && !core.ContainsFold(std.LastName, s) && !core.ContainsFold(std.StudentNumber, s) {
			return false
		}
	}
	if qf.ClassID != "" && std.ClassID.String != qf.ClassID {
		return false
	}
	if qf.Status != "" && string(std.Status) != qf.Status {
		return false
	}
	if !qf.EnrolledFrom.IsZero() && std.EnrollmentDate.Before(qf.EnrolledFrom) {
		return false
	}
	if !qf.EnrolledTo.IsZero() && std.EnrollmentDate.After(qf.EnrolledTo) {
		return false
	}
	return true
}

// GetFilter selects a single student by exactly one of its fields.
type GetFilter struct {
	ID            string
	UserID        string
	StudentNumber string
}

// OrderFields is the sort allow-list for student listings.
var OrderFields = []string{"first_name", "last_name", "student_number", "enrollment_date", "created_at"}

func DefaultOrdering() []core.DBOrdering {
	return []core.DBOrdering{{Field: "last_name", Ascending: true}}
}
