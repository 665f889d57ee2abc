package attendance

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/access"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"
)

var Statuses = []Status{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// Attended reports whether the status counts towards the attendance rate.
// Late arrivals count as attended.
func (s Status) Attended() bool {
	return s == StatusPresent || s == StatusLate
}

// Attendance is one student's record for one class on one date. At most one
// row exists per (StudentID, ClassID, Date); marking again overwrites it.
type Attendance struct {
	ID        string      `json:"id"`
	StudentID string      `json:"student_id"`
	ClassID   string      `json:"class_id"`
	SubjectID null.String `json:"subject_id"`
	TeacherID string      `json:"teacher_id"`
	Date      time.Time   `json:"date"`
	Status    Status      `json:"status"`
	TimeIn    null.Time   `json:"time_in"`
	Reason    null.String `json:"reason"`
	Notes     null.String `json:"notes"`
	CreatedAt time.Time   `json:"created_at"` // UTC
	UpdatedAt time.Time   `json:"updated_at"` // UTC
}

// Mark is the payload for recording (or re-recording) attendance.
type Mark struct {
	StudentID string `json:"student_id" validate:"required,uuid4"`
	ClassID   string `json:"class_id" validate:"required,uuid4"`
	SubjectID string `json:"subject_id" validate:"omitempty,uuid4"`
	// TeacherID is forced to the caller's own profile id for teacher callers;
	// admins must supply it.
	TeacherID string     `json:"teacher_id" validate:"omitempty,uuid4"`
	Date      time.Time  `json:"date"`
	Status    Status     `json:"status" validate:"required,oneof=present absent late excused"`
	TimeIn    *time.Time `json:"time_in"`
	Reason    string     `json:"reason"`
	Notes     string     `json:"notes"`
}

func (m *Mark) Clean() {
	m.Reason = core.CleanString(m.Reason)
	m.Notes = core.CleanString(m.Notes)
}

// Key is the uniqueness key of an attendance row.
func (m Mark) Key() (studentID, classID string, date time.Time) {
	return m.StudentID, m.ClassID, m.Date
}

// Result is the per-item outcome of a batch marking. Batches are applied
// sequentially without a surrounding transaction; earlier successes stand
// when a later item fails.
type Result struct {
	Index      int         `json:"index"`
	Attendance *Attendance `json:"attendance,omitempty"`
	Error      string      `json:"error,omitempty"`
}

func (r Result) OK() bool { return r.Error == "" }

type QueryFilter struct {
	StudentID string    `query:"student_id"`
	ClassID   string    `query:"class_id"`
	SubjectID string    `query:"subject_id"`
	TeacherID string    `query:"teacher_id"`
	Status    string    `query:"status"`
	DateFrom  time.Time `query:"date_from"`
	DateTo    time.Time `query:"date_to"`

	// StudentIDs restricts results to an explicit student set. Populated by
	// Narrow for parent callers, never bound from the request.
	StudentIDs []string `query:"-"`
	// None marks a narrowing that can match no rows.
	None bool `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID, true /* lower */)
	qf.ClassID = core.CleanString(qf.ClassID, true)
	qf.SubjectID = core.CleanString(qf.SubjectID, true)
	qf.TeacherID = core.CleanString(qf.TeacherID, true)
	qf.Status = core.CleanString(qf.Status, true)
}

func (qf *QueryFilter) Validate() error {
	for _, fld := range []struct{ name, value string }{
		{"student_id", qf.StudentID},
		{"class_id", qf.ClassID},
		{"subject_id", qf.SubjectID},
		{"teacher_id", qf.TeacherID},
	} {
		if err := core.ValidateUUIDField(fld.name, fld.value); err != nil {
			return err
		}
	}
	if qf.Status != "" && !Status(qf.Status).Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "unknown status"})
	}
	if !qf.DateFrom.IsZero() && !qf.DateTo.IsZero() && qf.DateTo.Before(qf.DateFrom) {
		return core.NewValidationError(nil, core.FieldError{Field: "date_to", Error: "must not precede date_from"})
	}
	return nil
}

// Narrow applies role-forced constraints after validation, overriding any
// caller-supplied values.
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
					return
				}
			}
			qf.StudentID = ""
		}
		qf.StudentIDs = actor.ChildIDs
	}
}

// Match reports whether att satisfies the filter. It is the reference
// semantics for repository implementations.
func (qf QueryFilter) Match(att Attendance) bool {
	if qf.None {
		return false
	}
	if len(qf.StudentIDs) > 0 {
		var found bool
		for _, id := range qf.StudentIDs {
			if att.StudentID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if qf.StudentID != "" && att.StudentID != qf.StudentID {
		return false
	}
	if qf.ClassID != "" && att.ClassID != qf.ClassID {
		return false
	}
	if qf.SubjectID != "" && att.SubjectID.String != qf.SubjectID {
		return false
	}
	if qf.TeacherID != "" && att.TeacherID != qf.TeacherID {
		return false
	}
	if qf.Status != "" && string(att.Status) != qf.Status {
		return false
	}
	if !qf.DateFrom.IsZero() && att.Date.Before(qf.DateFrom) {
		return false
	}
	if !qf.DateTo.IsZero() && att.Date.After(qf.DateTo) {
		return false
	}
	return true
}

type GetFilter struct {
	ID string
	// StudentID+ClassID+Date selects by the uniqueness key.
	StudentID string
	ClassID   string
	Date      time.Time
}

// OrderFields is the sort allow-list for attendance listings.
var OrderFields = []string{"date", "time_in", "status", "created_at"}

func DefaultOrdering() []core.DBOrdering {
	return []core.DBOrdering{
		{Field: "date", Ascending: false},
		{Field: "time_in", Ascending: true},
	}
}
