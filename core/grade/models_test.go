package grade

import (
	"testing"

	"github.com/maktabuz/maktab/core/access"
)

// A student caller can never widen the filter past their own records,
// whatever student_id they supply.
func TestNarrowStudent(t *testing.T) {
	for _, supplied := range []string{"", "someone-else", "own-id"} {
		qf := QueryFilter{StudentID: supplied}
		qf.Narrow(access.Actor{Role: access.RoleStudent, ProfileID: "own-id"})
		if qf.StudentID != "own-id" {
			t.Errorf("StudentID = %q after narrowing with input %q; want %q", qf.StudentID, supplied, "own-id")
		}
	}
}

func TestNarrowTeacher(t *testing.T) {
	qf := QueryFilter{TeacherID: "someone-else"}
	qf.Narrow(access.Actor{Role: access.RoleTeacher, ProfileID: "own-id"})
	if qf.TeacherID != "own-id" {
		t.Errorf("TeacherID = %q; want %q", qf.TeacherID, "own-id")
	}
}

func TestNarrowParent(t *testing.T) {
	t.Run("forced to children set", func(t *testing.T) {
		qf := QueryFilter{StudentID: "stranger"}
		qf.Narrow(access.Actor{Role: access.RoleParent, ChildIDs: []string{"kid-1", "kid-2"}})
		if qf.StudentID != "" || len(qf.StudentIDs) != 2 {
			t.Errorf("got StudentID=%q StudentIDs=%v; want narrowing to children", qf.StudentID, qf.StudentIDs)
		}
	})
	t.Run("linked child kept", func(t *testing.T) {
		qf := QueryFilter{StudentID: "kid-2"}
		qf.Narrow(access.Actor{Role: access.RoleParent, ChildIDs: []string{"kid-1", "kid-2"}})
		if qf.StudentID != "kid-2" {
			t.Errorf("StudentID = %q; want kid-2", qf.StudentID)
		}
	})
	t.Run("no children matches nothing", func(t *testing.T) {
		qf := QueryFilter{}
		qf.Narrow(access.Actor{Role: access.RoleParent})
		if !qf.None {
			t.Error("None = false; want true")
		}
		if qf.Match(Grade{StudentID: "any"}) {
			t.Error("Match() = true on a None filter")
		}
	})
}

func TestQueryFilterValidate(t *testing.T) {
	tests := []struct {
		name    string
		filter  QueryFilter
		wantErr bool
	}{
		{name: "empty", filter: QueryFilter{}},
		{name: "bad uuid", filter: QueryFilter{StudentID: "25df288e-2v"}, wantErr: true},
		{name: "bad grade type", filter: QueryFilter{Type: "homework"}, wantErr: true},
		{name: "bad semester", filter: QueryFilter{Semester: 3}, wantErr: true},
		{name: "bad academic year", filter: QueryFilter{AcademicYear: "2024-2026"}, wantErr: true},
		{name: "known grade type", filter: QueryFilter{Type: "exam"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v; wantErr %t", err, tt.wantErr)
			}
		})
	}
}
