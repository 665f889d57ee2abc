package access

import "testing"

func TestAuthorize(t *testing.T) {
	admin := Actor{UserID: "u-admin", Role: RoleAdmin}
	teacherA := Actor{UserID: "u-ta", Role: RoleTeacher, ProfileID: "t-a"}
	teacherB := Actor{UserID: "u-tb", Role: RoleTeacher, ProfileID: "t-b"}
	student := Actor{UserID: "u-s1", Role: RoleStudent, ProfileID: "s-1"}
	parent := Actor{UserID: "u-p1", Role: RoleParent, ProfileID: "g-1", ChildIDs: []string{"s-1", "s-2"}}

	gradeByA := ResourceRef{StudentID: "s-1", TeacherID: "t-a"}
	classOfA := ResourceRef{StudentID: "s-3", TeacherIDs: []string{"t-a"}}
	sharedRef := ResourceRef{Shared: true}

	tests := []struct {
		name    string
		actor   Actor
		op      Operation
		ref     ResourceRef
		allowed bool
		reason  string
	}{
		{name: "admin writes anything", actor: admin, op: OpDelete, ref: ResourceRef{}, allowed: true},

		{name: "teacher updates own grade", actor: teacherA, op: OpUpdate, ref: gradeByA, allowed: true},
		{name: "other teacher cannot update", actor: teacherB, op: OpUpdate, ref: gradeByA, allowed: false, reason: ReasonNotAuthor},
		{name: "teacher writes in assigned class", actor: teacherA, op: OpCreate, ref: classOfA, allowed: true},
		{name: "teacher reads other teachers' records", actor: teacherB, op: OpRead, ref: gradeByA, allowed: true},
		{name: "teacher reads own profile scope", actor: teacherA, op: OpRead, ref: ResourceRef{TeacherID: "t-a"}, allowed: true},
		{name: "teacher denied other profile scope", actor: teacherB, op: OpRead, ref: ResourceRef{TeacherID: "t-a"}, allowed: false, reason: ReasonNotOwner},
		{name: "teacher denied other user account", actor: teacherA, op: OpRead, ref: ResourceRef{OwnerUserID: "u-tb"}, allowed: false, reason: ReasonNotOwner},

		{name: "student reads own grade", actor: student, op: OpRead, ref: gradeByA, allowed: true},
		{name: "student denied other student", actor: student, op: OpRead, ref: ResourceRef{StudentID: "s-2"}, allowed: false, reason: ReasonNotOwner},
		{name: "student cannot write", actor: student, op: OpCreate, ref: gradeByA, allowed: false, reason: ReasonRoleCannotWrite},
		{name: "student reads shared reference data", actor: student, op: OpRead, ref: sharedRef, allowed: true},
		{name: "student reads own account", actor: student, op: OpRead, ref: ResourceRef{OwnerUserID: "u-s1"}, allowed: true},

		{name: "parent reads linked child", actor: parent, op: OpRead, ref: gradeByA, allowed: true},
		{name: "parent denied unlinked student", actor: parent, op: OpRead, ref: ResourceRef{StudentID: "s-9"}, allowed: false, reason: ReasonNotLinkedStudent},
		{name: "parent cannot write", actor: parent, op: OpUpdate, ref: gradeByA, allowed: false, reason: ReasonRoleCannotWrite},
		{name: "parent reads shared reference data", actor: parent, op: OpRead, ref: sharedRef, allowed: true},

		{name: "unknown role denied", actor: Actor{Role: Role("clerk")}, op: OpRead, ref: sharedRef, allowed: false, reason: ReasonUnknownRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.actor, tt.op, tt.ref)
			if got.Allowed != tt.allowed {
				t.Fatalf("Authorize() allowed = %t; want %t", got.Allowed, tt.allowed)
			}
			if !tt.allowed && got.Reason != tt.reason {
				t.Errorf("Authorize() reason = %q; want %q", got.Reason, tt.reason)
			}
		})
	}
}

// Every non-admin role must be denied on another user's own-profile scope.
func TestAuthorize_ownProfileScopeMismatch(t *testing.T) {
	ref := ResourceRef{OwnerUserID: "u-other"}
	for _, role := range []Role{RoleTeacher, RoleParent, RoleStudent} {
		actor := Actor{UserID: "u-me", Role: role, ProfileID: "p-me"}
		if d := Authorize(actor, OpRead, ref); d.Allowed {
			t.Errorf("role %s allowed on another user's profile scope", role)
		}
	}
}
