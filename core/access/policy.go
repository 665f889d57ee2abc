// Package access decides whether a caller may perform an operation on a
// target resource. Authorize is a pure function: all ownership references
// (including a parent's linked children) must be resolved by the caller
// before the check.
package access

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
	RoleStudent Role = "student"
)

var Roles = []Role{RoleAdmin, RoleTeacher, RoleParent, RoleStudent}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleParent, RoleStudent:
		return true
	}
	return false
}

type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

func (op Operation) IsWrite() bool {
	return op != OpRead
}

// Actor is the already-authenticated caller.
// ProfileID is the id of the Student/Teacher/Guardian profile owned by the
// caller's user, empty for admins. ChildIDs is the resolved set of student ids
// linked to the caller through the guardian-student relationship; it is only
// populated for parents.
type Actor struct {
	UserID    string
	Role      Role
	ProfileID string
	ChildIDs  []string
}

func (a Actor) hasChild(studentID string) bool {
	for _, id := range a.ChildIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// ResourceRef carries the resolved ownership references of a target resource.
// The zero value means "no ownership scope": only admins pass.
type ResourceRef struct {
	// OwnerUserID is set for own-profile-scoped resources (a user account and
	// its profile endpoints).
	OwnerUserID string
	// StudentID is the owning student of the resource (grade, attendance,
	// student profile).
	StudentID string
	// TeacherID is the authoring teacher of the resource (grade, attendance)
	// or the target teacher profile id.
	TeacherID string
	// TeacherIDs is the set of teachers assigned to the resource's class or
	// subject.
	TeacherIDs []string
	// Shared marks reference data (classes, subjects) readable by any
	// authenticated role.
	Shared bool
}

func (ref ResourceRef) assignedTo(teacherID string) bool {
	if teacherID == "" {
		return false
	}
	if ref.TeacherID == teacherID {
		return true
	}
	for _, id := range ref.TeacherIDs {
		if id == teacherID {
			return true
		}
	}
	return false
}

type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision { return Decision{Allowed: true} }

func Deny(reason string) Decision { return Decision{Reason: reason} }

// Denial reasons.
const (
	ReasonRoleCannotWrite  = "role does not permit writes"
	ReasonNotOwner         = "not the resource owner"
	ReasonNotAuthor        = "resource belongs to another teacher"
	ReasonNotLinkedStudent = "student is not linked to this guardian"
	ReasonUnknownRole      = "unknown role"
)

// Authorize applies the role rules:
//   - admin: unconditional access;
//   - teacher: writes only on own-authored resources or assigned
//     classes/subjects, reads everywhere except other users' own-profile
//     scopes;
//   - student: read-only, own resources only;
//   - parent: read-only, linked children's resources only.
func Authorize(actor Actor, op Operation, ref ResourceRef) Decision {
	switch actor.Role {
	case RoleAdmin:
		return Allow()

	case RoleTeacher:
		if ref.OwnerUserID != "" && ref.OwnerUserID != actor.UserID {
			return Deny(ReasonNotOwner)
		}
		if op.IsWrite() {
			if ref.assignedTo(actor.ProfileID) {
				return Allow()
			}
			return Deny(ReasonNotAuthor)
		}
		// read-only elsewhere, except other teachers' own-profile scopes
		if ref.TeacherID != "" && ref.StudentID == "" && len(ref.TeacherIDs) == 0 && !ref.Shared {
			if ref.TeacherID != actor.ProfileID {
				return Deny(ReasonNotOwner)
			}
		}
		return Allow()

	case RoleStudent:
		if op.IsWrite() {
			return Deny(ReasonRoleCannotWrite)
		}
		if ref.OwnerUserID != "" {
			if ref.OwnerUserID == actor.UserID {
				return Allow()
			}
			return Deny(ReasonNotOwner)
		}
		if ref.Shared {
			return Allow()
		}
		if ref.StudentID != "" && ref.StudentID == actor.ProfileID {
			return Allow()
		}
		return Deny(ReasonNotOwner)

	case RoleParent:
		if op.IsWrite() {
			return Deny(ReasonRoleCannotWrite)
		}
		if ref.OwnerUserID != "" {
			if ref.OwnerUserID == actor.UserID {
				return Allow()
			}
			return Deny(ReasonNotOwner)
		}
		if ref.Shared {
			return Allow()
		}
		if ref.StudentID != "" && actor.hasChild(ref.StudentID) {
			return Allow()
		}
		return Deny(ReasonNotLinkedStudent)
	}
	return Deny(ReasonUnknownRole)
}
