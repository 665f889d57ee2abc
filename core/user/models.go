package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/access"
)

type User struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	Role         access.Role `json:"role"`
	IsActive     *bool       `json:"is_active"`
	PasswordHash []byte      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at"` // UTC
	LastLogin    time.Time   `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) SetActive(active bool) {
	u.IsActive = &active
}

func (u *User) Active() bool {
	return u.IsActive != nil && *u.IsActive
}

func (u *User) IsAdmin() bool   { return u.Role == access.RoleAdmin }
func (u *User) IsTeacher() bool { return u.Role == access.RoleTeacher }
func (u *User) IsParent() bool  { return u.Role == access.RoleParent }
func (u *User) IsStudent() bool { return u.Role == access.RoleStudent }

// ProfileKind tags the role-determined profile owned by a User.
type ProfileKind int

const (
	ProfileNone ProfileKind = iota
	ProfileStudent
	ProfileTeacher
	ProfileGuardian
)

// Profile is the Student/Teacher/Guardian row linked 1:1 to a User,
// reduced to the ownership anchor the authorization policy consumes.
type Profile struct {
	Kind ProfileKind
	ID   string
}

// ProfileKindFor maps a role to the profile kind it owns.
func ProfileKindFor(role access.Role) ProfileKind {
	switch role {
	case access.RoleStudent:
		return ProfileStudent
	case access.RoleTeacher:
		return ProfileTeacher
	case access.RoleParent:
		return ProfileGuardian
	}
	return ProfileNone
}

type NewUser struct {
	Name     string      `json:"name"`
	Username string      `json:"username" validate:"omitempty,alphanum,lowercase"`
	Email    string      `json:"email" validate:"omitempty,email"`
	Role     access.Role `json:"role" validate:"required,role"`
	Password string      `json:"password" validate:"required"`
}

func (nu *NewUser) Clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
}

// UpdateUser carries the updatable account fields. Role is deliberately
// absent: it is immutable after creation.
type UpdateUser struct {
	Name     string `json:"name"`
	Username string `json:"username" validate:"omitempty,alphanum,lowercase"`
	Email    string `json:"email" validate:"omitempty,email"`
	IsActive *bool  `json:"is_active"`
	Password string `json:"password"`
}

func (uu *UpdateUser) Clean() {
	uu.Name = core.CleanString(uu.Name)
	uu.Username = core.CleanString(uu.Username, true)
	uu.Email = core.CleanString(uu.Email, true)
}

type ResetUserPassword struct {
	UID      string `json:"uid" validate:"required"`
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Role        string    `query:"role"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true)
}

func (qf *QueryFilter) Validate() error {
	if qf.Role != "" && !access.Role(qf.Role).Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: "unknown role"})
	}
	if !qf.CreatedFrom.IsZero() && !qf.CreatedTo.IsZero() && qf.CreatedTo.Before(qf.CreatedFrom) {
		return core.NewValidationError(nil, core.FieldError{Field: "created_to", Error: "must not precede created_from"})
	}
	return nil
}

// Match reports whether usr satisfies the filter. It is the reference
// semantics for repository implementations.
func (qf QueryFilter) Match(usr User) bool {
	if qf.Search != "" {
		s := core.CleanString(qf.Search, true)
		if !core.ContainsFold(usr.Name, s) && !core.ContainsFold(usr.Username, s) && !core.ContainsFold(usr.Email, s) {
			return false
		}
	}
	if qf.Role != "" && string(usr.Role) != qf.Role {
		return false
	}
	if qf.IsActive != nil && usr.Active() != *qf.IsActive {
		return false
	}
	if !qf.CreatedFrom.IsZero() && usr.CreatedAt.Before(qf.CreatedFrom) {
		return false
	}
	if !qf.CreatedTo.IsZero() && usr.CreatedAt.After(qf.CreatedTo) {
		return false
	}
	return true
}

// GetFilter selects a single user by exactly one of its fields.
type GetFilter struct {
	ID              string
	Username        string
	Email           string
	UsernameOrEmail string
}

// OrderFields is the sort allow-list for user listings.
var OrderFields = []string{"name", "username", "email", "created_at", "last_login"}

func DefaultOrdering() []core.DBOrdering {
	return []core.DBOrdering{{Field: "created_at", Ascending: false}}
}
