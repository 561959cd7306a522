package users

import (
	"time"

	"github.com/trainhub/trainhub/internal/rbac"
)

// User represents a user account together with its profile extension.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	IsStaff      bool       `json:"is_staff"`
	IsSuperuser  bool       `json:"is_superuser"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	DateJoined   time.Time  `json:"date_joined"`
	Bio          *string    `json:"bio"`
}

// Principal converts the account into the identity used for access decisions.
func (u User) Principal() rbac.Principal {
	return rbac.Principal{
		ID:          u.ID,
		Username:    u.Username,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
	}
}

// NewUser carries the fields persisted at registration.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Privileges   rbac.Privileges
}

// ProfileUpdate is a partial update; nil fields keep their stored value.
type ProfileUpdate struct {
	Username    *string `json:"username,omitempty" validate:"omitempty,min=1,max=150"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=1"`
	FirstName   *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName    *string `json:"last_name,omitempty" validate:"omitempty,max=150"`
	IsStaff     *bool   `json:"is_staff,omitempty"`
	IsSuperuser *bool   `json:"is_superuser,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	Bio         *string `json:"bio,omitempty"`
}

// ChangesPrivileges reports whether the update touches role flags.
func (u ProfileUpdate) ChangesPrivileges() bool {
	return u.IsStaff != nil || u.IsSuperuser != nil || u.IsActive != nil
}

// Entity names used in audit records.
const (
	AuditEntityUser = "user"
)
