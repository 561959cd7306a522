package rbac

import "context"

// Principal describes the authenticated actor.
type Principal struct {
	ID          int64
	Username    string
	IsStaff     bool
	IsSuperuser bool
	IsActive    bool
}

// GetID returns the principal's user id.
func (p *Principal) GetID() int64 {
	if p == nil {
		return 0
	}
	return p.ID
}

// IsSuperUser reports whether the principal bypasses role checks.
func (p *Principal) IsSuperUser() bool {
	return p != nil && p.IsSuperuser
}

// Elevated reports whether the principal is staff or superuser.
func (p *Principal) Elevated() bool {
	return p != nil && (p.IsStaff || p.IsSuperuser)
}

// Credential pairs a principal with its stored password hash.
type Credential struct {
	Principal    Principal
	PasswordHash string
}

// Privileges are the role flags a registration or profile update may carry.
type Privileges struct {
	IsStaff     bool
	IsSuperuser bool
	IsActive    bool
}

// Policy toggles between the permissive legacy rules and hardened ownership rules.
type Policy struct {
	// EnforceOwnership restricts profile and schedule access to the owner (or
	// staff/superuser) and prevents contracts from being created for other users.
	EnforceOwnership bool
	// AllowRegisterPrivileges honours is_staff/is_superuser/is_active sent to
	// the public registration endpoint.
	AllowRegisterPrivileges bool
}

// DefaultPolicy keeps the permissive rules existing clients depend on.
func DefaultPolicy() Policy {
	return Policy{EnforceOwnership: false, AllowRegisterPrivileges: true}
}

// Directory is the read-only view of the credential store the evaluator needs.
type Directory interface {
	LookupCredential(ctx context.Context, username string) (*Credential, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UserExists(ctx context.Context, id int64) (bool, error)
}
