package users

import (
	"context"

	"github.com/trainhub/trainhub/internal/rbac"
)

// Store is the persistence contract the users module depends on.
type Store interface {
	Create(ctx context.Context, in NewUser) (*User, error)
	Get(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	First(ctx context.Context, scope rbac.Scope) (*User, error)
	List(ctx context.Context, scope rbac.Scope) ([]User, error)
	Update(ctx context.Context, id int64, upd ProfileUpdate) (*User, error)
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

var _ Store = (*Repository)(nil)

// Directory exposes a Store as the credential lookup used by the evaluator.
type Directory struct {
	store Store
}

// NewDirectory wraps store.
func NewDirectory(store Store) *Directory {
	return &Directory{store: store}
}

// LookupCredential returns the principal and password hash for username.
func (d *Directory) LookupCredential(ctx context.Context, username string) (*rbac.Credential, error) {
	user, err := d.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &rbac.Credential{Principal: user.Principal(), PasswordHash: user.PasswordHash}, nil
}

// UsernameExists reports whether username is taken.
func (d *Directory) UsernameExists(ctx context.Context, username string) (bool, error) {
	return d.store.UsernameExists(ctx, username)
}

// UserExists reports whether a user with id exists.
func (d *Directory) UserExists(ctx context.Context, id int64) (bool, error) {
	return d.store.Exists(ctx, id)
}

var _ rbac.Directory = (*Directory)(nil)
