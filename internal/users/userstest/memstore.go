// Package userstest provides an in-memory users.Store for tests.
package userstest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/trainhub/trainhub/internal/rbac"
	"github.com/trainhub/trainhub/internal/shared"
	"github.com/trainhub/trainhub/internal/users"
)

// MemStore keeps users in a map and applies scopes with rbac.Scope.Matches.
type MemStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]users.User
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{users: make(map[int64]users.User)}
}

var _ users.Store = (*MemStore)(nil)

// Seed inserts a user with the given flags and plaintext password and returns it.
func (s *MemStore) Seed(username, password string, privileges rbac.Privileges) users.User {
	hash, err := users.HashPassword(password)
	if err != nil {
		panic(err)
	}
	u, err := s.Create(context.Background(), users.NewUser{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Privileges:   privileges,
	})
	if err != nil {
		panic(err)
	}
	return *u
}

func (s *MemStore) Create(_ context.Context, in users.NewUser) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == in.Username {
			return nil, shared.Conflict(rbac.MsgUsernameTaken)
		}
	}
	s.nextID++
	u := users.User{
		ID:           s.nextID,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsStaff:      in.Privileges.IsStaff,
		IsSuperuser:  in.Privileges.IsSuperuser,
		IsActive:     in.Privileges.IsActive,
		DateJoined:   time.Now().UTC(),
	}
	s.users[u.ID] = u
	return &u, nil
}

func (s *MemStore) Get(ctx context.Context, id int64) (*users.User, error) {
	return s.First(ctx, rbac.Scope{}.Where(rbac.FieldID, id))
}

func (s *MemStore) GetByUsername(_ context.Context, username string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, shared.NotFound(rbac.MsgUserNotFound)
}

func (s *MemStore) First(ctx context.Context, scope rbac.Scope) (*users.User, error) {
	list, err := s.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, shared.NotFound(rbac.MsgUserNotFound)
	}
	return &list[0], nil
}

func (s *MemStore) List(_ context.Context, scope rbac.Scope) ([]users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]users.User, 0, len(s.users))
	for _, u := range s.users {
		if scope.Matches(u.ID, u.ID) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Update(_ context.Context, id int64, upd users.ProfileUpdate) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, shared.NotFound(rbac.MsgUserNotFound)
	}
	if upd.Username != nil {
		for _, other := range s.users {
			if other.ID != id && other.Username == *upd.Username {
				return nil, shared.Conflict(rbac.MsgUsernameTaken)
			}
		}
		u.Username = *upd.Username
	}
	setString(&u.Email, upd.Email)
	setString(&u.PasswordHash, upd.Password)
	setString(&u.FirstName, upd.FirstName)
	setString(&u.LastName, upd.LastName)
	setBool(&u.IsStaff, upd.IsStaff)
	setBool(&u.IsSuperuser, upd.IsSuperuser)
	setBool(&u.IsActive, upd.IsActive)
	if upd.Bio != nil {
		bio := *upd.Bio
		u.Bio = &bio
	}
	s.users[id] = u
	return &u, nil
}

func (s *MemStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return shared.NotFound(rbac.MsgUserNotFound)
	}
	delete(s.users, id)
	return nil
}

func (s *MemStore) Exists(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[id]
	return ok, nil
}

func (s *MemStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := s.GetByUsername(ctx, username)
	return err == nil, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
