package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trainhub/trainhub/internal/platform/db"
	"github.com/trainhub/trainhub/internal/rbac"
	"github.com/trainhub/trainhub/internal/shared"
)

const selectUsers = `SELECT u.id, u.username, u.email, u.password, u.first_name, u.last_name,
	u.is_staff, u.is_superuser, u.is_active, u.last_login, u.date_joined, p.bio
FROM users u
LEFT JOIN profiles p ON p.user_id = u.id`

var userColumns = db.Columns{
	rbac.FieldID:     "u.id",
	rbac.FieldUserID: "u.id",
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, in NewUser) (*User, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO users
		(username, email, password, first_name, last_name, is_staff, is_superuser, is_active, date_joined)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		in.Username, in.Email, in.PasswordHash, in.FirstName, in.LastName,
		in.Privileges.IsStaff, in.Privileges.IsSuperuser, in.Privileges.IsActive, time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, shared.Conflict(rbac.MsgUsernameTaken)
		}
		return nil, fmt.Errorf("users: insert: %w", err)
	}
	return r.Get(ctx, id)
}

// Get fetches a user by id.
func (r *Repository) Get(ctx context.Context, id int64) (*User, error) {
	return r.First(ctx, rbac.Scope{}.Where(rbac.FieldID, id))
}

// GetByUsername fetches a user by exact username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := r.pool.QueryRow(ctx, selectUsers+` WHERE u.username = $1`, username)
	return scanUser(row)
}

// First returns the first user matching scope.
func (r *Repository) First(ctx context.Context, scope rbac.Scope) (*User, error) {
	where, args := db.WhereClause(scope, userColumns, nil)
	row := r.pool.QueryRow(ctx, selectUsers+where+` ORDER BY u.id LIMIT 1`, args...)
	return scanUser(row)
}

// List returns every user matching scope ordered by id.
func (r *Repository) List(ctx context.Context, scope rbac.Scope) ([]User, error) {
	where, args := db.WhereClause(scope, userColumns, nil)
	rows, err := r.pool.Query(ctx, selectUsers+where+` ORDER BY u.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()
	users := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	return users, nil
}

// Update applies a partial update. upd.Password must already be hashed.
func (r *Repository) Update(ctx context.Context, id int64, upd ProfileUpdate) (*User, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE users SET
			username = COALESCE($2, username),
			email = COALESCE($3, email),
			password = COALESCE($4, password),
			first_name = COALESCE($5, first_name),
			last_name = COALESCE($6, last_name),
			is_staff = COALESCE($7, is_staff),
			is_superuser = COALESCE($8, is_superuser),
			is_active = COALESCE($9, is_active)
			WHERE id = $1`,
			id, upd.Username, upd.Email, upd.Password, upd.FirstName, upd.LastName,
			upd.IsStaff, upd.IsSuperuser, upd.IsActive,
		)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return shared.Conflict(rbac.MsgUsernameTaken)
			}
			return fmt.Errorf("users: update: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return shared.NotFound(rbac.MsgUserNotFound)
		}
		if upd.Bio == nil {
			return nil
		}
		if _, err := tx.Exec(ctx, `INSERT INTO profiles (user_id, bio) VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE SET bio = EXCLUDED.bio`, id, *upd.Bio); err != nil {
			return fmt.Errorf("users: upsert profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Delete removes a user; profiles, contracts and schedules cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("users: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound(rbac.MsgUserNotFound)
	}
	return nil
}

// Exists reports whether a user with id exists.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("users: exists: %w", err)
	}
	return exists, nil
}

// UsernameExists reports whether username is taken.
func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("users: username exists: %w", err)
	}
	return exists, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		u         User
		lastLogin pgtype.Timestamptz
		bio       pgtype.Text
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsStaff, &u.IsSuperuser, &u.IsActive, &lastLogin, &u.DateJoined, &bio)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFound(rbac.MsgUserNotFound)
		}
		return nil, fmt.Errorf("users: scan: %w", err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	if bio.Valid {
		s := bio.String
		u.Bio = &s
	}
	return &u, nil
}
