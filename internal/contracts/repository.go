package contracts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trainhub/trainhub/internal/platform/db"
	"github.com/trainhub/trainhub/internal/rbac"
	"github.com/trainhub/trainhub/internal/shared"
)

const selectContracts = `SELECT id, user_id, start_date, end_date, terms FROM contracts`

var contractColumns = db.Columns{
	rbac.FieldID:     "id",
	rbac.FieldUserID: "user_id",
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

// List returns contracts matching scope ordered by id.
func (r *Repository) List(ctx context.Context, scope rbac.Scope) ([]Contract, error) {
	where, args := db.WhereClause(scope, contractColumns, nil)
	rows, err := r.pool.Query(ctx, selectContracts+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("contracts: list: %w", err)
	}
	defer rows.Close()
	out := make([]Contract, 0)
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("contracts: list: %w", err)
	}
	return out, nil
}

// First returns the first contract matching scope.
func (r *Repository) First(ctx context.Context, scope rbac.Scope) (*Contract, error) {
	where, args := db.WhereClause(scope, contractColumns, nil)
	return scanContract(r.pool.QueryRow(ctx, selectContracts+where+` ORDER BY id LIMIT 1`, args...))
}

// Create inserts a contract.
func (r *Repository) Create(ctx context.Context, c Contract) (*Contract, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO contracts (user_id, start_date, end_date, terms)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, start_date, end_date, terms`,
		c.User, c.StartDate.Time, c.EndDate.Time, c.Terms)
	created, err := scanContract(row)
	if err != nil {
		return nil, mapWriteError(err, c.User)
	}
	return created, nil
}

// Update overwrites every column of contract c.ID. A row that no longer
// matches scope is left untouched and reported as not found.
func (r *Repository) Update(ctx context.Context, scope rbac.Scope, c Contract) (*Contract, error) {
	where, args := db.WhereClause(scope.Where(rbac.FieldID, c.ID), contractColumns,
		[]any{c.User, c.StartDate.Time, c.EndDate.Time, c.Terms})
	row := r.pool.QueryRow(ctx, `UPDATE contracts
		SET user_id = $1, start_date = $2, end_date = $3, terms = $4`+where+`
		RETURNING id, user_id, start_date, end_date, terms`, args...)
	updated, err := scanContract(row)
	if err != nil {
		return nil, mapWriteError(err, c.User)
	}
	return updated, nil
}

// Delete removes the contract matching scope.
func (r *Repository) Delete(ctx context.Context, scope rbac.Scope) error {
	where, args := db.WhereClause(scope, contractColumns, nil)
	tag, err := r.pool.Exec(ctx, `DELETE FROM contracts`+where, args...)
	if err != nil {
		return fmt.Errorf("contracts: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound(rbac.MsgContractNotFound)
	}
	return nil
}

func mapWriteError(err error, userID int64) error {
	if db.IsForeignKeyViolation(err) {
		return shared.Validation(`Invalid pk "%d" - object does not exist.`, userID)
	}
	return err
}

func scanContract(row pgx.Row) (*Contract, error) {
	var c Contract
	if err := row.Scan(&c.ID, &c.User, &c.StartDate.Time, &c.EndDate.Time, &c.Terms); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFound(rbac.MsgContractNotFound)
		}
		return nil, fmt.Errorf("contracts: scan: %w", err)
	}
	return &c, nil
}
