package schedules

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

const (
	scheduleFields  = `id, user_id, date, description`
	selectSchedules = `SELECT ` + scheduleFields + ` FROM training_schedules`
)

var scheduleColumns = db.Columns{
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

// List returns schedule entries matching scope ordered by id.
func (r *Repository) List(ctx context.Context, scope rbac.Scope) ([]TrainingSchedule, error) {
	where, args := db.WhereClause(scope, scheduleColumns, nil)
	rows, err := r.pool.Query(ctx, selectSchedules+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("schedules: list: %w", err)
	}
	defer rows.Close()
	out := make([]TrainingSchedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schedules: list: %w", err)
	}
	return out, nil
}

// First returns the first entry matching scope.
func (r *Repository) First(ctx context.Context, scope rbac.Scope) (*TrainingSchedule, error) {
	where, args := db.WhereClause(scope, scheduleColumns, nil)
	return scanSchedule(r.pool.QueryRow(ctx, selectSchedules+where+` ORDER BY id LIMIT 1`, args...))
}

// Create inserts an entry.
func (r *Repository) Create(ctx context.Context, s TrainingSchedule) (*TrainingSchedule, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO training_schedules (user_id, date, description)
		VALUES ($1, $2, $3)
		RETURNING `+scheduleFields,
		s.User, s.Date.Time, s.Description)
	created, err := scanSchedule(row)
	if err != nil {
		return nil, mapWriteError(err, s.User)
	}
	return created, nil
}

// Update overwrites the entry with id s.ID when it still matches scope.
func (r *Repository) Update(ctx context.Context, scope rbac.Scope, s TrainingSchedule) (*TrainingSchedule, error) {
	where, args := db.WhereClause(scope.Where(rbac.FieldID, s.ID), scheduleColumns,
		[]any{s.User, s.Date.Time, s.Description})
	row := r.pool.QueryRow(ctx, `UPDATE training_schedules
		SET user_id = $1, date = $2, description = $3`+where+`
		RETURNING `+scheduleFields, args...)
	updated, err := scanSchedule(row)
	if err != nil {
		return nil, mapWriteError(err, s.User)
	}
	return updated, nil
}

// Delete removes the entry matching scope.
func (r *Repository) Delete(ctx context.Context, scope rbac.Scope) error {
	where, args := db.WhereClause(scope, scheduleColumns, nil)
	tag, err := r.pool.Exec(ctx, `DELETE FROM training_schedules`+where, args...)
	if err != nil {
		return fmt.Errorf("schedules: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound(rbac.MsgScheduleNotFound)
	}
	return nil
}

func mapWriteError(err error, userID int64) error {
	if db.IsForeignKeyViolation(err) {
		return shared.Validation(`Invalid pk "%d" - object does not exist.`, userID)
	}
	return err
}

func scanSchedule(row pgx.Row) (*TrainingSchedule, error) {
	var s TrainingSchedule
	if err := row.Scan(&s.ID, &s.User, &s.Date.Time, &s.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFound(rbac.MsgScheduleNotFound)
		}
		return nil, fmt.Errorf("schedules: scan: %w", err)
	}
	return &s, nil
}
