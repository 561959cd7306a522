package schedules

import (
	"context"
	"strings"

	"github.com/trainhub/trainhub/internal/rbac"
	"github.com/trainhub/trainhub/internal/shared"
)

// TrainingSchedule is a dated training entry assigned to a user.
type TrainingSchedule struct {
	ID          int64       `json:"id"`
	User        int64       `json:"user"`
	Date        shared.Date `json:"date"`
	Description string      `json:"description"`
}

// CreateRequest is the body of a schedule create. User defaults to the caller.
type CreateRequest struct {
	User        *int64       `json:"user" validate:"omitempty,gt=0"`
	Date        *shared.Date `json:"date" validate:"required"`
	Description *string      `json:"description" validate:"required"`
}

func (r CreateRequest) build(assignee int64) (TrainingSchedule, error) {
	switch {
	case r.Date == nil:
		return TrainingSchedule{}, shared.Validation("date: This field is required.")
	case r.Description == nil:
		return TrainingSchedule{}, shared.Validation("description: This field is required.")
	}
	return TrainingSchedule{User: assignee, Date: *r.Date, Description: *r.Description}, nil
}

// UpdateRequest is a partial update; nil fields keep their stored value.
type UpdateRequest struct {
	User        *int64       `json:"user" validate:"omitempty,gt=0"`
	Date        *shared.Date `json:"date"`
	Description *string      `json:"description"`
}

// Apply merges the set fields of u into s.
func (u UpdateRequest) Apply(s TrainingSchedule) TrainingSchedule {
	if u.User != nil {
		s.User = *u.User
	}
	if u.Date != nil {
		s.Date = *u.Date
	}
	if u.Description != nil {
		s.Description = *u.Description
	}
	return s
}

// Validate checks the record invariants.
func (s TrainingSchedule) Validate() error {
	if strings.TrimSpace(s.Description) == "" {
		return shared.Validation("description: This field may not be blank.")
	}
	return nil
}

// Store is the persistence contract for schedules.
type Store interface {
	List(ctx context.Context, scope rbac.Scope) ([]TrainingSchedule, error)
	First(ctx context.Context, scope rbac.Scope) (*TrainingSchedule, error)
	Create(ctx context.Context, s TrainingSchedule) (*TrainingSchedule, error)
	Update(ctx context.Context, scope rbac.Scope, s TrainingSchedule) (*TrainingSchedule, error)
	Delete(ctx context.Context, scope rbac.Scope) error
}

// AuditEntitySchedule names schedule entries in audit records.
const AuditEntitySchedule = "training_schedule"
