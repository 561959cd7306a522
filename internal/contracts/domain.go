package contracts

import (
	"context"
	"strings"

	"github.com/trainhub/trainhub/internal/rbac"
	"github.com/trainhub/trainhub/internal/shared"
)

// Contract is an employment contract owned by one user.
type Contract struct {
	ID        int64       `json:"id"`
	User      int64       `json:"user"`
	StartDate shared.Date `json:"start_date"`
	EndDate   shared.Date `json:"end_date"`
	Terms     string      `json:"terms"`
}

// CreateRequest is the body of a contract create.
type CreateRequest struct {
	User      *int64       `json:"user" validate:"omitempty,gt=0"`
	StartDate *shared.Date `json:"start_date" validate:"required"`
	EndDate   *shared.Date `json:"end_date" validate:"required"`
	Terms     *string      `json:"terms" validate:"required"`
}

func (r CreateRequest) build(owner int64) (Contract, error) {
	switch {
	case r.StartDate == nil:
		return Contract{}, shared.Validation("start_date: This field is required.")
	case r.EndDate == nil:
		return Contract{}, shared.Validation("end_date: This field is required.")
	case r.Terms == nil:
		return Contract{}, shared.Validation("terms: This field is required.")
	}
	return Contract{User: owner, StartDate: *r.StartDate, EndDate: *r.EndDate, Terms: *r.Terms}, nil
}

// UpdateRequest is a partial update; nil fields keep their stored value.
type UpdateRequest struct {
	User      *int64       `json:"user" validate:"omitempty,gt=0"`
	StartDate *shared.Date `json:"start_date"`
	EndDate   *shared.Date `json:"end_date"`
	Terms     *string      `json:"terms"`
}

// Apply merges the set fields of u into c.
func (u UpdateRequest) Apply(c Contract) Contract {
	if u.User != nil {
		c.User = *u.User
	}
	if u.StartDate != nil {
		c.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		c.EndDate = *u.EndDate
	}
	if u.Terms != nil {
		c.Terms = *u.Terms
	}
	return c
}

// Validate checks the record invariants that hold after create or merge.
func (c Contract) Validate() error {
	if strings.TrimSpace(c.Terms) == "" {
		return shared.Validation("terms: This field may not be blank.")
	}
	if c.StartDate.After(c.EndDate) {
		return shared.Validation("end_date: Must not be earlier than start_date.")
	}
	return nil
}

// Store is the persistence contract for contracts. Scoped operations see only
// records matching every condition of the scope.
type Store interface {
	List(ctx context.Context, scope rbac.Scope) ([]Contract, error)
	First(ctx context.Context, scope rbac.Scope) (*Contract, error)
	Create(ctx context.Context, c Contract) (*Contract, error)
	Update(ctx context.Context, scope rbac.Scope, c Contract) (*Contract, error)
	Delete(ctx context.Context, scope rbac.Scope) error
}

// AuditEntityContract names contracts in audit records.
const AuditEntityContract = "contract"
