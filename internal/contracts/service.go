package contracts

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/trainhub/trainhub/internal/rbac"
	"github.com/trainhub/trainhub/internal/shared"
)

// Service handles contract business logic.
type Service struct {
	store     Store
	evaluator *rbac.Evaluator
	audit     shared.AuditRecorder
	logger    *slog.Logger
}

// NewService builds Service instance.
func NewService(store Store, evaluator *rbac.Evaluator, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{store: store, evaluator: evaluator, audit: audit, logger: logger}
}

// List returns the actor's contracts narrowed by filters.
func (s *Service) List(ctx context.Context, actor *rbac.Principal, filters rbac.Filters) ([]Contract, error) {
	scope, err := s.evaluator.AuthorizeContractRead(actor, nil, filters)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, scope)
}

// Get returns one of the actor's contracts.
func (s *Service) Get(ctx context.Context, actor *rbac.Principal, id int64) (*Contract, error) {
	scope, err := s.evaluator.AuthorizeContractRead(actor, &id, rbac.Filters{})
	if err != nil {
		return nil, err
	}
	return s.store.First(ctx, scope)
}

// Create stores a new contract.
func (s *Service) Create(ctx context.Context, actor *rbac.Principal, req CreateRequest) (*Contract, error) {
	owner, err := s.evaluator.AuthorizeContractCreate(ctx, actor, req.User)
	if err != nil {
		return nil, err
	}
	c, err := req.build(owner)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return s.store.Create(ctx, c)
}

// Update applies a partial update to one of the actor's contracts.
func (s *Service) Update(ctx context.Context, actor *rbac.Principal, id *int64, req UpdateRequest) (*Contract, error) {
	scope, err := s.evaluator.AuthorizeContractWrite(ctx, actor, id, req.User)
	if err != nil {
		return nil, err
	}
	current, err := s.store.First(ctx, scope)
	if err != nil {
		return nil, err
	}
	merged := req.Apply(*current)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, scope, merged)
}

// Delete removes one of the actor's contracts.
func (s *Service) Delete(ctx context.Context, actor *rbac.Principal, id *int64) error {
	scope, err := s.evaluator.AuthorizeContractDelete(actor, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, scope); err != nil {
		return err
	}
	shared.RecordAudit(ctx, s.audit, s.logger, shared.AuditLog{
		ActorID:  actor.GetID(),
		Action:   shared.AuditActionDelete,
		Entity:   AuditEntityContract,
		EntityID: strconv.FormatInt(*id, 10),
	})
	return nil
}
