package schedules

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/trainhub/trainhub/internal/rbac"
	"github.com/trainhub/trainhub/internal/shared"
)

// Service handles training schedule business logic.
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

// List returns the entries visible to actor narrowed by filters.
func (s *Service) List(ctx context.Context, actor *rbac.Principal, filters rbac.Filters) ([]TrainingSchedule, error) {
	scope, err := s.evaluator.AuthorizeScheduleRead(actor, nil, filters)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, scope)
}

// Get returns a single entry.
func (s *Service) Get(ctx context.Context, actor *rbac.Principal, id int64) (*TrainingSchedule, error) {
	scope, err := s.evaluator.AuthorizeScheduleRead(actor, &id, rbac.Filters{})
	if err != nil {
		return nil, err
	}
	return s.store.First(ctx, scope)
}

// Create stores a new entry.
func (s *Service) Create(ctx context.Context, actor *rbac.Principal, req CreateRequest) (*TrainingSchedule, error) {
	assignee, err := s.evaluator.AuthorizeScheduleCreate(ctx, actor, req.User)
	if err != nil {
		return nil, err
	}
	entry, err := req.build(assignee)
	if err != nil {
		return nil, err
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return s.store.Create(ctx, entry)
}

// Update applies a partial update to an entry.
func (s *Service) Update(ctx context.Context, actor *rbac.Principal, id *int64, req UpdateRequest) (*TrainingSchedule, error) {
	scope, err := s.evaluator.AuthorizeScheduleWrite(ctx, actor, id, req.User)
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

// Delete removes an entry.
func (s *Service) Delete(ctx context.Context, actor *rbac.Principal, id *int64) error {
	scope, err := s.evaluator.AuthorizeScheduleDelete(actor, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, scope); err != nil {
		return err
	}
	shared.RecordAudit(ctx, s.audit, s.logger, shared.AuditLog{
		ActorID:  actor.GetID(),
		Action:   shared.AuditActionDelete,
		Entity:   AuditEntitySchedule,
		EntityID: strconv.FormatInt(*id, 10),
	})
	return nil
}
