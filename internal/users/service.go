package users

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/trainhub/trainhub/internal/rbac"
	"github.com/trainhub/trainhub/internal/shared"
)

// Service handles user and profile business logic.
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

// DeleteUser removes a user account. Only superusers may do this.
func (s *Service) DeleteUser(ctx context.Context, actor *rbac.Principal, id int64) error {
	if err := s.evaluator.AuthorizeUserDelete(ctx, actor, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.recordDelete(ctx, actor, id, "user")
	return nil
}

// GetProfile returns a single user visible to actor.
func (s *Service) GetProfile(ctx context.Context, actor *rbac.Principal, id int64) (*User, error) {
	scope, err := s.evaluator.AuthorizeProfileRead(actor, &id)
	if err != nil {
		return nil, err
	}
	return s.store.First(ctx, scope)
}

// ListProfiles returns every user visible to actor.
func (s *Service) ListProfiles(ctx context.Context, actor *rbac.Principal) ([]User, error) {
	scope, err := s.evaluator.AuthorizeProfileRead(actor, nil)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, scope)
}

// UpdateProfile applies a partial update to the targeted user, or to actor
// when id is nil.
func (s *Service) UpdateProfile(ctx context.Context, actor *rbac.Principal, id *int64, upd ProfileUpdate) (*User, error) {
	target, err := s.evaluator.AuthorizeProfileWrite(actor, id, upd.ChangesPrivileges())
	if err != nil {
		return nil, err
	}
	if upd.Username != nil {
		normalized := NormalizeUsername(*upd.Username)
		upd.Username = &normalized
	}
	if upd.Password != nil {
		hash, err := HashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		upd.Password = &hash
	}
	return s.store.Update(ctx, target, upd)
}

// DeleteProfile removes the user behind a profile.
func (s *Service) DeleteProfile(ctx context.Context, actor *rbac.Principal, id *int64) error {
	target, err := s.evaluator.AuthorizeProfileDelete(actor, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, target); err != nil {
		return err
	}
	s.recordDelete(ctx, actor, target, "profile")
	return nil
}

func (s *Service) recordDelete(ctx context.Context, actor *rbac.Principal, id int64, via string) {
	shared.RecordAudit(ctx, s.audit, s.logger, shared.AuditLog{
		ActorID:  actor.GetID(),
		Action:   shared.AuditActionDelete,
		Entity:   AuditEntityUser,
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"via": via},
	})
}
