package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/trainhub/trainhub/internal/rbac"
	"github.com/trainhub/trainhub/internal/shared"
	"github.com/trainhub/trainhub/internal/users"
)

// Messages specific to token handling.
const (
	MsgTokenNotValid   = "Given token not valid for any token type"
	MsgRefreshNotValid = "Token is invalid or expired"
	MsgRefreshRevoked  = "Token is blacklisted"
	MsgNoActiveAccount = "No active account found with the given credentials"
	MsgUserInactive    = "User is inactive"
	MsgUserCreated     = "User created successfully"
)

// Accounts is the subset of the user store authentication needs.
type Accounts interface {
	Create(ctx context.Context, in users.NewUser) (*users.User, error)
	Get(ctx context.Context, id int64) (*users.User, error)
	GetByUsername(ctx context.Context, username string) (*users.User, error)
}

// Options toggles refresh token rotation.
type Options struct {
	RotateRefresh          bool
	BlacklistAfterRotation bool
}

// Service wraps registration, login and token business rules.
type Service struct {
	accounts  Accounts
	evaluator *rbac.Evaluator
	issuer    *TokenIssuer
	denylist  Denylist
	opts      Options
	audit     shared.AuditRecorder
	logger    *slog.Logger
}

// NewService constructs a new Service. denylist may be nil when rotation
// blacklisting is disabled.
func NewService(accounts Accounts, evaluator *rbac.Evaluator, issuer *TokenIssuer, denylist Denylist, opts Options, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		accounts:  accounts,
		evaluator: evaluator,
		issuer:    issuer,
		denylist:  denylist,
		opts:      opts,
		audit:     audit,
		logger:    logger,
	}
}

// Registration is the input to Register.
type Registration struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Requested rbac.Privileges
}

// Register creates a new account.
func (s *Service) Register(ctx context.Context, in Registration) (*users.User, error) {
	username := users.NormalizeUsername(in.Username)
	granted, err := s.evaluator.AuthorizeRegister(ctx, username, in.Email, in.Password, in.Requested)
	if err != nil {
		return nil, err
	}
	hash, err := users.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user, err := s.accounts.Create(ctx, users.NewUser{
		Username:     username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Privileges:   granted,
	})
	if err != nil {
		return nil, err
	}
	shared.RecordAudit(ctx, s.audit, s.logger, shared.AuditLog{
		ActorID:  user.ID,
		Action:   shared.AuditActionCreate,
		Entity:   users.AuditEntityUser,
		EntityID: strconv.FormatInt(user.ID, 10),
		Meta:     map[string]any{"is_staff": granted.IsStaff, "is_superuser": granted.IsSuperuser},
	})
	return user, nil
}

// Login checks credentials and issues a token pair together with the account.
// Inactive accounts are not refused here.
func (s *Service) Login(ctx context.Context, username, password string) (TokenPair, *users.User, error) {
	principal, err := s.evaluator.AuthorizeLogin(ctx, users.NormalizeUsername(username), password)
	if err != nil {
		return TokenPair{}, nil, err
	}
	user, err := s.accounts.Get(ctx, principal.ID)
	if err != nil {
		return TokenPair{}, nil, err
	}
	pair, err := s.issuer.IssuePair(user.ID)
	if err != nil {
		return TokenPair{}, nil, err
	}
	return pair, user, nil
}

// ObtainPair issues a token pair for an active account.
func (s *Service) ObtainPair(ctx context.Context, username, password string) (TokenPair, error) {
	principal, err := s.evaluator.AuthorizeLogin(ctx, users.NormalizeUsername(username), password)
	if err != nil {
		if errors.Is(err, shared.ErrAuthentication) {
			return TokenPair{}, shared.Unauthenticated(MsgNoActiveAccount)
		}
		return TokenPair{}, err
	}
	if !principal.IsActive {
		return TokenPair{}, shared.Unauthenticated(MsgNoActiveAccount)
	}
	return s.issuer.IssuePair(principal.ID)
}

// Refreshed is the result of Refresh. Refresh is set only when rotation is on.
type Refreshed struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Refresh exchanges a refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refresh string) (Refreshed, error) {
	claims, err := s.issuer.ParseRefresh(refresh)
	if err != nil {
		return Refreshed{}, shared.Unauthenticated(MsgRefreshNotValid)
	}
	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return Refreshed{}, err
		}
		if revoked {
			return Refreshed{}, shared.Unauthenticated(MsgRefreshRevoked)
		}
	}
	if !s.opts.RotateRefresh {
		access, err := s.issuer.IssueAccess(claims.UserID)
		if err != nil {
			return Refreshed{}, err
		}
		return Refreshed{Access: access}, nil
	}
	if s.opts.BlacklistAfterRotation && s.denylist != nil {
		var until time.Time
		if claims.ExpiresAt != nil {
			until = claims.ExpiresAt.Time
		}
		revoked, err := s.denylist.Revoke(ctx, claims.ID, until)
		if err != nil {
			return Refreshed{}, err
		}
		if !revoked {
			return Refreshed{}, shared.Unauthenticated(MsgRefreshRevoked)
		}
	}
	pair, err := s.issuer.IssuePair(claims.UserID)
	if err != nil {
		return Refreshed{}, err
	}
	return Refreshed{Access: pair.Access, Refresh: pair.Refresh}, nil
}

// Authenticate resolves an access token to the principal of an active user.
func (s *Service) Authenticate(ctx context.Context, token string) (*rbac.Principal, error) {
	claims, err := s.issuer.ParseAccess(token)
	if err != nil {
		return nil, shared.Unauthenticated(MsgTokenNotValid)
	}
	user, err := s.accounts.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.Unauthenticated(rbac.MsgUserNotFound)
		}
		return nil, fmt.Errorf("auth: load user: %w", err)
	}
	if !user.IsActive {
		return nil, shared.Unauthenticated(MsgUserInactive)
	}
	principal := user.Principal()
	return &principal, nil
}

var _ rbac.Authenticator = (*Service)(nil)
