package rbac

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/trainhub/trainhub/internal/platform/httpx"
	"github.com/trainhub/trainhub/internal/shared"
)

// Authenticator resolves a bearer token into a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Principal, error)
}

// Middleware wires authentication helpers for HTTP handlers.
type Middleware struct {
	Authenticator Authenticator
	Logger        *slog.Logger
}

// RequireAuthenticated rejects requests without a valid bearer token.
func (m Middleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			httpx.RespondError(w, m.Logger, shared.Unauthenticated(MsgNotAuthenticated))
			return
		}
		principal, err := m.Authenticator.Authenticate(r.Context(), token)
		if err != nil {
			m.reject(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

// Identify attaches a principal when a bearer token is present and lets
// anonymous requests through. A present but invalid token is still rejected.
func (m Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		principal, err := m.Authenticator.Authenticate(r.Context(), token)
		if err != nil {
			m.reject(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

func (m Middleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	if m.Logger != nil {
		m.Logger.Debug("rbac authenticate", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, m.Logger, err)
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
