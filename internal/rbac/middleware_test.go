package rbac_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trainhub/trainhub/internal/rbac"
	"github.com/trainhub/trainhub/internal/shared"
)

type staticAuthenticator struct{}

func (staticAuthenticator) Authenticate(_ context.Context, token string) (*rbac.Principal, error) {
	if token != "good" {
		return nil, shared.Unauthenticated("Given token not valid for any token type")
	}
	p := alice
	return &p, nil
}

func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := rbac.PrincipalFromContext(r.Context()); p != nil {
			_, _ = w.Write([]byte(p.Username))
			return
		}
		_, _ = w.Write([]byte("anonymous"))
	})
}

func serve(h http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func TestRequireAuthenticated(t *testing.T) {
	h := rbac.Middleware{Authenticator: staticAuthenticator{}}.RequireAuthenticated(echoPrincipal())

	res := serve(h, "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Contains(t, res.Body.String(), rbac.MsgNotAuthenticated)

	res = serve(h, "Basic Zm9vOmJhcg==")
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = serve(h, "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Contains(t, res.Body.String(), "Given token not valid")

	res = serve(h, "bearer good")
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "alice", res.Body.String())
}

func TestIdentify(t *testing.T) {
	h := rbac.Middleware{Authenticator: staticAuthenticator{}}.Identify(echoPrincipal())

	res := serve(h, "")
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "anonymous", res.Body.String())

	res = serve(h, "Bearer good")
	assert.Equal(t, "alice", res.Body.String())

	res = serve(h, "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}
