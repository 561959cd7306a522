package contracts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainhub/trainhub/internal/contracts"
	"github.com/trainhub/trainhub/internal/rbac"
	"github.com/trainhub/trainhub/internal/shared"
)

type tokenTable map[string]*rbac.Principal

func (t tokenTable) Authenticate(_ context.Context, token string) (*rbac.Principal, error) {
	if p, ok := t[token]; ok {
		return p, nil
	}
	return nil, shared.Unauthenticated("Given token not valid for any token type")
}

func newRouter(f *fixture) http.Handler {
	mw := rbac.Middleware{Authenticator: tokenTable{"alice": f.alice, "bob": f.bob}}
	r := chi.NewRouter()
	r.Route("/contracts", contracts.NewHandler(nil, f.service, mw).MountRoutes)
	return r
}

func call(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestContractEndpoints(t *testing.T) {
	f := newFixture(t, rbac.DefaultPolicy())
	router := newRouter(f)

	res := call(router, http.MethodPost, "/contracts", "alice",
		`{"user":1,"start_date":"2024-01-01","end_date":"2024-06-30","terms":"full time"}`)
	require.Equal(t, http.StatusCreated, res.Code)
	var created contracts.Contract
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	assert.Equal(t, f.alice.ID, created.User)
	assert.Contains(t, res.Body.String(), `"start_date":"2024-01-01"`)

	res = call(router, http.MethodPost, "/contracts", "alice", `{"user":1,"start_date":"01/01/2024","end_date":"2024-06-30","terms":"x"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Date has wrong format")

	res = call(router, http.MethodPost, "/contracts", "alice", `{"user":1,"terms":"x"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "start_date")

	res = call(router, http.MethodGet, "/contracts", "alice", "")
	require.Equal(t, http.StatusOK, res.Code)
	var list []contracts.Contract
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	res = call(router, http.MethodGet, "/contracts?user=2", "alice", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `[]`, res.Body.String())

	res = call(router, http.MethodGet, "/contracts?id=abc", "alice", "")
	require.Equal(t, http.StatusBadRequest, res.Code)

	res = call(router, http.MethodGet, "/contracts/1/", "bob", "")
	require.Equal(t, http.StatusNotFound, res.Code)
	assert.JSONEq(t, `{"error":"Contract not found"}`, res.Body.String())

	res = call(router, http.MethodPut, "/contracts", "alice", `{"terms":"x"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.JSONEq(t, `{"error":"Contract ID is required"}`, res.Body.String())

	res = call(router, http.MethodPut, "/contracts/1/", "alice", `{"terms":"part time"}`)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"terms":"part time"`)

	res = call(router, http.MethodPost, "/contracts/1/", "alice", `{}`)
	require.Equal(t, http.StatusMethodNotAllowed, res.Code)

	res = call(router, http.MethodDelete, "/contracts/1/", "bob", "")
	require.Equal(t, http.StatusNotFound, res.Code)

	res = call(router, http.MethodDelete, "/contracts/1/", "alice", "")
	require.Equal(t, http.StatusNoContent, res.Code)

	res = call(router, http.MethodGet, "/contracts", "", "")
	require.Equal(t, http.StatusUnauthorized, res.Code)
}
