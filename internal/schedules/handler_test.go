package schedules_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainhub/trainhub/internal/rbac"
	"github.com/trainhub/trainhub/internal/schedules"
	"github.com/trainhub/trainhub/internal/shared"
)

type tokenTable map[string]*rbac.Principal

func (t tokenTable) Authenticate(_ context.Context, token string) (*rbac.Principal, error) {
	if p, ok := t[token]; ok {
		return p, nil
	}
	return nil, shared.Unauthenticated("Given token not valid for any token type")
}

func TestScheduleEndpoints(t *testing.T) {
	f := newFixture(t, rbac.DefaultPolicy())
	mw := rbac.Middleware{Authenticator: tokenTable{"alice": f.alice, "coach": f.staff}}
	router := chi.NewRouter()
	router.Route("/schedule", schedules.NewHandler(nil, f.service, mw).MountRoutes)

	call := func(method, path, token, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		res := httptest.NewRecorder()
		router.ServeHTTP(res, req)
		return res
	}

	res := call(http.MethodPost, "/schedule/", "alice", `{"date":"2024-03-01","description":"intervals"}`)
	require.Equal(t, http.StatusCreated, res.Code)
	assert.Contains(t, res.Body.String(), `"user":1`)
	assert.Contains(t, res.Body.String(), `"date":"2024-03-01"`)

	res = call(http.MethodPost, "/schedule/", "coach", `{"user":2,"date":"2024-03-01","description":"tempo"}`)
	require.Equal(t, http.StatusForbidden, res.Code)
	assert.JSONEq(t, `{"error":"You do not have permission to assign user"}`, res.Body.String())

	res = call(http.MethodGet, "/schedule/?user=1", "coach", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "intervals")

	res = call(http.MethodGet, "/schedule/42/", "alice", "")
	require.Equal(t, http.StatusNotFound, res.Code)
	assert.JSONEq(t, `{"error":"Training schedule not found"}`, res.Body.String())

	res = call(http.MethodDelete, "/schedule/", "alice", "")
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.JSONEq(t, `{"error":"Training schedule ID is required"}`, res.Body.String())

	res = call(http.MethodPut, "/schedule/1/", "coach", `{"description":"easy"}`)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"description":"easy"`)

	res = call(http.MethodDelete, "/schedule/1/", "coach", "")
	require.Equal(t, http.StatusNoContent, res.Code)
}
