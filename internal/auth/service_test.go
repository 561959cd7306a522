package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainhub/trainhub/internal/auth"
	"github.com/trainhub/trainhub/internal/rbac"
	"github.com/trainhub/trainhub/internal/shared"
	"github.com/trainhub/trainhub/internal/users"
	"github.com/trainhub/trainhub/internal/users/userstest"
	_ "github.com/trainhub/trainhub/testing"
)

type env struct {
	store   *userstest.MemStore
	issuer  *auth.TokenIssuer
	service *auth.Service
}

func newEnv(t *testing.T, policy rbac.Policy, opts auth.Options) *env {
	t.Helper()
	store := userstest.NewMemStore()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	issuer := auth.NewTokenIssuer([]byte("secret"), 5*time.Minute, 24*time.Hour)
	evaluator := rbac.NewEvaluator(policy, users.NewDirectory(store))
	service := auth.NewService(store, evaluator, issuer, auth.NewRedisDenylist(client), opts, nil, nil)
	return &env{store: store, issuer: issuer, service: service}
}

func TestRegisterHonoursRequestedPrivileges(t *testing.T) {
	e := newEnv(t, rbac.DefaultPolicy(), auth.Options{})
	ctx := context.Background()

	user, err := e.service.Register(ctx, auth.Registration{
		Username:  "carol",
		Email:     "carol@example.com",
		Password:  "pw",
		Requested: rbac.Privileges{IsSuperuser: true, IsActive: true},
	})
	require.NoError(t, err)
	assert.True(t, user.IsSuperuser)
	assert.NotEqual(t, "pw", user.PasswordHash)

	_, err = e.service.Register(ctx, auth.Registration{Username: "carol", Email: "c@x.io", Password: "pw"})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestRegisterStripsPrivilegesWhenDisallowed(t *testing.T) {
	e := newEnv(t, rbac.Policy{}, auth.Options{})

	user, err := e.service.Register(context.Background(), auth.Registration{
		Username:  "carol",
		Email:     "carol@example.com",
		Password:  "pw",
		Requested: rbac.Privileges{IsSuperuser: true, IsStaff: true, IsActive: false},
	})
	require.NoError(t, err)
	assert.False(t, user.IsSuperuser)
	assert.False(t, user.IsStaff)
	assert.True(t, user.IsActive)
}

func TestRegisterNormalizesUsername(t *testing.T) {
	e := newEnv(t, rbac.DefaultPolicy(), auth.Options{})
	ctx := context.Background()

	_, err := e.service.Register(ctx, auth.Registration{Username: "ｃａｒｏｌ", Email: "c@x.io", Password: "pw"})
	require.NoError(t, err)
	_, err = e.service.Register(ctx, auth.Registration{Username: "carol", Email: "c@x.io", Password: "pw"})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestLoginAndObtain(t *testing.T) {
	e := newEnv(t, rbac.DefaultPolicy(), auth.Options{})
	ctx := context.Background()
	e.store.Seed("alice", "secret", rbac.Privileges{IsActive: true})
	e.store.Seed("idle", "secret", rbac.Privileges{IsActive: false})

	pair, user, err := e.service.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	claims, err := e.issuer.ParseAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, _, err = e.service.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, shared.ErrAuthentication)
	assert.Equal(t, rbac.MsgInvalidCredentials, err.Error())

	_, _, err = e.service.Login(ctx, "idle", "secret")
	require.NoError(t, err)

	_, err = e.service.ObtainPair(ctx, "idle", "secret")
	require.ErrorIs(t, err, shared.ErrAuthentication)
	assert.Equal(t, auth.MsgNoActiveAccount, err.Error())

	_, err = e.service.ObtainPair(ctx, "alice", "wrong")
	assert.Equal(t, auth.MsgNoActiveAccount, err.Error())

	_, err = e.service.ObtainPair(ctx, "alice", "secret")
	require.NoError(t, err)
}

func TestRefreshWithoutRotation(t *testing.T) {
	e := newEnv(t, rbac.DefaultPolicy(), auth.Options{})
	ctx := context.Background()
	pair, err := e.issuer.IssuePair(1)
	require.NoError(t, err)

	out, err := e.service.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, out.Access)
	assert.Empty(t, out.Refresh)

	_, err = e.service.Refresh(ctx, pair.Access)
	require.ErrorIs(t, err, shared.ErrAuthentication)
	assert.Equal(t, auth.MsgRefreshNotValid, err.Error())

	_, err = e.service.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
}

func TestRefreshRotationDenylistsOldToken(t *testing.T) {
	e := newEnv(t, rbac.DefaultPolicy(), auth.Options{RotateRefresh: true, BlacklistAfterRotation: true})
	ctx := context.Background()
	pair, err := e.issuer.IssuePair(1)
	require.NoError(t, err)

	out, err := e.service.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	require.NotEmpty(t, out.Refresh)

	_, err = e.service.Refresh(ctx, pair.Refresh)
	require.ErrorIs(t, err, shared.ErrAuthentication)
	assert.Equal(t, auth.MsgRefreshRevoked, err.Error())

	_, err = e.service.Refresh(ctx, out.Refresh)
	require.NoError(t, err)
}

func TestAuthenticate(t *testing.T) {
	e := newEnv(t, rbac.DefaultPolicy(), auth.Options{})
	ctx := context.Background()
	alice := e.store.Seed("alice", "secret", rbac.Privileges{IsActive: true})
	idle := e.store.Seed("idle", "secret", rbac.Privileges{IsActive: false})

	pair, err := e.issuer.IssuePair(alice.ID)
	require.NoError(t, err)
	p, err := e.service.Authenticate(ctx, pair.Access)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, p.ID)

	_, err = e.service.Authenticate(ctx, pair.Refresh)
	require.ErrorIs(t, err, shared.ErrAuthentication)
	assert.Equal(t, auth.MsgTokenNotValid, err.Error())

	idlePair, err := e.issuer.IssuePair(idle.ID)
	require.NoError(t, err)
	_, err = e.service.Authenticate(ctx, idlePair.Access)
	assert.Equal(t, auth.MsgUserInactive, err.Error())

	require.NoError(t, e.store.Delete(ctx, alice.ID))
	_, err = e.service.Authenticate(ctx, pair.Access)
	require.ErrorIs(t, err, shared.ErrAuthentication)
	assert.Equal(t, rbac.MsgUserNotFound, err.Error())
}

func TestConcurrentRotatedRefreshHasOneWinner(t *testing.T) {
	e := newEnv(t, rbac.DefaultPolicy(), auth.Options{RotateRefresh: true, BlacklistAfterRotation: true})
	ctx := context.Background()
	pair, err := e.issuer.IssuePair(1)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected []error
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.service.Refresh(ctx, pair.Refresh)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			rejected = append(rejected, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	require.Len(t, rejected, 7)
	for _, err := range rejected {
		assert.Equal(t, auth.MsgRefreshRevoked, err.Error())
	}
}
