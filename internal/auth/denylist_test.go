package auth_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainhub/trainhub/internal/auth"
)

func newDenylist(t *testing.T) (*auth.RedisDenylist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return auth.NewRedisDenylist(client), mr
}

func TestRedisDenylist(t *testing.T) {
	ctx := context.Background()
	denylist, mr := newDenylist(t)

	revoked, err := denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	first, err := denylist.Revoke(ctx, "jti-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, first)
	again, err := denylist.Revoke(ctx, "jti-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, again)
	revoked, err = denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, err = denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisDenylistSkipsExpiredTokens(t *testing.T) {
	ctx := context.Background()
	denylist, mr := newDenylist(t)

	_, err := denylist.Revoke(ctx, "old", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, mr.Exists("trainhub:denylist:old"))
}

func TestRedisDenylistConcurrentRevokeHasOneWinner(t *testing.T) {
	ctx := context.Background()
	denylist, _ := newDenylist(t)

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			set, err := denylist.Revoke(ctx, "shared", time.Now().Add(time.Hour))
			if err == nil && set {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}
