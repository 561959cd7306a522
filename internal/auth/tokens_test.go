package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainhub/trainhub/internal/auth"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := auth.NewTokenIssuer([]byte("k"), 5*time.Minute, 24*time.Hour)

	pair, err := issuer.IssuePair(42)
	require.NoError(t, err)

	access, err := issuer.ParseAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, int64(42), access.UserID)
	assert.Equal(t, auth.TokenTypeAccess, access.TokenType)
	assert.NotEmpty(t, access.ID)

	refresh, err := issuer.ParseRefresh(pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, int64(42), refresh.UserID)
	assert.NotEqual(t, access.ID, refresh.ID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), refresh.ExpiresAt.Time, time.Minute)
}

func TestTokenIssuerRejectsWrongType(t *testing.T) {
	issuer := auth.NewTokenIssuer([]byte("k"), time.Minute, time.Hour)
	pair, err := issuer.IssuePair(1)
	require.NoError(t, err)

	_, err = issuer.ParseAccess(pair.Refresh)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	_, err = issuer.ParseRefresh(pair.Access)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenIssuerRejectsForeignKeyAndGarbage(t *testing.T) {
	issuer := auth.NewTokenIssuer([]byte("k"), time.Minute, time.Hour)
	other := auth.NewTokenIssuer([]byte("other"), time.Minute, time.Hour)
	token, err := other.IssueAccess(1)
	require.NoError(t, err)

	_, err = issuer.ParseAccess(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	_, err = issuer.ParseAccess("not-a-jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenIssuerExpiry(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := auth.NewTokenIssuer([]byte("k"), 5*time.Minute, time.Hour).WithClock(func() time.Time { return issued })
	token, err := issuer.IssueAccess(1)
	require.NoError(t, err)

	_, err = issuer.WithClock(func() time.Time { return issued.Add(4 * time.Minute) }).ParseAccess(token)
	require.NoError(t, err)
	_, err = issuer.WithClock(func() time.Time { return issued.Add(6 * time.Minute) }).ParseAccess(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
