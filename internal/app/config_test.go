package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainhub/trainhub/internal/rbac"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "k")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.JWTAccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWTRefreshTTL)
	assert.Equal(t, rbac.DefaultPolicy(), cfg.AccessPolicy())
	assert.False(t, cfg.TokenOptions().RotateRefresh)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresSigningKey(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigHardenedPolicy(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "k")
	t.Setenv("ACCESS_ENFORCE_OWNERSHIP", "true")
	t.Setenv("ACCESS_ALLOW_REGISTER_PRIVILEGES", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, rbac.Policy{EnforceOwnership: true}, cfg.AccessPolicy())
}

func TestValidateRejectsBlacklistWithoutRotation(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "k")
	t.Setenv("JWT_BLACKLIST_AFTER_ROTATION", "true")

	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("JWT_ROTATE_REFRESH", "true")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.TokenOptions().BlacklistAfterRotation)
}
