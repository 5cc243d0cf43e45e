package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SAASKIT_AUTH_JWT_SECRET", "test-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Invitations.Expiry)
	assert.Equal(t, 10, cfg.RateLimit.AuthRequests)
	assert.Equal(t, time.Minute, cfg.RateLimit.AuthWindow)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "@hourly", cfg.Maintenance.Schedule)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.SMTP.Enabled)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("SAASKIT_AUTH_JWT_SECRET", "")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SAASKIT_AUTH_JWT_SECRET", "test-secret")
	t.Setenv("SAASKIT_SERVER_PORT", "9999")
	t.Setenv("SAASKIT_DATABASE_DRIVER", "postgres")
	t.Setenv("SAASKIT_INVITATIONS_EXPIRY", "24h")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Invitations.Expiry)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("SAASKIT_AUTH_JWT_SECRET", "test-secret")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 7070\nlog:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigConversions(t *testing.T) {
	t.Setenv("SAASKIT_AUTH_JWT_SECRET", "test-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	jwtCfg := cfg.JWTConfig()
	assert.Equal(t, "test-secret", jwtCfg.Secret)
	assert.Equal(t, "saaskit", jwtCfg.Issuer)

	dbCfg := cfg.DatabaseConfig()
	assert.Equal(t, "sqlite", dbCfg.Driver)

	smtp := cfg.SMTPSettings()
	assert.False(t, smtp.Enabled)
	assert.Equal(t, 587, smtp.Port)
}
