package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestMustLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
env: local
auth:
  jwt_secret: test-secret
`)

	cfg := MustLoadConfig(path)

	require.Equal(t, "local", cfg.Env)
	require.Equal(t, "test-secret", cfg.Auth.JWTSecret)
	require.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	require.Equal(t, ":8080", cfg.HTTPServer.Address)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestMustLoadConfig_MissingFile(t *testing.T) {
	require.Panics(t, func() {
		MustLoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}

func TestMustLoadConfig_MissingSecretIsFatal(t *testing.T) {
	// No jwt_secret in the file and none in the environment: the
	// process must refuse to start rather than limp along.
	t.Setenv("JWT_SECRET_KEY", "")
	os.Unsetenv("JWT_SECRET_KEY")

	path := writeConfig(t, `
env: local
`)

	require.Panics(t, func() {
		MustLoadConfig(path)
	})
}
