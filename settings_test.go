package libsqldb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeSettings(t, `
[database]
name = "libsql://db-org.turso.io"
auth_token = "tok"
sync_url = "https://db-org.turso.io"
encryption_key = "k"
timeout = "30s"
isolation_level = "IMMEDIATE"
local_file = "cache/replica.db"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "libsql://db-org.turso.io", cfg.Name)
	assert.Equal(t, "tok", cfg.AuthToken)
	assert.Equal(t, "https://db-org.turso.io", cfg.SyncURL)
	assert.Equal(t, "k", cfg.EncryptionKey)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "IMMEDIATE", cfg.IsolationLevel)
	assert.Equal(t, "cache/replica.db", cfg.LocalFile)
}

func TestLoadConfigTimeoutSeconds(t *testing.T) {
	path := writeSettings(t, `
[database]
name = "app.db"
timeout = "2.5"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TURSO_DATABASE_URL", "libsql://other-org.turso.io")
	t.Setenv("TURSO_AUTH_TOKEN", "injected")

	cfg := ApplyEnv(Config{Name: "app.db"})
	assert.Equal(t, "libsql://other-org.turso.io", cfg.TursoURL)
	assert.Equal(t, "injected", cfg.TursoAuthToken)

	p, err := cfg.resolve()
	require.NoError(t, err)
	assert.Equal(t, ModeReplica, p.Mode)
	assert.Equal(t, "injected", p.AuthToken)
}

func TestApplyEnvWithoutVariables(t *testing.T) {
	t.Setenv("TURSO_DATABASE_URL", "")
	t.Setenv("TURSO_AUTH_TOKEN", "")

	cfg := ApplyEnv(Config{Name: "app.db"})
	assert.Empty(t, cfg.TursoURL)
	assert.Empty(t, cfg.TursoAuthToken)
}
