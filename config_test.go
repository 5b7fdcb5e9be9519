package libsqldb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLocal(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"file path", Config{Name: "app.db"}},
		{"relative path", Config{Name: "./data/app.db"}},
		{"in-memory", Config{Name: ":memory:"}},
		{"file URI", Config{Name: "file:app.db?cache=shared"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.cfg.resolve()
			require.NoError(t, err)
			assert.Equal(t, ModeLocal, p.Mode)
			assert.Equal(t, tt.cfg.Name, p.Database)
			assert.Empty(t, p.SyncURL)
		})
	}
}

func TestResolveDefaults(t *testing.T) {
	p, err := Config{Name: "app.db"}.resolve()
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, p.Timeout)
	assert.Equal(t, "DEFERRED", p.IsolationLevel)
}

func TestResolveMissingName(t *testing.T) {
	_, err := Config{}.resolve()
	assert.ErrorIs(t, err, ErrMissingName)
}

func TestResolveRemote(t *testing.T) {
	t.Run("libsql URL is rewritten to https", func(t *testing.T) {
		p, err := Config{Name: "libsql://db-org.turso.io", AuthToken: "tok"}.resolve()
		require.NoError(t, err)
		assert.Equal(t, ModeRemote, p.Mode)
		assert.Equal(t, "https://db-org.turso.io", p.Database)
		assert.Equal(t, "tok", p.AuthToken)
	})

	t.Run("authToken query parameter wins", func(t *testing.T) {
		p, err := Config{Name: "libsql://db-org.turso.io?authToken=urltok", AuthToken: "optiontok"}.resolve()
		require.NoError(t, err)
		assert.Equal(t, "https://db-org.turso.io", p.Database)
		assert.Equal(t, "urltok", p.AuthToken)
	})

	t.Run("https and websocket URLs pass through", func(t *testing.T) {
		for _, name := range []string{"https://db.example.com", "http://127.0.0.1:8080", "wss://db.example.com"} {
			p, err := Config{Name: name}.resolve()
			require.NoError(t, err)
			assert.Equal(t, ModeRemote, p.Mode)
			assert.Equal(t, name, p.Database)
		}
	})

	t.Run("libsql URL without host fails", func(t *testing.T) {
		_, err := Config{Name: "libsql://"}.resolve()
		assert.Error(t, err)
	})
}

func TestResolveReplica(t *testing.T) {
	t.Run("local name with sync URL", func(t *testing.T) {
		p, err := Config{Name: "replica.db", SyncURL: "https://db-org.turso.io", AuthToken: "tok"}.resolve()
		require.NoError(t, err)
		assert.Equal(t, ModeReplica, p.Mode)
		assert.Equal(t, "replica.db", p.Database)
		assert.Equal(t, "https://db-org.turso.io", p.SyncURL)
	})

	t.Run("remote name with sync option syncs from name", func(t *testing.T) {
		p, err := Config{Name: "libsql://db-org.turso.io", SyncURL: "https://ignored.example.com"}.resolve()
		require.NoError(t, err)
		assert.Equal(t, ModeReplica, p.Mode)
		assert.Equal(t, DefaultLocalFile, p.Database)
		assert.Equal(t, "https://db-org.turso.io", p.SyncURL)
	})

	t.Run("remote name with sync option honors local file", func(t *testing.T) {
		p, err := Config{
			Name:      "libsql://db-org.turso.io",
			SyncURL:   "https://db-org.turso.io",
			LocalFile: "cache/replica.db",
		}.resolve()
		require.NoError(t, err)
		assert.Equal(t, "cache/replica.db", p.Database)
	})
}

func TestResolveTursoOverrides(t *testing.T) {
	t.Run("override forces replica mode", func(t *testing.T) {
		p, err := Config{
			Name:           "app.db",
			TursoURL:       "libsql://other-org.turso.io",
			TursoAuthToken: "injected",
		}.resolve()
		require.NoError(t, err)
		assert.Equal(t, ModeReplica, p.Mode)
		assert.Equal(t, DefaultLocalFile, p.Database)
		assert.Equal(t, "libsql://other-org.turso.io", p.SyncURL)
		assert.Equal(t, "injected", p.AuthToken)
	})

	t.Run("override works without a name", func(t *testing.T) {
		p, err := Config{TursoURL: "libsql://db-org.turso.io", TursoAuthToken: "tok"}.resolve()
		require.NoError(t, err)
		assert.Equal(t, ModeReplica, p.Mode)
	})

	t.Run("configured token kept when override token absent", func(t *testing.T) {
		p, err := Config{Name: "app.db", AuthToken: "base", TursoURL: "libsql://db-org.turso.io"}.resolve()
		require.NoError(t, err)
		assert.Equal(t, "base", p.AuthToken)
	})
}

func TestResolveIsolationLevel(t *testing.T) {
	t.Run("normalizes case", func(t *testing.T) {
		p, err := Config{Name: "app.db", IsolationLevel: "immediate"}.resolve()
		require.NoError(t, err)
		assert.Equal(t, "IMMEDIATE", p.IsolationLevel)
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := Config{Name: "app.db", IsolationLevel: "READ COMMITTED"}.resolve()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "isolation level")
	})
}

func TestResolveEncryption(t *testing.T) {
	t.Run("plain local database cannot be encrypted", func(t *testing.T) {
		_, err := Config{Name: "app.db", EncryptionKey: "k"}.resolve()
		assert.ErrorIs(t, err, ErrEncryptionUnsupported)
	})

	t.Run("replica carries the key through", func(t *testing.T) {
		p, err := Config{Name: "replica.db", SyncURL: "https://db-org.turso.io", EncryptionKey: "k"}.resolve()
		require.NoError(t, err)
		assert.Equal(t, "k", p.EncryptionKey)
	})
}

func TestResolveTimeout(t *testing.T) {
	p, err := Config{Name: "app.db", Timeout: 30 * time.Second}.resolve()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, p.Timeout)
}
