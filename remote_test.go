package libsqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupSqld starts a libsql-server (sqld) container and returns its HTTP
// URL. This is the closest thing to a disposable Turso database.
func setupSqld(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.Run(ctx, "ghcr.io/tursodatabase/libsql-server:latest",
		testcontainers.WithExposedPorts("8080/tcp"),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("8080/tcp")),
	)
	require.NoError(t, err, "failed to start sqld container")

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8080/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

func TestRemoteIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	url := setupSqld(t)
	ctx := context.Background()

	db, err := Open(Config{Name: url})
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, db.PingContext(ctx))
	})

	t.Run("round trip", func(t *testing.T) {
		// Unique table name so reruns against a reused server don't collide.
		table := "notes_" + strings.ReplaceAll(uuid.NewString(), "-", "")

		_, err := db.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (id integer PRIMARY KEY, body text)", table))
		require.NoError(t, err)

		_, err = db.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (id, body) VALUES (%%s, %%s)", table), 1, "remote hello")
		require.NoError(t, err)

		var body string
		err = db.QueryRowContext(ctx, fmt.Sprintf("SELECT body FROM %s WHERE id = %%s", table), 1).Scan(&body)
		require.NoError(t, err)
		assert.Equal(t, "remote hello", body)
	})

	t.Run("errors propagate from the server", func(t *testing.T) {
		_, err := db.ExecContext(ctx, "INSERT INTO missing_table (id) VALUES (1)")
		assert.Error(t, err)
	})

	t.Run("open via DSN", func(t *testing.T) {
		dsnDB, err := sql.Open(DriverName, url)
		require.NoError(t, err)
		defer dsnDB.Close()
		require.NoError(t, dsnDB.PingContext(ctx))
	})
}
