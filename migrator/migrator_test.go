package migrator

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libsqldb"
)

func writeMigrations(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "migrations")
	require.NoError(t, os.Mkdir(dir, 0o755))

	files := map[string]string{
		"0001_create_notes.up.sql":   "CREATE TABLE notes (id integer PRIMARY KEY, body text NOT NULL);",
		"0001_create_notes.down.sql": "DROP TABLE notes;",
		"0002_add_index.up.sql":      "CREATE INDEX idx_notes_body ON notes (body);",
		"0002_add_index.down.sql":    "DROP INDEX idx_notes_body;",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return "file://" + dir
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := libsqldb.Open(libsqldb.Config{Name: filepath.Join(t.TempDir(), "migrate.db")})
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})
	return db
}

func TestUpAndDown(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	source := writeMigrations(t)

	require.NoError(t, Up(db, source))

	_, err := db.ExecContext(ctx, "INSERT INTO notes (id, body) VALUES (1, 'migrated')")
	require.NoError(t, err)

	var version int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT version FROM schema_migrations").Scan(&version))
	assert.Equal(t, 2, version)

	t.Run("up is idempotent", func(t *testing.T) {
		assert.NoError(t, Up(db, source))
	})

	t.Run("down removes everything", func(t *testing.T) {
		require.NoError(t, Down(db, source))
		var n int
		err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes").Scan(&n)
		assert.Error(t, err, "notes table should be gone")
	})
}

func TestUpWithMissingSource(t *testing.T) {
	db := openTestDB(t)
	err := Up(db, "file://"+filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
