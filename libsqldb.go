// Package libsqldb adapts the libSQL client libraries to database/sql. It is
// a compatibility shim, not a database: SQL execution, transaction
// semantics, replication, and encryption all belong to the wrapped libraries
// and the remote service. What this package owns is the driver contract:
// connection-mode resolution from a single configuration surface, placeholder
// style translation, and declared-type value conversion.
//
// Three connection modes are supported, selected by the configuration:
//
//   - local: a SQLite file or ":memory:", served by modernc.org/sqlite
//     (or mattn/go-sqlite3 when built with the cgo_sqlite tag);
//   - remote: a Turso or sqld server reached over libsql://, http(s)://,
//     or ws(s)://, served by libsql-client-go;
//   - replica: a local file kept in sync with a remote primary, served by
//     go-libsql (requires building with the libsql tag).
//
// Open a database from a Config with Open, or through database/sql:
//
//	db, err := sql.Open("libsqldb", "libsql://db-org.turso.io?authToken=...")
package libsqldb

import (
	"database/sql/driver"

	lclient "github.com/tursodatabase/libsql-client-go/libsql"
)

func init() {
	registerOpener(ModeRemote, openRemote)
}

// openRemote builds a connector for a Turso or self-hosted sqld server.
// The client library owns the wire protocol; only the credential is
// injected here.
func openRemote(p connParams) (driver.Connector, error) {
	var opts []lclient.Option
	if p.AuthToken != "" {
		opts = append(opts, lclient.WithAuthToken(p.AuthToken))
	}
	return lclient.NewConnector(p.Database, opts...)
}
