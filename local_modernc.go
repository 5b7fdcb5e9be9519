//go:build !cgo_sqlite

// Default: the pure Go SQLite driver, which keeps cross-compilation
// CGO-free. Build with -tags cgo_sqlite for mattn/go-sqlite3.

package libsqldb

import (
	"database/sql/driver"

	"modernc.org/sqlite"
)

func init() {
	registerOpener(ModeLocal, openLocal)
}

func openLocal(p connParams) (driver.Connector, error) {
	return dsnConnector{dsn: p.Database, drv: &sqlite.Driver{}}, nil
}
