//go:build cgo_sqlite

// CGO SQLite via mattn/go-sqlite3, selected with -tags cgo_sqlite.

package libsqldb

import (
	"database/sql/driver"

	"github.com/mattn/go-sqlite3"
)

func init() {
	registerOpener(ModeLocal, openLocal)
}

func openLocal(p connParams) (driver.Connector, error) {
	return dsnConnector{dsn: p.Database, drv: &sqlite3.SQLiteDriver{}}, nil
}
