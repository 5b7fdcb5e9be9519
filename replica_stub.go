//go:build !libsql

// Embedded replicas need the CGO-backed go-libsql library; without the
// libsql build tag a replica configuration is reported as unsupported
// instead of registering a connector that cannot work.

package libsqldb

import (
	"database/sql/driver"
)

func init() {
	registerOpener(ModeReplica, func(connParams) (driver.Connector, error) {
		return nil, ErrReplicaUnsupported
	})
}
