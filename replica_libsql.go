//go:build libsql

package libsqldb

import (
	"database/sql/driver"

	golibsql "github.com/tursodatabase/go-libsql"
)

func init() {
	registerOpener(ModeReplica, openReplica)
}

// openReplica builds an embedded-replica connector. The go-libsql library
// owns the sync protocol and at-rest encryption; the connector it returns
// implements Sync, which Connector.Sync and replica.Syncer use.
func openReplica(p connParams) (driver.Connector, error) {
	opts := []golibsql.Option{}
	if p.AuthToken != "" {
		opts = append(opts, golibsql.WithAuthToken(p.AuthToken))
	}
	if p.EncryptionKey != "" {
		opts = append(opts, golibsql.WithEncryption(p.EncryptionKey))
	}
	return golibsql.NewEmbeddedReplicaConnector(p.Database, p.SyncURL, opts...)
}
