package libsqldb

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingName reports a configuration with no database name. A name
	// is a local file path, ":memory:", or a libsql:// URL.
	ErrMissingName = errors.New("libsqldb: database name is required; supply a file path, \":memory:\", or a libsql:// URL")

	// ErrNotReplica is returned by Sync on connections that are not
	// embedded replicas.
	ErrNotReplica = errors.New("libsqldb: connection is not an embedded replica")

	// ErrReplicaUnsupported is returned when an embedded-replica
	// configuration is used in a build without the libsql build tag.
	ErrReplicaUnsupported = errors.New("libsqldb: embedded replicas require building with the libsql tag")

	// ErrEncryptionUnsupported is returned when an encryption key is
	// configured for a plain local database; at-rest encryption is only
	// available through the embedded-replica library.
	ErrEncryptionUnsupported = errors.New("libsqldb: encryption requires embedded-replica mode (build with the libsql tag)")
)

// IntegrityError reports a row whose foreign key references a value that
// does not exist, found by CheckConstraints.
type IntegrityError struct {
	Table            string
	PrimaryKey       any
	Column           string
	BadValue         any
	ReferencedTable  string
	ReferencedColumn string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf(
		"the row in table %q with primary key %v has an invalid foreign key: %s.%s contains a value %v that does not have a corresponding value in %s.%s",
		e.Table, e.PrimaryKey, e.Table, e.Column, e.BadValue, e.ReferencedTable, e.ReferencedColumn,
	)
}
