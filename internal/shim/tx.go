package shim

import (
	"context"
	"database/sql/driver"
)

// Tx finishes a transaction that was opened with an explicit BEGIN
// statement. Commit and rollback are plain statements on the same
// connection, matching how the BEGIN was issued.
type Tx struct {
	conn *Conn
}

var _ driver.Tx = (*Tx)(nil)

func (t *Tx) Commit() error {
	_, err := t.conn.rawExec(context.Background(), "COMMIT")
	return err
}

func (t *Tx) Rollback() error {
	_, err := t.conn.rawExec(context.Background(), "ROLLBACK")
	return err
}
