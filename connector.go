package libsqldb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync"

	"libsqldb/internal/shim"
)

// Syncable is implemented by connectors that maintain an embedded replica
// and can pull changes from the primary on demand.
type Syncable interface {
	Sync() error
}

// opener builds the mode-specific connector for resolved parameters. Local
// and replica openers live in build-tag gated files and register themselves;
// the remote opener is always available.
type opener func(p connParams) (driver.Connector, error)

var (
	openers   = make(map[Mode]opener)
	openersMu sync.RWMutex
)

func registerOpener(mode Mode, fn opener) {
	openersMu.Lock()
	defer openersMu.Unlock()
	openers[mode] = fn
}

func newUnderlying(p connParams) (driver.Connector, error) {
	openersMu.RLock()
	fn, ok := openers[p.Mode]
	openersMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("libsqldb: no connector available for %s mode", p.Mode)
	}
	return fn(p)
}

// Connector implements driver.Connector over one of the wrapped client
// libraries, chosen by the resolved connection mode. Connections it hands
// out are wrapped with placeholder rewriting, type conversion, and session
// pragmas.
type Connector struct {
	params      connParams
	underlying  driver.Connector
	initialSync sync.Once
}

var _ driver.Connector = (*Connector)(nil)

// NewConnector resolves cfg and builds the connector for its mode.
func NewConnector(cfg Config) (*Connector, error) {
	params, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	underlying, err := newUnderlying(params)
	if err != nil {
		return nil, err
	}
	return &Connector{params: params, underlying: underlying}, nil
}

// Mode reports the resolved connection mode.
func (c *Connector) Mode() Mode {
	return c.params.Mode
}

// Connect implements driver.Connector. The first connection triggers a
// best-effort replica sync; sync failure does not fail connection
// establishment, since a stale replica is still readable.
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.underlying.Connect(ctx)
	if err != nil {
		return nil, err
	}
	c.initialSync.Do(func() {
		if s, ok := c.underlying.(Syncable); ok {
			_ = s.Sync()
		}
	})
	return shim.NewConn(ctx, conn, shim.Options{
		IsolationLevel: c.params.IsolationLevel,
		InitStatements: c.initStatements(),
	})
}

// Driver implements driver.Connector.
func (c *Connector) Driver() driver.Driver {
	return &Driver{}
}

// Sync pulls changes from the primary into the embedded replica. It returns
// ErrNotReplica for local and remote connections.
func (c *Connector) Sync() error {
	s, ok := c.underlying.(Syncable)
	if !ok {
		return ErrNotReplica
	}
	if err := s.Sync(); err != nil {
		return fmt.Errorf("libsqldb: replica sync: %w", err)
	}
	return nil
}

// Close releases resources held by the underlying connector, if any.
func (c *Connector) Close() error {
	if closer, ok := c.underlying.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// initStatements builds the session pragmas every new connection runs.
// Foreign key enforcement is always on; remote connections skip the busy
// timeout since lock contention is handled server-side.
func (c *Connector) initStatements() []string {
	stmts := []string{"PRAGMA foreign_keys = ON"}
	if c.params.Mode != ModeRemote && c.params.Timeout > 0 {
		stmts = append(stmts, fmt.Sprintf("PRAGMA busy_timeout = %d", c.params.Timeout.Milliseconds()))
	}
	return stmts
}

// Open opens a database for cfg through sql.OpenDB, bypassing DSN
// formatting.
func Open(cfg Config) (*sql.DB, error) {
	connector, err := NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(connector), nil
}

// dsnConnector adapts a plain driver.Driver to driver.Connector for the
// wrapped local drivers.
type dsnConnector struct {
	dsn string
	drv driver.Driver
}

func (c dsnConnector) Connect(context.Context) (driver.Conn, error) {
	return c.drv.Open(c.dsn)
}

func (c dsnConnector) Driver() driver.Driver {
	return c.drv
}
