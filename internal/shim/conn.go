// Package shim wraps a database/sql/driver connection from one of the
// underlying libSQL drivers and makes it behave the way the rest of this
// module promises: printf-style placeholders are rewritten before execution
// when bind arguments are supplied (argument-free SQL runs verbatim), bind
// parameters and result values go through the typeconv adapters, session
// pragmas run at connection establishment, and transactions honor the
// configured isolation mode with an explicit BEGIN.
//
// The wrapped driver keeps full ownership of SQL execution; everything here
// is translation on the way in and out.
package shim

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"libsqldb/internal/placeholder"
	"libsqldb/internal/typeconv"
)

// Options controls the behavior layered onto a wrapped connection.
type Options struct {
	// IsolationLevel, when non-empty, makes BeginTx issue an explicit
	// "BEGIN <level>" statement instead of delegating to the wrapped
	// driver. Expected values: DEFERRED, IMMEDIATE, EXCLUSIVE.
	IsolationLevel string

	// InitStatements run once, in order, when the connection is wrapped.
	// Used for session pragmas such as foreign_keys and busy_timeout.
	InitStatements []string
}

// Conn wraps a driver connection. It implements the context-aware driver
// interfaces and falls back to the legacy ones when the wrapped connection
// does not provide them.
type Conn struct {
	conn driver.Conn
	opts Options
}

var (
	_ driver.Conn               = (*Conn)(nil)
	_ driver.ConnPrepareContext = (*Conn)(nil)
	_ driver.ConnBeginTx        = (*Conn)(nil)
	_ driver.ExecerContext      = (*Conn)(nil)
	_ driver.QueryerContext     = (*Conn)(nil)
	_ driver.NamedValueChecker  = (*Conn)(nil)
	_ driver.Pinger             = (*Conn)(nil)
	_ driver.SessionResetter    = (*Conn)(nil)
	_ driver.Validator          = (*Conn)(nil)
)

// NewConn wraps conn and runs the configured init statements. On init
// failure the wrapped connection is closed before the error is returned.
func NewConn(ctx context.Context, conn driver.Conn, opts Options) (*Conn, error) {
	c := &Conn{conn: conn, opts: opts}
	for _, stmt := range opts.InitStatements {
		if _, err := c.rawExec(ctx, stmt); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("shim: init statement %q: %w", stmt, err)
		}
	}
	return c, nil
}

// Prepare implements driver.Conn. The statement is prepared as written;
// placeholder rewriting waits until execution, where the presence of bind
// arguments tells a placeholder apart from literal percent text.
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return c.prepare(context.Background(), query)
}

// PrepareContext implements driver.ConnPrepareContext.
func (c *Conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	return c.prepare(ctx, query)
}

func (c *Conn) prepare(ctx context.Context, query string) (driver.Stmt, error) {
	stmt, err := c.prepareRaw(ctx, query)
	if err != nil {
		return nil, err
	}
	return &Stmt{conn: c, query: query, base: stmt}, nil
}

func (c *Conn) prepareRaw(ctx context.Context, query string) (driver.Stmt, error) {
	if pc, ok := c.conn.(driver.ConnPrepareContext); ok {
		return pc.PrepareContext(ctx, query)
	}
	return c.conn.Prepare(query)
}

// Close implements driver.Conn.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Begin implements driver.Conn.
//
// Deprecated: database/sql uses BeginTx.
func (c *Conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx implements driver.ConnBeginTx. SQLite always runs transactions at
// serializable isolation, so any other requested level is rejected. When an
// isolation mode is configured the transaction starts with an explicit BEGIN
// and is finished by the returned Tx with COMMIT/ROLLBACK statements.
func (c *Conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if level := sql.IsolationLevel(opts.Isolation); level != sql.LevelDefault && level != sql.LevelSerializable {
		return nil, fmt.Errorf("shim: isolation level %s not supported; sqlite transactions are always serializable", level)
	}

	if c.opts.IsolationLevel == "" {
		if cb, ok := c.conn.(driver.ConnBeginTx); ok {
			return cb.BeginTx(ctx, opts)
		}
		return c.conn.Begin()
	}

	if _, err := c.rawExec(ctx, "BEGIN "+c.opts.IsolationLevel); err != nil {
		return nil, err
	}
	return &Tx{conn: c}, nil
}

// ExecContext implements driver.ExecerContext. Placeholders are rewritten
// only when bind arguments are present; argument-free SQL runs verbatim so
// that literal percent text survives.
func (c *Conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if len(args) > 0 {
		rewritten, err := placeholder.Convert(query, namedArgNames(args))
		if err != nil {
			return nil, err
		}
		query = rewritten
	}
	if ec, ok := c.conn.(driver.ExecerContext); ok {
		res, err := ec.ExecContext(ctx, query, args)
		if !errors.Is(err, driver.ErrSkip) {
			return res, err
		}
	}
	stmt, err := c.prepareRaw(ctx, query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	return execStmt(ctx, stmt, args)
}

// QueryContext implements driver.QueryerContext. Result rows are wrapped so
// that declared-type converters apply. As in ExecContext, placeholders are
// rewritten only when bind arguments are present.
func (c *Conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if len(args) > 0 {
		rewritten, err := placeholder.Convert(query, namedArgNames(args))
		if err != nil {
			return nil, err
		}
		query = rewritten
	}
	if qc, ok := c.conn.(driver.QueryerContext); ok {
		rows, err := qc.QueryContext(ctx, query, args)
		if !errors.Is(err, driver.ErrSkip) {
			if err != nil {
				return nil, err
			}
			return WrapRows(rows), nil
		}
	}
	stmt, err := c.prepareRaw(ctx, query)
	if err != nil {
		return nil, err
	}
	rows, err := queryStmt(ctx, stmt, args)
	if err != nil {
		_ = stmt.Close()
		return nil, err
	}
	return WrapRows(&stmtRows{Rows: rows, stmt: stmt}), nil
}

// CheckNamedValue implements driver.NamedValueChecker; every bind parameter
// passes through the typeconv adapters.
func (c *Conn) CheckNamedValue(nv *driver.NamedValue) error {
	v, err := typeconv.Adapt(nv.Value)
	if err != nil {
		return err
	}
	nv.Value = v
	return nil
}

// Ping implements driver.Pinger.
func (c *Conn) Ping(ctx context.Context) error {
	if p, ok := c.conn.(driver.Pinger); ok {
		return p.Ping(ctx)
	}
	_, err := c.rawExec(ctx, "SELECT 1")
	return err
}

// ResetSession implements driver.SessionResetter.
func (c *Conn) ResetSession(ctx context.Context) error {
	if r, ok := c.conn.(driver.SessionResetter); ok {
		return r.ResetSession(ctx)
	}
	return nil
}

// IsValid implements driver.Validator.
func (c *Conn) IsValid() bool {
	if v, ok := c.conn.(driver.Validator); ok {
		return v.IsValid()
	}
	return true
}

// Raw returns the wrapped driver connection.
func (c *Conn) Raw() driver.Conn {
	return c.conn
}

// rawExec runs an argument-free statement without placeholder rewriting.
func (c *Conn) rawExec(ctx context.Context, query string) (driver.Result, error) {
	if ec, ok := c.conn.(driver.ExecerContext); ok {
		res, err := ec.ExecContext(ctx, query, nil)
		if !errors.Is(err, driver.ErrSkip) {
			return res, err
		}
	}
	stmt, err := c.prepareRaw(ctx, query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	return execStmt(ctx, stmt, nil)
}

func namedArgNames(args []driver.NamedValue) []string {
	var names []string
	for _, arg := range args {
		if arg.Name != "" {
			names = append(names, arg.Name)
		}
	}
	return names
}

func execStmt(ctx context.Context, stmt driver.Stmt, args []driver.NamedValue) (driver.Result, error) {
	if se, ok := stmt.(driver.StmtExecContext); ok {
		return se.ExecContext(ctx, args)
	}
	values, err := positionalValues(args)
	if err != nil {
		return nil, err
	}
	return stmt.Exec(values)
}

func queryStmt(ctx context.Context, stmt driver.Stmt, args []driver.NamedValue) (driver.Rows, error) {
	if sq, ok := stmt.(driver.StmtQueryContext); ok {
		return sq.QueryContext(ctx, args)
	}
	values, err := positionalValues(args)
	if err != nil {
		return nil, err
	}
	return stmt.Query(values)
}

// positionalValues flattens named values for drivers that only take the
// legacy positional form. Named parameters cannot survive that flattening.
func positionalValues(args []driver.NamedValue) ([]driver.Value, error) {
	values := make([]driver.Value, len(args))
	for i, arg := range args {
		if arg.Name != "" {
			return nil, errors.New("shim: wrapped driver does not support named parameters")
		}
		values[i] = arg.Value
	}
	return values, nil
}

// stmtRows ties a statement's lifetime to the rows it produced for the
// fallback query path, closing both together.
type stmtRows struct {
	driver.Rows
	stmt driver.Stmt
}

func (r *stmtRows) Close() error {
	err := r.Rows.Close()
	if cerr := r.stmt.Close(); err == nil {
		err = cerr
	}
	return err
}
