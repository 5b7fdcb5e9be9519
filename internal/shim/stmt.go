package shim

import (
	"context"
	"database/sql/driver"

	"libsqldb/internal/placeholder"
)

// Stmt wraps a prepared statement. The statement text is prepared as written;
// when a call supplies bind arguments the placeholders are rewritten and a
// variant statement is prepared on demand, so that argument-free executions
// keep literal percent text intact. Result rows go through the declared-type
// converters; parameter adaptation happens in the connection's
// CheckNamedValue before values reach the statement.
type Stmt struct {
	conn  *Conn
	query string
	base  driver.Stmt

	// variants holds lazily prepared rewrites keyed by their final text;
	// format and named styles can both occur against the same statement.
	variants map[string]driver.Stmt
}

var (
	_ driver.Stmt             = (*Stmt)(nil)
	_ driver.StmtExecContext  = (*Stmt)(nil)
	_ driver.StmtQueryContext = (*Stmt)(nil)
)

func (s *Stmt) Close() error {
	err := s.base.Close()
	for _, stmt := range s.variants {
		if cerr := stmt.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// NumInput reports -1: the bound parameter count is only known once the
// placeholder style is resolved against the arguments of a call.
func (s *Stmt) NumInput() int {
	return -1
}

// forArgs picks the statement to run: the base statement when there is
// nothing to bind, otherwise a variant with placeholders rewritten.
func (s *Stmt) forArgs(ctx context.Context, names []string, hasArgs bool) (driver.Stmt, error) {
	if !hasArgs {
		return s.base, nil
	}
	query, err := placeholder.Convert(s.query, names)
	if err != nil {
		return nil, err
	}
	if query == s.query {
		return s.base, nil
	}
	if stmt, ok := s.variants[query]; ok {
		return stmt, nil
	}
	stmt, err := s.conn.prepareRaw(ctx, query)
	if err != nil {
		return nil, err
	}
	if s.variants == nil {
		s.variants = make(map[string]driver.Stmt)
	}
	s.variants[query] = stmt
	return stmt, nil
}

func (s *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	stmt, err := s.forArgs(context.Background(), nil, len(args) > 0)
	if err != nil {
		return nil, err
	}
	return stmt.Exec(args)
}

func (s *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	stmt, err := s.forArgs(context.Background(), nil, len(args) > 0)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.Query(args)
	if err != nil {
		return nil, err
	}
	return WrapRows(rows), nil
}

func (s *Stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	stmt, err := s.forArgs(ctx, namedArgNames(args), len(args) > 0)
	if err != nil {
		return nil, err
	}
	return execStmt(ctx, stmt, args)
}

func (s *Stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	stmt, err := s.forArgs(ctx, namedArgNames(args), len(args) > 0)
	if err != nil {
		return nil, err
	}
	rows, err := queryStmt(ctx, stmt, args)
	if err != nil {
		return nil, err
	}
	return WrapRows(rows), nil
}
