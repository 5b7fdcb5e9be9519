package shim

import (
	"database/sql/driver"

	"libsqldb/internal/typeconv"
)

// WrapRows attaches declared-type converters to a result set. The converter
// for each column comes from a "[type]" hint in the column name or, failing
// that, the declared database type reported by the wrapped rows. Result sets
// with no convertible columns are returned unwrapped.
func WrapRows(rows driver.Rows) driver.Rows {
	names := rows.Columns()
	keys := make([]string, len(names))

	typer, hasTyper := rows.(driver.RowsColumnTypeDatabaseTypeName)
	convertible := false
	for i, name := range names {
		key := typeconv.ColumnHint(name)
		if key == "" && hasTyper {
			key = typeconv.DeclType(typer.ColumnTypeDatabaseTypeName(i))
		}
		keys[i] = key
		if key != "" {
			convertible = true
		}
	}
	if !convertible {
		return rows
	}
	return &convRows{rows: rows, keys: keys}
}

// convRows converts fetched values column by column.
type convRows struct {
	rows driver.Rows
	keys []string
}

var (
	_ driver.Rows                           = (*convRows)(nil)
	_ driver.RowsColumnTypeDatabaseTypeName = (*convRows)(nil)
)

func (r *convRows) Columns() []string {
	return r.rows.Columns()
}

func (r *convRows) Close() error {
	return r.rows.Close()
}

func (r *convRows) Next(dest []driver.Value) error {
	if err := r.rows.Next(dest); err != nil {
		return err
	}
	for i := range dest {
		if i < len(r.keys) {
			dest[i] = typeconv.Convert(r.keys[i], dest[i])
		}
	}
	return nil
}

func (r *convRows) ColumnTypeDatabaseTypeName(index int) string {
	if typer, ok := r.rows.(driver.RowsColumnTypeDatabaseTypeName); ok {
		return typer.ColumnTypeDatabaseTypeName(index)
	}
	return ""
}
