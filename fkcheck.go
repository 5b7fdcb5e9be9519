package libsqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// EnableConstraintChecking turns foreign key enforcement on for new
// statements on the pool's connections.
func EnableConstraintChecking(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("libsqldb: enable foreign keys: %w", err)
	}
	return nil
}

// DisableConstraintChecking turns foreign key enforcement off and reports
// whether it is effectively disabled. The pragma is a no-op inside a
// multi-statement transaction, so the current state is read back rather
// than assumed.
func DisableConstraintChecking(ctx context.Context, db *sql.DB) (bool, error) {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return false, fmt.Errorf("libsqldb: disable foreign keys: %w", err)
	}
	var enabled int
	if err := db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return false, fmt.Errorf("libsqldb: read foreign_keys state: %w", err)
	}
	return enabled == 0, nil
}

// CheckConstraints scans the given tables (or every table when none are
// named) for rows with invalid foreign key references and returns an
// *IntegrityError describing the first violation. Intended for use after a
// Disable/Enable pair to find rows inserted while enforcement was off.
func CheckConstraints(ctx context.Context, db *sql.DB, tables ...string) error {
	violations, err := foreignKeyViolations(ctx, db, tables)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		return nil
	}
	detail, err := describeViolation(ctx, db, violations[0])
	if err != nil {
		return err
	}
	return detail
}

// fkViolation is one row of PRAGMA foreign_key_check: the referencing
// table, the rowid of the offending row, the referenced table, and the
// index of the foreign key in PRAGMA foreign_key_list order.
type fkViolation struct {
	table      string
	rowid      int64
	referenced string
	fkIndex    int
}

func foreignKeyViolations(ctx context.Context, db *sql.DB, tables []string) ([]fkViolation, error) {
	if len(tables) == 0 {
		return queryViolations(ctx, db, "PRAGMA foreign_key_check")
	}
	var all []fkViolation
	for _, table := range tables {
		vs, err := queryViolations(ctx, db, "PRAGMA foreign_key_check("+quoteName(table)+")")
		if err != nil {
			return nil, err
		}
		all = append(all, vs...)
	}
	return all, nil
}

func queryViolations(ctx context.Context, db *sql.DB, pragma string) ([]fkViolation, error) {
	rows, err := db.QueryContext(ctx, pragma)
	if err != nil {
		return nil, fmt.Errorf("libsqldb: foreign key check: %w", err)
	}
	defer rows.Close()

	var violations []fkViolation
	for rows.Next() {
		var v fkViolation
		if err := rows.Scan(&v.table, &v.rowid, &v.referenced, &v.fkIndex); err != nil {
			return nil, fmt.Errorf("libsqldb: foreign key check: %w", err)
		}
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("libsqldb: foreign key check: %w", err)
	}
	return violations, nil
}

// describeViolation resolves a foreign_key_check row into an IntegrityError
// with column names and the offending value filled in.
func describeViolation(ctx context.Context, db *sql.DB, v fkViolation) (*IntegrityError, error) {
	column, referencedColumn, err := foreignKeyColumns(ctx, db, v.table, v.fkIndex)
	if err != nil {
		return nil, err
	}
	pkColumn, err := primaryKeyColumn(ctx, db, v.table)
	if err != nil {
		return nil, err
	}

	var pkValue, badValue any
	query := fmt.Sprintf(
		"SELECT %s, %s FROM %s WHERE rowid = ?",
		quoteName(pkColumn), quoteName(column), quoteName(v.table),
	)
	if err := db.QueryRowContext(ctx, query, v.rowid).Scan(&pkValue, &badValue); err != nil {
		return nil, fmt.Errorf("libsqldb: read violating row: %w", err)
	}

	return &IntegrityError{
		Table:            v.table,
		PrimaryKey:       pkValue,
		Column:           column,
		BadValue:         badValue,
		ReferencedTable:  v.referenced,
		ReferencedColumn: referencedColumn,
	}, nil
}

// foreignKeyColumns returns the referencing and referenced column of the
// fkIndex-th foreign key of table, per PRAGMA foreign_key_list.
func foreignKeyColumns(ctx context.Context, db *sql.DB, table string, fkIndex int) (from, to string, err error) {
	rows, err := db.QueryContext(ctx, "PRAGMA foreign_key_list("+quoteName(table)+")")
	if err != nil {
		return "", "", fmt.Errorf("libsqldb: foreign key list: %w", err)
	}
	defer rows.Close()

	// Columns: id, seq, table, from, to, on_update, on_delete, match.
	row := 0
	for rows.Next() {
		var (
			id, seq                             int
			refTable, onUpdate, onDelete, match string
			fromCol                             string
			toCol                               sql.NullString
		)
		if err := rows.Scan(&id, &seq, &refTable, &fromCol, &toCol, &onUpdate, &onDelete, &match); err != nil {
			return "", "", fmt.Errorf("libsqldb: foreign key list: %w", err)
		}
		if row == fkIndex {
			return fromCol, toCol.String, nil
		}
		row++
	}
	if err := rows.Err(); err != nil {
		return "", "", fmt.Errorf("libsqldb: foreign key list: %w", err)
	}
	return "", "", fmt.Errorf("libsqldb: foreign key %d of table %q not found", fkIndex, table)
}

// primaryKeyColumn returns the primary key column of table, or "rowid" when
// the table has none.
func primaryKeyColumn(ctx context.Context, db *sql.DB, table string) (string, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+quoteName(table)+")")
	if err != nil {
		return "", fmt.Errorf("libsqldb: table info: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid, notNull, pk int
			name, declType   string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return "", fmt.Errorf("libsqldb: table info: %w", err)
		}
		if pk == 1 {
			return name, nil
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("libsqldb: table info: %w", err)
	}
	return "rowid", nil
}

// quoteName quotes an identifier for interpolation into a PRAGMA, which
// cannot take bind parameters.
func quoteName(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
