// Package output provides a set of formatters for query results printed by
// the command-line tool. It is extendable and for now provides two formats:
// table and JSON.
package output

import (
	"fmt"
	"strings"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// Result is a fully fetched statement result. Rows is nil for statements
// that return no result set, in which case RowsAffected is meaningful.
type Result struct {
	Columns      []string
	Rows         [][]any
	RowsAffected int64
}

// Formatter renders a statement result as text.
type Formatter interface {
	FormatResult(*Result) (string, error)
}

// NewFormatter creates a new Formatter instance based on the given name.
// If no format is specified, defaults to table format.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatTable:
		return tableFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s; use 'table' or 'json'", name)
	}
}

// cell renders a single value the way the sqlite shell would: NULL for nil,
// raw text otherwise.
func cell(v any) string {
	if v == nil {
		return "NULL"
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}
