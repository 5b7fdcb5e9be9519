// Package typeconv adapts Go values into the textual forms libSQL stores and
// converts stored values back into Go types based on the declared column
// type. SQLite has no native date, time, or boolean storage classes; the
// convention (shared with every SQLite driver that round-trips these types)
// is ISO-8601 text for temporal values and 0/1 integers for booleans. The
// declared type of a column, or a "[type]" hint embedded in a result column
// name, selects the converter.
package typeconv

import (
	"database/sql/driver"
	"strings"
	"time"
)

// Adapt converts a bind parameter into a value the underlying driver stores
// in the expected textual form. time.Time becomes ISO-8601 text with a space
// separator (UTC midnight values collapse to YYYY-MM-DD), bool becomes 0/1.
// Everything else goes through the default parameter converter.
func Adapt(v any) (driver.Value, error) {
	switch t := v.(type) {
	case time.Time:
		return adaptTime(t), nil
	case bool:
		if t {
			return int64(1), nil
		}
		return int64(0), nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func adaptTime(t time.Time) string {
	// Only a UTC midnight collapses to the date form. A zoned midnight has
	// to keep its offset or it shifts by that offset on read-back.
	_, offset := t.Zone()
	if h, m, s := t.Clock(); h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0 && offset == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05.999999999-07:00")
}

// DeclType normalizes a declared column type into a converter key: lowered,
// with any size suffix stripped, e.g. "DATETIME" -> "datetime". An empty
// result means no converter applies.
func DeclType(decl string) string {
	decl = strings.ToLower(strings.TrimSpace(decl))
	if i := strings.IndexByte(decl, '('); i >= 0 {
		decl = decl[:i]
	}
	switch decl {
	case "bool", "boolean":
		return "bool"
	case "date":
		return "date"
	case "datetime", "timestamp":
		return "datetime"
	case "time":
		return "time"
	case "decimal", "numeric":
		return "decimal"
	}
	return ""
}

// ColumnHint extracts a converter key from a "[type]" hint in a result
// column name, e.g. `created "created [timestamp]"`. Returns "" when the
// name carries no recognized hint.
func ColumnHint(name string) string {
	lower := strings.ToLower(name)
	start := strings.IndexByte(lower, '[')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(lower[start:], ']')
	if end < 0 {
		return ""
	}
	return DeclType(lower[start+1 : start+end])
}

// Convert applies the converter named by key to a single result value.
// NULLs pass through, []byte is decoded to string first, and a value the
// converter cannot parse is returned unchanged rather than erroring.
func Convert(key string, v driver.Value) driver.Value {
	if v == nil || key == "" {
		return v
	}
	switch key {
	case "bool":
		return convertBool(v)
	case "date":
		return convertTemporal(v, dateLayouts)
	case "datetime":
		return convertTemporal(v, datetimeLayouts)
	case "time":
		return convertTemporal(v, timeLayouts)
	case "decimal":
		return asString(v)
	}
	return v
}

var (
	dateLayouts = []string{"2006-01-02"}

	datetimeLayouts = []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02T15:04:05.999999999Z07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
	}

	timeLayouts = []string{
		"15:04:05.999999999",
		"15:04",
	}
)

func convertBool(v driver.Value) driver.Value {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case []byte:
		return string(t) == "1"
	case string:
		return t == "1"
	}
	return v
}

func convertTemporal(v driver.Value, layouts []string) driver.Value {
	if t, ok := v.(time.Time); ok {
		return t
	}
	s, ok := textValue(v)
	if !ok {
		return v
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return v
}

func asString(v driver.Value) driver.Value {
	if s, ok := textValue(v); ok {
		return s
	}
	return v
}

// textValue decodes byte slices from the wire into regular strings before a
// converter runs, the same way the sqlite3 interface hands back bytestrings.
func textValue(v driver.Value) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	}
	return "", false
}
