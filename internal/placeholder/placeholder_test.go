package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertFormatToQmark(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"single placeholder", "SELECT * FROM users WHERE id = %s", "SELECT * FROM users WHERE id = ?"},
		{"multiple placeholders", "INSERT INTO t (a, b) VALUES (%s, %s)", "INSERT INTO t (a, b) VALUES (?, ?)"},
		{"no placeholders", "SELECT 1", "SELECT 1"},
		{"escaped percent", "SELECT '100%%'", "SELECT '100%'"},
		{"escaped percent before s", "SELECT '%%s'", "SELECT '%s'"},
		{"like pattern with escape", "SELECT * FROM t WHERE name LIKE '%%' || %s || '%%'", "SELECT * FROM t WHERE name LIKE '%' || ? || '%'"},
		{"shielded placeholder stays literal", "SELECT '%%%s'", "SELECT '%%s'"},
		{"lone percent", "SELECT '50%'", "SELECT '50%'"},
		{"bare percent", "%", "%"},
		{"trailing percent", "SELECT '50%' --%", "SELECT '50%' --%"},
		{"percent then other letter", "strftime('%Y', d)", "strftime('%Y', d)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.query, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertPyformatToNamed(t *testing.T) {
	tests := []struct {
		name  string
		query string
		names []string
		want  string
	}{
		{
			"single named placeholder",
			"SELECT * FROM users WHERE id = %(id)s",
			[]string{"id"},
			"SELECT * FROM users WHERE id = :id",
		},
		{
			"multiple named placeholders",
			"UPDATE t SET a = %(a)s WHERE b = %(b)s",
			[]string{"a", "b"},
			"UPDATE t SET a = :a WHERE b = :b",
		},
		{
			"repeated name",
			"SELECT %(x)s, %(x)s",
			[]string{"x"},
			"SELECT :x, :x",
		},
		{
			"escaped percent alongside names",
			"SELECT '100%%' WHERE a = %(a)s",
			[]string{"a"},
			"SELECT '100%' WHERE a = :a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.query, tt.names)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertUnknownNameFails(t *testing.T) {
	_, err := Convert("SELECT %(missing)s", []string{"present"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestConvertLeavesMalformedPyformatAlone(t *testing.T) {
	// An unterminated %( group is not a placeholder; it passes through.
	got, err := Convert("SELECT '%(oops'", []string{"oops"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT '%(oops'", got)
}
