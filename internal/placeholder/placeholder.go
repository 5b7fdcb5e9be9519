// Package placeholder rewrites printf-style SQL parameter placeholders into
// the forms SQLite understands. ORMs and query builders in the MySQL/Postgres
// tradition emit "format" style (`%s`) and "pyformat" style (`%(name)s`)
// placeholders; SQLite accepts only "qmark" (`?`) and "named" (`:name`)
// binding. The conversion is pure text rewriting: a literal percent sign is
// written `%%`, and a `%s` immediately preceded by another `%` is literal.
package placeholder

import (
	"fmt"
	"strings"
)

// Style identifies a placeholder convention found in or produced for a query.
type Style string

const (
	StyleFormat   Style = "format"   // %s
	StylePyFormat Style = "pyformat" // %(name)s
	StyleQmark    Style = "qmark"    // ?
	StyleNamed    Style = "named"    // :name
)

// Convert rewrites query according to the parameter names supplied. With no
// names it converts "format" style to "qmark" style; with names it converts
// "pyformat" style to "named" style. Queries that contain no percent signs
// are returned unchanged.
func Convert(query string, names []string) (string, error) {
	if !strings.ContainsRune(query, '%') {
		return query, nil
	}
	if len(names) == 0 {
		return formatToQmark(query), nil
	}
	return pyformatToNamed(query, names)
}

// formatToQmark substitutes each %s not immediately preceded by a raw % with
// ?, then collapses %% to %. The two steps must run in that order: for input
// like `%%%s` the trailing %s is shielded by the percent before it and
// survives as literal text (`%%s`), which a single escape-tracking pass would
// get wrong. Equivalent to substituting the pattern `(?<!%)%s`; Go's regexp
// has no lookbehind, so the scan checks the preceding byte by hand.
func formatToQmark(query string) string {
	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		if query[i] == '%' && i+1 < len(query) && query[i+1] == 's' && (i == 0 || query[i-1] != '%') {
			b.WriteByte('?')
			i++
			continue
		}
		b.WriteByte(query[i])
	}
	return strings.ReplaceAll(b.String(), "%%", "%")
}

// pyformatToNamed replaces each %(name)s with :name for the given parameter
// names and collapses %% to %. A placeholder naming a parameter that was not
// supplied is an error, since binding it could never succeed.
func pyformatToNamed(query string, names []string) (string, error) {
	known := make(map[string]bool, len(names))
	for _, name := range names {
		known[name] = true
	}

	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(query) && query[i+1] == '%' {
			b.WriteByte('%')
			i++
			continue
		}
		if i+1 < len(query) && query[i+1] == '(' {
			end := strings.IndexByte(query[i+2:], ')')
			if end >= 0 && i+2+end+1 < len(query) && query[i+2+end+1] == 's' {
				name := query[i+2 : i+2+end]
				if !known[name] {
					return "", fmt.Errorf("placeholder: no value supplied for parameter %q", name)
				}
				b.WriteByte(':')
				b.WriteString(name)
				i += 2 + end + 1
				continue
			}
		}
		b.WriteByte('%')
	}
	return b.String(), nil
}
