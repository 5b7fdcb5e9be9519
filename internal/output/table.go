package output

import (
	"fmt"
	"strings"
)

type tableFormatter struct{}

// FormatResult renders a result set as an aligned text table, or a rows
// affected summary for statements without one.
func (tableFormatter) FormatResult(r *Result) (string, error) {
	if r == nil {
		return "", nil
	}
	if r.Rows == nil && len(r.Columns) == 0 {
		return fmt.Sprintf("%d row(s) affected\n", r.RowsAffected), nil
	}

	widths := make([]int, len(r.Columns))
	for i, col := range r.Columns {
		widths[i] = len(col)
	}
	rendered := make([][]string, len(r.Rows))
	for ri, row := range r.Rows {
		rendered[ri] = make([]string, len(row))
		for ci, v := range row {
			s := cell(v)
			rendered[ri][ci] = s
			if ci < len(widths) && len(s) > widths[ci] {
				widths[ci] = len(s)
			}
		}
	}

	var b strings.Builder
	writeRow(&b, r.Columns, widths)
	sep := make([]string, len(r.Columns))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(&b, sep, widths)
	for _, row := range rendered {
		writeRow(&b, row, widths)
	}
	fmt.Fprintf(&b, "(%d rows)\n", len(r.Rows))
	return b.String(), nil
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	for i, s := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(s)
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-len(s)))
		}
	}
	b.WriteByte('\n')
}
