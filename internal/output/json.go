package output

import (
	"encoding/json"
	"fmt"
)

type jsonFormatter struct{}

type jsonResult struct {
	Columns      []string `json:"columns,omitempty"`
	Rows         [][]any  `json:"rows,omitempty"`
	RowsAffected *int64   `json:"rowsAffected,omitempty"`
}

// FormatResult renders a result as indented JSON.
func (jsonFormatter) FormatResult(r *Result) (string, error) {
	if r == nil {
		return "", nil
	}
	out := jsonResult{Columns: r.Columns}
	if r.Rows != nil {
		rows := make([][]any, len(r.Rows))
		for i, row := range r.Rows {
			cells := make([]any, len(row))
			for j, v := range row {
				if b, ok := v.([]byte); ok {
					cells[j] = string(b)
				} else {
					cells[j] = v
				}
			}
			rows[i] = cells
		}
		out.Rows = rows
	} else {
		affected := r.RowsAffected
		out.RowsAffected = &affected
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("output: marshal result: %w", err)
	}
	return string(data) + "\n", nil
}
