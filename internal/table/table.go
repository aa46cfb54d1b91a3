// Package table provides the ordered row/column abstraction the pipeline
// passes between stages.
package table

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is an ordered sequence of rows sharing one ordered column set.
// Cells are kept as strings; numeric columns are parsed on read.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New creates an empty table with the given columns. Duplicate names keep
// their first position.
func New(columns ...string) *Table {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if _, ok := t.index[c]; ok {
			continue
		}
		t.index[c] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	return t
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Has reports whether the column exists.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Append adds a row. The value count must match the column count.
func (t *Table) Append(values ...string) error {
	if len(values) != len(t.columns) {
		return eris.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}
	row := make([]string, len(values))
	copy(row, values)
	t.rows = append(t.rows, row)
	return nil
}

// Row returns a copy of the i-th row.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Value returns the cell at row i for the named column.
func (t *Table) Value(i int, column string) (string, bool) {
	idx, ok := t.index[column]
	if !ok || i < 0 || i >= len(t.rows) {
		return "", false
	}
	return t.rows[i][idx], true
}

// Column returns all values of the named column in row order.
func (t *Table) Column(column string) ([]string, error) {
	idx, ok := t.index[column]
	if !ok {
		return nil, eris.Errorf("column %q not found", column)
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Float parses the cell at row i as a float. Empty cells parse as NaN,
// matching how dataframe readers treat missing values.
func (t *Table) Float(i int, column string) (float64, error) {
	raw, ok := t.Value(i, column)
	if !ok {
		return 0, eris.Errorf("cell %d/%q not found", i, column)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "parse row %d column %q", i, column)
	}
	return v, nil
}

// WithColumns returns a copy of the table extended by the given columns.
// values[i] holds the new cells of row i, in the order of names. Existing
// columns with the same name are overwritten in place.
func (t *Table) WithColumns(names []string, values [][]string) (*Table, error) {
	if len(values) != len(t.rows) {
		return nil, eris.Errorf("got %d value rows for %d table rows", len(values), len(t.rows))
	}

	out := New(append(t.Columns(), names...)...)
	for i, row := range t.rows {
		if len(values[i]) != len(names) {
			return nil, eris.Errorf("row %d: got %d values for %d columns", i, len(values[i]), len(names))
		}
		merged := make([]string, len(out.columns))
		copy(merged, row)
		for j, name := range names {
			merged[out.index[name]] = values[i][j]
		}
		out.rows = append(out.rows, merged)
	}
	return out, nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := New(t.columns...)
	out.rows = make([][]string, len(t.rows))
	for i := range t.rows {
		out.rows[i] = t.Row(i)
	}
	return out
}

// Head returns a copy holding at most n leading rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	out := New(t.columns...)
	for i := 0; i < n; i++ {
		out.rows = append(out.rows, t.Row(i))
	}
	return out
}
