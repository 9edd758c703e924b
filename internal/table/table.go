// Package table holds the in-memory tabular dataset passed between pipeline
// steps: an ordered column list and ordered rows of untyped cells.
package table

// Row maps a column name to a cell value (string, number, time.Time or nil).
type Row map[string]any

// Table is an ordered set of rows sharing one column list. Steps build new
// tables rather than mutating the ones they were given.
type Table struct {
	Columns []string
	Rows    []Row
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// FromRecords builds a table from a header record and data records, the
// shape spreadsheet readers produce. Short records are padded with nil.
func FromRecords(header []string, records [][]any) *Table {
	t := New(header...)
	for _, rec := range records {
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = nil
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Append adds a row built from values in column order.
func (t *Table) Append(values ...any) {
	row := make(Row, len(t.Columns))
	for i, col := range t.Columns {
		if i < len(values) {
			row[col] = values[i]
		}
	}
	t.Rows = append(t.Rows, row)
}

// Has reports whether the table carries the named column.
func (t *Table) Has(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Records returns the rows as value slices in column order.
func (t *Table) Records() [][]any {
	out := make([][]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make([]any, len(t.Columns))
		for i, col := range t.Columns {
			rec[i] = row[col]
		}
		out = append(out, rec)
	}
	return out
}
