package builtin

import "logisticsetl/internal/table"

// Require removes every row that has a missing cell in any of Columns, or in
// any column at all when Columns is empty. Unknown column names are ignored.
type Require struct {
	Columns []string
}

// Apply returns the rows that have values in all required columns.
func (r Require) Apply(in *table.Table) *table.Table {
	cols := in.Columns()
	if len(r.Columns) > 0 {
		cols = cols[:0:0]
		for _, name := range r.Columns {
			if c, ok := in.Column(name); ok {
				cols = append(cols, c)
			}
		}
	}
	dirty := false
	for _, c := range cols {
		if c.Missing() > 0 {
			dirty = true
			break
		}
	}
	if !dirty {
		return in
	}
	return in.Filter(func(row int) bool {
		for _, c := range cols {
			if c.Cells[row] == nil {
				return false
			}
		}
		return true
	})
}
