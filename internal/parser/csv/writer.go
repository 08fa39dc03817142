package csv

import (
	"encoding/csv"
	"fmt"
	"io"

	"logisticsetl/internal/table"
)

// Write renders t as CSV with a header row. Missing cells are written as
// empty fields. comma defaults to ',' when zero.
func Write(w io.Writer, t *table.Table, comma rune) error {
	cw := csv.NewWriter(w)
	if comma != 0 {
		cw.Comma = comma
	}
	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	cols := t.Columns()
	rec := make([]string, len(cols))
	for r := 0; r < t.NumRows(); r++ {
		for j, c := range cols {
			rec[j] = table.Format(c.Cells[r])
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %d: %w", r+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
