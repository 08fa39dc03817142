package builtin

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"logisticsetl/internal/table"
)

// Normalize rewrites the listed columns as trimmed, lowercased strings.
// Values are NFC-normalized first so composed and decomposed spellings of the
// same text compare equal afterwards. Missing cells stay missing and columns
// the table does not have are skipped.
type Normalize struct {
	Columns []string
}

// Apply returns the table with the listed columns normalized.
func (n Normalize) Apply(in *table.Table) *table.Table {
	lower := cases.Lower(language.Und)
	out := in
	for _, name := range n.Columns {
		c, ok := in.Column(name)
		if !ok {
			continue
		}
		cells := make([]any, len(c.Cells))
		for i, v := range c.Cells {
			if v == nil {
				continue
			}
			s := norm.NFC.String(table.Format(v))
			cells[i] = lower.String(strings.TrimSpace(s))
		}
		out = replace(out, table.Column{Name: c.Name, Type: table.String, Cells: cells})
	}
	return out
}
