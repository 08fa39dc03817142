package builtin

import (
	"fmt"

	"logisticsetl/internal/table"
)

// TypeCoercionError reports the first cell of a column that could not be
// converted to the target type.
type TypeCoercionError struct {
	Column string
	Target string
	Value  string
	Err    error
}

func (e *TypeCoercionError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("convert column %q to %s: %v", e.Column, e.Target, e.Err)
	}
	return fmt.Sprintf("convert column %q to %s: value %q: %v", e.Column, e.Target, e.Value, e.Err)
}

func (e *TypeCoercionError) Unwrap() error { return e.Err }

// Coerce converts columns to the named types. Type names accept the aliases
// known to table.LookupType. A column that fails to convert is left as it was
// and the failure is passed to OnError; the remaining columns still convert.
type Coerce struct {
	Types   map[string]string // column -> type name
	OnError func(*TypeCoercionError)
}

// Apply returns the table with the configured columns converted. Columns are
// visited in table order.
func (c Coerce) Apply(in *table.Table) *table.Table {
	if len(c.Types) == 0 {
		return in
	}
	out := in
	for _, col := range in.Columns() {
		name, ok := c.Types[col.Name]
		if !ok {
			continue
		}
		to, ok := table.LookupType(name)
		if !ok {
			c.fail(&TypeCoercionError{Column: col.Name, Target: name, Err: fmt.Errorf("unknown type %q", name)})
			continue
		}
		if col.Type == to {
			continue
		}
		conv, err := convertCells(col, to)
		if err != nil {
			c.fail(err)
			continue
		}
		out = replace(out, conv)
	}
	return out
}

func (c Coerce) fail(err *TypeCoercionError) {
	if c.OnError != nil {
		c.OnError(err)
	}
}

func convertCells(col table.Column, to table.Type) (table.Column, *TypeCoercionError) {
	cells := make([]any, len(col.Cells))
	for i, v := range col.Cells {
		cv, err := table.Convert(v, to)
		if err != nil {
			return col, &TypeCoercionError{Column: col.Name, Target: string(to), Value: table.Format(v), Err: err}
		}
		cells[i] = cv
	}
	return table.Column{Name: col.Name, Type: to, Cells: cells}, nil
}
