// Package table defines the in-memory tabular model that flows through the
// ETL: an ordered list of named, typed columns sharing one row count.
//
// Tables are copy-on-write. No function in this module writes into a cell
// slice after the Table holding it has been constructed; every operation that
// changes data allocates fresh slices and returns a new *Table. Unchanged
// columns may therefore be shared between an input table and its result.
package table

import (
	"fmt"
	"strings"
)

// Type is the declared type of a column. A cell of a column holds either nil
// (missing) or a Go value of the matching kind:
//
//	String   -> string
//	Integer  -> int64
//	Float    -> float64
//	Datetime -> time.Time
//	Boolean  -> bool
type Type string

const (
	String   Type = "string"
	Integer  Type = "integer"
	Float    Type = "float"
	Datetime Type = "datetime"
	Boolean  Type = "boolean"
)

// Numeric reports whether the type is Integer or Float.
func (t Type) Numeric() bool { return t == Integer || t == Float }

func (t Type) String() string { return string(t) }

// typeAliases maps accepted spellings of a type name to the Type.
var typeAliases = map[string]Type{
	"string": String, "str": String, "text": String, "object": String, "varchar": String,
	"integer": Integer, "int": Integer, "int64": Integer, "int32": Integer, "int16": Integer,
	"int8": Integer, "bigint": Integer, "smallint": Integer, "uint": Integer, "uint64": Integer,
	"uint32": Integer, "uint16": Integer, "uint8": Integer,
	"float": Float, "float64": Float, "float32": Float, "double": Float, "numeric": Float,
	"decimal": Float, "real": Float,
	"datetime": Datetime, "datetime64": Datetime, "timestamp": Datetime, "timestamptz": Datetime,
	"date": Datetime, "time": Datetime,
	"boolean": Boolean, "bool": Boolean,
}

// LookupType resolves a type name or one of its aliases, case-insensitively.
func LookupType(name string) (Type, bool) {
	t, ok := typeAliases[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Column is a named, typed sequence of cells. nil cells are missing.
type Column struct {
	Name  string
	Type  Type
	Cells []any
}

// Missing returns the number of nil cells in the column.
func (c Column) Missing() int {
	n := 0
	for _, v := range c.Cells {
		if v == nil {
			n++
		}
	}
	return n
}

// Floats returns the non-missing values of a numeric column as float64 along
// with the row index each value came from. Non-numeric columns yield nil.
func (c Column) Floats() (vals []float64, rows []int) {
	if !c.Type.Numeric() {
		return nil, nil
	}
	vals = make([]float64, 0, len(c.Cells))
	rows = make([]int, 0, len(c.Cells))
	for i, v := range c.Cells {
		f, ok := AsFloat(v)
		if !ok {
			continue
		}
		vals = append(vals, f)
		rows = append(rows, i)
	}
	return vals, rows
}

func (c Column) clone() Column {
	cells := make([]any, len(c.Cells))
	copy(cells, c.Cells)
	return Column{Name: c.Name, Type: c.Type, Cells: cells}
}

// Table is an ordered set of equally long columns.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// New builds a Table from columns. Column names must be unique and every
// column must have the same number of cells.
func New(cols ...Column) (*Table, error) {
	t := &Table{
		columns: make([]Column, 0, len(cols)),
		index:   make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("table: duplicate column %q", c.Name)
		}
		if i == 0 {
			t.rows = len(c.Cells)
		} else if len(c.Cells) != t.rows {
			return nil, fmt.Errorf("table: column %q has %d rows, want %d", c.Name, len(c.Cells), t.rows)
		}
		if c.Type == "" {
			c.Type = String
		}
		t.index[c.Name] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	return t, nil
}

// Empty returns a table with the given column names (all String) and no
// rows. Repeated names are kept once.
func Empty(names ...string) *Table {
	t := &Table{index: make(map[string]int, len(names))}
	for _, n := range names {
		if _, ok := t.index[n]; ok {
			continue
		}
		t.index[n] = len(t.columns)
		t.columns = append(t.columns, Column{Name: n, Type: String, Cells: []any{}})
	}
	return t
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.columns) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Name
	}
	return out
}

// Columns returns the columns in order. The returned cells are shared with
// the table and must be treated as read-only.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Row returns the cells of row i across all columns.
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.columns))
	for j, c := range t.columns {
		out[j] = c.Cells[i]
	}
	return out
}

// Clone returns a deep copy of the table's column slices.
func (t *Table) Clone() *Table {
	out := &Table{
		columns: make([]Column, len(t.columns)),
		index:   make(map[string]int, len(t.index)),
		rows:    t.rows,
	}
	for i, c := range t.columns {
		out.columns[i] = c.clone()
		out.index[c.Name] = i
	}
	return out
}

// WithColumn returns a new table in which the column named c.Name is replaced
// by c (or appended when absent). Other columns are shared.
func (t *Table) WithColumn(c Column) (*Table, error) {
	if len(t.columns) > 0 && len(c.Cells) != t.rows {
		return nil, fmt.Errorf("table: column %q has %d rows, want %d", c.Name, len(c.Cells), t.rows)
	}
	if c.Type == "" {
		c.Type = String
	}
	cols := make([]Column, len(t.columns), len(t.columns)+1)
	copy(cols, t.columns)
	if i, ok := t.index[c.Name]; ok {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return New(cols...)
}

// Filter returns a new table holding only the rows for which keep returns
// true, in their original order.
func (t *Table) Filter(keep func(row int) bool) *Table {
	selected := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		if keep(i) {
			selected = append(selected, i)
		}
	}
	return t.Take(selected)
}

// Take returns a new table with the given rows, in the given order.
func (t *Table) Take(rows []int) *Table {
	out := &Table{
		columns: make([]Column, len(t.columns)),
		index:   make(map[string]int, len(t.index)),
		rows:    len(rows),
	}
	for j, c := range t.columns {
		cells := make([]any, len(rows))
		for k, r := range rows {
			cells[k] = c.Cells[r]
		}
		out.columns[j] = Column{Name: c.Name, Type: c.Type, Cells: cells}
		out.index[c.Name] = j
	}
	return out
}

// Head returns the first n rows (or all rows when n exceeds the row count).
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > t.rows {
		n = t.rows
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return t.Take(rows)
}

// Concat stacks tables vertically. The result has the union of all column
// names in first-seen order; rows from a table lacking a column get missing
// cells there. When the same column has different types across inputs the
// result type is Float for Integer/Float mixes and String otherwise.
func Concat(tables ...*Table) (*Table, error) {
	var names []string
	types := map[string]Type{}
	total := 0
	for _, t := range tables {
		if t == nil {
			continue
		}
		total += t.rows
		for _, c := range t.columns {
			prev, seen := types[c.Name]
			if !seen {
				names = append(names, c.Name)
				types[c.Name] = c.Type
				continue
			}
			types[c.Name] = unify(prev, c.Type)
		}
	}

	cols := make([]Column, len(names))
	for i, name := range names {
		typ := types[name]
		cells := make([]any, 0, total)
		for _, t := range tables {
			if t == nil {
				continue
			}
			c, ok := t.Column(name)
			if !ok {
				for r := 0; r < t.rows; r++ {
					cells = append(cells, nil)
				}
				continue
			}
			for _, v := range c.Cells {
				cv, err := Convert(v, typ)
				if err != nil {
					return nil, fmt.Errorf("table: concat column %q: %w", name, err)
				}
				cells = append(cells, cv)
			}
		}
		cols[i] = Column{Name: name, Type: typ, Cells: cells}
	}
	return New(cols...)
}

func unify(a, b Type) Type {
	if a == b {
		return a
	}
	if a.Numeric() && b.Numeric() {
		return Float
	}
	return String
}
