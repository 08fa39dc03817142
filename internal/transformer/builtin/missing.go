package builtin

import (
	"math"
	"strings"

	"logisticsetl/internal/stats"
	"logisticsetl/internal/table"
)

// Missing-value strategies.
const (
	StrategyDrop        = "drop"
	StrategyFill        = "fill"
	StrategyInterpolate = "interpolate"
)

// Unknown fills non-numeric columns that have no value to take a mode from.
const Unknown = "Unknown"

// KnownStrategy reports whether s names a missing-value strategy.
func KnownStrategy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case StrategyDrop, StrategyFill, StrategyInterpolate:
		return true
	}
	return false
}

// Missing handles missing cells with one of the strategies above. An
// unrecognized strategy leaves the table unchanged.
//
// With StrategyFill and a non-empty Fill map exactly the mapped columns are
// filled with the mapped values. A value that does not fit the column type
// turns the column into a string column; a non-integral number promotes an
// integer column to float. Without a map every column is filled: numeric
// columns with their mean, other columns with their most frequent value
// (ties go to the value seen first), and columns without any value with
// Unknown.
//
// StrategyInterpolate fills numeric columns by linear interpolation over row
// position. Gaps after the last value repeat it; gaps before the first value
// stay missing.
type Missing struct {
	Strategy string
	Fill     map[string]any
}

// Apply returns the table with missing cells handled.
func (m Missing) Apply(in *table.Table) *table.Table {
	switch strings.ToLower(strings.TrimSpace(m.Strategy)) {
	case StrategyDrop:
		return Require{}.Apply(in)
	case StrategyFill:
		if len(m.Fill) > 0 {
			return m.fillMapped(in)
		}
		return fillAll(in)
	case StrategyInterpolate:
		return interpolateAll(in)
	}
	return in
}

func (m Missing) fillMapped(in *table.Table) *table.Table {
	out := in
	for _, name := range in.Names() {
		v, ok := m.Fill[name]
		if !ok {
			continue
		}
		c, _ := in.Column(name)
		if c.Missing() == 0 {
			continue
		}
		out = replace(out, fillColumn(c, normalizeValue(v)))
	}
	return out
}

func fillAll(in *table.Table) *table.Table {
	out := in
	for _, c := range in.Columns() {
		if c.Missing() == 0 {
			continue
		}
		var v any = Unknown
		if vals, _ := c.Floats(); c.Type.Numeric() && len(vals) > 0 {
			v = stats.Mean(vals)
		} else if mode, ok := modeOf(c); ok {
			v = mode
		}
		out = replace(out, fillColumn(c, v))
	}
	return out
}

// fillColumn fills the missing cells of c with v, adjusting the column type
// when v does not fit it.
func fillColumn(c table.Column, v any) table.Column {
	typ := c.Type
	fill, err := table.Convert(v, typ)
	switch {
	case err != nil:
		typ = table.String
		fill = table.Format(v)
	case typ == table.Integer:
		if f, ok := v.(float64); ok && f != math.Trunc(f) {
			typ, fill = table.Float, f
		}
	}

	cells := make([]any, len(c.Cells))
	for i, cell := range c.Cells {
		if cell == nil {
			cells[i] = fill
			continue
		}
		cv, err := table.Convert(cell, typ)
		if err != nil {
			cv = table.Format(cell)
		}
		cells[i] = cv
	}
	return table.Column{Name: c.Name, Type: typ, Cells: cells}
}

// modeOf returns the most frequent non-missing value; ties go to the value
// seen first.
func modeOf(c table.Column) (any, bool) {
	counts := make(map[string]int)
	first := make(map[string]any)
	var order []string
	for _, v := range c.Cells {
		if v == nil {
			continue
		}
		k := table.Format(v)
		if _, ok := first[k]; !ok {
			first[k] = v
			order = append(order, k)
		}
		counts[k]++
	}
	if len(order) == 0 {
		return nil, false
	}
	best := order[0]
	for _, k := range order[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return first[best], true
}

func interpolateAll(in *table.Table) *table.Table {
	out := in
	for _, c := range in.Columns() {
		if !c.Type.Numeric() || c.Missing() == 0 {
			continue
		}
		if ic, changed := interpolate(c); changed {
			out = replace(out, ic)
		}
	}
	return out
}

func interpolate(c table.Column) (table.Column, bool) {
	vals, rows := c.Floats()
	if len(vals) == 0 {
		return c, false
	}
	filled := make([]float64, len(c.Cells))
	set := make([]bool, len(c.Cells))
	for k, r := range rows {
		filled[r], set[r] = vals[k], true
	}
	integral := true
	changed := false
	for k := 0; k < len(rows); k++ {
		a := rows[k]
		end := len(c.Cells)
		if k+1 < len(rows) {
			end = rows[k+1]
		}
		for i := a + 1; i < end; i++ {
			v := vals[k]
			if k+1 < len(rows) {
				v += (vals[k+1] - vals[k]) * float64(i-a) / float64(end-a)
			}
			filled[i], set[i] = v, true
			changed = true
			if v != math.Trunc(v) {
				integral = false
			}
		}
	}
	if !changed {
		return c, false
	}

	typ := c.Type
	if typ == table.Integer && !integral {
		typ = table.Float
	}
	cells := make([]any, len(c.Cells))
	for i := range cells {
		if !set[i] {
			continue
		}
		if typ == table.Integer {
			cells[i] = int64(filled[i])
		} else {
			cells[i] = filled[i]
		}
	}
	return table.Column{Name: c.Name, Type: typ, Cells: cells}, true
}

// replace swaps c into t. Both always have the same row count here.
func replace(t *table.Table, c table.Column) *table.Table {
	out, err := t.WithColumn(c)
	if err != nil {
		return t
	}
	return out
}

// normalizeValue widens decoded config scalars to the cell kinds.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	}
	return v
}
