// Package transformer defines the table-to-table step contract used by the
// cleaner and the pipeline.
package transformer

import "logisticsetl/internal/table"

// Transformer maps a table to a new table. Implementations must not modify
// the input.
type Transformer interface{ Apply(*table.Table) *table.Table }

// Func adapts a plain function to Transformer.
type Func func(*table.Table) *table.Table

func (f Func) Apply(t *table.Table) *table.Table { return f(t) }

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in *table.Table) *table.Table {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
