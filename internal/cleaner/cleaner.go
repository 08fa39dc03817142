// Package cleaner applies cleaning operations to tables and logs what each
// one did. The work itself is done by the transformers in
// internal/transformer/builtin.
package cleaner

import (
	"sort"

	"go.uber.org/zap"

	"logisticsetl/internal/table"
	"logisticsetl/internal/transformer/builtin"
)

// Cleaner is a logging facade over the builtin transformers.
type Cleaner struct {
	log *zap.Logger
}

// New returns a Cleaner that logs to log (a no-op logger when nil).
func New(log *zap.Logger) *Cleaner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cleaner{log: log}
}

// Dedupe drops repeated rows, keeping the first occurrence. With keys only
// those columns decide whether two rows are the same.
func (c *Cleaner) Dedupe(t *table.Table, keys ...string) *table.Table {
	return c.DedupeKeep(t, builtin.KeepFirst, keys...)
}

// DedupeKeep is Dedupe with the winner of each duplicate group chosen by
// policy (builtin.KeepFirst, KeepLast or MostComplete).
func (c *Cleaner) DedupeKeep(t *table.Table, policy string, keys ...string) *table.Table {
	for _, k := range keys {
		if !t.Has(k) {
			c.log.Warn("clean: duplicate key column not found", zap.String("column", k))
		}
	}
	out := builtin.DeDup{Keys: keys, Policy: policy}.Apply(t)
	c.log.Info("clean: removed duplicates",
		zap.String("keep", policy),
		zap.Int("removed", t.NumRows()-out.NumRows()),
	)
	return out
}

// HandleMissing applies the named strategy. See builtin.Missing for the
// rules; an unknown strategy returns t unchanged.
func (c *Cleaner) HandleMissing(t *table.Table, strategy string, fill map[string]any) *table.Table {
	if !builtin.KnownStrategy(strategy) {
		c.log.Warn("clean: unknown missing-value strategy, leaving table unchanged", zap.String("strategy", strategy))
		return t
	}
	before := missingCells(t)
	out := builtin.Missing{Strategy: strategy, Fill: fill}.Apply(t)
	c.log.Info("clean: handled missing values",
		zap.String("strategy", strategy),
		zap.Int("missing_before", before),
		zap.Int("missing_after", missingCells(out)),
		zap.Int("rows_removed", t.NumRows()-out.NumRows()),
	)
	return out
}

// StandardizeText trims and lowercases the listed columns.
func (c *Cleaner) StandardizeText(t *table.Table, columns []string) *table.Table {
	var done []string
	for _, name := range columns {
		if t.Has(name) {
			done = append(done, name)
		}
	}
	out := builtin.Normalize{Columns: columns}.Apply(t)
	c.log.Info("clean: standardized text", zap.Strings("columns", done))
	return out
}

// ConvertTypes converts columns to the named types. A column that cannot be
// converted is logged and left as it was.
func (c *Cleaner) ConvertTypes(t *table.Table, types map[string]string) *table.Table {
	failed := 0
	out := builtin.Coerce{
		Types: types,
		OnError: func(err *builtin.TypeCoercionError) {
			failed++
			c.log.Error("clean: type conversion failed",
				zap.String("column", err.Column),
				zap.String("target", err.Target),
				zap.Error(err),
			)
		},
	}.Apply(t)
	c.log.Info("clean: converted types",
		zap.Strings("columns", sortedKeys(types)),
		zap.Int("failed", failed),
	)
	return out
}

// RemoveOutliers drops rows whose column value falls outside the method's
// bounds. threshold <= 0 means builtin.DefaultThreshold. A missing or
// non-numeric column, or an unknown method, is logged as a warning and the
// table is returned unchanged.
func (c *Cleaner) RemoveOutliers(t *table.Table, column, method string, threshold float64) *table.Table {
	out, err := builtin.Outliers{Column: column, Method: method, Threshold: threshold}.Filter(t)
	if err != nil {
		c.log.Warn("clean: outlier removal skipped", zap.String("column", column), zap.Error(err))
		return t
	}
	c.log.Info("clean: removed outliers",
		zap.String("column", column),
		zap.String("method", method),
		zap.Int("removed", t.NumRows()-out.NumRows()),
	)
	return out
}

func missingCells(t *table.Table) int {
	n := 0
	for _, col := range t.Columns() {
		n += col.Missing()
	}
	return n
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
