// Package validator checks tables against the expected schema, types, value
// ranges and overall quality. Checks only report; they never change a table.
package validator

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"logisticsetl/internal/table"
)

// SchemaResult is the outcome of ValidateSchema.
type SchemaResult struct {
	HasRequiredColumns bool
	MissingColumns     []string
	IsNotEmpty         bool
	HasAllNullColumns  bool
	AllNullColumns     []string
}

// QualityReport summarizes missing and duplicated data.
type QualityReport struct {
	TotalRows          int
	TotalColumns       int
	TotalCells         int
	MissingCells       int
	MissingPercentage  float64
	DuplicateRows      int
	ColumnsWithMissing []string
}

// Range is an inclusive numeric bound.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Validator runs the checks.
type Validator struct {
	required []string
	log      *zap.Logger
}

// New returns a Validator that expects the required columns.
func New(required []string, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{required: append([]string(nil), required...), log: log}
}

// ValidateSchema checks for required columns, rows, and columns without any
// value.
func (v *Validator) ValidateSchema(t *table.Table) SchemaResult {
	res := SchemaResult{IsNotEmpty: t.NumRows() > 0}
	for _, name := range v.required {
		if !t.Has(name) {
			res.MissingColumns = append(res.MissingColumns, name)
		}
	}
	res.HasRequiredColumns = len(res.MissingColumns) == 0
	for _, c := range t.Columns() {
		if c.Missing() == len(c.Cells) {
			res.AllNullColumns = append(res.AllNullColumns, c.Name)
		}
	}
	res.HasAllNullColumns = len(res.AllNullColumns) > 0

	if !res.HasRequiredColumns {
		v.log.Warn("validate: missing required columns", zap.Strings("columns", res.MissingColumns))
	}
	if !res.IsNotEmpty {
		v.log.Warn("validate: table has no rows")
	}
	if res.HasAllNullColumns {
		v.log.Warn("validate: columns without values", zap.Strings("columns", res.AllNullColumns))
	}
	return res
}

// typeCategories lists, per expected type name, the column types that
// satisfy it.
var typeCategories = map[table.Type][]table.Type{
	table.String:   {table.String},
	table.Integer:  {table.Integer},
	table.Float:    {table.Float},
	table.Datetime: {table.Datetime},
	table.Boolean:  {table.Boolean},
}

// ValidateTypes reports, per expected column, whether the column exists and
// has a type in the expected category. Expected names that are not a known
// type or alias are compared literally with the column type name.
func (v *Validator) ValidateTypes(t *table.Table, expected map[string]string) map[string]bool {
	out := make(map[string]bool, len(expected))
	for name, want := range expected {
		c, ok := t.Column(name)
		if !ok {
			out[name] = false
			continue
		}
		out[name] = typeMatches(c.Type, want)
		if !out[name] {
			v.log.Warn("validate: unexpected column type",
				zap.String("column", name),
				zap.String("expected", want),
				zap.String("actual", c.Type.String()),
			)
		}
	}
	return out
}

func typeMatches(actual table.Type, want string) bool {
	typ, ok := table.LookupType(want)
	if !ok {
		return strings.EqualFold(strings.TrimSpace(want), actual.String())
	}
	for _, allowed := range typeCategories[typ] {
		if actual == allowed {
			return true
		}
	}
	return false
}

// CheckQuality computes the quality report.
func (v *Validator) CheckQuality(t *table.Table) QualityReport {
	rep := QualityReport{
		TotalRows:    t.NumRows(),
		TotalColumns: t.NumCols(),
		TotalCells:   t.NumRows() * t.NumCols(),
	}
	for _, c := range t.Columns() {
		if m := c.Missing(); m > 0 {
			rep.MissingCells += m
			rep.ColumnsWithMissing = append(rep.ColumnsWithMissing, c.Name)
		}
	}
	if rep.TotalCells > 0 {
		rep.MissingPercentage = float64(rep.MissingCells) / float64(rep.TotalCells) * 100
	}
	for _, dup := range table.DuplicateRows(t, nil) {
		if dup {
			rep.DuplicateRows++
		}
	}
	v.log.Info("validate: quality",
		zap.Int("rows", rep.TotalRows),
		zap.Int("columns", rep.TotalColumns),
		zap.Int("missing_cells", rep.MissingCells),
		zap.Float64("missing_pct", math.Round(rep.MissingPercentage*100)/100),
		zap.Int("duplicate_rows", rep.DuplicateRows),
	)
	return rep
}

// ValidateRanges reports, per rule, whether every value of the column lies
// within the range. Missing values are ignored. Absent and non-numeric
// columns fail.
func (v *Validator) ValidateRanges(t *table.Table, rules map[string]Range) map[string]bool {
	out := make(map[string]bool, len(rules))
	for name, r := range rules {
		c, ok := t.Column(name)
		if !ok || !c.Type.Numeric() {
			out[name] = false
			v.log.Warn("validate: range check not applicable", zap.String("column", name))
			continue
		}
		vals, _ := c.Floats()
		inRange := true
		for _, x := range vals {
			if x < r.Min || x > r.Max {
				inRange = false
				break
			}
		}
		out[name] = inRange
		if !inRange {
			v.log.Warn("validate: values out of range",
				zap.String("column", name),
				zap.Float64("min", r.Min),
				zap.Float64("max", r.Max),
			)
		}
	}
	return out
}
