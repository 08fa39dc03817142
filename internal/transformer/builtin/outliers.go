package builtin

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"logisticsetl/internal/stats"
	"logisticsetl/internal/table"
)

// Outlier detection methods.
const (
	MethodIQR    = "iqr"
	MethodZScore = "zscore"
)

// DefaultThreshold is used when Outliers.Threshold is not positive.
const DefaultThreshold = 1.5

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrNotNumeric     = errors.New("column is not numeric")
	ErrUnknownMethod  = errors.New("unknown outlier method")
)

// Outliers drops rows whose value in Column lies outside the bounds computed
// by Method. Rows missing a value in Column are dropped too. With MethodIQR
// the bounds are [Q1-k*IQR, Q3+k*IQR], inclusive, with linearly interpolated
// quartiles. With MethodZScore a row is kept while |x-mean|/std <= k using the
// sample standard deviation; a column without spread keeps every value.
type Outliers struct {
	Column    string
	Method    string
	Threshold float64
}

// Apply returns the filtered table, or the input when Filter fails.
func (o Outliers) Apply(in *table.Table) *table.Table {
	out, err := o.Filter(in)
	if err != nil {
		return in
	}
	return out
}

// Filter is Apply with the reason for leaving the table unchanged.
func (o Outliers) Filter(in *table.Table) (*table.Table, error) {
	c, ok := in.Column(o.Column)
	if !ok {
		return in, fmt.Errorf("%w: %q", ErrColumnNotFound, o.Column)
	}
	if !c.Type.Numeric() {
		return in, fmt.Errorf("%w: %q is %s", ErrNotNumeric, o.Column, c.Type)
	}
	k := o.Threshold
	if k <= 0 {
		k = DefaultThreshold
	}
	vals, rows := c.Floats()

	var inside func(x float64) bool
	switch strings.ToLower(strings.TrimSpace(o.Method)) {
	case MethodIQR:
		q1, q3 := stats.Quantile(vals, 0.25), stats.Quantile(vals, 0.75)
		iqr := q3 - q1
		lo, hi := q1-k*iqr, q3+k*iqr
		inside = func(x float64) bool { return x >= lo && x <= hi }
	case MethodZScore:
		mean, sd := stats.Mean(vals), stats.StdDev(vals)
		if sd == 0 || math.IsNaN(sd) {
			inside = func(float64) bool { return true }
		} else {
			inside = func(x float64) bool { return math.Abs(x-mean)/sd <= k }
		}
	default:
		return in, fmt.Errorf("%w: %q", ErrUnknownMethod, o.Method)
	}

	keep := make([]int, 0, len(rows))
	for i, r := range rows {
		if inside(vals[i]) {
			keep = append(keep, r)
		}
	}
	if len(keep) == in.NumRows() {
		return in, nil
	}
	return in.Take(keep), nil
}
