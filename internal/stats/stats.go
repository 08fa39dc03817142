// Package stats computes the descriptive statistics used by the cleaner and
// the run summary.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean, or NaN for no values.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// StdDev returns the sample standard deviation (n-1 denominator), or NaN for
// fewer than two values.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.StdDev(xs, nil)
}

// Quantile returns the q-th quantile (0 <= q <= 1) of xs using linear
// interpolation between closest ranks: h = (n-1)q, which is Hyndman and Fan
// type 7. xs does not need to be sorted and is not modified.
func Quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 || q < 0 || q > 1 || math.IsNaN(q) {
		return math.NaN()
	}
	s := sorted(xs)
	return quantileSorted(s, q)
}

func quantileSorted(s []float64, q float64) float64 {
	h := float64(len(s)-1) * q
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(s) {
		return s[len(s)-1]
	}
	return s[i] + (h-lo)*(s[i+1]-s[i])
}

func sorted(xs []float64) []float64 {
	s := make([]float64, len(xs))
	copy(s, xs)
	sort.Float64s(s)
	return s
}

// Summary mirrors a describe() row for one numeric column.
type Summary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

// Describe summarizes xs. Every statistic except Count is NaN when xs is empty.
func Describe(xs []float64) Summary {
	if len(xs) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Std: nan, Min: nan, Q25: nan, Q50: nan, Q75: nan, Max: nan}
	}
	s := sorted(xs)
	return Summary{
		Count: len(s),
		Mean:  Mean(s),
		Std:   StdDev(s),
		Min:   floats.Min(s),
		Q25:   quantileSorted(s, 0.25),
		Q50:   quantileSorted(s, 0.50),
		Q75:   quantileSorted(s, 0.75),
		Max:   floats.Max(s),
	}
}
