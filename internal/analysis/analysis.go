// Package analysis computes summary statistics and chart-ready projections
// over a parsed dataset. Every function here is pure: the same dataset and
// arguments always produce the same result.
package analysis

import (
	"errors"
	"math"
	"sort"

	"github.com/KaramelBytes/datadash/internal/dataset"
)

var (
	// ErrUnknownMethod is returned for correlation methods other than pearson and spearman.
	ErrUnknownMethod = errors.New("unknown correlation method")
	// ErrNotNumeric is returned when a numeric column is required.
	ErrNotNumeric = errors.New("column is not numeric")
	// ErrUnknownColumn is returned when a named column does not exist.
	ErrUnknownColumn = errors.New("unknown column")
)

// CategoryCount is one distinct value and how often it occurs.
type CategoryCount struct {
	Value string
	Count int
}

// sortedValues returns the non-missing values of a numeric column in
// ascending order.
func sortedValues(col *dataset.Column) []float64 {
	if col == nil || col.Kind != dataset.Numeric {
		return nil
	}
	vals := col.Values()
	sort.Float64s(vals)
	return vals
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

// quantile interpolates linearly between closest ranks of sorted data.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
