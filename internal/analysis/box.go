package analysis

import (
	"math"

	"github.com/KaramelBytes/datadash/internal/dataset"
)

// BoxStats is a Tukey box plot summary.
type BoxStats struct {
	Column       string
	Count        int
	Min, Max     float64
	Q1, Median   float64
	Q3           float64
	LowerWhisker float64
	UpperWhisker float64
	Outliers     []float64
}

// Box computes quartiles and 1.5*IQR whiskers for a numeric column. Whiskers
// end at the most extreme values inside the fences.
func Box(col *dataset.Column) BoxStats {
	nan := math.NaN()
	b := BoxStats{Min: nan, Max: nan, Q1: nan, Median: nan, Q3: nan, LowerWhisker: nan, UpperWhisker: nan}
	if col == nil {
		return b
	}
	b.Column = col.Name
	vals := sortedValues(col)
	b.Count = len(vals)
	if len(vals) == 0 {
		return b
	}
	b.Min, b.Max = vals[0], vals[len(vals)-1]
	b.Q1 = quantile(vals, 0.25)
	b.Median = quantile(vals, 0.5)
	b.Q3 = quantile(vals, 0.75)
	iqr := b.Q3 - b.Q1
	lowFence, highFence := b.Q1-1.5*iqr, b.Q3+1.5*iqr
	b.LowerWhisker, b.UpperWhisker = b.Q1, b.Q3
	for _, v := range vals {
		if v >= lowFence {
			b.LowerWhisker = math.Min(v, b.Q1)
			break
		}
	}
	for i := len(vals) - 1; i >= 0; i-- {
		if vals[i] <= highFence {
			b.UpperWhisker = math.Max(vals[i], b.Q3)
			break
		}
	}
	for _, v := range vals {
		if v < lowFence || v > highFence {
			b.Outliers = append(b.Outliers, v)
		}
	}
	return b
}
