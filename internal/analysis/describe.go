package analysis

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/datadash/internal/dataset"
)

// NumericDescribe holds the usual descriptive statistics of a numeric column.
// Statistics that are undefined for the data (e.g. std of one value) are NaN.
type NumericDescribe struct {
	Name     string
	Count    int
	Mean     float64
	Std      float64
	Min      float64
	Q1       float64
	Median   float64
	Q3       float64
	Max      float64
	Skew     float64
	Kurtosis float64
}

// Describe summarizes the non-missing values of a numeric column.
func Describe(col *dataset.Column) NumericDescribe {
	nan := math.NaN()
	d := NumericDescribe{Mean: nan, Std: nan, Min: nan, Q1: nan, Median: nan, Q3: nan, Max: nan, Skew: nan, Kurtosis: nan}
	if col == nil {
		return d
	}
	d.Name = col.Name
	sorted := sortedValues(col)
	d.Count = len(sorted)
	if d.Count == 0 {
		return d
	}
	data := stats.Float64Data(sorted)
	d.Mean, _ = stats.Mean(data)
	d.Min, _ = stats.Min(data)
	d.Max, _ = stats.Max(data)
	d.Median, _ = stats.Median(data)
	d.Q1 = quantile(sorted, 0.25)
	d.Q3 = quantile(sorted, 0.75)
	if d.Count > 1 {
		d.Std, _ = stats.StandardDeviationSample(data)
	}
	if d.Std > 0 {
		if d.Count > 2 {
			d.Skew = stat.Skew(sorted, nil)
		}
		if d.Count > 3 {
			d.Kurtosis = stat.ExKurtosis(sorted, nil)
		}
	}
	return d
}

// Rows lists the statistics as label/value pairs in display order.
func (d NumericDescribe) Rows() []Stat {
	return []Stat{
		{"count", float64(d.Count)},
		{"mean", d.Mean},
		{"std", d.Std},
		{"min", d.Min},
		{"25%", d.Q1},
		{"50%", d.Median},
		{"75%", d.Q3},
		{"max", d.Max},
		{"skew", d.Skew},
		{"kurtosis", d.Kurtosis},
	}
}

// Stat is a labelled statistic.
type Stat struct {
	Label string
	Value float64
}

// CategoricalDescribe summarizes a categorical column.
type CategoricalDescribe struct {
	Name   string
	Count  int
	Unique int
	Top    string
	Freq   int
}

// DescribeCategorical reports the non-missing count, distinct values and
// most frequent value of a column. Ties for the top value go to the value
// seen first.
func DescribeCategorical(col *dataset.Column) CategoricalDescribe {
	if col == nil {
		return CategoricalDescribe{}
	}
	d := CategoricalDescribe{Name: col.Name}
	counts := ValueCounts(col)
	d.Unique = len(counts)
	for _, c := range counts {
		d.Count += c.Count
	}
	if len(counts) > 0 {
		d.Top = counts[0].Value
		d.Freq = counts[0].Count
	}
	return d
}
