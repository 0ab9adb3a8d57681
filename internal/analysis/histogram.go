package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/KaramelBytes/datadash/internal/dataset"
)

// DefaultBins is the number of histogram bins used when none is given.
const DefaultBins = 20

// Bin is one histogram bar covering [Lo, Hi). The last bin also includes Hi.
type Bin struct {
	Lo, Hi float64
	Count  int
}

// Center returns the midpoint of the bin.
func (b Bin) Center() float64 { return (b.Lo + b.Hi) / 2 }

// HistogramResult is a binned distribution plus a smoothed density curve.
// Density holds one value per bin, evaluated at the bin center and scaled to
// the count axis; it is nil when the density is undefined.
type HistogramResult struct {
	Column  string
	Count   int
	Bins    []Bin
	Density []float64
}

// Histogram bins the non-missing values of a numeric column into equal-width
// bins and estimates a Gaussian kernel density with Scott's bandwidth.
func Histogram(col *dataset.Column, bins int) HistogramResult {
	if bins <= 0 {
		bins = DefaultBins
	}
	res := HistogramResult{}
	if col == nil {
		return res
	}
	res.Column = col.Name
	vals := sortedValues(col)
	res.Count = len(vals)
	if len(vals) == 0 {
		return res
	}
	lo, hi := vals[0], vals[len(vals)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	width := (hi - lo) / float64(bins)
	res.Bins = make([]Bin, bins)
	for i := range res.Bins {
		res.Bins[i] = Bin{Lo: lo + float64(i)*width, Hi: lo + float64(i+1)*width}
	}
	res.Bins[bins-1].Hi = hi
	for _, v := range vals {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		if i < 0 {
			i = 0
		}
		res.Bins[i].Count++
	}
	res.Density = kde(vals, res.Bins, width)
	return res
}

func kde(vals []float64, bins []Bin, width float64) []float64 {
	n := float64(len(vals))
	if len(vals) < 2 {
		return nil
	}
	sd := stat.StdDev(vals, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	bw := sd * math.Pow(n, -1.0/5)
	kernels := make([]distuv.Normal, len(vals))
	for i, v := range vals {
		kernels[i] = distuv.Normal{Mu: v, Sigma: bw}
	}
	out := make([]float64, len(bins))
	for i, b := range bins {
		x := b.Center()
		var sum float64
		for _, k := range kernels {
			sum += k.Prob(x)
		}
		// Mean kernel density times n*width puts the curve on the count axis.
		out[i] = sum * width
	}
	return out
}
