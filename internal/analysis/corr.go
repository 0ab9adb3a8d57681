package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/datadash/internal/dataset"
)

// Method selects a correlation coefficient.
type Method string

const (
	Pearson  Method = "pearson"
	Spearman Method = "spearman"
)

// Methods lists the supported correlation methods.
var Methods = []Method{Pearson, Spearman}

// ParseMethod validates a method name. An empty name means Pearson.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return Pearson, nil
	case Pearson, Spearman:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// CorrMatrix holds a symmetric correlation matrix across numeric columns.
// Pairs without enough paired observations or without variance are NaN.
type CorrMatrix struct {
	Method  Method
	Columns []string
	m       *mat.SymDense
}

// Len returns the number of columns in the matrix.
func (c *CorrMatrix) Len() int { return len(c.Columns) }

// At returns the coefficient between columns i and j.
func (c *CorrMatrix) At(i, j int) float64 { return c.m.At(i, j) }

// Values returns the matrix as row-major rows.
func (c *CorrMatrix) Values() [][]float64 {
	n := c.Len()
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			out[i][j] = c.At(i, j)
		}
	}
	return out
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// TopPairs lists up to n off-diagonal pairs ordered by |r|, skipping NaN.
func (c *CorrMatrix) TopPairs(n int) []PairCorr {
	var pairs []PairCorr
	for i := 0; i < c.Len(); i++ {
		for j := i + 1; j < c.Len(); j++ {
			r := c.At(i, j)
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, PairCorr{A: c.Columns[i], B: c.Columns[j], R: r})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if n >= 0 && len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}

// Correlate computes pairwise correlations among the numeric columns of ds
// using, for each pair, only the rows where both values are present.
func Correlate(ds *dataset.Dataset, method string) (*CorrMatrix, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return nil, err
	}
	var cols []*dataset.Column
	for _, c := range ds.Columns {
		if c.Kind == dataset.Numeric {
			cols = append(cols, c)
		}
	}
	out := &CorrMatrix{Method: m, Columns: make([]string, len(cols))}
	for i, c := range cols {
		out.Columns[i] = c.Name
	}
	if len(cols) == 0 {
		return out, nil
	}
	sym := mat.NewSymDense(len(cols), nil)
	for i := range cols {
		sym.SetSym(i, i, 1)
		for j := 0; j < i; j++ {
			sym.SetSym(i, j, pairCorrelation(cols[i].Nums, cols[j].Nums, m))
		}
	}
	out.m = sym
	return out, nil
}

func pairCorrelation(a, b []float64, m Method) float64 {
	x := make([]float64, 0, len(a))
	y := make([]float64, 0, len(b))
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		x = append(x, a[i])
		y = append(y, b[i])
	}
	if len(x) < 2 {
		return math.NaN()
	}
	if m == Spearman {
		x, y = ranks(x), ranks(y)
	}
	if constant(x) || constant(y) {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	return math.Max(-1, math.Min(1, r))
}

func constant(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}

// ranks assigns 1-based ranks, giving tied values the average of their ranks.
func ranks(v []float64) []float64 {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return v[idx[i]] < v[idx[j]] })
	out := make([]float64, len(v))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && v[idx[j+1]] == v[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}
