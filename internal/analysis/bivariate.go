package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/datadash/internal/dataset"
)

// PlotKind selects how two columns are plotted against each other.
type PlotKind string

const (
	Scatter PlotKind = "scatter"
	Line    PlotKind = "line"
	Bar     PlotKind = "bar"
)

// PlotKinds lists the supported bivariate plots.
var PlotKinds = []PlotKind{Scatter, Line, Bar}

// ParsePlotKind validates a plot name. An empty name means scatter.
func ParsePlotKind(s string) (PlotKind, error) {
	switch k := PlotKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return Scatter, nil
	case Scatter, Line, Bar:
		return k, nil
	default:
		return "", fmt.Errorf("unknown plot kind %q", s)
	}
}

// Point is one (x, y) observation. Label is the display form of x.
type Point struct {
	X     float64
	Label string
	Y     float64
}

// BivariateResult holds the data behind a two-column plot. Scatter and line
// plots fill Points; bar plots fill Categories and Means.
type BivariateResult struct {
	X, Y       string
	Kind       PlotKind
	XNumeric   bool
	Points     []Point
	Categories []string
	Means      []float64
	Dropped    int
}

// Bivariate pairs column x with numeric column y. Rows missing either value
// are dropped. Line plots over a numeric x are sorted by x; bar plots report
// the mean of y for each distinct x.
func Bivariate(ds *dataset.Dataset, x, y string, kind PlotKind) (*BivariateResult, error) {
	xc, ok := ds.Column(x)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, x)
	}
	yc, ok := ds.Column(y)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, y)
	}
	if yc.Kind != dataset.Numeric {
		return nil, fmt.Errorf("%w: %q", ErrNotNumeric, y)
	}
	kind, err := ParsePlotKind(string(kind))
	if err != nil {
		return nil, err
	}
	res := &BivariateResult{X: x, Y: y, Kind: kind, XNumeric: xc.Kind == dataset.Numeric}
	var pts []Point
	for i := 0; i < ds.Rows; i++ {
		if xc.IsMissing(i) || yc.IsMissing(i) {
			res.Dropped++
			continue
		}
		p := Point{Label: xc.Cell(i), Y: yc.Nums[i]}
		if res.XNumeric {
			p.X = xc.Nums[i]
		}
		pts = append(pts, p)
	}

	switch kind {
	case Bar:
		res.Categories, res.Means = groupMeans(pts, res.XNumeric)
	case Line:
		if res.XNumeric {
			sort.SliceStable(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
		}
		res.Points = pts
	default:
		res.Points = pts
	}
	return res, nil
}

func groupMeans(pts []Point, numericX bool) ([]string, []float64) {
	type group struct {
		label string
		x     float64
		sum   float64
		n     int
	}
	index := map[string]*group{}
	var order []*group
	for _, p := range pts {
		g, ok := index[p.Label]
		if !ok {
			g = &group{label: p.Label, x: p.X}
			index[p.Label] = g
			order = append(order, g)
		}
		g.sum += p.Y
		g.n++
	}
	if numericX {
		sort.SliceStable(order, func(i, j int) bool { return order[i].x < order[j].x })
	}
	cats := make([]string, len(order))
	means := make([]float64, len(order))
	for i, g := range order {
		cats[i] = g.label
		means[i] = g.sum / float64(g.n)
	}
	return cats, means
}
