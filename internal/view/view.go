// Package view builds the immutable description of one dashboard render from
// a dataset and the user's selections.
package view

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/datadash/internal/analysis"
	"github.com/KaramelBytes/datadash/internal/charts"
	"github.com/KaramelBytes/datadash/internal/dataset"
)

// NoDataMessage is shown whenever no dataset could be loaded.
const NoDataMessage = "No data available. Please upload a valid CSV file or include the default dataset."

// ErrUnknownChart is returned by Chart for kinds it does not draw.
var ErrUnknownChart = errors.New("unknown chart")

// Chart kinds served by Chart.
const (
	ChartHistogram = "histogram"
	ChartBox       = "box"
	ChartCounts    = "counts"
	ChartHeatmap   = "heatmap"
	ChartBivariate = "bivariate"
)

// Options carries per-render settings that do not come from the user.
type Options struct {
	PreviewRows            int
	DefaultSelectedColumns int
	HistogramBins          int
	// DefaultPath is shown in the info line when the default dataset is in use.
	DefaultPath string
	// Uploaded is true when the dataset came from the user's upload.
	Uploaded bool
	// LoadMessage is the loader's message when loading failed.
	LoadMessage string
	// ChartPrefix is prepended to chart URLs, e.g. "/charts/".
	ChartPrefix string
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{PreviewRows: 5, DefaultSelectedColumns: 5, HistogramBins: analysis.DefaultBins, DefaultPath: "diabetes.csv", ChartPrefix: "/charts/"}
}

// Notice levels.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelError   = "error"
)

// Notice is a one-line message shown above the dashboard.
type Notice struct {
	Level string
	Text  string
}

// Table is a rendered slice of rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// View is everything a template needs to render one dashboard state.
type View struct {
	NoData  bool
	Notices []Notice

	DatasetName string
	Selections  Selections

	AllColumns         []string
	NumericColumns     []string
	CategoricalColumns []string
	Summary            analysis.Summary

	Preview  Table
	Filtered *Table

	Numeric     *NumericSection
	Categorical *CategoricalSection
	Correlation *CorrelationSection
	Bivariate   *BivariateSection

	Dists   []string
	Methods []analysis.Method
	Plots   []analysis.PlotKind
}

// NumericSection describes the chosen numeric column.
type NumericSection struct {
	Column   string
	Describe analysis.NumericDescribe
	Dist     string
	ChartURL string
}

// CategoricalSection describes the chosen categorical column.
type CategoricalSection struct {
	Column   string
	Describe analysis.CategoricalDescribe
	Counts   []analysis.CategoryCount
	ChartURL string
}

// CorrelationSection holds the correlation matrix of all numeric columns.
type CorrelationSection struct {
	Method   analysis.Method
	Matrix   *analysis.CorrMatrix
	ChartURL string
}

// BivariateSection plots two chosen columns against each other.
type BivariateSection struct {
	X, Y     string
	Plot     analysis.PlotKind
	Dropped  int
	ChartURL string
}

// Build produces the view for ds under sel. A nil ds yields a no-data view.
func Build(ds *dataset.Dataset, sel Selections, opt Options) View {
	opt = opt.withDefaults()
	v := View{
		Dists:   []string{DistHistogram, DistBox},
		Methods: analysis.Methods,
		Plots:   analysis.PlotKinds,
	}
	if !opt.Uploaded {
		v.Notices = append(v.Notices, Notice{LevelInfo, "Using default dataset: " + opt.DefaultPath})
	}
	if ds == nil {
		v.NoData = true
		if opt.LoadMessage != "" {
			v.Notices = append(v.Notices, Notice{LevelError, opt.LoadMessage})
		}
		v.Notices = append(v.Notices, Notice{LevelError, NoDataMessage})
		return v
	}

	sel = Normalize(ds, sel, opt)
	v.Selections = sel
	v.DatasetName = ds.Name
	v.AllColumns = ds.Names()
	v.NumericColumns = ds.NumericNames()
	v.CategoricalColumns = ds.CategoricalNames()
	v.Summary = analysis.Summarize(ds)
	v.Preview.Header, v.Preview.Rows = ds.Head(opt.PreviewRows, nil)

	if !ds.Empty() {
		f := Table{}
		f.Header, f.Rows = ds.Head(-1, sel.Columns)
		v.Filtered = &f

		if col, ok := ds.Column(sel.Numeric); ok {
			v.Numeric = &NumericSection{
				Column:   col.Name,
				Describe: analysis.Describe(col),
				Dist:     sel.Dist,
				ChartURL: chartURL(opt, sel.Dist, sel),
			}
		}
		if col, ok := ds.Column(sel.Categorical); ok {
			v.Categorical = &CategoricalSection{
				Column:   col.Name,
				Describe: analysis.DescribeCategorical(col),
				Counts:   analysis.ValueCounts(col),
				ChartURL: chartURL(opt, ChartCounts, sel),
			}
		}
	}

	if len(v.NumericColumns) > 0 {
		if m, err := analysis.Correlate(ds, sel.Method); err == nil {
			v.Correlation = &CorrelationSection{Method: m.Method, Matrix: m, ChartURL: chartURL(opt, ChartHeatmap, sel)}
		}
		if res, err := analysis.Bivariate(ds, sel.X, sel.Y, analysis.PlotKind(sel.Plot)); err == nil {
			v.Bivariate = &BivariateSection{X: res.X, Y: res.Y, Plot: res.Kind, Dropped: res.Dropped, ChartURL: chartURL(opt, ChartBivariate, sel)}
		}
	}
	return v
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PreviewRows <= 0 {
		o.PreviewRows = d.PreviewRows
	}
	if o.DefaultSelectedColumns <= 0 {
		o.DefaultSelectedColumns = d.DefaultSelectedColumns
	}
	if o.HistogramBins <= 0 {
		o.HistogramBins = d.HistogramBins
	}
	if o.DefaultPath == "" {
		o.DefaultPath = d.DefaultPath
	}
	if o.ChartPrefix == "" {
		o.ChartPrefix = d.ChartPrefix
	}
	return o
}

func chartURL(o Options, kind string, sel Selections) string {
	return o.ChartPrefix + kind + "?" + sel.Query().Encode()
}

// Normalize replaces selections that do not fit ds with defaults.
func Normalize(ds *dataset.Dataset, sel Selections, opt Options) Selections {
	opt = opt.withDefaults()
	out := sel
	names := ds.Names()
	numeric := ds.NumericNames()
	categorical := ds.CategoricalNames()

	if !sel.ColumnsSet && len(sel.Columns) == 0 {
		n := min(opt.DefaultSelectedColumns, len(names))
		out.Columns = append([]string(nil), names[:n]...)
	} else {
		seen := map[string]bool{}
		out.Columns = []string{}
		for _, c := range sel.Columns {
			if _, ok := ds.Column(c); ok && !seen[c] {
				seen[c] = true
				out.Columns = append(out.Columns, c)
			}
		}
	}
	out.ColumnsSet = true

	out.Numeric = pick(sel.Numeric, numeric, 0)
	out.Categorical = pick(sel.Categorical, categorical, 0)
	if sel.Dist != DistBox {
		out.Dist = DistHistogram
	}
	if m, err := analysis.ParseMethod(sel.Method); err == nil {
		out.Method = string(m)
	} else {
		out.Method = string(analysis.Pearson)
	}
	out.X = pick(sel.X, names, -1)
	if out.X == "" {
		out.X = pick("", numeric, 0)
	}
	out.Y = pick(sel.Y, numeric, 1)
	if p, err := analysis.ParsePlotKind(sel.Plot); err == nil {
		out.Plot = string(p)
	} else {
		out.Plot = string(analysis.Scatter)
	}
	return out
}

// pick returns want if it is one of options, otherwise options[fallback]
// (clamped to the last option). A negative fallback means no default.
func pick(want string, options []string, fallback int) string {
	for _, o := range options {
		if o == want {
			return want
		}
	}
	if fallback < 0 || len(options) == 0 {
		return ""
	}
	return options[min(fallback, len(options)-1)]
}

// Chart builds the chart of the given kind for ds under sel.
func Chart(ds *dataset.Dataset, kind string, sel Selections, opt Options) (charts.Renderer, error) {
	opt = opt.withDefaults()
	sel = Normalize(ds, sel, opt)
	co := charts.DefaultOptions()
	switch kind {
	case ChartHistogram, ChartBox:
		col, ok := ds.Column(sel.Numeric)
		if !ok {
			return nil, fmt.Errorf("%w: no numeric column", analysis.ErrNotNumeric)
		}
		if kind == ChartBox {
			return charts.Box(analysis.Box(col), co), nil
		}
		return charts.Histogram(analysis.Histogram(col, opt.HistogramBins), co), nil
	case ChartCounts:
		col, ok := ds.Column(sel.Categorical)
		if !ok {
			return nil, fmt.Errorf("%w: no categorical column", analysis.ErrUnknownColumn)
		}
		return charts.ValueCounts(col.Name, analysis.ValueCounts(col), co), nil
	case ChartHeatmap:
		m, err := analysis.Correlate(ds, sel.Method)
		if err != nil {
			return nil, err
		}
		return charts.Heatmap(m, co), nil
	case ChartBivariate:
		res, err := analysis.Bivariate(ds, sel.X, sel.Y, analysis.PlotKind(sel.Plot))
		if err != nil {
			return nil, err
		}
		return charts.Bivariate(res, co), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, kind)
	}
}
