// Package charts turns analysis results into go-echarts pages.
package charts

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/google/uuid"

	"github.com/KaramelBytes/datadash/internal/analysis"
)

// Renderer writes a complete chart page.
type Renderer interface {
	Render(w io.Writer) error
}

// Options controls chart page sizing.
type Options struct {
	Width  string
	Height string
}

// DefaultOptions fills the embedding frame.
func DefaultOptions() Options {
	return Options{Width: "100%", Height: "420px"}
}

func (o Options) init(title string) charts.GlobalOpts {
	if o.Width == "" {
		o.Width = "100%"
	}
	if o.Height == "" {
		o.Height = "420px"
	}
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: title,
		Width:     o.Width,
		Height:    o.Height,
		ChartID:   "chart_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
	})
}

const barColor = "skyblue"

// heatColors runs from negative (blue) to positive (red) correlation.
var heatColors = []string{"#3b4cc0", "#7396f5", "#b0cbfc", "#dddddd", "#f6bfa6", "#ec7f63", "#b40426"}

// value converts a float for JSON; non-finite values become "-", which
// echarts draws as a gap.
func value(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return v
}

func label(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

// Histogram draws binned counts with the density curve overlaid.
func Histogram(h analysis.HistogramResult, o Options) Renderer {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		o.init("Histogram for "+h.Column),
		charts.WithTitleOpts(opts.Title{Title: "Histogram for " + h.Column, Subtitle: fmt.Sprintf("%d values", h.Count)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{Name: h.Column, Type: "category", AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count", Type: "value"}),
	)
	labels := make([]string, len(h.Bins))
	data := make([]opts.BarData, len(h.Bins))
	for i, b := range h.Bins {
		labels[i] = label(b.Center())
		data[i] = opts.BarData{Value: b.Count, Name: fmt.Sprintf("[%s, %s)", label(b.Lo), label(b.Hi))}
	}
	bar.SetXAxis(labels).AddSeries("Count", data,
		charts.WithBarChartOpts(opts.BarChart{BarCategoryGap: "1%"}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: barColor}),
	)
	if len(h.Density) == len(h.Bins) && len(h.Density) > 0 {
		line := charts.NewLine()
		kde := make([]opts.LineData, len(h.Density))
		for i, d := range h.Density {
			kde[i] = opts.LineData{Value: value(d)}
		}
		line.SetXAxis(labels).AddSeries("KDE", kde,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(false)}),
		)
		bar.Overlap(line)
	}
	return bar
}

// Box draws a single box with whiskers and outlier points.
func Box(b analysis.BoxStats, o Options) Renderer {
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		o.init("Box plot for "+b.Column),
		charts.WithTitleOpts(opts.Title{Title: "Box plot for " + b.Column, Subtitle: fmt.Sprintf("%d values, %d outliers", b.Count, len(b.Outliers))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{Name: b.Column, Type: "value"}),
	)
	var data []opts.BoxPlotData
	if b.Count > 0 {
		data = append(data, opts.BoxPlotData{
			Name:  b.Column,
			Value: []interface{}{value(b.LowerWhisker), value(b.Q1), value(b.Median), value(b.Q3), value(b.UpperWhisker)},
		})
	}
	box.SetXAxis([]string{b.Column}).AddSeries(b.Column, data)
	if len(b.Outliers) > 0 {
		sc := charts.NewScatter()
		points := make([]opts.ScatterData, len(b.Outliers))
		for i, v := range b.Outliers {
			points[i] = opts.ScatterData{Value: []interface{}{b.Column, value(v)}}
		}
		sc.SetXAxis([]string{b.Column}).AddSeries("outliers", points)
		box.Overlap(sc)
	}
	return box
}

// ValueCounts draws one bar per category.
func ValueCounts(column string, counts []analysis.CategoryCount, o Options) Renderer {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		o.init("Bar plot for "+column),
		charts.WithTitleOpts(opts.Title{Title: "Bar Plot for " + column}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{Name: column, Type: "category", AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count", Type: "value"}),
	)
	labels := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		labels[i] = c.Value
		data[i] = opts.BarData{Value: c.Count}
	}
	bar.SetXAxis(labels).AddSeries("Count", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: barColor}))
	return bar
}

// Heatmap draws an annotated correlation matrix.
func Heatmap(m *analysis.CorrMatrix, o Options) Renderer {
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		o.init("Correlation Heatmap"),
		charts.WithTitleOpts(opts.Title{Title: "Correlation Heatmap", Subtitle: string(m.Method)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", SplitArea: &opts.SplitArea{Show: opts.Bool(true)}, AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: m.Columns, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        -1,
			Max:        1,
			InRange:    &opts.VisualMapInRange{Color: heatColors},
		}),
	)
	var data []opts.HeatMapData
	for i := 0; i < m.Len(); i++ {
		for j := 0; j < m.Len(); j++ {
			v := m.At(i, j)
			cell := value(v)
			if _, ok := cell.(float64); ok {
				cell = math.Round(v*100) / 100
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{i, j, cell}})
		}
	}
	hm.SetXAxis(m.Columns).AddSeries("r", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
	)
	return hm
}

// Bivariate draws y against x as a scatter, line or bar chart.
func Bivariate(r *analysis.BivariateResult, o Options) Renderer {
	title := fmt.Sprintf("%s vs %s", r.Y, r.X)
	global := []charts.GlobalOpts{
		o.init(title),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: string(r.Kind)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{Name: r.Y, Type: "value"}),
	}

	switch r.Kind {
	case analysis.Bar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(append(global,
			charts.WithXAxisOpts(opts.XAxis{Name: r.X, Type: "category", AxisLabel: &opts.AxisLabel{Rotate: 45}}))...)
		data := make([]opts.BarData, len(r.Means))
		for i, m := range r.Means {
			data[i] = opts.BarData{Value: value(m)}
		}
		bar.SetXAxis(r.Categories).AddSeries("mean "+r.Y, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: barColor}))
		return bar

	case analysis.Line:
		line := charts.NewLine()
		data := make([]opts.LineData, len(r.Points))
		labels := make([]string, len(r.Points))
		for i, p := range r.Points {
			labels[i] = p.Label
			data[i] = opts.LineData{Value: value(p.Y)}
			if r.XNumeric {
				data[i].Value = []interface{}{value(p.X), value(p.Y)}
			}
		}
		if r.XNumeric {
			line.SetGlobalOptions(append(global, charts.WithXAxisOpts(opts.XAxis{Name: r.X, Type: "value"}))...)
		} else {
			line.SetGlobalOptions(append(global, charts.WithXAxisOpts(opts.XAxis{Name: r.X, Type: "category"}))...)
			line.SetXAxis(labels)
		}
		line.AddSeries(r.Y, data)
		return line

	default:
		sc := charts.NewScatter()
		data := make([]opts.ScatterData, len(r.Points))
		var labels []string
		seen := map[string]bool{}
		for i, p := range r.Points {
			if r.XNumeric {
				data[i] = opts.ScatterData{Value: []interface{}{value(p.X), value(p.Y)}}
				continue
			}
			if !seen[p.Label] {
				seen[p.Label] = true
				labels = append(labels, p.Label)
			}
			data[i] = opts.ScatterData{Value: []interface{}{p.Label, value(p.Y)}}
		}
		if r.XNumeric {
			sc.SetGlobalOptions(append(global, charts.WithXAxisOpts(opts.XAxis{Name: r.X, Type: "value"}))...)
		} else {
			sc.SetGlobalOptions(append(global, charts.WithXAxisOpts(opts.XAxis{Name: r.X, Type: "category"}))...)
			sc.SetXAxis(labels)
		}
		sc.AddSeries(r.Y, data)
		return sc
	}
}
