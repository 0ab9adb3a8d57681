package charts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/datadash/internal/analysis"
	"github.com/KaramelBytes/datadash/internal/dataset"
)

func parse(t *testing.T, body string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Parse(strings.NewReader(body), "t.csv", dataset.DefaultOptions())
	require.NoError(t, err)
	return ds
}

func render(t *testing.T, r Renderer) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf))
	return buf.String()
}

func TestHistogramRenders(t *testing.T) {
	ds := parse(t, "v\n1\n2\n2\n3\n5\n8\n")
	col, _ := ds.Column("v")
	out := render(t, Histogram(analysis.Histogram(col, 4), DefaultOptions()))
	assert.Contains(t, out, "Histogram for v")
	assert.Contains(t, out, "KDE")
	assert.Contains(t, out, "echarts")
}

func TestBoxRenders(t *testing.T) {
	ds := parse(t, "v\n1\n2\n3\n4\n5\n6\n7\n8\n9\n100\n")
	col, _ := ds.Column("v")
	out := render(t, Box(analysis.Box(col), Options{}))
	assert.Contains(t, out, "Box plot for v")
	assert.Contains(t, out, "outliers")

	empty := parse(t, "v\nNA\n")
	col, _ = empty.Column("v")
	assert.Contains(t, render(t, Box(analysis.Box(col), Options{})), "Box plot for v")
}

func TestValueCountsRenders(t *testing.T) {
	out := render(t, ValueCounts("outcome", []analysis.CategoryCount{{Value: "A", Count: 2}, {Value: "B", Count: 1}}, DefaultOptions()))
	assert.Contains(t, out, "Bar Plot for outcome")
	assert.Contains(t, out, "skyblue")
}

func TestHeatmapHandlesUndefinedPairs(t *testing.T) {
	ds := parse(t, "a,b,k\n1,2,3\n2,5,3\n3,4,3\n")
	m, err := analysis.Correlate(ds, "spearman")
	require.NoError(t, err)
	out := render(t, Heatmap(m, DefaultOptions()))
	assert.Contains(t, out, "Correlation Heatmap")
	assert.Contains(t, out, `"-"`)
	assert.NotContains(t, out, "NaN")
}

func TestBivariateRenders(t *testing.T) {
	ds := parse(t, "x,y,g\n3,30,b\n1,10,a\n2,20,b\n")
	for _, tc := range []struct {
		x    string
		kind analysis.PlotKind
	}{
		{"x", analysis.Scatter},
		{"g", analysis.Scatter},
		{"x", analysis.Line},
		{"g", analysis.Line},
		{"g", analysis.Bar},
	} {
		res, err := analysis.Bivariate(ds, tc.x, "y", tc.kind)
		require.NoError(t, err)
		out := render(t, Bivariate(res, DefaultOptions()))
		assert.Contains(t, out, "y vs "+tc.x, "kind %s", tc.kind)
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "10", label(10))
	assert.Equal(t, "2.5", label(2.5))
	assert.Equal(t, "0.33", label(1.0/3))
}
