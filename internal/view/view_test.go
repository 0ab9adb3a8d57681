package view

import (
	"bytes"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/datadash/internal/analysis"
	"github.com/KaramelBytes/datadash/internal/dataset"
)

const sampleCSV = "age,glucose,outcome\n25,99.1,A\n40,150.0,B\n60,110.5,A\n"

func parse(t *testing.T, body string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Parse(strings.NewReader(body), "sample.csv", dataset.DefaultOptions())
	require.NoError(t, err)
	return ds
}

func TestBuildNoData(t *testing.T) {
	v := Build(nil, Selections{}, Options{LoadMessage: "Error loading data: boom"})
	require.True(t, v.NoData)
	want := []Notice{
		{LevelInfo, "Using default dataset: diabetes.csv"},
		{LevelError, "Error loading data: boom"},
		{LevelError, NoDataMessage},
	}
	if diff := cmp.Diff(want, v.Notices); diff != "" {
		t.Fatalf("notices (-want +got):\n%s", diff)
	}
	assert.Nil(t, v.Numeric)
	assert.Nil(t, v.Correlation)
}

func TestBuildDefaults(t *testing.T) {
	ds := parse(t, sampleCSV)
	v := Build(ds, Selections{}, DefaultOptions())
	require.False(t, v.NoData)

	sel := v.Selections
	assert.Equal(t, []string{"age", "glucose", "outcome"}, sel.Columns)
	assert.Equal(t, "age", sel.Numeric)
	assert.Equal(t, "outcome", sel.Categorical)
	assert.Equal(t, DistHistogram, sel.Dist)
	assert.Equal(t, "pearson", sel.Method)
	assert.Equal(t, "age", sel.X)
	assert.Equal(t, "glucose", sel.Y)
	assert.Equal(t, "scatter", sel.Plot)

	assert.Equal(t, 3, v.Summary.Rows)
	assert.Len(t, v.Preview.Rows, 3)
	require.NotNil(t, v.Filtered)
	assert.Equal(t, []string{"age", "glucose", "outcome"}, v.Filtered.Header)

	require.NotNil(t, v.Numeric)
	assert.Equal(t, 3, v.Numeric.Describe.Count)
	assert.True(t, strings.HasPrefix(v.Numeric.ChartURL, "/charts/histogram?"))

	require.NotNil(t, v.Categorical)
	assert.Equal(t, []analysis.CategoryCount{{Value: "A", Count: 2}, {Value: "B", Count: 1}}, v.Categorical.Counts)

	require.NotNil(t, v.Correlation)
	assert.Equal(t, 2, v.Correlation.Matrix.Len())
	require.NotNil(t, v.Bivariate)
	assert.Equal(t, analysis.Scatter, v.Bivariate.Plot)
}

func TestBuildHonoursSelections(t *testing.T) {
	ds := parse(t, sampleCSV)
	sel := Selections{
		Columns:    []string{"outcome", "nope", "outcome"},
		ColumnsSet: true,
		Numeric:    "glucose",
		Dist:       DistBox,
		Method:     "spearman",
		X:          "outcome",
		Y:          "age",
		Plot:       "bar",
	}
	v := Build(ds, sel, Options{Uploaded: true})
	assert.Empty(t, v.Notices, "uploads have no default-dataset notice")
	assert.Equal(t, []string{"outcome"}, v.Filtered.Header)
	assert.Equal(t, "glucose", v.Numeric.Column)
	assert.True(t, strings.HasPrefix(v.Numeric.ChartURL, "/charts/box?"))
	assert.Equal(t, analysis.Spearman, v.Correlation.Method)
	assert.Equal(t, "outcome", v.Bivariate.X)
	assert.Equal(t, analysis.Bar, v.Bivariate.Plot)
}

func TestBuildInvalidSelectionsFallBack(t *testing.T) {
	ds := parse(t, sampleCSV)
	v := Build(ds, Selections{Numeric: "outcome", Method: "kendall", Plot: "pie", Dist: "violin", Y: "outcome"}, DefaultOptions())
	assert.Equal(t, "age", v.Selections.Numeric)
	assert.Equal(t, "pearson", v.Selections.Method)
	assert.Equal(t, "scatter", v.Selections.Plot)
	assert.Equal(t, DistHistogram, v.Selections.Dist)
	assert.Equal(t, "glucose", v.Selections.Y)
}

func TestBuildEmptiedColumns(t *testing.T) {
	ds := parse(t, sampleCSV)
	v := Build(ds, Selections{ColumnsSet: true}, DefaultOptions())
	require.NotNil(t, v.Filtered)
	assert.Empty(t, v.Filtered.Header)
}

func TestBuildHidesSectionsWithoutColumns(t *testing.T) {
	cats := Build(parse(t, "a,b\nx,y\nz,w\n"), Selections{}, DefaultOptions())
	assert.Nil(t, cats.Numeric)
	assert.Nil(t, cats.Correlation)
	assert.Nil(t, cats.Bivariate)
	assert.NotNil(t, cats.Categorical)

	nums := Build(parse(t, "a,b\n1,2\n3,4\n"), Selections{}, DefaultOptions())
	assert.NotNil(t, nums.Numeric)
	assert.NotNil(t, nums.Correlation)
	assert.Nil(t, nums.Categorical)

	headerOnly := Build(parse(t, "a,b\n"), Selections{}, DefaultOptions())
	assert.False(t, headerOnly.NoData)
	assert.Nil(t, headerOnly.Filtered)
	assert.Equal(t, []string{"a", "b"}, headerOnly.Preview.Header)
}

func TestBuildIsIdempotent(t *testing.T) {
	ds := parse(t, sampleCSV)
	a := Build(ds, Selections{}, DefaultOptions())
	b := Build(ds, a.Selections, DefaultOptions())
	assert.Equal(t, a.Selections, b.Selections)
	assert.Equal(t, a.Summary, b.Summary)
	assert.Equal(t, a.Numeric.ChartURL, b.Numeric.ChartURL)
	assert.Equal(t, a.Numeric.Describe.Mean, b.Numeric.Describe.Mean)
	assert.Equal(t, a.Categorical, b.Categorical)
}

func TestQueryRoundTrip(t *testing.T) {
	sel := Selections{Columns: []string{"a", "b"}, ColumnsSet: true, Numeric: "a", Dist: DistBox, Method: "spearman", X: "a", Y: "b", Plot: "line"}
	got := FromQuery(sel.Query())
	if diff := cmp.Diff(sel, got); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}

	empty := FromQuery(url.Values{"cols": {"1"}})
	assert.True(t, empty.ColumnsSet)
	assert.Empty(t, empty.Columns)
	assert.False(t, FromQuery(url.Values{}).ColumnsSet)
}

func TestSignals(t *testing.T) {
	sig := Signals{Columns: []string{}, Numeric: "glucose", Plot: "bar"}
	sel := sig.Selections()
	assert.True(t, sel.ColumnsSet)
	assert.Equal(t, "glucose", sel.Numeric)
	assert.False(t, Signals{}.Selections().ColumnsSet)
	assert.Equal(t, []string{}, Selections{}.Signals().Columns)
}

func TestChart(t *testing.T) {
	ds := parse(t, sampleCSV)
	for _, kind := range []string{ChartHistogram, ChartBox, ChartCounts, ChartHeatmap, ChartBivariate} {
		r, err := Chart(ds, kind, Selections{}, DefaultOptions())
		require.NoError(t, err, kind)
		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf), kind)
		assert.NotEmpty(t, buf.String(), kind)
	}
	_, err := Chart(ds, "pie", Selections{}, DefaultOptions())
	assert.True(t, errors.Is(err, ErrUnknownChart))

	_, err = Chart(parse(t, "a\nx\n"), ChartHistogram, Selections{}, DefaultOptions())
	assert.Error(t, err)
}
