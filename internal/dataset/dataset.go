// Package dataset loads delimited text into typed, column-oriented tables and
// caches parsed tables by content.
package dataset

import (
	"math"
	"strconv"
)

// Kind is the inferred type of a column.
type Kind string

const (
	Numeric     Kind = "numeric"
	Categorical Kind = "categorical"
)

// Column holds one named column. Numeric columns store values in Nums with
// NaN marking a missing cell; categorical columns store values in Strs with
// Valid[i] == false marking a missing cell.
type Column struct {
	Name    string
	Kind    Kind
	Integer bool
	Nums    []float64
	Strs    []string
	Valid   []bool
}

// Dataset is an immutable table. It is never modified after Parse returns;
// new input produces a new Dataset.
type Dataset struct {
	Name    string
	Key     string
	Rows    int
	Columns []*Column
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Nums)
	}
	return len(c.Strs)
}

// IsMissing reports whether row i holds no value.
func (c *Column) IsMissing(i int) bool {
	if c.Kind == Numeric {
		return math.IsNaN(c.Nums[i])
	}
	return !c.Valid[i]
}

// Missing counts missing cells.
func (c *Column) Missing() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// DType mirrors the dtype names users know from data-frame tools.
func (c *Column) DType() string {
	switch {
	case c.Kind == Categorical:
		return "object"
	case c.Integer:
		return "int64"
	default:
		return "float64"
	}
}

// Values returns the non-missing numeric values in row order.
func (c *Column) Values() []float64 {
	out := make([]float64, 0, len(c.Nums))
	for _, v := range c.Nums {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Cell formats row i for display.
func (c *Column) Cell(i int) string {
	if c.IsMissing(i) {
		return "NaN"
	}
	if c.Kind == Categorical {
		return c.Strs[i]
	}
	v := c.Nums[i]
	if c.Integer {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return FormatFloat(v)
}

// FormatFloat renders a float compactly, keeping integral floats recognisable
// as floats ("3.0").
func FormatFloat(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// Column returns the column with the given name.
func (d *Dataset) Column(name string) (*Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Names lists column names in file order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

// NumericNames lists numeric column names in file order.
func (d *Dataset) NumericNames() []string { return d.namesOf(Numeric) }

// CategoricalNames lists categorical column names in file order.
func (d *Dataset) CategoricalNames() []string { return d.namesOf(Categorical) }

func (d *Dataset) namesOf(k Kind) []string {
	var out []string
	for _, c := range d.Columns {
		if c.Kind == k {
			out = append(out, c.Name)
		}
	}
	return out
}

// Empty reports whether the dataset has no rows or no columns.
func (d *Dataset) Empty() bool {
	return d.Rows == 0 || len(d.Columns) == 0
}

// Head returns the first n rows of the named columns as display strings.
// Unknown names are skipped; a nil names slice selects every column.
func (d *Dataset) Head(n int, names []string) (header []string, rows [][]string) {
	cols := d.Columns
	if names != nil {
		cols = cols[:0:0]
		for _, name := range names {
			if c, ok := d.Column(name); ok {
				cols = append(cols, c)
			}
		}
	}
	if n > d.Rows || n < 0 {
		n = d.Rows
	}
	header = make([]string, len(cols))
	for j, c := range cols {
		header[j] = c.Name
	}
	rows = make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = c.Cell(i)
		}
		rows[i] = row
	}
	return header, rows
}
