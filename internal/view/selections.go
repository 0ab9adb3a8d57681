package view

import (
	"net/url"
	"strings"
)

// Distribution plot kinds for the numeric section.
const (
	DistHistogram = "histogram"
	DistBox       = "box"
)

// Selections is an immutable snapshot of the user's choices. Zero values mean
// "use the default"; Build replaces anything invalid with a default.
type Selections struct {
	Columns []string
	// ColumnsSet distinguishes an explicitly emptied column list from an
	// absent one.
	ColumnsSet  bool
	Numeric     string
	Categorical string
	Dist        string
	Method      string
	X           string
	Y           string
	Plot        string
}

// Query parameter names shared by forms, chart URLs and FromQuery.
const (
	paramColumns     = "col"
	paramColumnsSet  = "cols"
	paramNumeric     = "num"
	paramCategorical = "cat"
	paramDist        = "dist"
	paramMethod      = "method"
	paramX           = "x"
	paramY           = "y"
	paramPlot        = "plot"
)

// FromQuery reads selections from URL query values.
func FromQuery(q url.Values) Selections {
	s := Selections{
		Numeric:     strings.TrimSpace(q.Get(paramNumeric)),
		Categorical: strings.TrimSpace(q.Get(paramCategorical)),
		Dist:        strings.TrimSpace(q.Get(paramDist)),
		Method:      strings.TrimSpace(q.Get(paramMethod)),
		X:           strings.TrimSpace(q.Get(paramX)),
		Y:           strings.TrimSpace(q.Get(paramY)),
		Plot:        strings.TrimSpace(q.Get(paramPlot)),
	}
	if cols, ok := q[paramColumns]; ok {
		s.Columns = append([]string(nil), cols...)
	}
	s.ColumnsSet = q.Has(paramColumnsSet) || len(s.Columns) > 0
	return s
}

// Query encodes the selections so FromQuery can read them back.
func (s Selections) Query() url.Values {
	q := url.Values{}
	for _, c := range s.Columns {
		q.Add(paramColumns, c)
	}
	if s.ColumnsSet {
		q.Set(paramColumnsSet, "1")
	}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set(paramNumeric, s.Numeric)
	set(paramCategorical, s.Categorical)
	set(paramDist, s.Dist)
	set(paramMethod, s.Method)
	set(paramX, s.X)
	set(paramY, s.Y)
	set(paramPlot, s.Plot)
	return q
}

// Signals is the reactive state the browser sends with each panel refresh.
type Signals struct {
	Columns     []string `json:"columns"`
	Numeric     string   `json:"numeric"`
	Categorical string   `json:"categorical"`
	Dist        string   `json:"dist"`
	Method      string   `json:"method"`
	X           string   `json:"x"`
	Y           string   `json:"y"`
	Plot        string   `json:"plot"`
}

// Selections converts signals into a selection snapshot. A present but empty
// column list counts as an explicit choice.
func (sig Signals) Selections() Selections {
	return Selections{
		Columns:     append([]string(nil), sig.Columns...),
		ColumnsSet:  sig.Columns != nil,
		Numeric:     sig.Numeric,
		Categorical: sig.Categorical,
		Dist:        sig.Dist,
		Method:      sig.Method,
		X:           sig.X,
		Y:           sig.Y,
		Plot:        sig.Plot,
	}
}

// Signals converts a normalized selection back into browser state.
func (s Selections) Signals() Signals {
	cols := s.Columns
	if cols == nil {
		cols = []string{}
	}
	return Signals{
		Columns:     cols,
		Numeric:     s.Numeric,
		Categorical: s.Categorical,
		Dist:        s.Dist,
		Method:      s.Method,
		X:           s.X,
		Y:           s.Y,
		Plot:        s.Plot,
	}
}
