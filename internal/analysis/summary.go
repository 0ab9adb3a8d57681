package analysis

import (
	"github.com/dustin/go-humanize"

	"github.com/KaramelBytes/datadash/internal/dataset"
)

// Summary describes the shape of a dataset.
type Summary struct {
	Rows               int
	Columns            int
	Nulls              int
	ColumnNulls        map[string]int
	NumericColumns     int
	CategoricalColumns int
	MemoryBytes        int64
	MemoryHuman        string
}

const (
	indexBytes       = 128
	numericCellBytes = 8
	stringCellBytes  = 16
)

// Summarize counts rows, columns and missing cells and estimates the memory
// the table occupies.
func Summarize(ds *dataset.Dataset) Summary {
	s := Summary{ColumnNulls: map[string]int{}}
	if ds == nil {
		s.MemoryHuman = humanize.IBytes(0)
		return s
	}
	s.Rows = ds.Rows
	s.Columns = len(ds.Columns)
	s.MemoryBytes = indexBytes
	for _, c := range ds.Columns {
		miss := c.Missing()
		s.ColumnNulls[c.Name] = miss
		s.Nulls += miss
		switch c.Kind {
		case dataset.Numeric:
			s.NumericColumns++
			s.MemoryBytes += int64(numericCellBytes * c.Len())
		default:
			s.CategoricalColumns++
			for i, v := range c.Strs {
				if !c.Valid[i] {
					s.MemoryBytes += numericCellBytes
					continue
				}
				s.MemoryBytes += int64(len(v) + stringCellBytes)
			}
		}
	}
	s.MemoryHuman = humanize.IBytes(uint64(s.MemoryBytes))
	return s
}
