package analysis

import (
	"sort"

	"github.com/KaramelBytes/datadash/internal/dataset"
)

// ValueCounts counts distinct non-missing values, most frequent first.
// Values with equal counts keep the order in which they first appear.
func ValueCounts(col *dataset.Column) []CategoryCount {
	if col == nil {
		return nil
	}
	index := map[string]int{}
	var out []CategoryCount
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			continue
		}
		v := col.Cell(i)
		if j, ok := index[v]; ok {
			out[j].Count++
			continue
		}
		index[v] = len(out)
		out = append(out, CategoryCount{Value: v, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
