package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/datadash/internal/dataset"
	"github.com/KaramelBytes/datadash/internal/utils"
)

// ReportOptions controls what BuildReport includes.
type ReportOptions struct {
	// SampleRows determines how many example rows to include in the report;
	// zero leaves them out.
	SampleRows int
	// Correlations computes a correlation matrix among numeric columns.
	Correlations bool
	Method       Method
	// TopValues caps the values listed per categorical column.
	TopValues int
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultReportOptions returns reasonable defaults for dataset reports.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		SampleRows:       5,
		Correlations:     true,
		Method:           Pearson,
		TopValues:        8,
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

// Report is a markdown-friendly analysis of a tabular dataset.
type Report struct {
	Name     string
	Summary  Summary
	Cols     []ColumnSummary
	Header   []string
	Samples  [][]string
	Warnings []string
	Corr     *CorrMatrix
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    dataset.Kind
	DType   string
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min    float64
	Max    float64
	Mean   float64
	Std    float64
	Median float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Categorical top values
	TopValues []CategoryCount
}

// BuildReport summarizes every column of ds.
func BuildReport(ds *dataset.Dataset, opt ReportOptions) *Report {
	rep := &Report{Name: ds.Name, Summary: Summarize(ds)}
	sampleRows := opt.SampleRows
	if sampleRows < 0 {
		sampleRows = 5
	}
	topN := opt.TopValues
	if topN <= 0 {
		topN = 8
	}
	if sampleRows > 0 {
		rep.Header, rep.Samples = ds.Head(sampleRows, nil)
	}

	for _, c := range ds.Columns {
		miss := rep.Summary.ColumnNulls[c.Name]
		s := ColumnSummary{Name: c.Name, Kind: c.Kind, DType: c.DType(), NonNull: c.Len() - miss, Missing: miss}
		switch c.Kind {
		case dataset.Numeric:
			d := Describe(c)
			s.Min, s.Max, s.Mean, s.Std, s.Median = d.Min, d.Max, d.Mean, d.Std, d.Median
			s.Unique = len(ValueCounts(c))
			if opt.Outliers && d.Count >= 8 {
				s.OutlierThreshold = opt.OutlierThreshold
				if s.OutlierThreshold <= 0 {
					s.OutlierThreshold = 3.5
				}
				s.OutliersCount, s.OutliersMaxAbsZ = robustOutliers(c.Values(), s.OutlierThreshold)
			}
			if d.Count > 1 && d.Std == 0 {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %s is constant", safeName(c.Name)))
			}
		default:
			counts := ValueCounts(c)
			s.Unique = len(counts)
			if len(counts) > topN {
				counts = counts[:topN]
			}
			s.TopValues = counts
		}
		if total := c.Len(); total > 0 {
			switch {
			case miss == total:
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %s has no values", safeName(c.Name)))
			case miss*2 > total:
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %s is %.0f%% missing", safeName(c.Name), float64(miss)*100/float64(total)))
			}
		}
		rep.Cols = append(rep.Cols, s)
	}
	if ds.Rows == 0 {
		rep.Warnings = append(rep.Warnings, "dataset has a header but no rows")
	}

	if opt.Correlations && rep.Summary.NumericColumns >= 2 {
		m := opt.Method
		if m == "" {
			m = Pearson
		}
		if corr, err := Correlate(ds, string(m)); err == nil {
			rep.Corr = corr
		} else {
			rep.Warnings = append(rep.Warnings, err.Error())
		}
	}
	return rep
}

func robustOutliers(vals []float64, thr float64) (int, float64) {
	median, mad := medianMAD(vals)
	if mad <= 0 {
		return 0, 0
	}
	var cnt int
	maxAbsZ := 0.0
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > thr {
			cnt++
		}
		if az > maxAbsZ {
			maxAbsZ = az
		}
	}
	return cnt, maxAbsZ
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Summary.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d (numeric %d, categorical %d)\n", r.Summary.Columns, r.Summary.NumericColumns, r.Summary.CategoricalColumns))
	b.WriteString(fmt.Sprintf("Missing cells: %d\n", r.Summary.Nulls))
	b.WriteString(fmt.Sprintf("Memory: ~%s\n\n", r.Summary.MemoryHuman))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.DType, c.NonNull, missPct))
		switch c.Kind {
		case dataset.Numeric:
			if c.NonNull > 0 {
				b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Median, c.Std))
			}
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
				if c.OutliersMaxAbsZ > 0 {
					b.WriteString(fmt.Sprintf(" (max |z|≈%.2f)", c.OutliersMaxAbsZ))
				}
			}
		case dataset.Categorical:
			if len(c.TopValues) > 0 {
				b.WriteString("; top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}
	if r.Corr != nil && r.Corr.Len() >= 2 {
		b.WriteString(fmt.Sprintf("\n[CORRELATIONS]\nMethod: %s\n", r.Corr.Method))
		for _, p := range r.Corr.TopPairs(10) {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, h := range r.Header {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(h))
		}
		b.WriteString(" |\n| ")
		for i := range r.Header {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i, val := range row {
				if i > 0 {
					b.WriteString(" | ")
				}
				b.WriteString(safeVal(utils.Truncate(val, 80)))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
