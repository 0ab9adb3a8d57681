package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datadash/internal/analysis"
	"github.com/KaramelBytes/datadash/internal/dataset"
	"github.com/KaramelBytes/datadash/internal/utils"
)

// analyzeFlags are shared by analyze and analyze-batch.
type analyzeFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	sampleRows int
	corr       bool
	method     string
	outliers   bool
	outlierThr float64
}

func (f *analyzeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (by extension if omitted)")
	cmd.Flags().StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	cmd.Flags().StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	cmd.Flags().IntVar(&f.sampleRows, "sample-rows", 5, "number of sample rows to include")
	cmd.Flags().BoolVar(&f.corr, "correlations", true, "include the strongest correlations among numeric columns")
	cmd.Flags().StringVar(&f.method, "method", "pearson", "correlation method: pearson|spearman")
	cmd.Flags().BoolVar(&f.outliers, "outliers", true, "compute robust outlier counts (MAD)")
	cmd.Flags().Float64Var(&f.outlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
}

// options resolves flags against the loaded configuration. Separators given
// on the command line win over config values.
func (f *analyzeFlags) options(cmd *cobra.Command) (dataset.Options, analysis.ReportOptions, error) {
	c := currentConfig()
	delim, dec, thou := "", c.DecimalSeparator, c.ThousandsSeparator
	if cmd.Flags().Changed("delimiter") {
		delim = f.delimiter
	}
	if cmd.Flags().Changed("decimal") {
		dec = f.decimal
	}
	if cmd.Flags().Changed("thousands") {
		thou = f.thousands
	}
	popt, err := parseOptions(delim, dec, thou)
	if err != nil {
		return popt, analysis.ReportOptions{}, err
	}

	ropt := analysis.DefaultReportOptions()
	if f.sampleRows >= 0 {
		ropt.SampleRows = f.sampleRows
	}
	ropt.Correlations = f.corr
	m, err := analysis.ParseMethod(f.method)
	if err != nil {
		return popt, ropt, err
	}
	ropt.Method = m
	ropt.Outliers = f.outliers
	if f.outlierThr > 0 {
		ropt.OutlierThreshold = f.outlierThr
	}
	return popt, ropt, nil
}

// analyzeFile loads path and builds its report.
func analyzeFile(ctx context.Context, loader *dataset.Loader, path string, opt analysis.ReportOptions) (*analysis.Report, error) {
	res := loader.LoadFile(ctx, path)
	if !res.OK() {
		return nil, res.Err
	}
	rep := analysis.BuildReport(res.Dataset, opt)
	// Identical bytes share one cached dataset, so name the report by path.
	rep.Name = filepath.Base(path)
	return rep, nil
}

var (
	anaFlags      analyzeFlags
	anaOutputPath string
	anaFormat     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a CSV/TSV and print a concise summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		popt, ropt, err := anaFlags.options(cmd)
		if err != nil {
			return err
		}
		format := strings.ToLower(strings.TrimSpace(anaFormat))
		if format != "markdown" && format != "md" && format != "table" {
			return fmt.Errorf("unsupported --format: %s (use markdown|table)", anaFormat)
		}

		logger, err := newLogger(currentConfig())
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		loader := dataset.NewLoader(dataset.NewCache(1), popt, logger)

		rep, err := analyzeFile(cmd.Context(), loader, path, ropt)
		if err != nil {
			return err
		}

		var out string
		if format == "table" {
			var b strings.Builder
			renderReportTable(&b, rep)
			out = b.String()
		} else {
			out = rep.Markdown()
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, []byte(out)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaFlags.bind(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis")
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "markdown", "output format: markdown|table")
}

// renderReportTable prints the dataset summary and one row per column.
func renderReportTable(w io.Writer, rep *analysis.Report) {
	fmt.Fprintf(w, "%s: %d rows, %d columns (numeric %d, categorical %d), %d missing cells, ~%s\n",
		rep.Name, rep.Summary.Rows, rep.Summary.Columns, rep.Summary.NumericColumns,
		rep.Summary.CategoricalColumns, rep.Summary.Nulls, rep.Summary.MemoryHuman)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Kind", "DType", "Non-null", "Missing", "Unique", "Mean / Top", "Std", "Min", "Max"})
	for _, c := range rep.Cols {
		row := table.Row{c.Name, string(c.Kind), c.DType, c.NonNull, c.Missing, c.Unique}
		if c.Kind == dataset.Numeric && c.NonNull > 0 {
			row = append(row, short(c.Mean), short(c.Std), short(c.Min), short(c.Max))
		} else if len(c.TopValues) > 0 {
			row = append(row, fmt.Sprintf("%s (%d)", utils.Truncate(c.TopValues[0].Value, 24), c.TopValues[0].Count), "", "", "")
		} else {
			row = append(row, "", "", "", "")
		}
		t.AppendRow(row)
	}
	t.Render()

	if rep.Corr != nil && rep.Corr.Len() >= 2 {
		pairs := rep.Corr.TopPairs(10)
		if len(pairs) > 0 {
			fmt.Fprintf(w, "\nStrongest correlations (%s)\n", rep.Corr.Method)
			ct := table.NewWriter()
			ct.SetOutputMirror(w)
			ct.SetStyle(table.StyleLight)
			ct.AppendHeader(table.Row{"A", "B", "r"})
			for _, p := range pairs {
				ct.AppendRow(table.Row{p.A, p.B, fmt.Sprintf("%.3f", p.R)})
			}
			ct.Render()
		}
	}
	for _, note := range rep.Warnings {
		fmt.Fprintf(w, "⚠ %s\n", note)
	}
}

func short(v float64) string { return fmt.Sprintf("%.4g", v) }
