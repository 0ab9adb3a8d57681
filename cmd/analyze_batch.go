package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datadash/internal/dataset"
	"github.com/KaramelBytes/datadash/internal/utils"
)

var (
	abFlags  analyzeFlags
	abOutDir string
	abQuiet  bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV files and write one Markdown summary per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}

		popt, ropt, err := abFlags.options(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(currentConfig())
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		loader := dataset.NewLoader(dataset.NewCache(1), popt, logger)

		if err := utils.EnsureDir(abOutDir); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			rep, err := analyzeFile(cmd.Context(), loader, path, ropt)
			if err != nil {
				return err
			}
			outFile := summaryPath(abOutDir, path)
			if outFile != filepath.Join(abOutDir, summaryBase(path)+".summary.md") && !abQuiet {
				fmt.Fprintf(out, "⚠ Detected existing summary, writing to %s to avoid overwrite.\n", filepath.Base(outFile))
			}
			if err := utils.SafeWriteFile(outFile, []byte(rep.Markdown())); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote %s\n", outFile)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abFlags.bind(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "dataset_summaries", "directory for the generated summaries")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}

// expandInputs resolves globs and literal paths, dropping duplicates, in
// sorted order.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func summaryBase(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// summaryPath picks <dir>/<name>.summary.md, adding a __N suffix when a
// summary with that name already exists.
func summaryPath(dir, path string) string {
	base := summaryBase(path)
	outFile := filepath.Join(dir, base+".summary.md")
	if _, err := os.Stat(outFile); err != nil {
		return outFile
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d.summary.md", base, idx))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
	}
}
