package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalyzeBatch_CollisionSuffixAndNoSamples(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	// Two CSV files with the same basename in different directories
	csv := "col1,col2\nA,1\nB,2\nC,3\n"
	writeFile(t, filepath.Join(home, "d1", "metrics.csv"), csv)
	writeFile(t, filepath.Join(home, "d2", "metrics.csv"), csv)
	outDir := filepath.Join(home, "summaries")

	out := runCmd(t, "analyze-batch", filepath.Join(home, "d*", "metrics.csv"), "--out-dir", outDir, "--sample-rows", "0")
	if !strings.Contains(out, "[1/2] Processing metrics.csv...") || !strings.Contains(out, "[2/2] Processing metrics.csv...") {
		t.Fatalf("missing progress lines:\n%s", out)
	}
	if !strings.Contains(out, "Detected existing summary") {
		t.Fatalf("missing collision warning:\n%s", out)
	}

	b1 := filepath.Join(outDir, "metrics.summary.md")
	b2 := filepath.Join(outDir, "metrics__2.summary.md")
	for _, p := range []string{b1, b2} {
		body, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("missing summary %s: %v", p, err)
		}
		if strings.Contains(string(body), "[HEAD AND SAMPLE ROWS]") {
			t.Fatalf("expected no sample rows in %s", p)
		}
		if !strings.Contains(string(body), "File: metrics.csv") {
			t.Fatalf("unexpected summary in %s:\n%s", p, body)
		}
	}
}

func TestAnalyzeBatch_Quiet(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := writeFile(t, filepath.Join(home, "a.csv"), "x\n1\n2\n")
	outDir := filepath.Join(home, "out")

	out := runCmd(t, "analyze-batch", p, "--out-dir", outDir, "--quiet")
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected no output, got %q", out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "a.summary.md")); err != nil {
		t.Fatalf("summary not written: %v", err)
	}
}

func TestAnalyzeBatch_NoMatches(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := tryCmd(t, "analyze-batch", filepath.Join(t.TempDir(), "*.csv")); err == nil {
		t.Fatalf("expected error when nothing matches")
	}
}

func TestExpandInputsDedupesAndSorts(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, filepath.Join(dir, "b.csv"), "x\n1\n")
	a := writeFile(t, filepath.Join(dir, "a.csv"), "x\n1\n")
	got := expandInputs([]string{b, filepath.Join(dir, "*.csv"), a})
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("expandInputs = %v", got)
	}
}
