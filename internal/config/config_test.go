package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Addr != ":8501" {
		t.Fatalf("addr = %q", c.Addr)
	}
	if c.DefaultDataPath != "diabetes.csv" {
		t.Fatalf("default_data_path = %q", c.DefaultDataPath)
	}
	if c.HistogramBins != 20 || c.PreviewRows != 5 || c.DefaultSelectedColumns != 5 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if !c.WatchDefault {
		t.Fatalf("watch_default should default to true")
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c.DefaultDataPath = "/data/pima.csv"
	c.HistogramBins = 30
	if err := Save(c, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.DefaultDataPath != "/data/pima.csv" || got.HistogramBins != 30 {
		t.Fatalf("reloaded = %+v", got)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATADASH_ADDR", "127.0.0.1:9000")
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Addr != "127.0.0.1:9000" {
		t.Fatalf("addr = %q", c.Addr)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATADASH_HISTOGRAM_BINS", "0")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for histogram_bins=0")
	}
}

func TestParseRune(t *testing.T) {
	cases := map[string]rune{"": 0, ",": ',', ";": ';', "tab": '\t', "comma": ',', "space": ' '}
	for in, want := range cases {
		got, err := ParseRune(in)
		if err != nil {
			t.Fatalf("ParseRune(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseRune(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseRune(",;"); err == nil {
		t.Fatalf("expected error for multi-char separator")
	}
}

func TestDefaultsAreValid(t *testing.T) {
	d := Defaults()
	if err := d.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}
