package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/datadash/internal/utils"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"empty", "", 10, ""},
		{"fits", "hello", 5, "hello"},
		{"cut", strings.Repeat("a", 100), 10, "aaaaaaa..."},
		{"tiny limit", "abcdef", 2, "ab"},
		{"runes", "größenordnung", 6, "grö..."},
		{"zero", "abc", 0, ""},
	}
	for _, c := range cases {
		if got := utils.Truncate(c.in, c.limit); got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}

func TestSafeWriteFileCreatesParent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.md")
	if err := utils.SafeWriteFile(path, []byte("report")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "report" {
		t.Fatalf("content = %q", b)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
	if !utils.FileExists(path) {
		t.Fatalf("FileExists(%s) = false", path)
	}
	if utils.FileExists(dir) {
		t.Fatalf("FileExists(dir) = true")
	}
}
