package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/KaramelBytes/datadash/internal/analysis"
	"github.com/KaramelBytes/datadash/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	t *template.Template
}

func newPages() (*pages, error) {
	printer := message.NewPrinter(language.English)
	caser := cases.Title(language.English)
	funcs := template.FuncMap{
		"count": func(n int) string { return printer.Sprintf("%d", n) },
		"stat":  formatStat,
		"title": func(s any) string { return caser.String(fmt.Sprint(s)) },
		"pct": func(part, whole int) string {
			if whole == 0 {
				return "0%"
			}
			return strconv.FormatFloat(100*float64(part)/float64(whole), 'f', 1, 64) + "%"
		},
		"has":     func(list []string, s string) bool { return slices.Contains(list, s) },
		"signals": signalsJSON,
		"corr": func(m *analysis.CorrMatrix, i, j int) string {
			v := m.At(i, j)
			if math.IsNaN(v) {
				return "-"
			}
			return strconv.FormatFloat(v, 'f', 2, 64)
		},
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i
			}
			return out
		},
	}
	t, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &pages{t: t}, nil
}

func (p *pages) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := p.t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// formatStat prints a statistic with up to four decimals; undefined values
// print as "-".
func formatStat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func signalsJSON(sel view.Selections) (string, error) {
	b, err := json.Marshal(sel.Signals())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// markdownToHTML renders a report with the common extensions.
func markdownToHTML(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.SkipHTML})
	return template.HTML(markdown.ToHTML([]byte(md), p, r)) //nolint:gosec // raw HTML in the source is skipped
}
