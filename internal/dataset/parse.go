package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Options controls how delimited text is parsed.
type Options struct {
	// Delimiter for CSV. If 0, picks tab for .tsv names and comma otherwise.
	Delimiter rune
	// Numeric parsing locale. Zero values mean '.' decimals and no grouping.
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// DefaultOptions returns comma-separated, dot-decimal parsing.
func DefaultOptions() Options {
	return Options{Delimiter: ','}
}

// fingerprint distinguishes cache entries parsed with different options.
func (o Options) fingerprint() string {
	return fmt.Sprintf("%q|%q|%q", o.Delimiter, o.DecimalSeparator, o.ThousandsSeparator)
}

// missingTokens are the cell values read as "no value".
var missingTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

func isMissing(v string) bool {
	_, ok := missingTokens[strings.TrimSpace(v)]
	return ok
}

// Parse reads delimited text with a header row into a Dataset.
// Rows shorter than the header are padded with missing cells; longer rows are
// an error.
func Parse(r io.Reader, name string, opt Options) (*Dataset, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name)
	}
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = !unicode.IsSpace(delim)
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Source: name, Err: ErrEmptyInput}
		}
		return nil, &LoadError{Source: name, Line: parseErrorLine(err), Err: fmt.Errorf("read header: %w", err)}
	}
	ncol := len(header)
	names := headerNames(header)

	raw := make([][]string, ncol)
	rows := 0
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &LoadError{Source: name, Line: parseErrorLine(err), Err: fmt.Errorf("read row %d: %w", rows+1, err)}
		}
		if len(rec) > ncol {
			line, _ := cr.FieldPos(0)
			return nil, &LoadError{Source: name, Line: line, Err: fmt.Errorf("expected %d fields, saw %d", ncol, len(rec))}
		}
		for j := 0; j < ncol; j++ {
			v := ""
			if j < len(rec) {
				v = rec[j]
			}
			raw[j] = append(raw[j], v)
		}
		rows++
	}

	ds := &Dataset{Name: name, Rows: rows, Columns: make([]*Column, ncol)}
	for j := range raw {
		ds.Columns[j] = inferColumn(names[j], raw[j], rows, opt)
	}
	return ds, nil
}

// inferColumn types a column once. A column is numeric when every present
// cell parses as a number; a header-only table has no numeric columns.
func inferColumn(name string, cells []string, rows int, opt Options) *Column {
	if rows > 0 {
		nums := make([]float64, len(cells))
		integer := true
		numeric := true
		for i, v := range cells {
			if isMissing(v) {
				nums[i] = math.NaN()
				integer = false
				continue
			}
			x, isInt, ok := parseNumeric(v, opt)
			if !ok {
				numeric = false
				break
			}
			nums[i] = x
			integer = integer && isInt
		}
		if numeric {
			return &Column{Name: name, Kind: Numeric, Integer: integer, Nums: nums}
		}
	}
	strs := make([]string, len(cells))
	valid := make([]bool, len(cells))
	for i, v := range cells {
		if isMissing(v) {
			continue
		}
		strs[i] = v
		valid[i] = true
	}
	return &Column{Name: name, Kind: Categorical, Strs: strs, Valid: valid}
}

// headerNames fills blank names and de-duplicates repeated ones as name.1, name.2, ...
func headerNames(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for used[name] {
			counts[h]++
			name = fmt.Sprintf("%s.%d", h, counts[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func parseErrorLine(err error) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.Line
	}
	return 0
}

func sniffDelimiter(name string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	return ','
}

// parseNumeric parses a cell using the configured separators. It reports
// whether the text was written as an integer.
func parseNumeric(s string, opt Options) (float64, bool, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
	if raw == "" || strings.ContainsAny(raw, "xX_") {
		return 0, false, false
	}
	if thou := opt.ThousandsSeparator; thou != 0 && thou != opt.DecimalSeparator {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec := opt.DecimalSeparator; dec != 0 && dec != '.' {
		if strings.Contains(raw, ".") {
			return 0, false, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return float64(i), true, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, false
	}
	return f, false, true
}
