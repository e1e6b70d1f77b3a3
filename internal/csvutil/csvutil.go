// Package csvutil smooths over CSV files produced by spreadsheets: UTF-8
// BOMs, semicolon delimiters, and headers with stray case or whitespace.
package csvutil

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"
)

const bom = "\xef\xbb\xbf"

// NewReader wraps r in a csv.Reader, stripping a leading BOM and sniffing
// the delimiter (comma or semicolon) from the first line.
func NewReader(r io.Reader) *csv.Reader {
	br := bufio.NewReader(r)

	head, _ := br.Peek(len(bom))
	if string(head) == bom {
		br.Discard(len(bom))
	}

	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(br)
	return cr
}

// sniffDelimiter picks semicolon over comma when the first line contains
// semicolons but no commas (common in locale-specific Excel exports).
func sniffDelimiter(br *bufio.Reader) rune {
	head, _ := br.Peek(2048)
	line, _, _ := strings.Cut(string(head), "\n")
	if strings.Contains(line, ";") && !strings.Contains(line, ",") {
		return ';'
	}
	return ','
}

// NormalizeHeader lowercases and trims header fields so "Owner " and
// "OPENING_BALANCE" match their canonical names.
func NormalizeHeader(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.ToLower(strings.TrimSpace(f))
	}
	return out
}

// ColumnIndex maps canonical column names to their position in a normalized
// header. The second return lists required columns that are missing.
func ColumnIndex(header, required []string) (map[string]int, []string) {
	idx := make(map[string]int, len(header))
	for i, f := range header {
		if _, seen := idx[f]; !seen {
			idx[f] = i
		}
	}

	var missing []string
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	return idx, missing
}

// Blank reports whether every field in the record is empty after trimming.
func Blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
