// Package bureau turns the rows of an office-location workbook into typed
// records and filters them by city and by category code.
//
// Everything here is total: malformed text degrades to empty fields, never to
// an error.
package bureau

import (
	"regexp"
	"strings"
	"unicode"
)

/* ──────────── positional columns of a raw row ──────────── */

const (
	colComposite  = 1
	colCategories = 2
	colIdentifier = 3
)

// Record is one office parsed out of a spreadsheet row.
type Record struct {
	Title       string   `json:"title"`
	Location    string   `json:"location"`
	City        string   `json:"city"`
	Phone       string   `json:"phone"`
	Fax         string   `json:"fax"`
	CategoryRaw string   `json:"category_raw"`
	Categories  []string `json:"categories"`
	Identifier  string   `json:"identifier"`
}

/* ──────────── line patterns ──────────── */

// The phone capture stops at the first hyphen, so "01-23-45" yields "01".
// City and fax captures stop at any line terminator, a lone \r included.
var (
	villeTelRE = regexp.MustCompile(`(?i)Ville\s*:\s*([^\r\n\x{2028}\x{2029}]*?)-\s*T[ée]l\s*:\s*([^-\n]*)`)
	faxRE      = regexp.MustCompile(`(?i)Fax\s*:\s*([^\r\n\x{2028}\x{2029}]*)`)
)

func isBlank(r rune) bool { return unicode.IsSpace(r) || r == '\ufeff' }

func trim(s string) string { return strings.TrimFunc(s, isBlank) }

// nonEmptyLines splits a cell on line breaks and keeps the trimmed,
// non-empty lines in order.
func nonEmptyLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = trim(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func line(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}

// Parse builds a Record from the composite text block, the comma separated
// category cell and the identifier cell of one row.
func Parse(composite, categories, identifier string) Record {
	lines := nonEmptyLines(composite)

	rec := Record{
		Title:       line(lines, 0),
		Location:    line(lines, 1),
		CategoryRaw: categories,
		Categories:  SplitCategories(categories),
		Identifier:  identifier,
	}
	if m := villeTelRE.FindStringSubmatch(line(lines, 2)); len(m) > 2 {
		rec.City = trim(m[1])
		rec.Phone = trim(m[2])
	}
	if m := faxRE.FindStringSubmatch(line(lines, 3)); len(m) > 1 {
		rec.Fax = trim(m[1])
	}
	return rec
}

// SplitCategories splits a category cell on commas, trims every token and
// drops the empty ones. Order and duplicates are kept.
func SplitCategories(raw string) []string {
	out := []string{}
	for _, tok := range strings.Split(raw, ",") {
		if tok = trim(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// pick returns rec[idx] or "" when the row is too short.
func pick(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

// FromRows parses every data row of a sheet. Row 0 is the header and rows
// without a composite text cell are dropped.
func FromRows(rows [][]string) []Record {
	out := []Record{}
	if len(rows) < 2 {
		return out
	}
	for _, row := range rows[1:] {
		if pick(row, colComposite) == "" {
			continue
		}
		out = append(out, Parse(pick(row, colComposite), pick(row, colCategories), pick(row, colIdentifier)))
	}
	return out
}
