package dataprocessing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/mpgamer75/code-altice/internal/errors"
)

// HeaderFields are the metadata labels of an audit export, in render order.
var HeaderFields = []string{
	"Report Name",
	"Period",
	"Domain Name",
	"Annotation",
	"Number of Records",
	"Object Name(s)",
	"Business Hour Setting",
	"Filter",
	"Generated At",
}

// Placeholder is rendered for a header field that was not found.
const Placeholder = "<no encontrado>"

// HeaderRows is how many rows of column A hold the metadata block.
const HeaderRows = 9

// MatchPolicy decides which line wins when several lines match one field.
type MatchPolicy string

const (
	// MatchLast keeps the value of the last matching line in row order.
	MatchLast MatchPolicy = "last"
	// MatchFirst keeps the value of the first matching line.
	MatchFirst MatchPolicy = "first"
)

// ParseMatchPolicy maps a config value to a MatchPolicy. Unknown values
// fall back to MatchLast.
func ParseMatchPolicy(s string) MatchPolicy {
	if MatchPolicy(strings.ToLower(s)) == MatchFirst {
		return MatchFirst
	}
	return MatchLast
}

type fieldPattern struct {
	field string
	rx    *regexp.Regexp
}

var headerPatterns = func() []fieldPattern {
	patterns := make([]fieldPattern, 0, len(HeaderFields))
	for _, field := range HeaderFields {
		patterns = append(patterns, fieldPattern{
			field: field,
			rx:    regexp.MustCompile(regexp.QuoteMeta(field) + `\s*:\s*(.*)`),
		})
	}
	return patterns
}()

// HeaderMetadata maps header fields to the values found in a source file.
// The zero value is an empty header.
type HeaderMetadata struct {
	values map[string]string
}

// Get returns the value stored for field
func (h HeaderMetadata) Get(field string) (string, bool) {
	v, ok := h.values[field]
	return v, ok
}

// Set stores value for field
func (h *HeaderMetadata) Set(field, value string) {
	if h.values == nil {
		h.values = make(map[string]string, len(HeaderFields))
	}
	h.values[field] = value
}

// Value returns the stored value for field, or Placeholder
func (h HeaderMetadata) Value(field string) string {
	if v, ok := h.values[field]; ok {
		return v
	}
	return Placeholder
}

// Len returns how many fields were found
func (h HeaderMetadata) Len() int {
	return len(h.values)
}

// Fields returns the found fields as an ordered list of pairs, in
// HeaderFields order, skipping absent ones.
func (h HeaderMetadata) Fields() [][2]string {
	out := make([][2]string, 0, len(h.values))
	for _, field := range HeaderFields {
		if v, ok := h.values[field]; ok {
			out = append(out, [2]string{field, v})
		}
	}
	return out
}

// ScanHeaderLines matches every non-empty line against every field pattern,
// in line order. With MatchLast a later match overwrites an earlier one;
// with MatchFirst the earliest match is kept.
func ScanHeaderLines(lines []string, policy MatchPolicy) HeaderMetadata {
	var h HeaderMetadata
	for _, line := range lines {
		if line == "" {
			continue
		}
		for _, p := range headerPatterns {
			m := p.rx.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if _, seen := h.Get(p.field); seen && policy == MatchFirst {
				continue
			}
			h.Set(p.field, strings.TrimSpace(m[1]))
		}
	}
	return h
}

// ExtractHeader reads column A, rows 1 to HeaderRows, of the active sheet
// of a workbook and scans it for header fields. An unreadable workbook
// yields an empty header and an UnreadableSource error.
func ExtractHeader(path string, policy MatchPolicy) (HeaderMetadata, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return HeaderMetadata{}, apperrors.NewUnreadableSourceError(path, err)
	}
	defer f.Close()

	return headerFromWorkbook(f, path, policy)
}

func headerFromWorkbook(f *excelize.File, path string, policy MatchPolicy) (HeaderMetadata, error) {
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		return HeaderMetadata{}, apperrors.NewUnreadableSourceError(path, fmt.Errorf("workbook has no active sheet"))
	}

	lines := make([]string, 0, HeaderRows)
	for row := 1; row <= HeaderRows; row++ {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return HeaderMetadata{}, err
		}
		value, err := f.GetCellValue(sheet, cell)
		if err != nil {
			return HeaderMetadata{}, apperrors.NewUnreadableSourceError(path, err)
		}
		if value != "" {
			lines = append(lines, value)
		}
	}

	return ScanHeaderLines(lines, policy), nil
}
