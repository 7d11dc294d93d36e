package dataprocessing

import "sort"

// Column names and positions of the two harvested fields
const (
	ClientIPColumnName = "Client IP"
	ReasonColumnName   = "Reason"
	ClientIPColumn     = 1
	ReasonColumn       = 6
)

// ColumnPair holds the resolved indexes of the IP and reason columns.
// -1 means the column is absent and its values are empty.
type ColumnPair struct {
	IP     int
	Reason int
}

// NoColumns is the pair that yields empty results
var NoColumns = ColumnPair{IP: -1, Reason: -1}

// ColumnRule tries to resolve the column pair from a header row and the
// table width. ok is false when the rule does not apply.
type ColumnRule interface {
	Resolve(header []string, width int) (pair ColumnPair, ok bool)
}

// NamedColumns applies when both named columns appear in the header row.
// The first occurrence of a duplicated name wins.
type NamedColumns struct {
	IP     string
	Reason string
}

// Resolve implements ColumnRule
func (n NamedColumns) Resolve(header []string, _ int) (ColumnPair, bool) {
	pair := NoColumns
	for i, name := range header {
		if name == n.IP && pair.IP < 0 {
			pair.IP = i
		}
		if name == n.Reason && pair.Reason < 0 {
			pair.Reason = i
		}
	}
	if pair.IP < 0 || pair.Reason < 0 {
		return NoColumns, false
	}
	return pair, true
}

// PositionalColumns takes each column by index when the table is wide
// enough to contain it.
type PositionalColumns struct {
	IP     int
	Reason int
}

// Resolve implements ColumnRule
func (p PositionalColumns) Resolve(_ []string, width int) (ColumnPair, bool) {
	pair := NoColumns
	if p.IP < width {
		pair.IP = p.IP
	}
	if p.Reason < width {
		pair.Reason = p.Reason
	}
	return pair, pair.IP >= 0 || pair.Reason >= 0
}

// ColumnResolver is an ordered fallback chain of rules. The first rule that
// applies wins; when none does, both columns are absent.
type ColumnResolver []ColumnRule

// Resolve runs the chain
func (r ColumnResolver) Resolve(header []string, width int) ColumnPair {
	for _, rule := range r {
		if pair, ok := rule.Resolve(header, width); ok {
			return pair
		}
	}
	return NoColumns
}

// DelimitedResolver resolves by name, then by position, then to nothing.
var DelimitedResolver = ColumnResolver{
	NamedColumns{IP: ClientIPColumnName, Reason: ReasonColumnName},
	PositionalColumns{IP: ClientIPColumn, Reason: ReasonColumn},
}

// SpreadsheetResolver resolves by position only; the data table has no header row.
var SpreadsheetResolver = ColumnResolver{
	PositionalColumns{IP: ClientIPColumn, Reason: ReasonColumn},
}

// Harvest collects the resolved columns of rows into a RecordSet.
func Harvest(rows [][]string, pair ColumnPair) RecordSet {
	return RecordSet{
		Reasons: DedupSort(column(rows, pair.Reason)),
		IPs:     DedupSort(column(rows, pair.IP)),
	}
}

func column(rows [][]string, idx int) []string {
	if idx < 0 {
		return nil
	}
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if idx < len(row) {
			values = append(values, row[idx])
		}
	}
	return values
}

// DedupSort drops empty cells, removes duplicates and sorts the rest by
// plain string comparison. Values are compared as-is, so " 10.0.0.1" and
// "10.0.0.1" stay distinct. "10.0.0.5" sorts before "2.0.0.1".
func DedupSort(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
