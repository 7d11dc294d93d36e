// Package dataprocessing reads security-audit exports and extracts the
// header metadata and the two harvested columns (client IPs and failure
// reasons).
//
// # Architecture
//
//  1. Header: scans column A, rows 1-9 of the active sheet, for the nine
//     "Field : value" lines. Matching is an ordered scan; MatchLast keeps
//     the last matching line per field.
//  2. Extractors: SpreadsheetExtractor (data table from row 12, no header
//     row) and DelimitedExtractor (first row is the column header).
//  3. Columns: a ColumnResolver chain picks the IP and reason columns,
//     by name, then by position, then none.
//  4. Dispatcher: chooses the extractor by extension and degrades
//     unsupported or unreadable files to an empty Extraction.
//
// # Usage
//
//	d := dataprocessing.NewDefaultDispatcher(dataprocessing.MatchLast, dataprocessing.DispatcherOptions{})
//	ex, err := d.Extract(ctx, "xls_folder/login_failures.xlsx")
//
// Values are opaque text: empty cells are dropped, duplicates removed, and
// the result sorted as plain strings. IPs are never interpreted numerically.
package dataprocessing
