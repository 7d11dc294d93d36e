package dataprocessing

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/mpgamer75/code-altice/internal/errors"
	"github.com/mpgamer75/code-altice/internal/events"
)

// DataStartRow is the first row of the data table. Rows above it hold the
// metadata block and a spacer.
const DataStartRow = 12

// HeaderReader reads the metadata block of an open workbook
type HeaderReader func(f *excelize.File, path string, policy MatchPolicy) (HeaderMetadata, error)

// SpreadsheetExtractor reads xlsx-family workbooks. The header comes from
// the active sheet, the data table from the first sheet.
type SpreadsheetExtractor struct {
	Policy   MatchPolicy
	Resolver ColumnResolver
	// ReadHeader defaults to reading A1..A9 of the active sheet.
	ReadHeader HeaderReader
	Emitter    events.Emitter
}

// NewSpreadsheetExtractor creates a spreadsheet extractor
func NewSpreadsheetExtractor(policy MatchPolicy) *SpreadsheetExtractor {
	return &SpreadsheetExtractor{Policy: policy, Resolver: SpreadsheetResolver, ReadHeader: headerFromWorkbook}
}

// Extract implements Extractor. A workbook that cannot be opened or whose
// data table cannot be read yields an empty extraction and the error. An
// unreadable header block only degrades the header: every field renders as
// the placeholder and the data table is still harvested.
func (s *SpreadsheetExtractor) Extract(ctx context.Context, path string) (Extraction, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return EmptyExtraction(), apperrors.NewUnreadableSourceError(path, err)
	}
	defer f.Close()

	readHeader := s.ReadHeader
	if readHeader == nil {
		readHeader = headerFromWorkbook
	}
	header, err := readHeader(f, path, s.Policy)
	if err != nil {
		header = HeaderMetadata{}
		if s.Emitter != nil {
			s.Emitter.Emit(ctx, events.Warn(events.PhaseExtraction, filepath.Base(path), "header unreadable, continuing without metadata"))
		}
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return EmptyExtraction(), apperrors.NewUnreadableSourceError(path, fmt.Errorf("workbook has no sheets"))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return EmptyExtraction(), apperrors.NewExtractionIOError(path, err)
	}

	var data [][]string
	if len(rows) >= DataStartRow {
		data = rows[DataStartRow-1:]
	}

	width := 0
	for _, row := range data {
		if len(row) > width {
			width = len(row)
		}
	}

	resolver := s.Resolver
	if resolver == nil {
		resolver = SpreadsheetResolver
	}

	return Extraction{
		Header:  header,
		Records: Harvest(data, resolver.Resolve(nil, width)),
	}, nil
}
