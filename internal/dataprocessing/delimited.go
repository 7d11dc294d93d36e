package dataprocessing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	stderrors "errors"
	"io"
	"os"

	apperrors "github.com/mpgamer75/code-altice/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DelimitedExtractor reads comma-separated exports. The first row is the
// column header; there is no metadata block, so the header is always empty.
type DelimitedExtractor struct {
	Resolver ColumnResolver
}

// NewDelimitedExtractor creates a delimited-text extractor
func NewDelimitedExtractor() *DelimitedExtractor {
	return &DelimitedExtractor{Resolver: DelimitedResolver}
}

// Extract implements Extractor
func (d *DelimitedExtractor) Extract(_ context.Context, path string) (Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return EmptyExtraction(), apperrors.NewUnreadableSourceError(path, err)
	}
	defer f.Close()

	header, rows, err := readDelimited(f)
	if err != nil {
		return EmptyExtraction(), apperrors.NewExtractionIOError(path, err)
	}

	resolver := d.Resolver
	if resolver == nil {
		resolver = DelimitedResolver
	}

	return Extraction{
		Records: Harvest(rows, resolver.Resolve(header, len(header))),
	}, nil
}

// readDelimited returns the header row and the data rows. Rows that fail to
// parse, or that carry more fields than the header, are skipped.
func readDelimited(r io.Reader) ([]string, [][]string, error) {
	br := bufio.NewReader(r)
	if lead, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(lead, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, nil, err
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var header []string
	for header == nil {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil, nil, nil
		}
		if err != nil {
			var perr *csv.ParseError
			if stderrors.As(err, &perr) {
				continue
			}
			return nil, nil, err
		}
		header = rec
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if stderrors.As(err, &perr) {
				continue
			}
			return nil, nil, err
		}
		if len(rec) > len(header) {
			continue
		}
		rows = append(rows, rec)
	}

	return header, rows, nil
}
