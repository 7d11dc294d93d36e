package dataprocessing

import "context"

// RecordSet holds the unique values harvested from the data table, each
// sorted ascending as plain strings.
type RecordSet struct {
	Reasons []string
	IPs     []string
}

// Extraction is everything read from one source file
type Extraction struct {
	Header  HeaderMetadata
	Records RecordSet
}

// Empty reports whether nothing at all was extracted
func (e Extraction) Empty() bool {
	return e.Header.Len() == 0 && len(e.Records.Reasons) == 0 && len(e.Records.IPs) == 0
}

// EmptyExtraction is the degraded result for unsupported or unreadable files
func EmptyExtraction() Extraction {
	return Extraction{Records: RecordSet{Reasons: []string{}, IPs: []string{}}}
}

// Extractor reads one source format
type Extractor interface {
	Extract(ctx context.Context, path string) (Extraction, error)
}

// ExtractorFunc adapts a function to the Extractor interface
type ExtractorFunc func(ctx context.Context, path string) (Extraction, error)

// Extract calls f(ctx, path)
func (f ExtractorFunc) Extract(ctx context.Context, path string) (Extraction, error) {
	return f(ctx, path)
}
