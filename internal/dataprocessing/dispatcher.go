package dataprocessing

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	apperrors "github.com/mpgamer75/code-altice/internal/errors"
	"github.com/mpgamer75/code-altice/internal/events"
)

// SpreadsheetExtensions are the workbook formats read by the spreadsheet extractor
var SpreadsheetExtensions = []string{".xls", ".xlsx", ".xlsm", ".xltx", ".xltm"}

// DispatcherOptions configures a Dispatcher
type DispatcherOptions struct {
	Emitter events.Emitter
	Tracer  trace.Tracer
	// FailUnsupported returns an error for unknown extensions instead of an
	// empty extraction.
	FailUnsupported bool
}

// Dispatcher picks an extractor by lowercase file extension.
//
// Unknown extensions and unreadable files degrade to an empty extraction
// with a warning or error event; neither is returned as an error unless
// FailUnsupported is set.
type Dispatcher struct {
	mu         sync.RWMutex
	extractors map[string]Extractor
	emitter    events.Emitter
	tracer     trace.Tracer
	failUnsup  bool
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	if opts.Emitter == nil {
		opts.Emitter = events.Nop
	}
	if opts.Tracer == nil {
		opts.Tracer = noop.NewTracerProvider().Tracer("dataprocessing")
	}
	return &Dispatcher{
		extractors: make(map[string]Extractor),
		emitter:    opts.Emitter,
		tracer:     opts.Tracer,
		failUnsup:  opts.FailUnsupported,
	}
}

// NewDefaultDispatcher registers the spreadsheet and delimited extractors
func NewDefaultDispatcher(policy MatchPolicy, opts DispatcherOptions) *Dispatcher {
	d := NewDispatcher(opts)
	sheet := NewSpreadsheetExtractor(policy)
	sheet.Emitter = d.emitter
	for _, ext := range SpreadsheetExtensions {
		d.Register(ext, sheet)
	}
	d.Register(".csv", NewDelimitedExtractor())
	return d
}

// Register binds an extractor to an extension, replacing any previous one
func (d *Dispatcher) Register(ext string, e Extractor) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.extractors[ext] = e
}

// Supports reports whether path has a registered extension
func (d *Dispatcher) Supports(path string) bool {
	_, ok := d.lookup(path)
	return ok
}

// Extensions returns the registered extensions, sorted
func (d *Dispatcher) Extensions() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.extractors))
	for ext := range d.extractors {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func (d *Dispatcher) lookup(path string) (Extractor, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.extractors[ext]
	return e, ok
}

// Extract runs the extractor registered for path's extension
func (d *Dispatcher) Extract(ctx context.Context, path string) (Extraction, error) {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))

	ctx, span := d.tracer.Start(ctx, "dataprocessing.extract",
		trace.WithAttributes(
			attribute.String("file", name),
			attribute.String("extension", ext),
		))
	defer span.End()

	extractor, ok := d.lookup(path)
	if !ok {
		cause := fmt.Errorf("unsupported file format: %s", ext)
		d.emitter.Emit(ctx, events.Warn(events.PhaseExtraction, name, cause.Error()))
		span.SetAttributes(attribute.Bool("unsupported", true))
		if d.failUnsup {
			err := apperrors.NewUnreadableSourceError(path, cause)
			span.SetStatus(codes.Error, cause.Error())
			return EmptyExtraction(), err
		}
		return EmptyExtraction(), nil
	}

	result, err := extractor.Extract(ctx, path)
	if err != nil {
		span.RecordError(err)
		d.emitter.Emit(ctx, events.Error(events.PhaseExtraction, name, "source could not be read, continuing with empty extraction", err))
		return EmptyExtraction(), nil
	}

	span.SetAttributes(
		attribute.Int("header_fields", result.Header.Len()),
		attribute.Int("reasons", len(result.Records.Reasons)),
		attribute.Int("ips", len(result.Records.IPs)),
	)
	return result, nil
}
