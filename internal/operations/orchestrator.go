package operations

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/mpgamer75/code-altice/internal/config"
	"github.com/mpgamer75/code-altice/internal/dataprocessing"
	"github.com/mpgamer75/code-altice/internal/events"
	"github.com/mpgamer75/code-altice/internal/exporter"
	"github.com/mpgamer75/code-altice/internal/files"
	"github.com/mpgamer75/code-altice/internal/infrastructure"
)

// TracerName names the spans of batch phases
const TracerName = "secreport.operations"

// Options configures an Orchestrator
type Options struct {
	// TempDir receives intermediate reports in ExtractPhase.
	TempDir   string
	Extractor dataprocessing.Extractor
	Lister    files.Lister
	Templates exporter.Templates
	Emitter   events.Emitter
	Metrics   *infrastructure.BatchMetrics
	Tracer    trace.Tracer
	Logger    *slog.Logger
	// KeepFailedIntermediates leaves intermediates whose finalization
	// failed in the temp directory.
	KeepFailedIntermediates bool
}

// Orchestrator drives the extraction and finalization phases over
// directory contents. Phases share nothing in memory; finalization
// re-lists the temp directory.
type Orchestrator struct {
	opts Options
}

// NewOrchestrator creates an orchestrator. Missing options get working
// defaults.
func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Lister == nil {
		opts.Lister = files.NewDiscovery()
	}
	if opts.Templates == (exporter.Templates{}) {
		opts.Templates = exporter.DefaultTemplates()
	}
	if opts.Emitter == nil {
		opts.Emitter = events.Nop
	}
	if opts.Extractor == nil {
		opts.Extractor = dataprocessing.NewDefaultDispatcher(dataprocessing.MatchLast, dataprocessing.DispatcherOptions{Emitter: opts.Emitter})
	}
	if opts.Tracer == nil {
		opts.Tracer = noop.NewTracerProvider().Tracer(TracerName)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.Logger = infrastructure.WithComponent(opts.Logger, "orchestrator")
	return &Orchestrator{opts: opts}
}

// ExtractPhase extracts every supported file of inputDir into the
// configured temp directory.
func (o *Orchestrator) ExtractPhase(ctx context.Context, inputDir string) PhaseResult {
	return o.extract(ctx, inputDir, o.opts.TempDir)
}

// ExtractFile runs one file through dispatch and the intermediate writer,
// whatever its extension.
func (o *Orchestrator) ExtractFile(ctx context.Context, path, tempDir string) FileOutcome {
	name := filepath.Base(path)
	outcome := FileOutcome{File: name}

	ex, err := o.opts.Extractor.Extract(ctx, path)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	out, err := exporter.NewIntermediateWriter(tempDir, o.opts.Logger).Write(path, ex)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Output = out
	return outcome
}

func (o *Orchestrator) extract(ctx context.Context, inputDir, tempDir string) PhaseResult {
	const phase = events.PhaseExtraction
	result := newPhaseResult()

	ctx, span := o.opts.Tracer.Start(ctx, "operations.extract_phase",
		trace.WithAttributes(attribute.String("input_dir", inputDir)))
	defer span.End()
	defer o.opts.Metrics.PhaseStarted(ctx, phase)()

	sources, err := files.FindSourceFiles(o.opts.Lister, inputDir)
	if err != nil {
		if files.IsMissingDirectory(err) {
			o.opts.Emitter.Emit(ctx, events.Error(phase, "", fmt.Sprintf("input directory %s does not exist", inputDir), nil))
			result.DirMissing = true
			return result
		}
		o.opts.Emitter.Emit(ctx, events.Error(phase, "", "failed to list input directory", err))
		return result
	}
	if len(sources) == 0 {
		o.opts.Emitter.Emit(ctx, events.Warn(phase, "", fmt.Sprintf("no source files found in %s", inputDir)))
		return result
	}

	o.opts.Emitter.Emit(ctx, events.Info(phase, "", fmt.Sprintf("extracting %d files", len(sources))))

	for _, src := range sources {
		if ctx.Err() != nil {
			result.Cancelled = true
			o.opts.Emitter.Emit(ctx, events.Warn(phase, "", "extraction cancelled"))
			break
		}

		outcome := o.ExtractFile(ctx, src.Path, tempDir)
		result.add(outcome, src.Name)
		o.opts.Metrics.RecordFile(ctx, phase, outcome.Succeeded())

		if outcome.Succeeded() {
			o.opts.Emitter.Emit(ctx, events.Info(phase, src.Name, "information extracted"))
		} else {
			o.opts.Emitter.Emit(ctx, events.Error(phase, src.Name, "extraction failed", outcome.Err))
		}
	}

	span.SetAttributes(
		attribute.Int("processed", len(result.Processed)),
		attribute.Int("failed", len(result.Failed)),
	)
	return result
}

// FinalizePhase assembles a final report for every intermediate report in
// tempDir, then deletes the intermediates. Deletion covers failed ones too
// unless KeepFailedIntermediates is set.
func (o *Orchestrator) FinalizePhase(ctx context.Context, tempDir, outputDir string) PhaseResult {
	const phase = events.PhaseFinalization
	result := newPhaseResult()

	ctx, span := o.opts.Tracer.Start(ctx, "operations.finalize_phase",
		trace.WithAttributes(
			attribute.String("temp_dir", tempDir),
			attribute.String("output_dir", outputDir),
		))
	defer span.End()
	defer o.opts.Metrics.PhaseStarted(ctx, phase)()

	intermediates, err := files.FindBySuffix(o.opts.Lister, tempDir, config.IntermediateSuffix)
	if err != nil {
		if files.IsMissingDirectory(err) {
			o.opts.Emitter.Emit(ctx, events.Warn(phase, "", fmt.Sprintf("temp directory %s does not exist, nothing to finalize", tempDir)))
			result.DirMissing = true
			return result
		}
		o.opts.Emitter.Emit(ctx, events.Error(phase, "", "failed to list temp directory", err))
		return result
	}
	if len(intermediates) == 0 {
		o.opts.Emitter.Emit(ctx, events.Warn(phase, "", "no intermediate reports to finalize"))
		return result
	}

	o.opts.Emitter.Emit(ctx, events.Info(phase, "", fmt.Sprintf("generating %d final reports", len(intermediates))))

	assembler := exporter.NewFinalAssembler(outputDir, o.opts.Templates, o.opts.Logger)
	for _, in := range intermediates {
		if ctx.Err() != nil {
			result.Cancelled = true
			o.opts.Emitter.Emit(ctx, events.Warn(phase, "", "finalization cancelled"))
			break
		}

		outcome := FileOutcome{File: in.Name}
		outcome.Output, outcome.Err = assembler.Assemble(in.Path)
		o.opts.Metrics.RecordFile(ctx, phase, outcome.Succeeded())

		if outcome.Succeeded() {
			result.add(outcome, filepath.Base(outcome.Output))
			o.opts.Emitter.Emit(ctx, events.Info(phase, in.Name, "final report generated"))
		} else {
			result.add(outcome, in.Name)
			o.opts.Emitter.Emit(ctx, events.Error(phase, in.Name, "final report failed", outcome.Err))
		}
	}

	o.cleanup(ctx, tempDir, result)

	span.SetAttributes(
		attribute.Int("processed", len(result.Processed)),
		attribute.Int("failed", len(result.Failed)),
	)
	return result
}

func (o *Orchestrator) cleanup(ctx context.Context, tempDir string, result PhaseResult) {
	const phase = events.PhaseFinalization

	if !o.opts.KeepFailedIntermediates && !result.Cancelled {
		deleted, err := files.DeleteBySuffix(o.opts.Lister, tempDir, config.IntermediateSuffix)
		if err != nil {
			o.opts.Emitter.Emit(ctx, events.Error(phase, "", "temp cleanup incomplete", err))
			return
		}
		o.opts.Emitter.Emit(ctx, events.Info(phase, "", fmt.Sprintf("removed %d intermediate reports", len(deleted))))
		return
	}

	// Only intermediates that were attempted are eligible here.
	for _, outcome := range result.Outcomes {
		if !outcome.Succeeded() && o.opts.KeepFailedIntermediates {
			continue
		}
		if err := os.Remove(filepath.Join(tempDir, outcome.File)); err != nil && !os.IsNotExist(err) {
			o.opts.Emitter.Emit(ctx, events.Error(phase, outcome.File, "temp cleanup failed", err))
		}
	}
	if n := len(result.Failed); n > 0 && o.opts.KeepFailedIntermediates {
		o.opts.Emitter.Emit(ctx, events.Warn(phase, "", fmt.Sprintf("kept %d intermediate reports whose finalization failed", n)))
	}
}

// Run executes extraction into tempDir and, when at least one file was
// extracted, finalization into outputDir.
func (o *Orchestrator) Run(ctx context.Context, inputDir, tempDir, outputDir string) BatchResult {
	start := time.Now()
	ctx = infrastructure.EnsureTraceID(ctx)

	ctx, span := o.opts.Tracer.Start(ctx, "operations.run")
	defer span.End()

	o.opts.Emitter.Emit(ctx, events.Info(events.PhaseRun, "", "report processing started"))

	extracted := o.extract(ctx, inputDir, tempDir)

	finalized := newPhaseResult()
	if len(extracted.Processed) > 0 && !extracted.Cancelled {
		finalized = o.FinalizePhase(ctx, tempDir, outputDir)
	}

	failed := make([]string, 0, len(extracted.Failed)+len(finalized.Failed))
	failed = append(failed, extracted.Failed...)
	failed = append(failed, finalized.Failed...)

	result := BatchResult{
		Processed: finalized.Processed,
		Failed:    failed,
		Duration:  time.Since(start),
		Cancelled: extracted.Cancelled || finalized.Cancelled,
	}

	summary := fmt.Sprintf("processing finished: %d processed, %d failed in %s",
		len(result.Processed), len(result.Failed), result.Duration.Round(time.Millisecond))
	if len(result.Failed) > 0 {
		o.opts.Emitter.Emit(ctx, events.Warn(events.PhaseRun, "", summary))
	} else {
		o.opts.Emitter.Emit(ctx, events.Info(events.PhaseRun, "", summary))
	}

	return result
}
