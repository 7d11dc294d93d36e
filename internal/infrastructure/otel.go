package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/mpgamer75/code-altice/internal/config"
)

const (
	ServiceName    = "secreport"
	ServiceVersion = "1.0.0"
	MeterName      = "secreport"
)

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// InitializeOTel sets up metrics and tracing according to cfg. Disabled
// exporters fall back to no-op providers so callers never nil-check.
func InitializeOTel(cfg config.TelemetryConfig, logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = slog.Default()
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(ServiceVersion),
		attribute.String("deployment.environment", cfg.Environment),
	)

	providers := &OTelProviders{
		Logger: logger,
		Meter:  noop.NewMeterProvider().Meter(MeterName),
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
	}

	switch cfg.MetricExporter {
	case "prometheus":
		registry := promclient.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(ServiceVersion))
		providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	case "none", "":
	default:
		return nil, fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		providers.TracerProvider = tp
		providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(ServiceVersion))
	case "none", "":
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	logger.Info("Telemetry initialized",
		slog.String("metric_exporter", cfg.MetricExporter),
		slog.String("trace_exporter", cfg.TraceExporter))

	return providers, nil
}

// Shutdown flushes and stops the providers that were created
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}
	return nil
}

// BatchMetrics holds the batch instruments
type BatchMetrics struct {
	FilesTotal    metric.Int64Counter
	PhaseDuration metric.Float64Histogram
	ActiveBatches metric.Int64UpDownCounter
}

// CreateBatchMetrics creates the batch instruments on meter
func CreateBatchMetrics(meter metric.Meter) (*BatchMetrics, error) {
	filesTotal, err := meter.Int64Counter(
		"secreport_files_total",
		metric.WithDescription("Files handled by a batch phase, by phase and outcome"),
	)
	if err != nil {
		return nil, err
	}

	phaseDuration, err := meter.Float64Histogram(
		"secreport_phase_duration_seconds",
		metric.WithDescription("Batch phase duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	activeBatches, err := meter.Int64UpDownCounter(
		"secreport_active_phases",
		metric.WithDescription("Number of batch phases currently running"),
	)
	if err != nil {
		return nil, err
	}

	return &BatchMetrics{
		FilesTotal:    filesTotal,
		PhaseDuration: phaseDuration,
		ActiveBatches: activeBatches,
	}, nil
}

// RecordFile counts one file outcome for a phase
func (m *BatchMetrics) RecordFile(ctx context.Context, phase string, success bool) {
	if m == nil {
		return
	}
	outcome := "processed"
	if !success {
		outcome = "failed"
	}
	m.FilesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.String("outcome", outcome),
	))
}

// PhaseStarted marks a phase as running and returns a func that records
// its duration when called.
func (m *BatchMetrics) PhaseStarted(ctx context.Context, phase string) func() {
	if m == nil {
		return func() {}
	}
	attrs := metric.WithAttributes(attribute.String("phase", phase))
	start := time.Now()
	m.ActiveBatches.Add(ctx, 1, attrs)
	return func() {
		m.ActiveBatches.Add(ctx, -1, attrs)
		m.PhaseDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}
