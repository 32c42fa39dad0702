package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"tvaudience/internal/config"
	"tvaudience/pkg/contracts"
)

const (
	ServiceVersion = contracts.Version
	MeterName      = "tvaudience"
)

// Telemetry holds the tracing and metrics providers of one process
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Registry       *prometheus.Registry
	Tracer         trace.Tracer
	Meter          metric.Meter
	Metrics        *PipelineMetrics
	Logger         *slog.Logger

	metricsFile string
	traceFile   *os.File
}

// PipelineMetrics holds the per-table instruments of the ETL
type PipelineMetrics struct {
	StageRunsTotal metric.Int64Counter
	StageErrors    metric.Int64Counter
	StageDuration  metric.Float64Histogram
	RowsProcessed  metric.Int64Counter
	FilesWritten   metric.Int64Counter
}

// InitializeTelemetry sets up tracing per cfg.TraceExporter and a meter
// provider exporting into a private Prometheus registry
func InitializeTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	ctx := context.Background()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(ServiceVersion),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	t := &Telemetry{Logger: logger, metricsFile: cfg.MetricsFile}

	if err := t.initializeTracing(cfg, res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := t.initializeMetrics(res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.InfoContext(ctx, "Telemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metrics_file", cfg.MetricsFile))

	return t, nil
}

func (t *Telemetry) initializeTracing(cfg config.TelemetryConfig, res *resource.Resource) error {
	switch cfg.TraceExporter {
	case "none", "":
		t.Tracer = noop.NewTracerProvider().Tracer(MeterName)
		return nil
	case "stdout":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	var w io.Writer = os.Stdout
	if cfg.TraceFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return err
		}
		f, err := os.Create(cfg.TraceFile)
		if err != nil {
			return err
		}
		t.traceFile = f
		w = f
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	t.TracerProvider = tp
	t.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(ServiceVersion))
	return nil
}

func (t *Telemetry) initializeMetrics(res *resource.Resource) error {
	t.Registry = prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(t.Registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	t.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	t.Meter = t.MeterProvider.Meter(MeterName, metric.WithInstrumentationVersion(ServiceVersion))

	t.Metrics, err = CreatePipelineMetrics(t.Meter)
	return err
}

// CreatePipelineMetrics creates the ETL instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	stageRuns, err := meter.Int64Counter(
		"tvaudience_stage_runs",
		metric.WithDescription("Total number of table stage executions"),
	)
	if err != nil {
		return nil, err
	}

	stageErrors, err := meter.Int64Counter(
		"tvaudience_stage_errors",
		metric.WithDescription("Total number of failed table stages"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"tvaudience_stage_duration",
		metric.WithDescription("Table stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rows, err := meter.Int64Counter(
		"tvaudience_rows_processed",
		metric.WithDescription("Total number of rows written per table"),
	)
	if err != nil {
		return nil, err
	}

	files, err := meter.Int64Counter(
		"tvaudience_files_written",
		metric.WithDescription("Total number of output files written"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		StageRunsTotal: stageRuns,
		StageErrors:    stageErrors,
		StageDuration:  stageDuration,
		RowsProcessed:  rows,
		FilesWritten:   files,
	}, nil
}

// RecordStage records the outcome of one table stage
func RecordStage(ctx context.Context, m *PipelineMetrics, table string, rows, files int, duration time.Duration, err error) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("table", table))
	status := "success"
	if err != nil {
		status = "failure"
		m.StageErrors.Add(ctx, 1, attrs)
	}

	m.StageRunsTotal.Add(ctx, 1, attrs)
	m.StageDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("table", table), attribute.String("status", status)))
	if err == nil {
		m.RowsProcessed.Add(ctx, int64(rows), attrs)
		m.FilesWritten.Add(ctx, int64(files), attrs)
	}
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// WriteMetrics dumps the registry in Prometheus text format to the
// configured metrics file; a no-op when none is configured
func (t *Telemetry) WriteMetrics() error {
	if t.metricsFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.metricsFile), 0755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(t.metricsFile, t.Registry)
}

// Shutdown flushes and stops the providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if t.traceFile != nil {
		if err := t.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace file close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("telemetry shutdown errors: %v", errs)
	}

	t.Logger.InfoContext(ctx, "Telemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}
