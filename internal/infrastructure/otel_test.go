package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tvaudience/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeTelemetry(t *testing.T) {
	tel, err := InitializeTelemetry(config.TelemetryConfig{
		ServiceName:   "tvaudience-test",
		TraceExporter: "none",
	}, discardLogger())
	require.NoError(t, err)

	assert.Nil(t, tel.TracerProvider, "no tracer provider without exporter")
	assert.NotNil(t, tel.Tracer)
	assert.NotNil(t, tel.MeterProvider)
	assert.NotNil(t, tel.Registry)
	require.NotNil(t, tel.Metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, tel.WriteMetrics(), "no metrics file configured")
	assert.NoError(t, tel.Shutdown(ctx))
}

func TestInitializeTelemetryUnsupportedExporter(t *testing.T) {
	_, err := InitializeTelemetry(config.TelemetryConfig{
		ServiceName:   "tvaudience-test",
		TraceExporter: "zipkin",
	}, discardLogger())
	assert.Error(t, err)
}

func TestRecordStageAndWriteMetrics(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "metrics", "run.prom")
	tel, err := InitializeTelemetry(config.TelemetryConfig{
		ServiceName:   "tvaudience-test",
		TraceExporter: "none",
		MetricsFile:   metricsFile,
	}, discardLogger())
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	ctx := context.Background()
	RecordStage(ctx, tel.Metrics, "daily", 48, 2, 150*time.Millisecond, nil)
	RecordStage(ctx, tel.Metrics, "prog", 0, 0, 10*time.Millisecond, errors.New("missing"))
	RecordStage(ctx, nil, "monthly", 1, 1, time.Millisecond, nil)

	families, err := tel.Registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["tvaudience_rows_processed_total"])
	assert.True(t, names["tvaudience_stage_runs_total"])
	assert.True(t, names["tvaudience_stage_errors_total"])

	require.NoError(t, tel.WriteMetrics())
	content, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "tvaudience_rows_processed_total")
	assert.Contains(t, string(content), `table="daily"`)
}

func TestStdoutTraceExporter(t *testing.T) {
	traceFile := filepath.Join(t.TempDir(), "trace.json")
	tel, err := InitializeTelemetry(config.TelemetryConfig{
		ServiceName:   "tvaudience-test",
		TraceExporter: "stdout",
		TraceFile:     traceFile,
	}, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)

	ctx, span := tel.Tracer.Start(context.Background(), "stage.daily")
	RecordError(ctx, errors.New("lookup failed"))
	span.End()

	require.NoError(t, tel.Shutdown(context.Background()))

	content, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "stage.daily")
	assert.Contains(t, string(content), "lookup failed")
}
