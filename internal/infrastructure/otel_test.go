package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuspulse/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestInitializeOTelDisabled(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{TraceExporter: "none"}, "test", quietLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Meter)

	_, span := providers.Tracer.Start(context.Background(), "noop")
	assert.False(t, span.IsRecording())
	span.End()

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTelMetrics(t *testing.T) {
	cfg := config.Default().Telemetry
	providers, err := InitializeOTel(cfg, "test", quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	require.NotNil(t, providers.PrometheusHTTP)

	metrics, err := NewDatasetMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordLoad(ctx, "embedded", 12, 5*time.Millisecond, nil)
	metrics.RecordLoad(ctx, "remote", 0, time.Millisecond, errors.New("refused"))
	metrics.RecordFilter(ctx, 3)
	metrics.RecordDefaults(ctx, map[string]int{"Rating": 2})

	body := scrape(t, providers.PrometheusHTTP)
	assert.Contains(t, body, "campuspulse_dataset_loads_total")
	assert.Contains(t, body, `status="failure"`)
	assert.Contains(t, body, `source="embedded"`)
	assert.Contains(t, body, "campuspulse_dataset_filters_total")
	assert.Contains(t, body, "campuspulse_dataset_defaulted_fields_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestInitializeOTelIsolatedRegistries(t *testing.T) {
	cfg := config.Default().Telemetry
	a, err := InitializeOTel(cfg, "a", quietLogger())
	require.NoError(t, err)
	defer a.Shutdown(context.Background())
	b, err := InitializeOTel(cfg, "b", quietLogger())
	require.NoError(t, err)
	defer b.Shutdown(context.Background())

	ma, err := NewDatasetMetrics(a.Meter)
	require.NoError(t, err)
	ma.RecordFilter(context.Background(), 1)

	assert.Contains(t, scrape(t, a.PrometheusHTTP), "campuspulse_dataset_filters_total")
	assert.NotContains(t, scrape(t, b.PrometheusHTTP), "campuspulse_dataset_filters_total")
}

func TestInitializeOTelStdoutTracing(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.TelemetryConfig{EnableTracing: true, TraceExporter: "stdout", SampleRatio: 1}

	providers, err := InitializeOTel(cfg, "test", quietLogger(), WithTraceWriter(&buf))
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)

	ctx, span := providers.Tracer.Start(context.Background(), "dataset.load")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	RecordError(ctx, errors.New("parse failure"))
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "dataset.load")
	assert.Contains(t, buf.String(), "parse failure")
}

func TestDatasetMetricsNilSafe(t *testing.T) {
	var m *DatasetMetrics
	assert.NotPanics(t, func() {
		m.RecordLoad(context.Background(), "remote", 1, time.Second, nil)
		m.RecordFilter(context.Background(), 1)
		m.RecordDefaults(context.Background(), map[string]int{"Date": 1})
	})
}

func TestNewHTTPMetrics(t *testing.T) {
	providers, err := InitializeOTel(config.Default().Telemetry, "test", quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	m, err := NewHTTPMetrics(providers.Meter)
	require.NoError(t, err)
	m.RequestsTotal.Add(context.Background(), 1)

	assert.Contains(t, scrape(t, providers.PrometheusHTTP), "http_requests_total")
}

func TestTraceIDFromContextWithoutSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestCollectRuntimeStats(t *testing.T) {
	start := time.Now().Add(-time.Minute)
	stats := CollectRuntimeStats(start)

	assert.Positive(t, stats.GoRoutines)
	assert.Positive(t, stats.CPUCount)
	assert.GreaterOrEqual(t, stats.Uptime, time.Minute)

	formatted := stats.FormatStats()
	assert.Contains(t, formatted, "goroutines")
	assert.Contains(t, formatted, "go_version")
}
