package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"campuspulse/internal/config"
)

const (
	ServiceName         = "campuspulse"
	InstrumentationName = "campuspulse"
)

// OTelProviders holds the OpenTelemetry providers. Tracer and Meter are
// always usable; they are no-ops when the matching signal is disabled.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// OTelOption customizes InitializeOTel.
type OTelOption func(*otelOptions)

type otelOptions struct {
	traceWriter io.Writer
}

// WithTraceWriter redirects the stdout trace exporter.
func WithTraceWriter(w io.Writer) OTelOption {
	return func(o *otelOptions) { o.traceWriter = w }
}

// InitializeOTel sets up tracing and metrics according to cfg. Metrics are
// exported through a private Prometheus registry served by PrometheusHTTP,
// so several instances can coexist in one process.
func InitializeOTel(cfg config.TelemetryConfig, version string, logger *slog.Logger, opts ...OTelOption) (*OTelProviders, error) {
	o := otelOptions{traceWriter: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	ctx := context.Background()

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", ServiceName),
		slog.String("version", version),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(version),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	)

	providers := &OTelProviders{
		Tracer: tracenoop.NewTracerProvider().Tracer(InstrumentationName),
		Meter:  metricnoop.NewMeterProvider().Meter(InstrumentationName),
		Logger: logger,
	}

	if cfg.EnableTracing && cfg.TraceExporter == "stdout" {
		exporter, err := stdouttrace.New(
			stdouttrace.WithWriter(o.traceWriter),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		)
		providers.TracerProvider = tp
		providers.Tracer = tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(version))
		otel.SetTracerProvider(tp)
	}

	if cfg.EnableMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(InstrumentationName, metric.WithInstrumentationVersion(version))
		providers.Registry = reg
		providers.PrometheusHTTP = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

// Shutdown flushes and stops the providers.
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

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// HTTPMetrics holds the request instruments used by the HTTP middleware.
type HTTPMetrics struct {
	RequestsTotal   metric.Int64Counter
	RequestDuration metric.Float64Histogram
	ActiveRequests  metric.Int64UpDownCounter
}

// NewHTTPMetrics creates the HTTP request instruments.
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requestsTotal, err := meter.Int64Counter(
		"http_requests",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http_request_duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		RequestsTotal:   requestsTotal,
		RequestDuration: requestDuration,
		ActiveRequests:  activeRequests,
	}, nil
}

// DatasetMetrics holds the survey dataset instruments.
type DatasetMetrics struct {
	LoadsTotal      metric.Int64Counter
	LoadDuration    metric.Float64Histogram
	RecordsLoaded   metric.Int64Gauge
	FiltersTotal    metric.Int64Counter
	ActiveViewSize  metric.Int64Gauge
	DefaultedFields metric.Int64Counter
}

// NewDatasetMetrics creates the dataset instruments.
func NewDatasetMetrics(meter metric.Meter) (*DatasetMetrics, error) {
	loadsTotal, err := meter.Int64Counter(
		"campuspulse_dataset_loads",
		metric.WithDescription("Dataset loads by source kind and outcome"),
	)
	if err != nil {
		return nil, err
	}

	loadDuration, err := meter.Float64Histogram(
		"campuspulse_dataset_load_duration",
		metric.WithDescription("Dataset load duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	recordsLoaded, err := meter.Int64Gauge(
		"campuspulse_dataset_records",
		metric.WithDescription("Number of records in the loaded dataset"),
	)
	if err != nil {
		return nil, err
	}

	filtersTotal, err := meter.Int64Counter(
		"campuspulse_dataset_filters",
		metric.WithDescription("Number of filter applications"),
	)
	if err != nil {
		return nil, err
	}

	activeViewSize, err := meter.Int64Gauge(
		"campuspulse_dataset_active_view_records",
		metric.WithDescription("Number of records in the active view"),
	)
	if err != nil {
		return nil, err
	}

	defaultedFields, err := meter.Int64Counter(
		"campuspulse_dataset_defaulted_fields",
		metric.WithDescription("Fields that fell back to a default during normalization"),
	)
	if err != nil {
		return nil, err
	}

	return &DatasetMetrics{
		LoadsTotal:      loadsTotal,
		LoadDuration:    loadDuration,
		RecordsLoaded:   recordsLoaded,
		FiltersTotal:    filtersTotal,
		ActiveViewSize:  activeViewSize,
		DefaultedFields: defaultedFields,
	}, nil
}

// RecordLoad records one load attempt. records is ignored on failure.
func (m *DatasetMetrics) RecordLoad(ctx context.Context, sourceKind string, records int, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("source", sourceKind),
		attribute.String("status", status),
	)

	m.LoadsTotal.Add(ctx, 1, attrs)
	m.LoadDuration.Record(ctx, duration.Seconds(), attrs)
	if err == nil {
		m.RecordsLoaded.Record(ctx, int64(records))
		m.ActiveViewSize.Record(ctx, int64(records))
	}
}

// RecordDefaults adds per-field default counts from a normalization pass.
func (m *DatasetMetrics) RecordDefaults(ctx context.Context, defaulted map[string]int) {
	if m == nil {
		return
	}
	for field, n := range defaulted {
		m.DefaultedFields.Add(ctx, int64(n), metric.WithAttributes(attribute.String("field", field)))
	}
}

// RecordFilter records a filter application and the resulting view size.
func (m *DatasetMetrics) RecordFilter(ctx context.Context, matched int) {
	if m == nil {
		return
	}
	m.FiltersTotal.Add(ctx, 1)
	m.ActiveViewSize.Record(ctx, int64(matched))
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}
