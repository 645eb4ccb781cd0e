// Package dataset owns the in-memory survey dataset: the records of the last
// successful load and the active view produced by the most recent filter.
package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"campuspulse/internal/dataprocessing"
	apierrors "campuspulse/internal/errors"
	"campuspulse/internal/infrastructure"
	"campuspulse/pkg/contracts/domain"
)

// DefaultMaxDocumentBytes caps remote survey documents unless overridden.
const DefaultMaxDocumentBytes = 32 << 20

// Status describes the store for health and status reports.
type Status struct {
	Loaded        bool      `json:"loaded"`
	SourceKind    string    `json:"source_kind,omitempty"`
	Source        string    `json:"source,omitempty"`
	Records       int       `json:"records"`
	ActiveRecords int       `json:"active_records"`
	LoadedAt      time.Time `json:"loaded_at"`
}

// Store holds allRecords and activeView. All methods are safe for
// concurrent use; loads are serialized and a failed load leaves the previous
// state in place. Every slice it returns is a copy.
type Store struct {
	mu       sync.RWMutex
	all      []domain.Record
	view     []domain.Record
	loaded   bool
	kind     string
	source   string
	loadedAt time.Time

	loadMu sync.Mutex

	fetcher fetcher
	logger  *slog.Logger
	metrics *infrastructure.DatasetMetrics
	tracer  trace.Tracer
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithMetrics records loads and filters on m.
func WithMetrics(m *infrastructure.DatasetMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithTracer traces loads with t.
func WithTracer(t trace.Tracer) Option {
	return func(s *Store) { s.tracer = t }
}

// WithHTTPClient sets the client used for http(s) sources.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) { s.fetcher.client = c }
}

// WithMaxDocumentBytes caps the size of remote documents.
func WithMaxDocumentBytes(n int64) Option {
	return func(s *Store) { s.fetcher.maxBytes = n }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		all:  []domain.Record{},
		view: []domain.Record{},
		fetcher: fetcher{
			client:   http.DefaultClient,
			maxBytes: DefaultMaxDocumentBytes,
		},
		logger: slog.Default(),
		tracer: noop.NewTracerProvider().Tracer("dataset"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "dataset_store"))
	return s
}

// Load acquires rows from src, normalizes them and replaces the dataset:
// allRecords becomes the new records and activeView a copy of them. It
// returns the loaded records.
func (s *Store) Load(ctx context.Context, src Source) ([]domain.Record, error) {
	if src == nil {
		return nil, apierrors.NewAppValidationError("dataset source is nil")
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	return s.load(ctx, src)
}

// LoadIfEmpty is Load for a store that holds no dataset yet. When a dataset
// is already loaded, or another load commits first, it leaves the store
// untouched and reports false.
func (s *Store) LoadIfEmpty(ctx context.Context, src Source) ([]domain.Record, bool, error) {
	if src == nil {
		return nil, false, apierrors.NewAppValidationError("dataset source is nil")
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		s.logger.InfoContext(ctx, "dataset already loaded, skipping",
			slog.String("source", src.Describe()))
		return nil, false, nil
	}

	records, err := s.load(ctx, src)
	if err != nil {
		return nil, false, err
	}
	return records, true, nil
}

// load runs with loadMu held.
func (s *Store) load(ctx context.Context, src Source) ([]domain.Record, error) {
	ctx, span := s.tracer.Start(ctx, "dataset.Load", trace.WithAttributes(
		attribute.String("dataset.source.kind", src.Kind()),
		attribute.String("dataset.source", src.Describe()),
	))
	defer span.End()

	start := time.Now()
	rows, err := src.rows(ctx, &s.fetcher)
	if err != nil {
		s.metrics.RecordLoad(ctx, src.Kind(), 0, time.Since(start), err)
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("source_kind", src.Kind()),
			slog.String("source", src.Describe()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("load %s dataset: %w", src.Kind(), err)
	}

	records, report := dataprocessing.NormalizeWithReport(rows)

	s.mu.Lock()
	s.all = records
	s.view = clone(records)
	s.loaded = true
	s.kind = src.Kind()
	s.source = src.Describe()
	s.loadedAt = time.Now()
	s.mu.Unlock()

	duration := time.Since(start)
	s.metrics.RecordLoad(ctx, src.Kind(), len(records), duration, nil)
	s.metrics.RecordDefaults(ctx, report.Defaulted)
	span.SetAttributes(attribute.Int("dataset.records", len(records)))

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("source_kind", src.Kind()),
		slog.String("source", src.Describe()),
		slog.Int("records", len(records)),
		slog.Any("defaulted", report.Defaulted),
		slog.Duration("duration", duration))

	return clone(records), nil
}

// Filter re-derives activeView from allRecords and returns it. The previous
// view never feeds into the result.
func (s *Store) Filter(criteria domain.FilterCriteria) []domain.Record {
	s.mu.Lock()
	s.view = dataprocessing.FilterRecords(s.all, criteria)
	out := clone(s.view)
	s.mu.Unlock()

	s.metrics.RecordFilter(context.Background(), len(out))
	s.logger.Debug("filter applied",
		slog.String("facility", criteria.Facility),
		slog.String("department", criteria.Department),
		slog.String("year", criteria.Year),
		slog.Int("min_rating", criteria.MinRating),
		slog.Int("matched", len(out)))
	return out
}

// KPIs summarizes activeView.
func (s *Store) KPIs() domain.KPISummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dataprocessing.ComputeKPIs(s.view)
}

// Data returns activeView.
func (s *Store) Data() []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.view)
}

// All returns allRecords.
func (s *Store) All() []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.all)
}

// Facets lists the distinct filter values of allRecords.
func (s *Store) Facets() domain.Facets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dataprocessing.ComputeFacets(s.all)
}

// Sentiments counts the sentiment labels of activeView.
func (s *Store) Sentiments() domain.SentimentBreakdown {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dataprocessing.CountSentiments(s.view)
}

// FacilityAverages returns the mean rating per facility of activeView.
func (s *Store) FacilityAverages() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dataprocessing.FacilityAverages(s.view)
}

// Status reports what is loaded.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		Loaded:        s.loaded,
		SourceKind:    s.kind,
		Source:        s.source,
		Records:       len(s.all),
		ActiveRecords: len(s.view),
		LoadedAt:      s.loadedAt,
	}
}

func clone(records []domain.Record) []domain.Record {
	out := make([]domain.Record, len(records))
	copy(out, records)
	return out
}
