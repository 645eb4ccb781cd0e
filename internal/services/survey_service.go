package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"campuspulse/data"
	"campuspulse/internal/dataset"
	"campuspulse/internal/exporter"
	"campuspulse/internal/validation"
	"campuspulse/pkg/contracts/domain"
)

// SurveyService exposes the survey dataset to handlers and the CLI. It owns
// source selection; the store owns state.
type SurveyService struct {
	store         *dataset.Store
	defaultSource string
	csv           *exporter.CSVWriter
	paths         *validation.PathValidator
	logger        *slog.Logger
}

// LoadResult describes a completed load.
type LoadResult struct {
	SourceKind string
	Source     string
	Records    int
	// Skipped is set by LoadInitial when a dataset was already present.
	Skipped bool
}

// NewSurveyService creates a survey service over store. defaultSource is
// loaded when a load request names no location; when it is empty too, the
// embedded survey is used.
func NewSurveyService(store *dataset.Store, defaultSource string, logger *slog.Logger) *SurveyService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "survey_service"))

	return &SurveyService{
		store:         store,
		defaultSource: strings.TrimSpace(defaultSource),
		csv:           exporter.NewCSVWriter(logger),
		paths:         validation.NewPathValidator(logger),
		logger:        logger,
	}
}

// ResolveSource picks the source for location.
func (s *SurveyService) ResolveSource(location string) (dataset.Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		location = s.defaultSource
	}
	if location == "" || location == data.EmbeddedLocation {
		rows, err := data.EmbeddedRows()
		if err != nil {
			return nil, fmt.Errorf("embedded survey: %w", err)
		}
		return dataset.EmbeddedSource{Rows: rows, Name: data.EmbeddedLocation}, nil
	}
	return dataset.RemoteSource{Location: location}, nil
}

// Load replaces the dataset with the survey at location.
func (s *SurveyService) Load(ctx context.Context, location string) (*LoadResult, error) {
	src, err := s.ResolveSource(location)
	if err != nil {
		return nil, err
	}

	records, err := s.store.Load(ctx, src)
	if err != nil {
		return nil, err
	}

	return &LoadResult{
		SourceKind: src.Kind(),
		Source:     src.Describe(),
		Records:    len(records),
	}, nil
}

// LoadInitial loads location only while no dataset is present, so it never
// replaces a dataset loaded by a client.
func (s *SurveyService) LoadInitial(ctx context.Context, location string) (*LoadResult, error) {
	src, err := s.ResolveSource(location)
	if err != nil {
		return nil, err
	}

	records, loaded, err := s.store.LoadIfEmpty(ctx, src)
	if err != nil {
		return nil, err
	}
	return &LoadResult{
		SourceKind: src.Kind(),
		Source:     src.Describe(),
		Records:    len(records),
		Skipped:    !loaded,
	}, nil
}

// Filter applies criteria to the full dataset and returns the new view.
func (s *SurveyService) Filter(ctx context.Context, criteria domain.FilterCriteria) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Filter(criteria), nil
}

// Data returns the current view without refiltering.
func (s *SurveyService) Data(ctx context.Context) []domain.Record {
	return s.store.Data()
}

// KPIs summarizes the current view.
func (s *SurveyService) KPIs(ctx context.Context) domain.KPISummary {
	return s.store.KPIs()
}

// Facets lists the filter values present in the dataset.
func (s *SurveyService) Facets(ctx context.Context) domain.Facets {
	return s.store.Facets()
}

// Sentiments counts the sentiment labels of the current view.
func (s *SurveyService) Sentiments(ctx context.Context) domain.SentimentBreakdown {
	return s.store.Sentiments()
}

// FacilityAverages returns the mean rating of each facility in the current view.
func (s *SurveyService) FacilityAverages(ctx context.Context) map[string]float64 {
	return s.store.FacilityAverages()
}

// Status reports what is loaded.
func (s *SurveyService) Status(ctx context.Context) dataset.Status {
	return s.store.Status()
}

// ExportCSV writes the current view to w as CSV with a BOM.
func (s *SurveyService) ExportCSV(ctx context.Context, w io.Writer) error {
	if !s.store.Status().Loaded {
		return ErrDatasetNotLoaded
	}
	records := s.store.Data()
	if err := s.csv.WriteCSV(w, records, exporter.WriteOptions{BOMPrefix: true}); err != nil {
		s.logger.ErrorContext(ctx, "csv export failed", slog.String("error", err.Error()))
		return fmt.Errorf("export csv: %w", err)
	}
	s.logger.InfoContext(ctx, "csv export written", slog.Int("records", len(records)))
	return nil
}

// ExportFile writes the current view to path; the extension selects CSV or XLSX.
func (s *SurveyService) ExportFile(ctx context.Context, path string) error {
	if !s.store.Status().Loaded {
		return ErrDatasetNotLoaded
	}
	if _, err := exporter.FormatForPath(path); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.paths.ValidateExportPath(path); err != nil {
		return err
	}
	return exporter.ExportFile(path, s.store.Data(), s.logger)
}
