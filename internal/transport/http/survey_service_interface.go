package http

import (
	"context"
	"io"

	"campuspulse/internal/dataset"
	"campuspulse/internal/services"
	"campuspulse/pkg/contracts/domain"
)

// SurveyServiceInterface defines the survey operations the handler needs.
type SurveyServiceInterface interface {
	Load(ctx context.Context, location string) (*services.LoadResult, error)
	Filter(ctx context.Context, criteria domain.FilterCriteria) ([]domain.Record, error)
	Data(ctx context.Context) []domain.Record
	KPIs(ctx context.Context) domain.KPISummary
	Facets(ctx context.Context) domain.Facets
	Sentiments(ctx context.Context) domain.SentimentBreakdown
	FacilityAverages(ctx context.Context) map[string]float64
	Status(ctx context.Context) dataset.Status
	ExportCSV(ctx context.Context, w io.Writer) error
}
