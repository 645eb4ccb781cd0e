package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "campuspulse/internal/errors"
	mw "campuspulse/internal/middleware"
	"campuspulse/internal/services"
	"campuspulse/internal/validation"
	api "campuspulse/pkg/contracts/api/v1"
	"campuspulse/pkg/contracts/domain"
)

// ExportFilename is the download name of the CSV export.
const ExportFilename = "campus_survey.csv"

const maxFacetLength = 256

// SurveyHandler handles survey HTTP requests with RFC 7807 errors.
type SurveyHandler struct {
	service      SurveyServiceInterface
	sources      *validation.PathValidator
	allowedDir   string
	validator    *mw.Validator
	query        *mw.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewSurveyHandler creates a new survey handler. Load requests may name local
// files only under allowedDir.
func NewSurveyHandler(service SurveyServiceInterface, allowedDir string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SurveyHandler {
	return &SurveyHandler{
		service:      service,
		sources:      validation.NewPathValidator(logger),
		allowedDir:   allowedDir,
		validator:    mw.NewValidator(logger, errorHandler),
		query:        mw.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "survey_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the survey routes
func (h *SurveyHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.With(h.validator.ValidateRequest).Post("/load", h.Load)
	r.Get("/records", h.Records)
	r.Get("/data", h.Data)
	r.Get("/kpis", h.KPIs)
	r.Get("/facets", h.Facets)
	r.Get("/sentiments", h.Sentiments)
	r.Get("/facility-averages", h.FacilityAverages)
	r.Get("/status", h.Status)
	r.Get("/export.csv", h.ExportCSV)

	return r
}

// Load handles POST /api/survey/load. An empty body or location loads the
// default source.
func (h *SurveyHandler) Load(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoadRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if err := h.sources.ValidateRequestedSource(req.Location, h.allowedDir); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "loading survey dataset",
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.String("location", req.Location))

	result, err := h.service.Load(ctx, req.Location)
	if err != nil {
		if errors.Is(err, apierrors.KindNetwork) || errors.Is(err, apierrors.KindParsing) {
			err = apierrors.ErrDatasetLoad(err)
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.LoadResponse{
		Status:  "success",
		Source:  result.Source,
		Records: result.Records,
	})
}

// Records handles GET /api/survey/records: it filters the dataset by the
// query predicates and returns the new view.
func (h *SurveyHandler) Records(w http.ResponseWriter, r *http.Request) {
	var q api.FilterQuery
	var ok bool

	if q.Facility, ok = h.query.ValidateString(w, r, "facility", maxFacetLength, domain.FilterAll); !ok {
		return
	}
	if q.Department, ok = h.query.ValidateString(w, r, "department", maxFacetLength, domain.FilterAll); !ok {
		return
	}
	if q.Year, ok = h.query.ValidateString(w, r, "year", maxFacetLength, domain.FilterAll); !ok {
		return
	}
	if q.MinRating, ok = h.query.ValidateInt(w, r, "min_rating", math.MinInt, math.MaxInt, 0); !ok {
		return
	}

	records, err := h.service.Filter(r.Context(), q.Criteria())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.RecordsResponse{
		Status: "success",
		Data:   records,
		Count:  len(records),
	})
}

// Data handles GET /api/survey/data: the current view, unfiltered.
func (h *SurveyHandler) Data(w http.ResponseWriter, r *http.Request) {
	records := h.service.Data(r.Context())
	render.JSON(w, r, api.RecordsResponse{
		Status: "success",
		Data:   records,
		Count:  len(records),
	})
}

// KPIs handles GET /api/survey/kpis
func (h *SurveyHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.KPIs(r.Context()))
}

// Facets handles GET /api/survey/facets
func (h *SurveyHandler) Facets(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Facets(r.Context()))
}

// Sentiments handles GET /api/survey/sentiments
func (h *SurveyHandler) Sentiments(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Sentiments(r.Context()))
}

// FacilityAverages handles GET /api/survey/facility-averages
func (h *SurveyHandler) FacilityAverages(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.FacilityAverages(r.Context()))
}

// Status handles GET /api/survey/status
func (h *SurveyHandler) Status(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Status(r.Context()))
}

// ExportCSV handles GET /api/survey/export.csv
func (h *SurveyHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.ExportCSV(r.Context(), &buf); err != nil {
		if errors.Is(err, services.ErrDatasetNotLoaded) {
			h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotLoaded())
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export response write failed", slog.String("error", err.Error()))
	}
}
