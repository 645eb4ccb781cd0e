package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campuspulse/internal/dataset"
	apierrors "campuspulse/internal/errors"
	"campuspulse/internal/services"
	"campuspulse/internal/shared/testutil"
	api "campuspulse/pkg/contracts/api/v1"
	"campuspulse/pkg/contracts/domain"
)

// MockSurveyService is a mock implementation of SurveyServiceInterface
type MockSurveyService struct {
	mock.Mock
}

func (m *MockSurveyService) Load(ctx context.Context, location string) (*services.LoadResult, error) {
	args := m.Called(location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LoadResult), args.Error(1)
}

func (m *MockSurveyService) Filter(ctx context.Context, criteria domain.FilterCriteria) ([]domain.Record, error) {
	args := m.Called(criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Record), args.Error(1)
}

func (m *MockSurveyService) Data(ctx context.Context) []domain.Record {
	return m.Called().Get(0).([]domain.Record)
}

func (m *MockSurveyService) KPIs(ctx context.Context) domain.KPISummary {
	return m.Called().Get(0).(domain.KPISummary)
}

func (m *MockSurveyService) Facets(ctx context.Context) domain.Facets {
	return m.Called().Get(0).(domain.Facets)
}

func (m *MockSurveyService) Sentiments(ctx context.Context) domain.SentimentBreakdown {
	return m.Called().Get(0).(domain.SentimentBreakdown)
}

func (m *MockSurveyService) FacilityAverages(ctx context.Context) map[string]float64 {
	return m.Called().Get(0).(map[string]float64)
}

func (m *MockSurveyService) Status(ctx context.Context) dataset.Status {
	return m.Called().Get(0).(dataset.Status)
}

func (m *MockSurveyService) ExportCSV(ctx context.Context, w io.Writer) error {
	args := m.Called(w)
	if fn, ok := args.Get(1).(func(io.Writer)); ok {
		fn(w)
	}
	return args.Error(0)
}

const testAllowedDir = "/srv/surveys"

func newTestRouter(t *testing.T, svc SurveyServiceInterface) http.Handler {
	t.Helper()
	return newTestRouterWithDir(t, svc, testAllowedDir)
}

func newTestRouterWithDir(t *testing.T, svc SurveyServiceInterface, allowedDir string) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	h := NewSurveyHandler(svc, allowedDir, logger, apierrors.NewErrorHandler(logger, false))

	r := chi.NewRouter()
	r.Mount("/api/survey", h.Routes())
	return r
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestSurveyHandler_Load(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		location   string
		result     *services.LoadResult
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "embedded on empty body",
			location:   "",
			result:     &services.LoadResult{SourceKind: "embedded", Source: "embedded:campus_survey.csv", Records: 40},
			wantStatus: http.StatusOK,
		},
		{
			name:       "remote location",
			body:       `{"location":"https://data.campus.edu/survey.csv"}`,
			location:   "https://data.campus.edu/survey.csv",
			result:     &services.LoadResult{SourceKind: "remote", Source: "https://data.campus.edu/survey.csv", Records: 12},
			wantStatus: http.StatusOK,
		},
		{
			name:       "network failure",
			body:       `{"location":"https://down.campus.edu/survey.csv"}`,
			location:   "https://down.campus.edu/survey.csv",
			err:        fmt.Errorf("load remote dataset: %w", apierrors.NewNetworkError("failed to fetch survey", errors.New("refused"))),
			wantStatus: http.StatusBadGateway,
			wantType:   apierrors.TypeSourceUnavailable,
		},
		{
			name:       "parse failure",
			body:       `{"location":"/srv/surveys/bad.csv"}`,
			location:   "/srv/surveys/bad.csv",
			err:        fmt.Errorf("load remote dataset: %w", apierrors.NewParsingError("failed to parse survey document", errors.New("bare quote"))),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apierrors.TypeDatasetUnparseable,
		},
		{
			name:       "missing file",
			body:       `{"location":"/srv/surveys/nope.csv"}`,
			location:   "/srv/surveys/nope.csv",
			err:        fmt.Errorf("load remote dataset: %w", apierrors.NewNotFoundError("survey file /srv/surveys/nope.csv", nil)),
			wantStatus: http.StatusNotFound,
			wantType:   apierrors.TypeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockSurveyService{}
			if tt.result != nil {
				svc.On("Load", tt.location).Return(tt.result, nil)
			} else {
				svc.On("Load", tt.location).Return(nil, tt.err)
			}

			rec := doRequest(t, newTestRouter(t, svc), http.MethodPost, "/api/survey/load", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.result != nil {
				var resp api.LoadResponse
				decode(t, rec, &resp)
				assert.Equal(t, "success", resp.Status)
				assert.Equal(t, tt.result.Records, resp.Records)
				assert.Equal(t, tt.result.Source, resp.Source)
			} else {
				var problem map[string]interface{}
				decode(t, rec, &problem)
				assert.Equal(t, tt.wantType, problem["type"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestSurveyHandler_LoadRejectsFilesOutsideAllowedDir(t *testing.T) {
	allowed := t.TempDir()
	secret := testutil.WriteFile(t, "secret.txt", "Name,Comment\nroot,hunter2-password\n")

	tests := []struct {
		name       string
		allowedDir string
		location   string
	}{
		{"no allowed dir", "", secret},
		{"outside allowed dir", allowed, secret},
		{"missing system path", allowed, "/etc/does-not-exist"},
		{"system directory", allowed, "/etc"},
		{"file url outside", allowed, "file://" + secret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockSurveyService{}
			router := newTestRouterWithDir(t, svc, tt.allowedDir)

			body, err := json.Marshal(api.LoadRequest{Location: tt.location})
			require.NoError(t, err)
			rec := doRequest(t, router, http.MethodPost, "/api/survey/load", string(body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var problem map[string]interface{}
			decode(t, rec, &problem)
			assert.Equal(t, apierrors.TypeValidation, problem["type"])
			assert.NotContains(t, rec.Body.String(), "hunter2")
			svc.AssertNotCalled(t, "Load", mock.Anything)
		})
	}
}

func TestSurveyHandler_LoadsFileInsideAllowedDir(t *testing.T) {
	allowed := t.TempDir()
	src := filepath.Join(allowed, "survey.csv")
	require.NoError(t, os.WriteFile(src, []byte(testutil.SurveyCSV), 0o644))

	logger, _ := testutil.NewTestLogger(t)
	store := dataset.New(dataset.WithLogger(logger))
	router := newTestRouterWithDir(t, services.NewSurveyService(store, "", logger), allowed)

	body, err := json.Marshal(api.LoadRequest{Location: src})
	require.NoError(t, err)
	rec := doRequest(t, router, http.MethodPost, "/api/survey/load", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp api.LoadResponse
	decode(t, rec, &resp)
	assert.Equal(t, src, resp.Source)
	assert.Positive(t, resp.Records)
}

func TestSurveyHandler_LoadRejectsBadInput(t *testing.T) {
	svc := &MockSurveyService{}
	router := newTestRouter(t, svc)

	rec := doRequest(t, router, http.MethodPost, "/api/survey/load", `{"location":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/survey/load", `{"location":"ftp://host/survey.csv"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "location")

	svc.AssertNotCalled(t, "Load", mock.Anything)
}

func TestSurveyHandler_Records(t *testing.T) {
	records := testutil.SampleRecords()[:2]

	tests := []struct {
		name     string
		query    string
		criteria domain.FilterCriteria
	}{
		{"defaults", "", domain.DefaultCriteria()},
		{"facility", "?facility=Library", domain.FilterCriteria{Facility: "Library", Department: "All", Year: "All"}},
		{"all predicates", "?facility=Gym&department=Engineering&year=3&min_rating=2",
			domain.FilterCriteria{Facility: "Gym", Department: "Engineering", Year: "3", MinRating: 2}},
		{"explicit wildcard", "?facility=All&min_rating=-1", domain.FilterCriteria{Facility: "All", Department: "All", Year: "All", MinRating: -1}},
		{"rating beyond int32", "?min_rating=3000000000", domain.FilterCriteria{Facility: "All", Department: "All", Year: "All", MinRating: 3000000000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockSurveyService{}
			svc.On("Filter", tt.criteria).Return(records, nil)

			rec := doRequest(t, newTestRouter(t, svc), http.MethodGet, "/api/survey/records"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code)

			var resp api.RecordsResponse
			decode(t, rec, &resp)
			assert.Equal(t, 2, resp.Count)
			assert.Equal(t, records, resp.Data)
			svc.AssertExpectations(t)
		})
	}
}

func TestSurveyHandler_RecordsInvalidMinRating(t *testing.T) {
	svc := &MockSurveyService{}

	for _, q := range []string{"min_rating=high", "min_rating=3.5", "min_rating=99999999999999999999"} {
		rec := doRequest(t, newTestRouter(t, svc), http.MethodGet, "/api/survey/records?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)

		var problem map[string]interface{}
		decode(t, rec, &problem)
		assert.Equal(t, apierrors.TypeValidation, problem["type"])
		assert.Equal(t, "VALIDATION_FAILED", problem["error_code"])
	}
	svc.AssertNotCalled(t, "Filter", mock.Anything)
}

func TestSurveyHandler_RecordsEmptyResult(t *testing.T) {
	svc := &MockSurveyService{}
	svc.On("Filter", mock.Anything).Return([]domain.Record{}, nil)

	rec := doRequest(t, newTestRouter(t, svc), http.MethodGet, "/api/survey/records?facility=Pool", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
	assert.Contains(t, rec.Body.String(), `"count":0`)
}

func TestSurveyHandler_Views(t *testing.T) {
	svc := &MockSurveyService{}
	svc.On("Data").Return(testutil.SampleRecords())
	svc.On("KPIs").Return(domain.KPISummary{Total: 3, AverageRating: 3.3, BestFacility: "Library", WorstFacility: "Gym"})
	svc.On("Facets").Return(domain.Facets{Facilities: []string{"Gym", "Library"}, Departments: []string{"CS"}, Years: []string{"2"}})
	svc.On("Sentiments").Return(domain.SentimentBreakdown{Positive: 1, Negative: 1, Neutral: 1})
	svc.On("FacilityAverages").Return(map[string]float64{"Library": 4.5, "Gym": 1})
	svc.On("Status").Return(dataset.Status{Loaded: true, SourceKind: "embedded", Records: 3, ActiveRecords: 3})
	router := newTestRouter(t, svc)

	rec := doRequest(t, router, http.MethodGet, "/api/survey/data", "")
	var data api.RecordsResponse
	decode(t, rec, &data)
	assert.Equal(t, 3, data.Count)

	rec = doRequest(t, router, http.MethodGet, "/api/survey/kpis", "")
	assert.JSONEq(t, `{"total":3,"averageRating":3.3,"bestFacility":"Library","worstFacility":"Gym"}`, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/api/survey/facets", "")
	assert.JSONEq(t, `{"facilities":["Gym","Library"],"departments":["CS"],"years":["2"]}`, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/api/survey/sentiments", "")
	assert.JSONEq(t, `{"positive":1,"negative":1,"neutral":1}`, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/api/survey/facility-averages", "")
	assert.JSONEq(t, `{"Library":4.5,"Gym":1}`, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/api/survey/status", "")
	var st dataset.Status
	decode(t, rec, &st)
	assert.True(t, st.Loaded)

	svc.AssertExpectations(t)
}

func TestSurveyHandler_ExportCSV(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &MockSurveyService{}
		svc.On("ExportCSV", mock.Anything).Return(nil, func(w io.Writer) {
			_, _ = io.WriteString(w, "Name,Facility\nAisha,Library\n")
		})

		rec := doRequest(t, newTestRouter(t, svc), http.MethodGet, "/api/survey/export.csv", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), ExportFilename)
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("Name,Facility")))
	})

	t.Run("not loaded", func(t *testing.T) {
		svc := &MockSurveyService{}
		svc.On("ExportCSV", mock.Anything).Return(services.ErrDatasetNotLoaded, nil)

		rec := doRequest(t, newTestRouter(t, svc), http.MethodGet, "/api/survey/export.csv", "")
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), apierrors.CodeDatasetNotLoaded)
	})
}

func TestSurveyHandler_EndToEnd(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	store := dataset.New(dataset.WithLogger(logger))
	router := newTestRouter(t, services.NewSurveyService(store, "", logger))

	rec := doRequest(t, router, http.MethodPost, "/api/survey/load", `{"location":""}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/api/survey/facets", "")
	var facets domain.Facets
	decode(t, rec, &facets)
	require.NotEmpty(t, facets.Facilities)

	rec = doRequest(t, router, http.MethodGet, "/api/survey/records?facility="+facets.Facilities[0], "")
	var view api.RecordsResponse
	decode(t, rec, &view)
	require.NotZero(t, view.Count)

	rec = doRequest(t, router, http.MethodGet, "/api/survey/kpis", "")
	var kpis domain.KPISummary
	decode(t, rec, &kpis)
	assert.Equal(t, view.Count, kpis.Total)
	assert.Equal(t, facets.Facilities[0], kpis.BestFacility)

	rec = doRequest(t, router, http.MethodGet, "/api/survey/export.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, view.Count+1)
}
