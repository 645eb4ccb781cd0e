package services

import (
	"testing"

	"github.com/stretchr/testify/mock"

	"campuspulse/internal/dataset"
	"campuspulse/internal/shared/testutil"
)

// MockDatasetStatus is a mock for the DatasetStatus interface
type MockDatasetStatus struct {
	mock.Mock
}

func (m *MockDatasetStatus) Status() dataset.Status {
	args := m.Called()
	return args.Get(0).(dataset.Status)
}

func newSurveyService(t *testing.T, defaultSource string) (*SurveyService, *dataset.Store, *testutil.CaptureHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	store := dataset.New(dataset.WithLogger(logger))
	return NewSurveyService(store, defaultSource, logger), store, logs
}
