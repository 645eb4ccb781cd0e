// Package data bundles the offline campus survey used when no remote
// source is configured.
package data

import (
	"bytes"
	_ "embed"

	"campuspulse/internal/dataprocessing"
	"campuspulse/pkg/contracts/domain"
)

//go:embed campus_survey.csv
var surveyCSV []byte

// EmbeddedLocation names the bundled survey in logs and status reports.
const EmbeddedLocation = "embedded:campus_survey.csv"

// EmbeddedRows parses the bundled survey. Each call returns fresh rows.
func EmbeddedRows() ([]domain.RawRow, error) {
	return dataprocessing.ParseCSV(bytes.NewReader(surveyCSV))
}
