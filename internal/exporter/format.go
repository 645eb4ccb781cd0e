package exporter

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"campuspulse/pkg/contracts/domain"
)

// Format is an export document format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatForPath picks the export format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q: use .csv or .xlsx", filepath.Ext(path))
	}
}

// Headers returns the export column order: the survey fields followed by
// Sentiment.
func Headers() []string {
	return append(append([]string(nil), domain.SurveyFields...), "Sentiment")
}

// recordRow renders r in Headers order.
func recordRow(r domain.Record) []string {
	return []string{
		r.Name,
		r.Facility,
		r.Department,
		r.Year,
		formatInt(r.Rating),
		r.Comment,
		r.Date,
		r.Sentiment.String(),
	}
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatFloat formats with one decimal place, matching KPI rounding.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}
