package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"campuspulse/internal/dataprocessing"
	"campuspulse/pkg/contracts/domain"
)

const (
	ResponsesSheet = "Responses"
	SummarySheet   = "Summary"
)

// WriteXLSX writes records and their summary as a workbook to out.
func WriteXLSX(out io.Writer, records []domain.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ResponsesSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeResponses(f, records); err != nil {
		return err
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	if err := writeSummary(f, records); err != nil {
		return err
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeResponses(f *excelize.File, records []domain.Record) error {
	header := make([]any, 0, len(Headers()))
	for _, h := range Headers() {
		header = append(header, h)
	}
	if err := f.SetSheetRow(ResponsesSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{r.Name, r.Facility, r.Department, r.Year, r.Rating, r.Comment, r.Date, r.Sentiment.String()}
		if err := f.SetSheetRow(ResponsesSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if len(records) > 0 {
		last, err := excelize.CoordinatesToCellName(len(Headers()), len(records)+1)
		if err != nil {
			return err
		}
		if err := f.AutoFilter(ResponsesSheet, "A1:"+last, nil); err != nil {
			return fmt.Errorf("failed to add filter: %w", err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, records []domain.Record) error {
	kpis := dataprocessing.ComputeKPIs(records)
	sentiments := dataprocessing.CountSentiments(records)

	rows := [][]any{
		{"Metric", "Value"},
		{"Total responses", kpis.Total},
		{"Average rating", formatFloat(kpis.AverageRating)},
		{"Best facility", kpis.BestFacility},
		{"Worst facility", kpis.WorstFacility},
		{"Positive", sentiments.Positive},
		{"Negative", sentiments.Negative},
		{"Neutral", sentiments.Neutral},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(SummarySheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return nil
}

// ExportFile writes records to path in the format its extension names.
func ExportFile(path string, records []domain.Record, logger *slog.Logger) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	if format == FormatCSV {
		return NewCSVWriter(logger).WriteCSVFile(path, records, WriteOptions{BOMPrefix: true})
	}

	file, err := createFile(path)
	if err != nil {
		return err
	}
	if err := WriteXLSX(file, records); err != nil {
		file.Close()
		return err
	}
	if logger != nil {
		logger.Info("Wrote XLSX file", slog.String("file_path", path), slog.Int("record_count", len(records)))
	}
	return file.Close()
}
