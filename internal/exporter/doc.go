// Package exporter writes survey records back out as CSV or XLSX documents.
//
// CSV output uses the survey header order followed by the derived
// Sentiment column, optionally prefixed with a UTF-8 BOM so spreadsheet
// applications detect the encoding. XLSX output holds the records on a
// "Responses" sheet and the KPI and sentiment summary of the same records on
// a "Summary" sheet.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(logger)
//	err := w.WriteCSV(rw, store.Data(), exporter.WriteOptions{BOMPrefix: true})
//
//	err = exporter.ExportFile("reports/library.xlsx", store.Data(), logger)
package exporter
