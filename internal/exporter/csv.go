package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"campuspulse/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_exporter"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix  bool // Add UTF-8 BOM for Excel compatibility
	OmitHeader bool
}

// WriteCSV writes records to w with the export header.
func (w *CSVWriter) WriteCSV(out io.Writer, records []domain.Record, options WriteOptions) error {
	w.logger.Debug("Writing CSV export", slog.Int("record_count", len(records)))

	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if !options.OmitHeader {
		if err := writer.Write(Headers()); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, r := range records {
		if err := writer.Write(recordRow(r)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes records to filePath, creating parent directories and
// replacing any existing file.
func (w *CSVWriter) WriteCSVFile(filePath string, records []domain.Record, options WriteOptions) error {
	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(records)))

	file, err := createFile(filePath)
	if err != nil {
		return err
	}
	if err := w.WriteCSV(file, records, options); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// StreamWriter writes records one at a time.
type StreamWriter struct {
	writer *csv.Writer
	count  int
}

// NewStreamWriter writes the BOM (if requested) and header to out and returns
// a writer for the rows.
func NewStreamWriter(out io.Writer, bom bool) (*StreamWriter, error) {
	if bom {
		if _, err := out.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}
	writer := csv.NewWriter(out)
	if err := writer.Write(Headers()); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}
	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(r domain.Record) error {
	if err := s.writer.Write(recordRow(r)); err != nil {
		return err
	}
	s.count++
	return nil
}

// Count returns the number of records written.
func (s *StreamWriter) Count() int { return s.count }

// Flush flushes buffered rows and reports any write error.
func (s *StreamWriter) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}

func createFile(filePath string) (*os.File, error) {
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return file, nil
}
