package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"campuspulse/pkg/contracts/domain"
)

// Format identifies the document format of a survey export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// utf8BOM is stripped from the start of CSV documents exported by Excel.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// numericPattern matches the strings that are inferred as numbers.
var numericPattern = regexp.MustCompile(`^\s*-?(\d+\.?|\.\d+|\d+\.\d+)([eE][-+]?\d+)?\s*$`)

// maxExactFloat bounds inferred numbers to those a float64 holds exactly;
// larger numerals stay strings.
const maxExactFloat = 1 << 53

// FormatFromLocation picks the format from a file name or URL path.
// Anything that is not an .xlsx workbook is treated as CSV.
func FormatFromLocation(location string) Format {
	p := location
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if strings.EqualFold(path.Ext(p), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Parse reads a survey document of the given format.
func Parse(r io.Reader, format Format) ([]domain.RawRow, error) {
	switch format {
	case FormatXLSX:
		return ParseXLSX(r)
	case FormatCSV, "":
		return ParseCSV(r)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// ParseCSV reads a CSV document whose first row holds the field names.
// Blank lines are skipped and cell values are type-inferred with InferValue.
// Rows shorter than the header simply lack the trailing fields.
func ParseCSV(r io.Reader) ([]domain.RawRow, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV content: %w", err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []domain.RawRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	header = normalizeHeader(header)

	rows := []domain.RawRow{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", len(rows)+1, err)
		}
		if isBlankRecord(record) {
			continue
		}
		rows = append(rows, buildRow(header, record))
	}
	return rows, nil
}

// ParseXLSX reads the first sheet of a workbook. The first non-blank row
// holds the field names; later blank rows are skipped.
func ParseXLSX(r io.Reader) ([]domain.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	rows := []domain.RawRow{}
	var header []string
	for _, record := range cells {
		if allCellsEmpty(record) {
			continue
		}
		if header == nil {
			header = normalizeHeader(record)
			continue
		}
		rows = append(rows, buildRow(header, record))
	}
	return rows, nil
}

// InferValue converts a cell into the dynamic type a spreadsheet user would
// expect: "" becomes nil, true/false (either all lower or all upper case)
// become bool, numerals become float64 and everything else stays a string.
func InferValue(cell string) any {
	switch cell {
	case "":
		return nil
	case "true", "TRUE":
		return true
	case "false", "FALSE":
		return false
	}
	if numericPattern.MatchString(cell) {
		f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err == nil && f > -maxExactFloat && f < maxExactFloat {
			return f
		}
	}
	return cell
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func buildRow(header, record []string) domain.RawRow {
	row := make(domain.RawRow, len(header))
	for i, name := range header {
		if name == "" || i >= len(record) {
			continue
		}
		row[name] = InferValue(record[i])
	}
	return row
}

func isBlankRecord(record []string) bool {
	return len(record) == 0 || (len(record) == 1 && record[0] == "")
}

func allCellsEmpty(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
