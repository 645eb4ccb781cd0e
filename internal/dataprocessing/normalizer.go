package dataprocessing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"campuspulse/internal/sentiment"
	"campuspulse/pkg/contracts/domain"
)

// Coercion lists the fields of one row that fell back to a default value
// during normalization.
type Coercion struct {
	Defaulted []string
}

// Has reports whether field was defaulted.
func (c Coercion) Has(field string) bool {
	for _, f := range c.Defaulted {
		if f == field {
			return true
		}
	}
	return false
}

// NormalizeReport aggregates the coercions of a batch.
type NormalizeReport struct {
	Rows      int            `json:"rows"`
	Defaulted map[string]int `json:"defaulted"` // field -> number of rows defaulted
}

// Normalize converts raw rows into records, one per row and in the same order.
// It never fails; see NormalizeRow for the per-field rules.
func Normalize(rows []domain.RawRow) []domain.Record {
	records, _ := NormalizeWithReport(rows)
	return records
}

// NormalizeWithReport is Normalize plus a count of defaulted fields.
func NormalizeWithReport(rows []domain.RawRow) ([]domain.Record, NormalizeReport) {
	records := make([]domain.Record, len(rows))
	report := NormalizeReport{
		Rows:      len(rows),
		Defaulted: make(map[string]int),
	}
	for i, row := range rows {
		var c Coercion
		records[i], c = NormalizeRow(row)
		for _, f := range c.Defaulted {
			report.Defaulted[f]++
		}
	}
	return records, report
}

// NormalizeRow builds the canonical record for one row.
//
// Name, Facility, Department, Year and Comment are carried as strings.
// Rating is coerced to an integer the way a lenient spreadsheet would,
// falling back to 0; it is not clamped to any scale. Sentiment is derived
// from Comment. Date falls back to domain.DefaultDate when absent or empty.
func NormalizeRow(row domain.RawRow) (domain.Record, Coercion) {
	var c Coercion

	text := func(field string) string {
		v, ok := row[field]
		if !ok || v == nil {
			c.Defaulted = append(c.Defaulted, field)
			return ""
		}
		return stringify(v)
	}

	rec := domain.Record{
		Name:       text(domain.FieldName),
		Facility:   text(domain.FieldFacility),
		Department: text(domain.FieldDepartment),
		Year:       text(domain.FieldYear),
	}

	rating, ok := CoerceRating(row[domain.FieldRating])
	if !ok {
		c.Defaulted = append(c.Defaulted, domain.FieldRating)
	}
	rec.Rating = rating

	rec.Comment = text(domain.FieldComment)
	rec.Sentiment = sentiment.Classify(rec.Comment)

	if date := row[domain.FieldDate]; isFalsy(date) {
		rec.Date = domain.DefaultDate
		c.Defaulted = append(c.Defaulted, domain.FieldDate)
	} else {
		rec.Date = stringify(date)
	}

	return rec, c
}

// CoerceRating converts a raw rating into an integer. Numbers are truncated
// toward zero. Strings contribute their leading decimal integer, after
// leading whitespace and an optional sign, so "4 stars" is 4 and "4.9" is 4.
// Values that do not fit an int yield (0, false), as does anything else.
func CoerceRating(v any) (int, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case int:
		return x, true
	case int64:
		return int(x), true
	case int32:
		return int(x), true
	case float64:
		return intFromFloat(x)
	case float32:
		return intFromFloat(float64(x))
	case json.Number:
		return leadingInt(x.String())
	case string:
		return leadingInt(x)
	default:
		return 0, false
	}
}

func intFromFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	t := math.Trunc(f)
	if t > maxExactFloat || t < -maxExactFloat {
		return 0, false
	}
	return int(t), true
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, strconv.IntSize)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// stringify renders a raw value the way it appeared in the source document.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// isFalsy reports whether a raw value carries no usable content.
func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0 || math.IsNaN(x)
	case int:
		return x == 0
	}
	return false
}
