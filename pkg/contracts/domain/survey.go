package domain

import (
	"encoding/json"
	"fmt"
)

// Survey field names as they appear in the header row of a survey export.
const (
	FieldName       = "Name"
	FieldFacility   = "Facility"
	FieldDepartment = "Department"
	FieldYear       = "Year"
	FieldRating     = "Rating"
	FieldComment    = "Comment"
	FieldDate       = "Date"
)

// SurveyFields lists the known survey columns in export order.
var SurveyFields = []string{
	FieldName,
	FieldFacility,
	FieldDepartment,
	FieldYear,
	FieldRating,
	FieldComment,
	FieldDate,
}

const (
	// DefaultDate is assigned to records whose Date is absent or empty.
	DefaultDate = "2025-01-01"

	// FilterAll matches every value of a facility, department or year predicate.
	FilterAll = "All"

	// NotAvailable is reported for best/worst facility when no records are in view.
	NotAvailable = "N/A"
)

// RawRow is an untyped survey row as produced by a parser. Values are nil,
// bool, float64 or string; fields may be missing.
type RawRow map[string]any

// Sentiment is the derived tone of a survey comment.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// String returns the sentiment name.
func (s Sentiment) String() string {
	return string(s)
}

// Valid reports whether s is one of the three known sentiments.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// UnmarshalJSON decodes a sentiment name, rejecting unknown values.
func (s *Sentiment) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v := Sentiment(str)
	if !v.Valid() {
		return fmt.Errorf("domain: unknown sentiment: %q", str)
	}
	*s = v
	return nil
}

// Record is a canonical survey entry. Records are fully derived from one
// RawRow at normalization time and are never modified afterwards.
type Record struct {
	Name       string    `json:"Name"`
	Facility   string    `json:"Facility"`
	Department string    `json:"Department"`
	Year       string    `json:"Year"`
	Rating     int       `json:"Rating"`
	Comment    string    `json:"Comment"`
	Sentiment  Sentiment `json:"Sentiment"`
	Date       string    `json:"Date"`
}

// KPISummary holds the on-demand statistics of the active view.
type KPISummary struct {
	Total         int     `json:"total"`
	AverageRating float64 `json:"averageRating"`
	BestFacility  string  `json:"bestFacility"`
	WorstFacility string  `json:"worstFacility"`
}

// EmptyKPISummary is the summary of a view with no records.
func EmptyKPISummary() KPISummary {
	return KPISummary{
		BestFacility:  NotAvailable,
		WorstFacility: NotAvailable,
	}
}

// FilterCriteria is the conjunction of predicates applied to the raw record set.
type FilterCriteria struct {
	Facility   string `json:"facility"`
	Department string `json:"department"`
	Year       string `json:"year"`
	MinRating  int    `json:"min_rating"`
}

// DefaultCriteria matches every record with a non-negative rating.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		Facility:   FilterAll,
		Department: FilterAll,
		Year:       FilterAll,
		MinRating:  0,
	}
}

// Matches reports whether r satisfies every predicate of c.
func (c FilterCriteria) Matches(r Record) bool {
	if c.Facility != FilterAll && r.Facility != c.Facility {
		return false
	}
	if c.Department != FilterAll && r.Department != c.Department {
		return false
	}
	if c.Year != FilterAll && r.Year != c.Year {
		return false
	}
	return r.Rating >= c.MinRating
}

// Facets lists the distinct, sorted values available for each filter.
type Facets struct {
	Facilities  []string `json:"facilities"`
	Departments []string `json:"departments"`
	Years       []string `json:"years"`
}

// SentimentBreakdown counts records per sentiment.
type SentimentBreakdown struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Total returns the number of records counted.
func (b SentimentBreakdown) Total() int {
	return b.Positive + b.Negative + b.Neutral
}
