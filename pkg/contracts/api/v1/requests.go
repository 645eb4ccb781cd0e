// Package api contains API contract definitions for the CampusPulse survey API.
// Version v1 represents the current stable API version.
package api

import (
	"campuspulse/pkg/contracts/domain"
)

// LoadRequest asks the server to (re)load the survey dataset.
// An empty Location loads the embedded dataset.
type LoadRequest struct {
	Location string `json:"location" validate:"omitempty,max=2048,location"`
}

// FilterQuery carries the filter predicates from the query string.
type FilterQuery struct {
	Facility   string `json:"facility" query:"facility" validate:"max=256"`
	Department string `json:"department" query:"department" validate:"max=256"`
	Year       string `json:"year" query:"year" validate:"max=64"`
	MinRating  int    `json:"min_rating" query:"min_rating"`
}

// Criteria converts the query into filter criteria, substituting the
// wildcard for empty predicates.
func (q FilterQuery) Criteria() domain.FilterCriteria {
	c := domain.FilterCriteria{
		Facility:   q.Facility,
		Department: q.Department,
		Year:       q.Year,
		MinRating:  q.MinRating,
	}
	if c.Facility == "" {
		c.Facility = domain.FilterAll
	}
	if c.Department == "" {
		c.Department = domain.FilterAll
	}
	if c.Year == "" {
		c.Year = domain.FilterAll
	}
	return c
}

// LoadResponse reports the outcome of a dataset load.
type LoadResponse struct {
	Status  string `json:"status"`
	Source  string `json:"source"`
	Records int    `json:"records"`
}

// RecordsResponse wraps a list of records.
type RecordsResponse struct {
	Status string          `json:"status"`
	Data   []domain.Record `json:"data"`
	Count  int             `json:"count"`
}
