package dataprocessing

import (
	"sort"

	"campuspulse/pkg/contracts/domain"
)

// ComputeFacets collects the distinct facility, department and year values of
// records, sorted, for populating filter choices. Empty values are omitted.
func ComputeFacets(records []domain.Record) domain.Facets {
	return domain.Facets{
		Facilities:  distinct(records, func(r domain.Record) string { return r.Facility }),
		Departments: distinct(records, func(r domain.Record) string { return r.Department }),
		Years:       distinct(records, func(r domain.Record) string { return r.Year }),
	}
}

func distinct(records []domain.Record, field func(domain.Record) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range records {
		v := field(r)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
