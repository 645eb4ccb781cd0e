package dataprocessing

import "campuspulse/pkg/contracts/domain"

// FilterRecords returns the records matching every predicate of criteria,
// in their original order. The result never aliases records and is empty,
// not nil, when nothing matches.
func FilterRecords(records []domain.Record, criteria domain.FilterCriteria) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if criteria.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
