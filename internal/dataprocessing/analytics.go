package dataprocessing

import (
	"math"

	"campuspulse/pkg/contracts/domain"
)

// facilityScore accumulates the ratings of one facility.
type facilityScore struct {
	name  string
	sum   float64
	count int
}

func (f facilityScore) mean() float64 {
	return f.sum / float64(f.count)
}

// ComputeKPIs summarizes records.
//
// The average rating is rounded to one decimal place, half away from zero.
// Facilities are ranked by mean rating in order of first appearance; on a
// tie the facility seen first keeps the title, and a lone facility is both
// best and worst.
func ComputeKPIs(records []domain.Record) domain.KPISummary {
	if len(records) == 0 {
		return domain.EmptyKPISummary()
	}

	var total float64
	for _, r := range records {
		total += float64(r.Rating)
	}

	summary := domain.KPISummary{
		Total:         len(records),
		AverageRating: roundTenth(total / float64(len(records))),
		BestFacility:  domain.NotAvailable,
		WorstFacility: domain.NotAvailable,
	}

	high, low := math.Inf(-1), math.Inf(1)
	for _, f := range groupByFacility(records) {
		score := f.mean()
		if score > high {
			high = score
			summary.BestFacility = f.name
		}
		if score < low {
			low = score
			summary.WorstFacility = f.name
		}
	}
	return summary
}

// groupByFacility returns per-facility totals in first-occurrence order.
func groupByFacility(records []domain.Record) []facilityScore {
	index := make(map[string]int)
	var groups []facilityScore
	for _, r := range records {
		i, ok := index[r.Facility]
		if !ok {
			i = len(groups)
			index[r.Facility] = i
			groups = append(groups, facilityScore{name: r.Facility})
		}
		groups[i].sum += float64(r.Rating)
		groups[i].count++
	}
	return groups
}

// FacilityAverages returns the mean rating of each facility, rounded like
// the overall average.
func FacilityAverages(records []domain.Record) map[string]float64 {
	out := make(map[string]float64)
	for _, f := range groupByFacility(records) {
		out[f.name] = roundTenth(f.mean())
	}
	return out
}

// CountSentiments tallies records per sentiment label.
func CountSentiments(records []domain.Record) domain.SentimentBreakdown {
	var b domain.SentimentBreakdown
	for _, r := range records {
		switch r.Sentiment {
		case domain.SentimentPositive:
			b.Positive++
		case domain.SentimentNegative:
			b.Negative++
		default:
			b.Neutral++
		}
	}
	return b
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
