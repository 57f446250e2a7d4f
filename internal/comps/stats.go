package comps

import (
	"fmt"
	"math"
	"sort"
)

// Sample-size cutoffs for sold-source confidence.
const (
	SoldHighConfidenceItems   = 10
	SoldMediumConfidenceItems = 5
)

// Limitation messages.
const (
	LimitationWeakMatch       = "Matches are loose; add distinguishing details such as model, size or year to the query."
	LimitationPartialData     = "Only %d comparable listings found; treat these figures as rough guidance."
	LimitationActiveListings  = "Prices are current asking prices from active listings, not completed sales."
	LimitationNoCandidates    = "No comparable listings found; try broader search terms."
	LimitationUpstreamDown    = "The marketplace search was unavailable; try again later."
	LimitationUnauthorized    = "The marketplace rejected the access token; reconnect the marketplace account."
	LimitationSoldUnavailable = "Sold listing data is not available from the marketplace API without elevated access; showing active listings instead."
)

// ComputeStats summarizes item total costs and assigns a confidence label.
// matched is the number of matching candidates found before the caller's
// limit was applied; values below len(items) count as len(items). It also
// returns the limitations the numbers carry.
func ComputeStats(items []Candidate, matched int, source Source, quality Tier) (Stats, []string) {
	n := len(items)
	matched = max(matched, n)
	stats := Stats{SampleSize: n, Confidence: ConfidenceNone}
	var limitations []string
	if n == 0 {
		return stats, limitations
	}

	costs := make([]float64, n)
	sum := 0.0
	for i, c := range items {
		costs[i] = c.TotalCost
		sum += c.TotalCost
	}
	sort.Float64s(costs)

	median := costs[n/2]
	if n%2 == 0 {
		median = (costs[n/2-1] + costs[n/2]) / 2
	}
	stats.Median = ptr(roundCents(median))
	stats.Average = ptr(roundCents(sum / float64(n)))
	stats.Min = ptr(costs[0])
	stats.Max = ptr(costs[n-1])

	stats.Confidence = sourceConfidence(source, n)
	if quality == TierWeak {
		stats.Confidence = ConfidenceLow
		limitations = append(limitations, LimitationWeakMatch)
	}
	if matched < MinTierItems {
		stats.Confidence = ConfidenceLow
		limitations = append(limitations, fmt.Sprintf(LimitationPartialData, matched))
	}
	return stats, limitations
}

func sourceConfidence(source Source, n int) Confidence {
	switch source {
	case SourceSold:
		switch {
		case n >= SoldHighConfidenceItems:
			return ConfidenceHigh
		case n >= SoldMediumConfidenceItems:
			return ConfidenceMedium
		default:
			return ConfidenceLow
		}
	case SourceActive:
		return ConfidenceMedium
	default:
		return ConfidenceNone
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func ptr(v float64) *float64 { return &v }
