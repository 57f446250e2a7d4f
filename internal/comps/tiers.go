package comps

// Tier thresholds. These are fixed heuristics; keep the values as they are.
const (
	StrongFloor  = 55
	MediumFloor  = 45
	StrongWindow = 10
	MediumWindow = 20
	MinTierItems = 5
	WeakMinItems = 15
	WeakMaxItems = 25
)

// Selection is the outcome of tier selection. Matched counts the candidates
// in the chosen tier set before the limit is applied.
type Selection struct {
	Items           []ScoredCandidate
	Quality         Tier
	Matched         int
	Best            int
	StrongThreshold int
	MediumThreshold int
}

// Thresholds returns the strong and medium cutoffs for a run's best score.
func Thresholds(best int) (strong, medium int) {
	return max(StrongFloor, best-StrongWindow), max(MediumFloor, best-MediumWindow)
}

// SelectTier picks the smallest tier set that yields MinTierItems items.
// ranked must be in scorer order; each candidate's Tier is set in place.
func SelectTier(ranked []ScoredCandidate, limit int) Selection {
	if len(ranked) == 0 {
		return Selection{Quality: TierWeak}
	}

	best := ranked[0].Score
	for _, c := range ranked[1:] {
		best = max(best, c.Score)
	}
	strongAt, mediumAt := Thresholds(best)

	var strong, medium int
	for i := range ranked {
		switch s := ranked[i].Score; {
		case s >= strongAt:
			ranked[i].Tier = TierStrong
			strong++
		case s >= mediumAt:
			ranked[i].Tier = TierMedium
			medium++
		default:
			ranked[i].Tier = TierWeak
		}
	}

	sel := Selection{Best: best, StrongThreshold: strongAt, MediumThreshold: mediumAt}
	switch {
	case strong >= MinTierItems:
		sel.Quality = TierStrong
		sel.Matched = strong
		sel.Items = takeTiers(ranked, limit, TierStrong)
	case strong+medium >= MinTierItems:
		sel.Quality = TierMedium
		sel.Matched = strong + medium
		sel.Items = takeTiers(ranked, limit, TierStrong, TierMedium)
	default:
		sel.Quality = TierWeak
		sel.Matched = len(ranked)
		n := min(max(WeakMinItems, limit), WeakMaxItems, len(ranked))
		sel.Items = append([]ScoredCandidate(nil), ranked[:n]...)
	}
	return sel
}

func takeTiers(ranked []ScoredCandidate, limit int, tiers ...Tier) []ScoredCandidate {
	out := make([]ScoredCandidate, 0, limit)
	for _, c := range ranked {
		if len(out) == limit {
			break
		}
		for _, t := range tiers {
			if c.Tier == t {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
