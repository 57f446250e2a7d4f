package comps

import (
	"sort"
	"strings"
)

// Rule weights.
const (
	IdentifierBonus      = 100
	IdentifierTokenBonus = 10
	TokenBonus           = 2
	BrandMissPenalty     = -50
	BrandPairPenalty     = -80
	AccessoryPenalty     = -30
	BundlePenalty        = -15
)

// Title is a candidate title prepared for matching.
type Title struct {
	// Text is the lowercased title.
	Text string
	// Joined is the tokenized title joined by single spaces, so
	// "Harley-Davidson" reads "harley davidson".
	Joined string
	Words  map[string]struct{}
}

// NewTitle prepares a raw title for the rules.
func NewTitle(raw string) Title {
	words := tokenize(raw)
	return Title{
		Text:   strings.ToLower(raw),
		Joined: strings.Join(words, " "),
		Words:  toSet(words...),
	}
}

func (t Title) has(word string) bool {
	_, ok := t.Words[word]
	return ok
}

// Rule is one named scoring adjustment.
type Rule struct {
	Name string
	Eval func(s *Shape, t Title) int
}

// DefaultRules is the scoring table applied by NewScorer.
var DefaultRules = []Rule{
	{Name: "identifier_match", Eval: IdentifierMatch},
	{Name: "token_match", Eval: TokenMatch},
	{Name: "brand_miss", Eval: BrandMiss},
	{Name: "brand_pair", Eval: BrandPairMiss},
	{Name: "accessory", Eval: AccessoryMismatch},
	{Name: "bundle", Eval: UnrequestedBundle},
}

// IdentifierMatch awards IdentifierBonus per identifier found in the title.
func IdentifierMatch(s *Shape, t Title) int {
	score := 0
	for _, id := range s.Identifiers {
		if strings.Contains(t.Text, id) {
			score += IdentifierBonus
		}
	}
	return score
}

// TokenMatch awards IdentifierTokenBonus for each identifier-equal token
// present as a title word and TokenBonus for each other token.
func TokenMatch(s *Shape, t Title) int {
	ids := toSet(s.Identifiers...)
	score := 0
	for _, tok := range s.Tokens {
		if !t.has(tok) {
			continue
		}
		if _, isID := ids[tok]; isID {
			score += IdentifierTokenBonus
		} else {
			score += TokenBonus
		}
	}
	return score
}

// BrandMiss penalizes titles that contain none of the brand tokens.
func BrandMiss(s *Shape, t Title) int {
	if len(s.BrandTokens) == 0 {
		return 0
	}
	for _, b := range s.BrandTokens {
		if t.has(b) {
			return 0
		}
	}
	return BrandMissPenalty
}

// BrandPairMiss penalizes titles missing a required two-word brand, where
// neither the bigram nor both words appear.
func BrandPairMiss(s *Shape, t Title) int {
	p := s.RequiredPair
	if p == nil {
		return 0
	}
	if strings.Contains(t.Joined, p.Bigram()) || (t.has(p.First) && t.has(p.Second)) {
		return 0
	}
	return BrandPairPenalty
}

// AccessoryMismatch penalizes accessory listings on product searches.
func AccessoryMismatch(s *Shape, t Title) int {
	if !s.ProductIntent {
		return 0
	}
	if hasAccessoryLanguage(t.Words, t.Joined) {
		return AccessoryPenalty
	}
	return 0
}

// UnrequestedBundle penalizes lot and multi-pack listings unless the query
// asked for one.
func UnrequestedBundle(s *Shape, t Title) int {
	if s.WantsBundle {
		return 0
	}
	if bundlePattern.MatchString(t.Text) {
		return BundlePenalty
	}
	return 0
}

// Scorer applies a rule table to candidates.
type Scorer struct {
	rules []Rule
}

// NewScorer creates a scorer over rules, or DefaultRules when none are given.
func NewScorer(rules ...Rule) *Scorer {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Scorer{rules: rules}
}

// ScoreTitle sums every rule for one title.
func (sc *Scorer) ScoreTitle(s *Shape, title string) int {
	t := NewTitle(title)
	total := 0
	for _, r := range sc.rules {
		total += r.Eval(s, t)
	}
	return total
}

// Breakdown returns each rule's contribution, keyed by rule name.
func (sc *Scorer) Breakdown(s *Shape, title string) map[string]int {
	t := NewTitle(title)
	out := make(map[string]int, len(sc.rules))
	for _, r := range sc.rules {
		out[r.Name] = r.Eval(s, t)
	}
	return out
}

// Rank scores every candidate and returns them in ranking order.
func (sc *Scorer) Rank(s *Shape, candidates []Candidate) []ScoredCandidate {
	scored := make([]ScoredCandidate, len(candidates))
	for i, c := range candidates {
		scored[i] = ScoredCandidate{
			Candidate: c,
			Score:     sc.ScoreTitle(s, c.Title),
		}
	}
	SortScored(scored)
	return scored
}

// SortScored orders by score descending, then total cost ascending, then
// external ID, which makes the order total.
func SortScored(scored []ScoredCandidate) {
	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.TotalCost != b.TotalCost {
			return a.TotalCost < b.TotalCost
		}
		return a.ExternalID < b.ExternalID
	})
}
