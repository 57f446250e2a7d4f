// Package comps turns a free-text item description into comparable
// marketplace listings and price statistics.
package comps

import "slices"

// Source labels where the pricing evidence came from.
type Source string

const (
	SourceSold   Source = "sold"
	SourceActive Source = "active"
	SourceNone   Source = "none"
)

// Confidence is a coarse trust label for Stats.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// Tier is a relevance bucket relative to the best score of a run.
type Tier string

const (
	TierStrong Tier = "strong"
	TierMedium Tier = "medium"
	TierWeak   Tier = "weak"
)

// Money is an amount in a currency.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Seller is optional listing seller info.
type Seller struct {
	Username      string `json:"username"`
	FeedbackScore int    `json:"feedbackScore"`
}

// Candidate is one upstream listing. TotalCost is always Price.Amount plus
// ShippingCost; call RecomputeTotal after changing either.
type Candidate struct {
	ExternalID   string  `json:"externalId"`
	Title        string  `json:"title"`
	Price        Money   `json:"price"`
	ShippingCost float64 `json:"shippingCost"`
	TotalCost    float64 `json:"totalCost"`
	Condition    string  `json:"condition"`
	URL          string  `json:"url"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	Seller       *Seller `json:"seller,omitempty"`
}

// RecomputeTotal sets TotalCost from price and shipping.
func (c *Candidate) RecomputeTotal() {
	c.TotalCost = roundCents(c.Price.Amount + c.ShippingCost)
}

// ScoredCandidate is a Candidate with its relevance score.
type ScoredCandidate struct {
	Candidate
	Score int  `json:"score"`
	Tier  Tier `json:"tier,omitempty"`
}

// Stats summarizes the TotalCost of the selected items. Price fields are
// nil when there are no items.
type Stats struct {
	Median     *float64   `json:"median"`
	Average    *float64   `json:"average"`
	Min        *float64   `json:"min"`
	Max        *float64   `json:"max"`
	SampleSize int        `json:"sampleSize"`
	Confidence Confidence `json:"confidence"`
}

// QueryMeta echoes the normalized query and how it was matched.
type QueryMeta struct {
	Keywords             string    `json:"keywords"`
	CategoryID           string    `json:"categoryId,omitempty"`
	Condition            Condition `json:"condition,omitempty"`
	Brand                string    `json:"brand,omitempty"`
	Marketplace          string    `json:"marketplace"`
	Limit                int       `json:"limit"`
	Ladder               []string  `json:"ladder"`
	MatchQuality         Tier      `json:"matchQuality,omitempty"`
	CandidatesConsidered int       `json:"candidatesConsidered"`
	FailedVariants       []string  `json:"failedVariants,omitempty"`
}

// CompsResult is what callers receive and what the cache stores.
type CompsResult struct {
	Source      Source      `json:"source"`
	Items       []Candidate `json:"items"`
	Stats       Stats       `json:"stats"`
	Limitations []string    `json:"limitations"`
	Query       QueryMeta   `json:"query"`
	Cached      bool        `json:"cached"`
	CacheAge    *int        `json:"cacheAge,omitempty"`
}

// Clone returns a deep copy.
func (r *CompsResult) Clone() *CompsResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Items = make([]Candidate, len(r.Items))
	for i, c := range r.Items {
		if c.Seller != nil {
			s := *c.Seller
			c.Seller = &s
		}
		out.Items[i] = c
	}
	out.Limitations = slices.Clone(r.Limitations)
	out.Query.Ladder = slices.Clone(r.Query.Ladder)
	out.Query.FailedVariants = slices.Clone(r.Query.FailedVariants)
	out.Stats.Median = clonePtr(r.Stats.Median)
	out.Stats.Average = clonePtr(r.Stats.Average)
	out.Stats.Min = clonePtr(r.Stats.Min)
	out.Stats.Max = clonePtr(r.Stats.Max)
	if r.CacheAge != nil {
		age := *r.CacheAge
		out.CacheAge = &age
	}
	return &out
}

func clonePtr(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
