package comps

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/clients/base"
	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/clients/browse"
)

// Fetcher limits.
const (
	DefaultConcurrency = 3
	candidateMultiple  = 3
)

// FetchResult is the deduplicated candidate pool of one run.
type FetchResult struct {
	Candidates []Candidate
	// Attempted counts variants sent upstream.
	Attempted int
	// FailedVariants lists variants whose call failed.
	FailedVariants []string
	// Unauthorized counts failures the upstream answered with 401 or 403.
	Unauthorized int
}

// AllFailed reports whether no variant call succeeded.
func (r FetchResult) AllFailed() bool {
	return r.Attempted > 0 && len(r.FailedVariants) == r.Attempted
}

// Fetcher runs the search ladder against the upstream API.
type Fetcher struct {
	searcher    browse.Searcher
	concurrency int
	log         *zap.Logger
}

// NewFetcher creates a fetcher issuing at most concurrency calls at once.
func NewFetcher(searcher browse.Searcher, concurrency int, log *zap.Logger) *Fetcher {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{searcher: searcher, concurrency: concurrency, log: log}
}

// Fetch issues one search per ladder variant in waves of f.concurrency and
// merges each wave in ladder order, so the pool does not depend on
// completion order. It stops once 3×limit unique candidates are collected.
// A failed variant contributes nothing; the rest still run.
func (f *Fetcher) Fetch(ctx context.Context, q Query, ladder []string, token string) FetchResult {
	want := candidateMultiple * q.Limit
	seen := make(map[string]struct{}, want)
	var res FetchResult

	for start := 0; start < len(ladder) && len(res.Candidates) < want; start += f.concurrency {
		if ctx.Err() != nil {
			break
		}
		end := min(start+f.concurrency, len(ladder))
		wave := ladder[start:end]
		found := make([][]Candidate, len(wave))
		errs := make([]error, len(wave))

		var g errgroup.Group
		g.SetLimit(f.concurrency)
		for i, variant := range wave {
			i, variant := i, variant
			g.Go(func() error {
				found[i], errs[i] = f.fetchVariant(ctx, q, variant, token)
				return nil
			})
		}
		_ = g.Wait()

		for i, variant := range wave {
			res.Attempted++
			if errs[i] != nil {
				f.log.Warn("search variant failed",
					zap.String("variant", variant),
					zap.Error(errs[i]),
				)
				res.FailedVariants = append(res.FailedVariants, variant)
				if code := base.StatusCode(errs[i]); code == http.StatusUnauthorized || code == http.StatusForbidden {
					res.Unauthorized++
				}
				continue
			}
			for _, c := range found[i] {
				if len(res.Candidates) == want {
					break
				}
				if _, dup := seen[c.ExternalID]; dup {
					continue
				}
				seen[c.ExternalID] = struct{}{}
				res.Candidates = append(res.Candidates, c)
			}
			f.log.Debug("search variant fetched",
				zap.String("variant", variant),
				zap.Int("results", len(found[i])),
				zap.Int("unique_total", len(res.Candidates)),
			)
		}
	}
	return res
}

func (f *Fetcher) fetchVariant(ctx context.Context, q Query, variant, token string) ([]Candidate, error) {
	resp, err := f.searcher.Search(ctx, token, browse.SearchRequest{
		Query:       variant,
		CategoryID:  q.CategoryID,
		Condition:   string(q.Condition),
		Limit:       q.Limit,
		Marketplace: q.Marketplace,
	})
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(resp.ItemSummaries))
	for _, item := range resp.ItemSummaries {
		if c, ok := candidateFromSummary(item); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// candidateFromSummary converts an upstream item. Items without an ID or a
// positive price cannot serve as pricing evidence and are dropped.
func candidateFromSummary(item browse.ItemSummary) (Candidate, bool) {
	if item.ItemID == "" || item.Price == nil {
		return Candidate{}, false
	}
	price := item.Price.Float()
	if price <= 0 {
		return Candidate{}, false
	}

	c := Candidate{
		ExternalID:   item.ItemID,
		Title:        item.Title,
		Price:        Money{Amount: price, Currency: item.Price.Currency},
		ShippingCost: item.ShippingCost(),
		Condition:    item.Condition,
		URL:          item.ItemWebURL,
	}
	if item.Image != nil {
		c.ImageURL = item.Image.ImageURL
	}
	if item.Seller != nil {
		c.Seller = &Seller{Username: item.Seller.Username, FeedbackScore: item.Seller.FeedbackScore}
	}
	c.RecomputeTotal()
	return c, true
}
