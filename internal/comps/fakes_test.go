package comps_test

import (
	"context"
	"sync"
	"time"

	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/clients/browse"
)

// fakeSearcher answers per variant; variants without an entry get all.
type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]browse.ItemSummary
	errs    map[string]error
	delays  map[string]time.Duration
	all     []browse.ItemSummary
	failAll error
	calls   []string
	tokens  []string
}

func (f *fakeSearcher) Search(ctx context.Context, token string, req browse.SearchRequest) (*browse.SearchResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.Query)
	f.tokens = append(f.tokens, token)
	delay := f.delays[req.Query]
	err := f.errs[req.Query]
	items, ok := f.results[req.Query]
	if !ok {
		items = f.all
	}
	if f.failAll != nil {
		err = f.failAll
	}
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &browse.SearchResponse{Total: len(items), Limit: req.Limit, ItemSummaries: items}, nil
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func summary(id, title, price, shipping string) browse.ItemSummary {
	item := browse.ItemSummary{
		ItemID:     id,
		Title:      title,
		Condition:  "Used",
		ItemWebURL: "https://www.ebay.com/itm/" + id,
	}
	if price != "" {
		item.Price = &browse.Amount{Value: price, Currency: "USD"}
	}
	if shipping != "" {
		item.ShippingOptions = []browse.ShippingOption{
			{ShippingCost: &browse.Amount{Value: shipping, Currency: "USD"}, ShippingCostType: "FIXED"},
		}
	}
	return item
}
