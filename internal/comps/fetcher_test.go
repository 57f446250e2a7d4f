package comps_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BlockonautAlchemist/ResellrAi-sub001/internal/comps"
	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/clients/base"
	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/clients/browse"
)

func candidateIDs(cs []comps.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ExternalID
	}
	return out
}

func TestFetch_MergesInLadderOrder(t *testing.T) {
	s := &fakeSearcher{
		results: map[string][]browse.ItemSummary{
			"v1": {summary("a", "A", "10.00", ""), summary("b", "B", "11.00", "")},
			"v2": {summary("b", "B", "11.00", ""), summary("c", "C", "12.00", "")},
			"v3": {summary("d", "D", "13.00", "")},
		},
		// v1 finishes last; the merge must not care.
		delays: map[string]time.Duration{"v1": 30 * time.Millisecond, "v2": 10 * time.Millisecond},
	}
	f := comps.NewFetcher(s, 3, zaptest.NewLogger(t))

	res := f.Fetch(context.Background(), comps.Query{Limit: 20}, []string{"v1", "v2", "v3"}, "tok")

	assert.Equal(t, []string{"a", "b", "c", "d"}, candidateIDs(res.Candidates))
	assert.Equal(t, 3, res.Attempted)
	assert.Empty(t, res.FailedVariants)
	assert.ElementsMatch(t, []string{"tok", "tok", "tok"}, s.tokens)
}

func TestFetch_CapsAtThreeTimesLimit(t *testing.T) {
	many := func(prefix string) []browse.ItemSummary {
		var items []browse.ItemSummary
		for i := 0; i < 5; i++ {
			items = append(items, summary(fmt.Sprintf("%s%d", prefix, i), "t", "5.00", ""))
		}
		return items
	}
	s := &fakeSearcher{results: map[string][]browse.ItemSummary{"v1": many("x"), "v2": many("y")}}
	f := comps.NewFetcher(s, 3, zaptest.NewLogger(t))

	res := f.Fetch(context.Background(), comps.Query{Limit: 2}, []string{"v1", "v2"}, "tok")
	assert.Equal(t, []string{"x0", "x1", "x2", "x3", "x4", "y0"}, candidateIDs(res.Candidates))
}

func TestFetch_StopsAfterFullWave(t *testing.T) {
	s := &fakeSearcher{results: map[string][]browse.ItemSummary{
		"v1": {summary("a", "A", "1", ""), summary("b", "B", "1", ""), summary("c", "C", "1", "")},
	}}
	f := comps.NewFetcher(s, 1, zaptest.NewLogger(t))

	res := f.Fetch(context.Background(), comps.Query{Limit: 1}, []string{"v1", "v2", "v3"}, "tok")
	assert.Len(t, res.Candidates, 3)
	assert.Equal(t, []string{"v1"}, s.calls)
	assert.Equal(t, 1, res.Attempted)
}

func TestFetch_FailedVariantIsIsolated(t *testing.T) {
	s := &fakeSearcher{
		results: map[string][]browse.ItemSummary{"v2": {summary("a", "A", "10.00", "")}},
		errs:    map[string]error{"v1": base.NewHTTPError(browse.ServiceName, "search", 503, "unavailable")},
	}
	f := comps.NewFetcher(s, 3, zaptest.NewLogger(t))

	res := f.Fetch(context.Background(), comps.Query{Limit: 20}, []string{"v1", "v2"}, "tok")
	assert.Equal(t, []string{"a"}, candidateIDs(res.Candidates))
	assert.Equal(t, []string{"v1"}, res.FailedVariants)
	assert.False(t, res.AllFailed())
	assert.Zero(t, res.Unauthorized)
}

func TestFetch_AllUnauthorized(t *testing.T) {
	s := &fakeSearcher{failAll: base.NewHTTPError(browse.ServiceName, "search", 401, "invalid token")}
	f := comps.NewFetcher(s, 3, zaptest.NewLogger(t))

	res := f.Fetch(context.Background(), comps.Query{Limit: 20}, []string{"v1", "v2"}, "bad")
	assert.Empty(t, res.Candidates)
	assert.True(t, res.AllFailed())
	assert.Equal(t, 2, res.Unauthorized)
}

func TestFetch_ConvertsSummaries(t *testing.T) {
	s := &fakeSearcher{all: []browse.ItemSummary{
		summary("priced", "Priced", "10.00", "4.99"),
		summary("free", "Free", "0", ""),
		summary("noprice", "No price", "", ""),
		summary("", "No ID", "8.00", ""),
	}}
	f := comps.NewFetcher(s, 3, nil)

	res := f.Fetch(context.Background(), comps.Query{Limit: 20}, []string{"v1"}, "tok")
	require.Len(t, res.Candidates, 1)
	c := res.Candidates[0]
	assert.Equal(t, "priced", c.ExternalID)
	assert.Equal(t, 10.0, c.Price.Amount)
	assert.Equal(t, "USD", c.Price.Currency)
	assert.Equal(t, 4.99, c.ShippingCost)
	assert.Equal(t, 14.99, c.TotalCost)
	assert.Equal(t, "https://www.ebay.com/itm/priced", c.URL)
}

func TestFetch_CanceledContext(t *testing.T) {
	s := &fakeSearcher{all: []browse.ItemSummary{summary("a", "A", "1", "")}}
	f := comps.NewFetcher(s, 3, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := f.Fetch(ctx, comps.Query{Limit: 20}, []string{"v1"}, "tok")
	assert.Empty(t, res.Candidates)
	assert.Zero(t, s.callCount())
	assert.Zero(t, res.Attempted)
}
