package comps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/clients/browse"
	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/logger"
)

// ErrInvalidEngineConfig indicates invalid engine construction arguments.
var ErrInvalidEngineConfig = errors.New("invalid engine configuration")

// ResultCache stores finished results by CacheKey.
type ResultCache interface {
	// Get returns a copy of the stored result and its age, if unexpired.
	Get(ctx context.Context, key string) (*CompsResult, time.Duration, bool)
	Set(ctx context.Context, key string, result *CompsResult)
}

// Engine matches a query against the marketplace and summarizes prices.
type Engine struct {
	searcher    browse.Searcher
	concurrency int
	scorer      *Scorer
	cache       ResultCache
	sold        SoldDataProvider
	log         *zap.Logger

	fetcher *Fetcher
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache sets the result cache. Without one every call goes upstream.
func WithCache(c ResultCache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithSoldProvider sets the completed-sales source.
func WithSoldProvider(p SoldDataProvider) Option {
	return func(e *Engine) {
		e.sold = p
	}
}

// WithConcurrency bounds the upstream calls in flight per run.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// WithScorer replaces the default rule table.
func WithScorer(s *Scorer) Option {
	return func(e *Engine) {
		e.scorer = s
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// NewEngine creates an engine over an upstream searcher.
func NewEngine(searcher browse.Searcher, opts ...Option) (*Engine, error) {
	if searcher == nil {
		return nil, fmt.Errorf("%w: searcher is required", ErrInvalidEngineConfig)
	}

	e := &Engine{
		searcher:    searcher,
		concurrency: DefaultConcurrency,
		scorer:      NewScorer(),
		sold:        UnavailableSoldProvider{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.concurrency < 1 {
		return nil, fmt.Errorf("%w: concurrency must be positive", ErrInvalidEngineConfig)
	}
	if e.log == nil {
		e.log = logger.Get()
	}
	e.fetcher = NewFetcher(e.searcher, e.concurrency, e.log)
	return e, nil
}

// GetComparables returns comparable listings and price statistics for q.
// token is the caller's bearer token for the search API. Errors are limited
// to query validation (ErrInvalidQuery) and context cancellation; upstream
// trouble degrades the result instead.
func (e *Engine) GetComparables(ctx context.Context, q Query, token string) (*CompsResult, error) {
	nq, err := q.Normalize()
	if err != nil {
		return nil, err
	}

	key := nq.CacheKey()
	if e.cache != nil {
		if hit, age, ok := e.cache.Get(ctx, key); ok {
			seconds := int(age / time.Second)
			hit.Cached = true
			hit.CacheAge = &seconds
			e.log.Debug("comps cache hit", zap.String("key", key), zap.Int("age_seconds", seconds))
			return hit, nil
		}
	}

	log := e.log.With(zap.String("run_id", uuid.NewString()))
	shape := ShapeQuery(nq.searchText())
	log.Info("comps run started",
		zap.String("keywords", nq.Keywords),
		zap.Strings("ladder", shape.Ladder),
		zap.Strings("identifiers", shape.Identifiers),
	)

	if result, ok := e.fromSold(ctx, log, nq, &shape, token); ok {
		return e.store(ctx, key, result), nil
	}
	var limitations []string
	if ctx.Err() == nil {
		limitations = append(limitations, LimitationSoldUnavailable)
	}

	fetched := e.fetcher.Fetch(ctx, nq, shape.Ladder, token)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := e.build(nq, &shape, SourceActive, fetched.Candidates, limitations)
	result.Query.FailedVariants = fetched.FailedVariants
	if len(fetched.Candidates) == 0 && fetched.AllFailed() {
		// An outage or a bad token is not a statement about the market.
		if fetched.Unauthorized > 0 {
			result.Limitations = append(result.Limitations, LimitationUnauthorized)
		} else {
			result.Limitations = append(result.Limitations, LimitationUpstreamDown)
		}
		log.Warn("comps run found no data; upstream unavailable",
			zap.Int("variants", fetched.Attempted),
			zap.Int("unauthorized", fetched.Unauthorized),
		)
		return result, nil
	}

	log.Info("comps run finished",
		zap.String("source", string(result.Source)),
		zap.String("quality", string(result.Query.MatchQuality)),
		zap.Int("candidates", len(fetched.Candidates)),
		zap.Int("sample_size", result.Stats.SampleSize),
		zap.String("confidence", string(result.Stats.Confidence)),
	)
	return e.store(ctx, key, result), nil
}

// fromSold asks the sold-data provider first. ok is false when the caller
// should fall back to active listings.
func (e *Engine) fromSold(ctx context.Context, log *zap.Logger, q Query, shape *Shape, token string) (*CompsResult, bool) {
	sold, err := e.sold.SoldComparables(ctx, q, shape, token)
	if err != nil {
		if !errors.Is(err, ErrSoldDataUnavailable) {
			log.Warn("sold data provider failed", zap.Error(err))
		}
		return nil, false
	}
	if len(sold) == 0 {
		return nil, false
	}
	for i := range sold {
		sold[i].RecomputeTotal()
	}
	return e.build(q, shape, SourceSold, sold, nil), true
}

// build ranks candidates, selects a tier and computes statistics.
func (e *Engine) build(q Query, shape *Shape, source Source, candidates []Candidate, limitations []string) *CompsResult {
	result := &CompsResult{
		Source: source,
		Items:  []Candidate{},
		Query: QueryMeta{
			Keywords:             q.Keywords,
			CategoryID:           q.CategoryID,
			Condition:            q.Condition,
			Brand:                q.Brand,
			Marketplace:          q.Marketplace,
			Limit:                q.Limit,
			Ladder:               shape.Ladder,
			CandidatesConsidered: len(candidates),
		},
		Limitations: append([]string{}, limitations...),
	}

	if len(candidates) == 0 {
		result.Source = SourceNone
		result.Stats = Stats{Confidence: ConfidenceNone}
		result.Limitations = append(result.Limitations, LimitationNoCandidates)
		return result
	}

	sel := SelectTier(e.scorer.Rank(shape, candidates), q.Limit)
	for _, sc := range sel.Items {
		result.Items = append(result.Items, sc.Candidate)
	}
	result.Query.MatchQuality = sel.Quality

	stats, statLimits := ComputeStats(result.Items, sel.Matched, source, sel.Quality)
	result.Stats = stats
	if source == SourceActive {
		result.Limitations = append(result.Limitations, LimitationActiveListings)
	}
	result.Limitations = append(result.Limitations, statLimits...)
	return result
}

func (e *Engine) store(ctx context.Context, key string, result *CompsResult) *CompsResult {
	if e.cache != nil {
		e.cache.Set(ctx, key, result)
	}
	return result
}
