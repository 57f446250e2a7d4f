// Package browse provides a client for the marketplace item-search endpoint
// (eBay Browse item_summary/search).
package browse

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/clients/base"
	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/logger"
)

// Default configuration constants
const (
	ServiceName        = "browse"
	SearchPath         = "/buy/browse/v1/item_summary/search"
	DefaultMarketplace = "EBAY_US"
	MarketplaceHeader  = "X-EBAY-C-MARKETPLACE-ID"
	MaxLimit           = 200
)

// ErrCircuitOpen is returned while the breaker rejects upstream calls.
var ErrCircuitOpen = errors.New("upstream circuit breaker is open")

// Searcher defines the item search operation.
type Searcher interface {
	Search(ctx context.Context, token string, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest defines the parameters for one search call.
type SearchRequest struct {
	Query       string
	CategoryID  string
	Condition   string // new, like_new, very_good, good, acceptable
	Limit       int
	Marketplace string
}

// Amount is a monetary value as the API encodes it.
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// Float parses the amount value; unparseable or missing values are 0.
func (a *Amount) Float() float64 {
	if a == nil || a.Value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(a.Value, 64)
	if err != nil {
		return 0
	}
	return f
}

type ShippingOption struct {
	ShippingCost     *Amount `json:"shippingCost,omitempty"`
	ShippingCostType string  `json:"shippingCostType,omitempty"`
}

type Image struct {
	ImageURL string `json:"imageUrl"`
}

type Seller struct {
	Username           string `json:"username"`
	FeedbackScore      int    `json:"feedbackScore"`
	FeedbackPercentage string `json:"feedbackPercentage,omitempty"`
}

// ItemSummary is a single listing in a search response.
type ItemSummary struct {
	ItemID          string           `json:"itemId"`
	Title           string           `json:"title"`
	Price           *Amount          `json:"price,omitempty"`
	ShippingOptions []ShippingOption `json:"shippingOptions,omitempty"`
	Condition       string           `json:"condition,omitempty"`
	ItemWebURL      string           `json:"itemWebUrl,omitempty"`
	Image           *Image           `json:"image,omitempty"`
	Seller          *Seller          `json:"seller,omitempty"`
}

// ShippingCost returns the first quoted shipping cost, 0 when none is listed.
func (i ItemSummary) ShippingCost() float64 {
	for _, opt := range i.ShippingOptions {
		if opt.ShippingCost != nil {
			return opt.ShippingCost.Float()
		}
	}
	return 0
}

// SearchResponse represents the search API response.
type SearchResponse struct {
	Total         int           `json:"total"`
	Limit         int           `json:"limit"`
	ItemSummaries []ItemSummary `json:"itemSummaries"`
}

// conditionCodes maps normalized conditions to upstream condition IDs.
var conditionCodes = map[string]string{
	"new":        "1000",
	"like_new":   "2750",
	"very_good":  "4000",
	"good":       "5000",
	"acceptable": "6000",
}

// ConditionCode returns the upstream condition ID for a normalized condition.
func ConditionCode(condition string) (string, bool) {
	code, ok := conditionCodes[condition]
	return code, ok
}

// Options configures the browse client.
type Options struct {
	base.Options
	Marketplace       string
	Sort              string
	RequestsPerSecond float64
	Burst             int
	BreakerFailures   uint32
	BreakerTimeout    time.Duration
}

// Client performs item searches. Safe for concurrent use.
type Client struct {
	httpClient  *base.HTTPClient
	marketplace string
	sort        string
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
}

// Compile-time check to ensure Client implements Searcher interface
var _ Searcher = (*Client)(nil)

// NewClient creates a browse client. A zero RequestsPerSecond disables
// pacing; a zero BreakerFailures disables the circuit breaker.
func NewClient(opts Options) *Client {
	c := &Client{
		httpClient:  base.NewHTTPClient(ServiceName, opts.Options),
		marketplace: opts.Marketplace,
		sort:        opts.Sort,
	}
	if c.marketplace == "" {
		c.marketplace = DefaultMarketplace
	}

	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	if opts.BreakerFailures > 0 {
		timeout := opts.BreakerTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		failures := opts.BreakerFailures
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        ServiceName,
			MaxRequests: 1,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			IsSuccessful: func(err error) bool {
				// Calls the caller abandoned and 4xx answers say nothing about upstream health.
				var done *callerDoneError
				return err == nil || errors.As(err, &done) || !base.IsRetryableError(err)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Get().Warn("upstream breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}

	return c
}

// Search runs one item search. When the configured sort mode is rejected
// with a 400 the call is retried once without it.
func (c *Client) Search(ctx context.Context, token string, req SearchRequest) (*SearchResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, base.NewClientError(ServiceName, "search", err)
		}
	}

	if c.breaker == nil {
		return c.search(ctx, token, req)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.search(ctx, token, req)
		if err != nil && ctx.Err() != nil {
			return nil, &callerDoneError{err: err}
		}
		return resp, err
	})
	if err != nil {
		var done *callerDoneError
		if errors.As(err, &done) {
			return nil, done.err
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, base.NewClientError(ServiceName, "search", ErrCircuitOpen)
		}
		return nil, err
	}
	return out.(*SearchResponse), nil
}

// callerDoneError marks a failure that happened after the caller's context
// was canceled or ran past its deadline.
type callerDoneError struct {
	err error
}

func (e *callerDoneError) Error() string { return e.err.Error() }

func (e *callerDoneError) Unwrap() error { return e.err }

func (c *Client) search(ctx context.Context, token string, req SearchRequest) (*SearchResponse, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return nil, err
	}

	marketplace := req.Marketplace
	if marketplace == "" {
		marketplace = c.marketplace
	}
	headers := map[string]string{
		"Authorization":   "Bearer " + token,
		MarketplaceHeader: marketplace,
	}

	var result SearchResponse
	err = c.httpClient.Get(ctx, SearchPath, params, headers, &result)
	if err != nil && params["sort"] != "" && base.StatusCode(err) == 400 {
		logger.Get().Debug("sort mode rejected, retrying without sort",
			zap.String("sort", params["sort"]),
			zap.Error(err),
		)
		delete(params, "sort")
		result = SearchResponse{}
		err = c.httpClient.Get(ctx, SearchPath, params, headers, &result)
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) buildParams(req SearchRequest) (map[string]string, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	params := map[string]string{
		"q":     req.Query,
		"limit": strconv.Itoa(limit),
		"sort":  c.sort,
	}
	if req.CategoryID != "" {
		params["category_ids"] = req.CategoryID
	}
	if req.Condition != "" {
		code, ok := ConditionCode(req.Condition)
		if !ok {
			return nil, base.NewClientError(ServiceName, "search",
				fmt.Errorf("unsupported condition %q", req.Condition))
		}
		params["filter"] = "conditionIds:{" + code + "}"
	}
	return params, nil
}
