package base

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/utils"
)

// Default values for upstream HTTP clients.
const (
	DefaultTimeout       = 10 * time.Second
	DefaultRetryWait     = 500 * time.Millisecond
	DefaultRetryMaxWait  = 3 * time.Second
	maxErrorBodyInReport = 512
)

// ClientError represents HTTP client operation errors with context.
type ClientError struct {
	Op         string // the operation that failed
	Service    string // the service name
	StatusCode int    // HTTP status code (if applicable)
	Err        error  // the underlying error
}

func (e *ClientError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("client: %s %s failed with status %d: %v",
			e.Service, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("client: %s %s failed: %v", e.Service, e.Op, e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// NewClientError creates a new ClientError with the given parameters.
func NewClientError(service, op string, err error) *ClientError {
	return &ClientError{
		Op:      op,
		Service: service,
		Err:     err,
	}
}

// NewHTTPError creates a new ClientError for HTTP status code errors.
func NewHTTPError(service, op string, statusCode int, body string) *ClientError {
	body = utils.TruncateUTF8(body, maxErrorBodyInReport)
	return &ClientError{
		Op:         op,
		Service:    service,
		StatusCode: statusCode,
		Err:        fmt.Errorf("HTTP %d: %s", statusCode, body),
	}
}

// Options configures an HTTPClient.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

// HTTPClient provides a standardized HTTP client configuration.
// Authentication is per request because callers own their tokens.
type HTTPClient struct {
	client  *resty.Client
	service string // service name for error reporting
}

// NewHTTPClient creates a new HTTP client with standard configuration.
// The timeout bounds every attempt; transient failures (network errors
// and 5xx) are retried RetryCount times.
func NewHTTPClient(service string, opts Options) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RetryCount < 0 {
		opts.RetryCount = 0
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(DefaultRetryWait).
		SetRetryMaxWaitTime(DefaultRetryMaxWait).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return !errors.Is(err, context.Canceled)
		}
		return r.StatusCode() >= http.StatusInternalServerError
	})

	return &HTTPClient{
		client:  client,
		service: service,
	}
}

// Get performs a GET request with standardized error handling. Any non-2xx
// status is reported as a *ClientError carrying the status code.
func (h *HTTPClient) Get(ctx context.Context, endpoint string, params, headers map[string]string, result interface{}) error {
	req := h.client.R().
		SetContext(ctx).
		SetResult(result)

	for k, v := range params {
		if v != "" {
			req.SetQueryParam(k, v)
		}
	}
	req.SetHeaders(headers)

	resp, err := req.Get(endpoint)
	if err != nil {
		return NewClientError(h.service, "GET "+endpoint, err)
	}

	if !resp.IsSuccess() {
		return NewHTTPError(h.service, "GET "+endpoint, resp.StatusCode(), resp.String())
	}

	return nil
}

// IsRetryableError reports whether an error is retryable.
func IsRetryableError(err error) bool {
	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		return false
	}

	// Consider 5xx status codes and network errors as retryable
	return clientErr.StatusCode >= 500 || clientErr.StatusCode == 0
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.StatusCode
	}
	return 0
}
