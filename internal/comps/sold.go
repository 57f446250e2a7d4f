package comps

import (
	"context"
	"errors"
)

// ErrSoldDataUnavailable means the provider cannot supply completed sales.
var ErrSoldDataUnavailable = errors.New("sold data unavailable")

// SoldDataProvider supplies completed-sale listings for a query. Returned
// candidates go through the same scoring and tier selection as active ones.
type SoldDataProvider interface {
	SoldComparables(ctx context.Context, q Query, shape *Shape, token string) ([]Candidate, error)
}

// UnavailableSoldProvider is the default provider: the integrated search
// API exposes only active listings.
type UnavailableSoldProvider struct{}

func (UnavailableSoldProvider) SoldComparables(context.Context, Query, *Shape, string) ([]Candidate, error) {
	return nil, ErrSoldDataUnavailable
}
