package server

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrNotConnected means the caller has no marketplace token at all.
	ErrNotConnected = errors.New("marketplace account not connected")
	// ErrNeedsReauth means a token was presented but cannot be used.
	ErrNeedsReauth = errors.New("marketplace authorization needs renewal")
)

// TokenProvider resolves the upstream bearer token for a request.
type TokenProvider interface {
	Token(r *http.Request) (string, error)
}

// BearerTokenProvider reads "Authorization: Bearer <token>". When the
// header is absent and Fallback is set, Fallback is used.
type BearerTokenProvider struct {
	Fallback string
}

var _ TokenProvider = BearerTokenProvider{}

func (p BearerTokenProvider) Token(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		if p.Fallback != "" {
			return p.Fallback, nil
		}
		return "", ErrNotConnected
	}

	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", ErrNeedsReauth
	}
	return token, nil
}

// StaticTokenProvider always returns the same token.
type StaticTokenProvider string

func (p StaticTokenProvider) Token(*http.Request) (string, error) {
	if p == "" {
		return "", ErrNotConnected
	}
	return string(p), nil
}
