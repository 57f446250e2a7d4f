// Package server exposes the comps engine over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/BlockonautAlchemist/ResellrAi-sub001/internal/comps"
)

const (
	maxBodyBytes = 64 << 10
	// statusClientClosedRequest is reported when the caller goes away mid-run.
	statusClientClosedRequest = 499
)

// Comparer is the engine operation the handler needs.
type Comparer interface {
	GetComparables(ctx context.Context, q comps.Query, token string) (*comps.CompsResult, error)
}

var _ Comparer = (*comps.Engine)(nil)

// CompsServer serves POST /v1/comps and GET /healthz.
type CompsServer struct {
	engine Comparer
	tokens TokenProvider
	log    *zap.Logger
}

// NewCompsServer creates the HTTP facade over engine.
func NewCompsServer(engine Comparer, tokens TokenProvider, log *zap.Logger) *CompsServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &CompsServer{engine: engine, tokens: tokens, log: log}
}

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Routes registers the handlers on a fresh mux.
func (s *CompsServer) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/comps", s.handleComps)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *CompsServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *CompsServer) handleComps(w http.ResponseWriter, r *http.Request) {
	token, err := s.tokens.Token(r)
	if err != nil {
		code := "not_connected"
		if errors.Is(err, ErrNeedsReauth) {
			code = "needs_reauth"
		}
		s.writeError(w, http.StatusUnauthorized, ErrorDetail{Code: code, Message: err.Error()})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, ErrorDetail{Code: "body_too_large", Message: err.Error()})
		return
	}
	var q comps.Query
	if err := sonic.Unmarshal(body, &q); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrorDetail{Code: "invalid_json", Message: err.Error()})
		return
	}

	result, err := s.engine.GetComparables(r.Context(), q, token)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *CompsServer) writeEngineError(w http.ResponseWriter, err error) {
	var verr *comps.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeError(w, http.StatusBadRequest, ErrorDetail{Code: "invalid_query", Message: verr.Error(), Field: verr.Field})
	case errors.Is(err, comps.ErrInvalidQuery):
		s.writeError(w, http.StatusBadRequest, ErrorDetail{Code: "invalid_query", Message: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, http.StatusGatewayTimeout, ErrorDetail{Code: "timeout", Message: err.Error()})
	case errors.Is(err, context.Canceled):
		s.log.Debug("comps request canceled by caller")
		s.writeError(w, statusClientClosedRequest, ErrorDetail{Code: "canceled", Message: err.Error()})
	default:
		s.log.Error("comps request failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, ErrorDetail{Code: "internal", Message: "internal error"})
	}
}

func (s *CompsServer) writeError(w http.ResponseWriter, status int, detail ErrorDetail) {
	s.writeJSON(w, status, ErrorBody{Error: detail})
}

func (s *CompsServer) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.log.Debug("failed to write response", zap.Error(err))
	}
}
