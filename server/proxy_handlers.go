package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jrsteele09/go-github-dashboard/internal/errors"
	"github.com/jrsteele09/go-github-dashboard/proxy"
	"github.com/rs/zerolog"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	maxRequestBody  = 64 << 10
)

type authenticateBody struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri"`
	State       string `json:"state"`
}

type refreshBody struct {
	RefreshToken string `json:"refreshToken"`
}

type errorRequest struct {
	Body   json.RawMessage `json:"body"`
	Method string          `json:"method"`
	URL    string          `json:"url"`
}

type errorEnvelope struct {
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Request errorRequest `json:"request"`
}

// AuthenticateHandler exchanges {code, redirectUri, state} for a token.
func (s *Server) AuthenticateHandler() http.HandlerFunc {
	return s.exchangeHandler("authenticate", func(ctx context.Context, body []byte) (json.RawMessage, error) {
		var req authenticateBody
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, fmt.Errorf("malformed request body: %v: %w", err, errors.ErrInvalidRequest)
		}
		return s.exchanger.Authenticate(ctx, proxy.AuthenticateRequest{
			Code:        req.Code,
			RedirectURI: req.RedirectURI,
			State:       req.State,
		})
	})
}

// RefreshHandler exchanges {refreshToken} for a new token.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return s.exchangeHandler("refresh", func(ctx context.Context, body []byte) (json.RawMessage, error) {
		var req refreshBody
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, fmt.Errorf("malformed request body: %v: %w", err, errors.ErrInvalidRequest)
		}
		return s.exchanger.Refresh(ctx, req.RefreshToken)
	})
}

func (s *Server) exchangeHandler(op string, exchange func(context.Context, []byte) (json.RawMessage, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
		if err != nil {
			s.metrics.exchanges.WithLabelValues(op, "error").Inc()
			writeErrorEnvelope(w, r, body, fmt.Errorf("read request body: %w", err))
			return
		}

		token, err := exchange(r.Context(), body)
		if err != nil {
			s.metrics.exchanges.WithLabelValues(op, "error").Inc()
			logger.Error().Err(err).Str("operation", op).Msg("token exchange failed")
			writeErrorEnvelope(w, r, body, err)
			return
		}

		s.metrics.exchanges.WithLabelValues(op, "ok").Inc()
		w.Header().Set("Content-Type", contentTypeJSON)
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(token)
	}
}

// writeErrorEnvelope writes the 500 failure body echoing the client request.
func writeErrorEnvelope(w http.ResponseWriter, r *http.Request, body []byte, err error) {
	envelope := errorEnvelope{
		Status:  http.StatusInternalServerError,
		Message: err.Error(),
		Request: errorRequest{
			Body:   echoBody(body),
			Method: r.Method,
			URL:    r.URL.RequestURI(),
		},
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(envelope)
}

// echoBody returns body as JSON: verbatim when valid, otherwise as a string.
func echoBody(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
