package server

import (
	"encoding/json"
	"net/http"

	"github.com/sony/gobreaker"
)

type breakerState interface {
	State() gobreaker.State
}

// HealthHandler reports liveness and, when known, the upstream breaker state.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]string{"status": "ok"}
		if b, ok := s.exchanger.(breakerState); ok {
			resp["upstream"] = b.State().String()
		}
		w.Header().Set("Content-Type", contentTypeJSON)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
