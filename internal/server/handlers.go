package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/valveprice/internal/utils"
)

// handleLiveness answers load balancer probes
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "valveprice",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleHealth reports table counts and whether commentary can use the language model
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	store := s.container.Store

	utils.WriteResponse(w, r, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"status":   "healthy",
			"source":   store.Source(),
			"loadedAt": store.LoadedAt().Format(time.RFC3339),
			"counts":   store.Counts(),
			"apiKey":   s.cfg.HasLLM(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
