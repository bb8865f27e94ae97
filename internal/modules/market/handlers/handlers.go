// Package handlers provides HTTP handlers for market trend analysis.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/valveprice/internal/modules/market"
	"github.com/aristath/valveprice/internal/utils"
	"github.com/rs/zerolog"
)

// Handler handles market trend HTTP requests
type Handler struct {
	service *market.Service
	log     zerolog.Logger
}

// NewHandler creates a new market handler
func NewHandler(service *market.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "market").Logger(),
	}
}

// HandleGetTrend handles GET /api/market/trend
func (h *Handler) HandleGetTrend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := market.TrendOptions{
		Strategy: q.Get("strategy"),
		Series:   q.Get("series"),
		Vendors:  utils.ParseCSV(q.Get("vendors")),
	}
	if raw := q.Get("lag"); raw != "" {
		lag, err := strconv.Atoi(raw)
		if err != nil {
			utils.WriteError(w, r, http.StatusBadRequest, "lag must be an integer")
			return
		}
		opts.LagMonths = &lag
	}

	trend, err := h.service.Trend(opts)
	if err != nil {
		if errors.Is(err, market.ErrInvalidOption) {
			utils.WriteError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to compute market trend")
		utils.WriteError(w, r, http.StatusInternalServerError, "failed to compute market trend")
		return
	}

	utils.WriteResponse(w, r, http.StatusOK, map[string]interface{}{
		"data": trend,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}
