// Package handlers provides HTTP handlers for price recommendations.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/valveprice/internal/modules/pricing"
	"github.com/aristath/valveprice/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Handler handles price recommendation HTTP requests
type Handler struct {
	service *pricing.Service
	log     zerolog.Logger
}

// NewHandler creates a new recommendation handler
func NewHandler(service *pricing.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "recommendations").Logger(),
	}
}

// BulkRequest is a list of line items to price
type BulkRequest struct {
	Items []pricing.LineItem `json:"items" validate:"required,min=1,max=500,dive"`
}

// HandleRecommend handles POST /api/recommendations
func (h *Handler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	var item pricing.LineItem
	if err := utils.DecodeAndValidate(r, &item); err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	rec := h.service.Recommend(item)
	h.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"data":     rec,
		"metadata": metadata(),
	})
}

// HandleRecommendBulk handles POST /api/recommendations/bulk
func (h *Handler) HandleRecommendBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	runID := uuid.NewString()
	timer := utils.NewTimer("recommend_bulk", h.log.With().Str("run_id", runID).Logger())
	results := h.service.RecommendBulk(req.Items)
	timer.Stop(map[string]int{"items": len(results)})

	h.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"runId":   runID,
			"results": results,
		},
		"metadata": metadata(),
	})
}

// HandleRecommendFromHistory handles GET /api/recommendations/history
func (h *Handler) HandleRecommendFromHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			utils.WriteError(w, r, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	res := h.service.RecommendFromHistory(limit)
	h.log.Debug().
		Int("total", res.Summary.Total).
		Int("unmapped", res.Summary.Unmapped).
		Msg("History recommendations computed")

	h.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"data":     res,
		"metadata": metadata(),
	})
}

func metadata() map[string]interface{} {
	return map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	utils.WriteResponse(w, r, status, data)
}
