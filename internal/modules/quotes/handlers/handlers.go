// Package handlers provides HTTP handlers for quote verification.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/valveprice/internal/modules/quotes"
	"github.com/aristath/valveprice/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles quote verification HTTP requests
type Handler struct {
	service *quotes.Service
	log     zerolog.Logger
}

// NewHandler creates a new quote verification handler
func NewHandler(service *quotes.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "quotes").Logger(),
	}
}

// VerifyRequest lists the quotes to verify
type VerifyRequest struct {
	IDs    []int  `json:"ids" validate:"required,min=1,max=500"`
	Policy string `json:"policy" validate:"omitempty,oneof=tiered related-average"`
}

// HandleVerifyQuote handles GET /api/quotes/{id}/verify
func (h *Handler) HandleVerifyQuote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, "quote id must be an integer")
		return
	}

	policy, err := quotes.ParsePolicy(r.URL.Query().Get("policy"))
	if err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	v, err := h.service.Verify(id, policy)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	utils.WriteResponse(w, r, http.StatusOK, map[string]interface{}{
		"data":     v,
		"metadata": metadata(),
	})
}

// HandleVerifyQuotes handles POST /api/quotes/verify
func (h *Handler) HandleVerifyQuotes(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	policy, err := quotes.ParsePolicy(req.Policy)
	if err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.service.VerifyMany(req.IDs, policy)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	utils.WriteResponse(w, r, http.StatusOK, map[string]interface{}{
		"data":     results,
		"metadata": metadata(),
	})
}

// HandleVerifyAll handles POST /api/quotes/verify-all
func (h *Handler) HandleVerifyAll(w http.ResponseWriter, r *http.Request) {
	policy, err := quotes.ParsePolicy(r.URL.Query().Get("policy"))
	if err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	summary := h.service.VerifyAll(policy)
	utils.WriteResponse(w, r, http.StatusOK, map[string]interface{}{
		"data":     summary,
		"metadata": metadata(),
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, quotes.ErrQuoteNotFound) {
		utils.WriteError(w, r, http.StatusNotFound, err.Error())
		return
	}
	h.log.Error().Err(err).Msg("Quote verification failed")
	utils.WriteError(w, r, http.StatusInternalServerError, "quote verification failed")
}

func metadata() map[string]interface{} {
	return map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
	}
}
