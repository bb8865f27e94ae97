package server

import (
	"net/http"
	"time"

	"github.com/aristath/valveprice/internal/refdata"
	"github.com/aristath/valveprice/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// PriceTablePreviewRows caps the rows returned by the price table endpoint
const PriceTablePreviewRows = 100

// DataHandlers serves the loaded reference tables
type DataHandlers struct {
	store *refdata.Store
	log   zerolog.Logger
}

// NewDataHandlers creates reference data handlers
func NewDataHandlers(store *refdata.Store, log zerolog.Logger) *DataHandlers {
	return &DataHandlers{
		store: store,
		log:   log.With().Str("handler", "data").Logger(),
	}
}

// RegisterRoutes registers the reference data routes
func (h *DataHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/data", func(r chi.Router) {
		r.Get("/price-table", h.HandlePriceTable)
		r.Get("/quotes", h.HandleQuotes)
		r.Get("/lme", h.HandleLME)
		r.Get("/bc-orders", h.HandleBCOrders)
	})
}

// HandlePriceTable handles GET /api/data/price-table (first rows only)
func (h *DataHandlers) HandlePriceTable(w http.ResponseWriter, r *http.Request) {
	rows := h.store.PriceTable()
	total := len(rows)
	if len(rows) > PriceTablePreviewRows {
		rows = rows[:PriceTablePreviewRows]
	}
	h.write(w, r, rows, total)
}

// HandleQuotes handles GET /api/data/quotes
func (h *DataHandlers) HandleQuotes(w http.ResponseWriter, r *http.Request) {
	rows := h.store.Quotes()
	h.write(w, r, rows, len(rows))
}

// HandleLME handles GET /api/data/lme
func (h *DataHandlers) HandleLME(w http.ResponseWriter, r *http.Request) {
	rows := h.store.LME()
	h.write(w, r, rows, len(rows))
}

// HandleBCOrders handles GET /api/data/bc-orders
func (h *DataHandlers) HandleBCOrders(w http.ResponseWriter, r *http.Request) {
	rows := h.store.BCOrders()
	h.write(w, r, rows, len(rows))
}

func (h *DataHandlers) write(w http.ResponseWriter, r *http.Request, rows interface{}, total int) {
	utils.WriteResponse(w, r, http.StatusOK, map[string]interface{}{
		"data": rows,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"total":     total,
			"source":    h.store.Source(),
		},
	})
}
