package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers all quote verification routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/quotes", func(r chi.Router) {
		r.Get("/{id}/verify", h.HandleVerifyQuote)
		r.Post("/verify", h.HandleVerifyQuotes)
		r.Post("/verify-all", h.HandleVerifyAll)
	})
}
