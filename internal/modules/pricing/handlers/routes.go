package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers all recommendation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/recommendations", func(r chi.Router) {
		r.Post("/", h.HandleRecommend)
		r.Post("/bulk", h.HandleRecommendBulk)
		r.Get("/history", h.HandleRecommendFromHistory)
	})
}
