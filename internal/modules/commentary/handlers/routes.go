package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers all commentary routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/commentary", func(r chi.Router) {
		r.Get("/stream", h.HandleStream)
		r.Get("/ws", h.HandleWebSocket)
		r.Post("/{kind}", h.HandleGenerate)
	})
}
