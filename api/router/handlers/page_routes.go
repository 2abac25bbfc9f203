package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterPageRoutes sets up the live page session routes.
func RegisterPageRoutes(r chi.Router, h *Handlers) {
	r.Post("/pages", h.OpenPageHandler)

	r.Route("/pages/{pageID}", func(r chi.Router) {
		r.Get("/", h.GetPageHandler)
		r.Delete("/", h.ClosePageHandler)
		r.Post("/messages", h.SendPageMessageHandler)
		r.Post("/resize", h.ResizePageHandler)
		r.Post("/fullscreen", h.FullscreenPageHandler)
		r.Post("/notify", h.NotifyPageHandler)
	})
}
