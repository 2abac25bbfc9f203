package handlers

import (
	"github.com/go-chi/chi/v5"
)

func RegisterSettingsRoutes(r chi.Router, h *Handlers) {
	r.Route("/settings/global", func(r chi.Router) {
		r.Get("/", h.GetGlobalSettingsHandler)
		r.Put("/", h.SaveGlobalSettingsHandler)
	})

	r.Route("/settings/site", func(r chi.Router) {
		r.Get("/", h.GetSiteSettingsHandler)
		r.Put("/", h.SaveSiteSettingsHandler)
		r.Delete("/", h.ClearSiteSettingsHandler)
	})
}
