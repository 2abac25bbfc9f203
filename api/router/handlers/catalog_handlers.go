package handlers

import (
	"net/http"
	"pagewidth/models"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func RegisterCatalogRoutes(r chi.Router, h *Handlers) {
	r.Get("/catalog/lookup", h.CatalogLookupHandler)
}

// CatalogLookupHandler returns the catalog entries matching a URL.
// @Summary Look up catalog entries
// @Tags Catalog
// @Produce json
// @Param url query string true "Page URL"
// @Param width query int false "Width used to render rule values"
// @Success 200 {array} models.CatalogEntry
// @Failure 400 {object} models.ErrorResponse
// @Router /catalog/lookup [get]
func (h *Handlers) CatalogLookupHandler(w http.ResponseWriter, r *http.Request) {
	u, err := queryURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	width := models.DefaultWidth
	if raw := r.URL.Query().Get("width"); raw != "" {
		width, err = strconv.Atoi(raw)
		if err != nil || width <= 0 {
			writeError(w, http.StatusBadRequest, "width must be a positive integer")
			return
		}
	}

	entries := []models.CatalogEntry{}
	if c := h.engine.Catalog(); c != nil {
		if found := c.LookupSiteRules(u.String(), width); found != nil {
			entries = found
		}
	}
	writeJSON(w, http.StatusOK, entries)
}
