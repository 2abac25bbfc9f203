package handlers

import (
	"errors"
	"net/http"
	"pagewidth/core"
	"pagewidth/logger"
	"pagewidth/models"
)

// GetGlobalSettingsHandler returns the global settings record.
// @Summary Get global settings
// @Tags Settings
// @Produce json
// @Success 200 {object} models.GlobalSettings
// @Failure 500 {object} models.ErrorResponse
// @Router /settings/global [get]
func (h *Handlers) GetGlobalSettingsHandler(w http.ResponseWriter, r *http.Request) {
	gs, err := h.engine.LoadGlobal(r.Context())
	if err != nil {
		logger.Error("GetGlobalSettingsHandler: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to read global settings")
		return
	}
	writeJSON(w, http.StatusOK, gs)
}

// SaveGlobalSettingsHandler overwrites the global settings record and
// notifies open pages.
// @Summary Save global settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param settings body models.GlobalSettings true "Global settings"
// @Success 200 {object} models.GlobalSettings
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /settings/global [put]
func (h *Handlers) SaveGlobalSettingsHandler(w http.ResponseWriter, r *http.Request) {
	gs := models.DefaultGlobalSettings()
	if err := decodeJSON(r, &gs); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if err := core.SaveGlobal(r.Context(), h.engine.Store(), gs); err != nil {
		if errors.Is(err, core.ErrInvalidSettings) {
			writeError(w, http.StatusBadRequest, "%v", err)
			return
		}
		logger.Error("SaveGlobalSettingsHandler: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save global settings")
		return
	}
	h.pages.NotifyAll(r.Context())

	saved, err := h.engine.LoadGlobal(r.Context())
	if err != nil {
		logger.Error("SaveGlobalSettingsHandler: reloading settings: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to read global settings")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// GetSiteSettingsHandler returns the settings form for a URL.
// @Summary Get settings form for a page
// @Tags Settings
// @Produce json
// @Param url query string true "Page URL"
// @Success 200 {object} models.SettingsForm
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /settings/site [get]
func (h *Handlers) GetSiteSettingsHandler(w http.ResponseWriter, r *http.Request) {
	u, err := queryURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	form, err := core.LoadForm(r.Context(), h.engine.Store(), u)
	if err != nil {
		logger.Error("GetSiteSettingsHandler: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to read site settings")
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// SaveSiteSettingsHandler runs the settings-form save for a URL.
// @Summary Save settings form for a page
// @Tags Settings
// @Accept json
// @Produce json
// @Param url query string true "Page URL"
// @Param request body models.SaveRequest true "Global and site choices"
// @Success 200 {object} models.SaveResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /settings/site [put]
func (h *Handlers) SaveSiteSettingsHandler(w http.ResponseWriter, r *http.Request) {
	u, err := queryURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	req := models.SaveRequest{
		Global: models.DefaultGlobalSettings(),
		Site:   models.SiteChoice{Pattern: models.PatternPath, PathLevel: 1},
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	result, err := core.SaveForm(r.Context(), h.engine.Store(), u, req)
	if err != nil {
		if errors.Is(err, core.ErrInvalidSettings) {
			writeError(w, http.StatusBadRequest, "%v", err)
			return
		}
		logger.Error("SaveSiteSettingsHandler: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save site settings")
		return
	}
	h.pages.NotifyAll(r.Context())
	writeJSON(w, http.StatusOK, result)
}

// ClearSiteSettingsHandler removes every override for a URL.
// @Summary Clear site overrides for a page
// @Tags Settings
// @Produce json
// @Param url query string true "Page URL"
// @Success 200 {object} models.SaveResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /settings/site [delete]
func (h *Handlers) ClearSiteSettingsHandler(w http.ResponseWriter, r *http.Request) {
	u, err := queryURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	removed, err := core.ClearSite(r.Context(), h.engine.Store(), u)
	if err != nil {
		logger.Error("ClearSiteSettingsHandler: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to clear site settings")
		return
	}
	h.pages.NotifyAll(r.Context())
	writeJSON(w, http.StatusOK, models.SaveResult{RemovedKeys: removed})
}
