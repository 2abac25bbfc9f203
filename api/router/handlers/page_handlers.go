package handlers

import (
	"errors"
	"net/http"
	"pagewidth/core"
	"pagewidth/logger"
	"pagewidth/models"

	"github.com/go-chi/chi/v5"
)

// pageFromRequest looks up the page named by the pageID path parameter and
// writes a 404 when it does not exist.
func (h *Handlers) pageFromRequest(w http.ResponseWriter, r *http.Request) (*core.Page, bool) {
	id := chi.URLParam(r, "pageID")
	page, ok := h.pages.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Page %s not found", id)
		return nil, false
	}
	return page, true
}

// OpenPageHandler opens a page session and runs its first cycle.
// @Summary Open a page session
// @Tags Pages
// @Accept json
// @Produce json
// @Param request body models.PageCreateRequest true "Page"
// @Success 201 {object} models.PageState
// @Failure 400 {object} models.ErrorResponse
// @Router /pages [post]
func (h *Handlers) OpenPageHandler(w http.ResponseWriter, r *http.Request) {
	var req models.PageCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	page, err := h.pages.Open(r.Context(), req)
	if err != nil {
		if errors.Is(err, core.ErrInvalidPage) {
			writeError(w, http.StatusBadRequest, "%v", err)
			return
		}
		logger.Error("OpenPageHandler: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to open page")
		return
	}
	writeJSON(w, http.StatusCreated, page.State())
}

// GetPageHandler returns a page session's state.
// @Summary Get a page session
// @Tags Pages
// @Produce json
// @Param pageID path string true "Page ID"
// @Success 200 {object} models.PageState
// @Failure 404 {object} models.ErrorResponse
// @Router /pages/{pageID} [get]
func (h *Handlers) GetPageHandler(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pageFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, page.State())
}

// ClosePageHandler closes a page session.
// @Summary Close a page session
// @Tags Pages
// @Param pageID path string true "Page ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /pages/{pageID} [delete]
func (h *Handlers) ClosePageHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "pageID")
	if !h.pages.Close(id) {
		writeError(w, http.StatusNotFound, "Page %s not found", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendPageMessageHandler delivers a message to a page's listener.
// @Summary Send a message to a page
// @Description Returns the page's acknowledgement, or 404 when no listener is loaded.
// @Tags Pages
// @Accept json
// @Produce json
// @Param pageID path string true "Page ID"
// @Param message body models.Message true "Message"
// @Success 200 {object} models.Ack
// @Failure 404 {object} models.ErrorResponse
// @Router /pages/{pageID}/messages [post]
func (h *Handlers) SendPageMessageHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "pageID")
	var msg models.Message
	if err := decodeJSON(r, &msg); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	ack, err := h.pages.Hub().Send(id, msg)
	if err != nil {
		if errors.Is(err, core.ErrNotLoaded) {
			writeError(w, http.StatusNotFound, "%v", err)
			return
		}
		logger.Error("SendPageMessageHandler: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to deliver message")
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// ResizePageHandler reports a new viewport width.
// @Summary Resize a page
// @Tags Pages
// @Accept json
// @Produce json
// @Param pageID path string true "Page ID"
// @Param request body models.ResizeRequest true "Viewport"
// @Success 200 {object} models.PageState
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /pages/{pageID}/resize [post]
func (h *Handlers) ResizePageHandler(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pageFromRequest(w, r)
	if !ok {
		return
	}
	var req models.ResizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if req.ViewportWidth <= 0 {
		writeError(w, http.StatusBadRequest, "viewport_width must be positive")
		return
	}
	if _, err := page.Resize(r.Context(), req.ViewportWidth); err != nil && !errors.Is(err, core.ErrNotApplicable) {
		logger.Error("ResizePageHandler: %v", err)
	}
	writeJSON(w, http.StatusOK, page.State())
}

// FullscreenPageHandler reports a fullscreen change.
// @Summary Change a page's fullscreen state
// @Tags Pages
// @Accept json
// @Produce json
// @Param pageID path string true "Page ID"
// @Param request body models.FullscreenRequest true "Fullscreen state"
// @Success 200 {object} models.PageState
// @Failure 404 {object} models.ErrorResponse
// @Router /pages/{pageID}/fullscreen [post]
func (h *Handlers) FullscreenPageHandler(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pageFromRequest(w, r)
	if !ok {
		return
	}
	var req models.FullscreenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if _, err := page.SetFullscreen(r.Context(), req.Fullscreen); err != nil && !errors.Is(err, core.ErrNotApplicable) {
		logger.Error("FullscreenPageHandler: %v", err)
	}
	writeJSON(w, http.StatusOK, page.State())
}

// NotifyPageHandler sends an update to a page, reloading it when its
// listener is not loaded.
// @Summary Notify a page of a settings change
// @Tags Pages
// @Produce json
// @Param pageID path string true "Page ID"
// @Success 200 {object} models.NotifyResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /pages/{pageID}/notify [post]
func (h *Handlers) NotifyPageHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "pageID")
	resp, err := h.pages.Notify(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrPageNotFound) {
			writeError(w, http.StatusNotFound, "Page %s not found", id)
			return
		}
		logger.Error("NotifyPageHandler: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to notify page")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
