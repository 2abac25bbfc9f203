package handlers

import (
	"net/http"
	"pagewidth/core"
	"pagewidth/logger"
	"pagewidth/models"

	"github.com/go-chi/chi/v5"
)

func RegisterEvaluateRoutes(r chi.Router, h *Handlers) {
	r.Post("/evaluate", h.EvaluateHandler)
}

// EvaluateHandler resolves settings and decides for one URL and viewport.
// @Summary Evaluate a page
// @Description Resolves the effective settings for a URL and returns the decision and compiled CSS.
// @Tags Evaluate
// @Accept json
// @Produce json
// @Param request body models.EvaluateRequest true "Page to evaluate"
// @Success 200 {object} models.EvaluateResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /evaluate [post]
func (h *Handlers) EvaluateHandler(w http.ResponseWriter, r *http.Request) {
	var req models.EvaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	u, err := core.ParsePageURL(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "text/html"
	}
	if !core.IsTextContent(req.ContentType) {
		writeJSON(w, http.StatusOK, models.EvaluateResponse{Skipped: true})
		return
	}
	viewport := req.ViewportWidth
	if viewport <= 0 {
		viewport = h.defaultViewport
	}

	eff, d, err := h.engine.Evaluate(r.Context(), u, viewport)
	if err != nil {
		logger.Error("EvaluateHandler: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to evaluate %s", req.URL)
		return
	}
	writeJSON(w, http.StatusOK, models.EvaluateResponse{Effective: &eff, Decision: &d})
}
