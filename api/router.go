package api

import (
	"net/http"
	"pagewidth/api/router/handlers"
	"pagewidth/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates the API router. All registered paths are relative to the
// /api base path.
func NewRouter(h *handlers.Handlers) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	handlers.RegisterHealthRoutes(router)
	handlers.RegisterVersionRoutes(router)
	handlers.RegisterSettingsRoutes(router, h)
	handlers.RegisterEvaluateRoutes(router, h)
	handlers.RegisterPageRoutes(router, h)
	handlers.RegisterCatalogRoutes(router, h)
	RegisterDocsRoutes(router)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		logger.Error("API SUB-ROUTER CATCH-ALL: Unhandled route relative to /api: %s %s", r.Method, r.URL.Path)
		http.NotFound(w, r)
	})
	return router
}
