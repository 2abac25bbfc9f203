package cmd

import (
	"net/http"
	"pagewidth/api"
	"pagewidth/api/router/handlers"
	"pagewidth/config"
	"pagewidth/core"
	"pagewidth/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
)

var standaloneServerPort string

// newMainRouter mounts the API under /api.
func newMainRouter(pages *core.PageRegistry) http.Handler {
	h := handlers.New(engine, pages, config.AppConfig.Page.DefaultViewportWidth)
	mainRouter := chi.NewRouter()
	mainRouter.Use(middleware.RequestID)
	mainRouter.Use(middleware.RealIP)
	mainRouter.Mount("/api", api.NewRouter(h))
	mainRouter.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/health", http.StatusFound)
	})
	return mainRouter
}

func portOrDefault(cmd *cobra.Command, flagName, flagValue, configValue, fallback string) string {
	port := flagValue
	if !cmd.Flags().Changed(flagName) {
		port = configValue
	}
	if port == "" {
		logger.Error("Port for --%s is empty after checking flag and config, defaulting to %s", flagName, fallback)
		port = fallback
	}
	return port
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the API server (can be run standalone or as part of 'start')",
	RunE: func(cmd *cobra.Command, args []string) error {
		portToUse := portOrDefault(cmd, "port", standaloneServerPort, config.AppConfig.Server.Port, "8778")
		pages := core.NewPageRegistry(engine, core.NewHub())

		logger.Info("Server Command: API listening on :%s", portToUse)
		if err := http.ListenAndServe(":"+portToUse, newMainRouter(pages)); err != nil {
			logger.Error("Could not start server: %v", err)
			return err
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().StringVarP(&standaloneServerPort, "port", "p", "8778", "Port for the server to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
