package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"pagewidth/config"
	"pagewidth/core"
	"pagewidth/logger"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	startServerPort string
	startProxyPort  string
)

// serveUntilDone runs srv until ctx is cancelled, then shuts it down.
// A listen error cancels the whole group.
func serveUntilDone(ctx context.Context, cancel context.CancelFunc, wg *sync.WaitGroup, name string, srv *http.Server) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		go func() {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Start Command(%s): Graceful shutdown failed: %v", name, err)
			} else {
				logger.Info("Start Command(%s): Gracefully stopped.", name)
			}
		}()

		logger.Info("Start Command(%s): Listening on %s", name, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Start Command(%s): ListenAndServe error: %v", name, err)
			cancel()
		}
	}()
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts all pagewidth services (API server and style proxy)",
	Long: `Starts both the API server and the style injection proxy concurrently.
Both share one settings store and catalog. Press Ctrl+C to shut down.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverPort := portOrDefault(cmd, "server-port", startServerPort, config.AppConfig.Server.Port, "8778")
		proxyPort := portOrDefault(cmd, "proxy-port", startProxyPort, config.AppConfig.Proxy.Port, "8777")
		logger.Info("Start Command: Final ports determined - Server: %s, Proxy: %s", serverPort, proxyPort)

		ca, err := core.LoadCA(config.AppConfig.Proxy.CACertPath, config.AppConfig.Proxy.CAKeyPath)
		if err != nil {
			logger.Error("Start Command: %v. Run 'proxy init-ca' first.", err)
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		var wg sync.WaitGroup

		pages := core.NewPageRegistry(engine, core.NewHub())
		serveUntilDone(ctx, cancel, &wg, "API", &http.Server{
			Addr:    ":" + serverPort,
			Handler: newMainRouter(pages),
		})

		styleProxy := core.NewStyleProxy(engine, config.AppConfig.Page.DefaultViewportWidth)
		serveUntilDone(ctx, cancel, &wg, "Proxy", &http.Server{
			Addr:    ":" + proxyPort,
			Handler: styleProxy.Handler(ca),
		})

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		logger.Info("Start Command: All services launched. Press Ctrl+C to exit.")

		select {
		case sig := <-sigs:
			logger.Info("Start Command: Received signal: %s. Initiating shutdown...", sig)
		case <-ctx.Done():
			logger.Info("Start Command: Context cancelled (likely due to a service error). Initiating shutdown...")
		}
		cancel()

		shutdownComplete := make(chan struct{})
		go func() {
			wg.Wait()
			close(shutdownComplete)
		}()
		select {
		case <-shutdownComplete:
			logger.Info("Start Command: All services shut down.")
		case <-time.After(10 * time.Second):
			logger.Error("Start Command: Shutdown timed out. Forcing exit.")
		}
		return nil
	},
}

func init() {
	startCmd.Flags().StringVar(&startServerPort, "server-port", "8778", "Port for the API server (overrides config)")
	startCmd.Flags().StringVar(&startProxyPort, "proxy-port", "8777", "Port for the style proxy (overrides config)")
	rootCmd.AddCommand(startCmd)
}
