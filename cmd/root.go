package cmd

import (
	"fmt"
	"os"
	"pagewidth/catalog"
	"pagewidth/config"
	"pagewidth/core"
	"pagewidth/database"
	"pagewidth/logger"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	cfgFile          string
	dbPath           string
	catalogPathFlag  string
	appLogPathFlag   string
	proxyLogPathFlag string
	logLevelFlag     string

	appCatalog *catalog.Catalog
	engine     *core.Engine
)

func expandTildeCmd(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// resolvePath prefers a flag value over the configured one.
func resolvePath(flagValue, configValue string) string {
	if flagValue == "" {
		return configValue
	}
	expanded, err := expandTildeCmd(flagValue)
	if err != nil {
		logger.Error("Error expanding tilde in '%s': %v. Using original.", flagValue, err)
		return flagValue
	}
	return expanded
}

var rootCmd = &cobra.Command{
	Use:   "pagewidth",
	Short: "Constrains the rendered width of web pages",
	Long: `pagewidth keeps global and per-site page width settings, decides how a
page should be constrained at a given viewport, and applies the result to
live page sessions or to HTML proxied through its MITM proxy.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(cfgFile, appLogPathFlag, proxyLogPathFlag, logLevelFlag); err != nil {
			return fmt.Errorf("failed to initialize config in PersistentPreRunE: %w", err)
		}

		finalDBPath := resolvePath(dbPath, config.AppConfig.Database.Path)
		if finalDBPath == "" {
			logger.Error("PersistentPreRunE: Database path is empty after checking flag and config! Falling back to 'pagewidth.db' in CWD.")
			finalDBPath = "pagewidth.db"
		}
		logger.Info("PersistentPreRunE: Attempting to InitDB with final path: '%s'", finalDBPath)
		if err := database.InitDB(finalDBPath); err != nil {
			return fmt.Errorf("failed to initialize database at %s: %w", finalDBPath, err)
		}

		catalogPath := resolvePath(catalogPathFlag, config.AppConfig.Catalog.Path)
		c, err := catalog.Load(catalogPath)
		if err != nil {
			// Broken entries are skipped; the rest of the catalog stays usable.
			logger.Error("Catalog %s: %v", catalogPath, err)
		}
		appCatalog = c
		engine = core.NewEngine(database.NewKVStore(database.DB), appCatalog)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := database.Close(); err != nil {
			logger.Error("Closing database: %v", err)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/pagewidth/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "dbpath", "", "path to SQLite database file (overrides config/default)")
	rootCmd.PersistentFlags().StringVar(&catalogPathFlag, "catalog", "", "path to the site rule catalog YAML (overrides config/default)")
	rootCmd.PersistentFlags().StringVar(&appLogPathFlag, "app-log", "", "path for the application log file (overrides config/default)")
	rootCmd.PersistentFlags().StringVar(&proxyLogPathFlag, "proxy-log", "", "path for the proxy log file (overrides config/default)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: DEBUG, INFO, WARN, ERROR (overrides config/default)")
}
