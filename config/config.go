package config

import (
	"fmt"
	"os"
	"pagewidth/logger"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const DefaultViewportWidth = 1920

type DefaultPaths struct {
	ConfigDir    string
	LogPathApp   string
	LogPathProxy string
	CACertPath   string
	CAKeyPath    string
	DBPath       string
	CatalogPath  string
	LogLevel     string
}

type Configuration struct {
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Server struct {
		Port    string `mapstructure:"port"`
		LogPath string `mapstructure:"log_path"`
	} `mapstructure:"server"`
	Proxy struct {
		Port       string `mapstructure:"port"`
		CACertPath string `mapstructure:"ca_cert_path"`
		CAKeyPath  string `mapstructure:"ca_key_path"`
		LogPath    string `mapstructure:"log_path"`
	} `mapstructure:"proxy"`
	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
	Catalog struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"catalog"`
	Page struct {
		DefaultViewportWidth int `mapstructure:"default_viewport_width"`
	} `mapstructure:"page"`
}

var AppConfig Configuration

func expandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

func GetDefaultConfigPaths() DefaultPaths {
	var paths DefaultPaths
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not get user config dir: %v. Using current directory.\n", err)
		userConfigDir = "."
	}

	paths.ConfigDir = filepath.Join(userConfigDir, "pagewidth")
	logDir := filepath.Join(paths.ConfigDir, "logs")

	paths.LogPathApp = filepath.Join(logDir, "app.log")
	paths.LogPathProxy = filepath.Join(logDir, "proxy.log")
	paths.CACertPath = filepath.Join(paths.ConfigDir, "pagewidth-ca.crt")
	paths.CAKeyPath = filepath.Join(paths.ConfigDir, "pagewidth-ca.key")
	paths.DBPath = filepath.Join(paths.ConfigDir, "pagewidth.db")
	paths.CatalogPath = filepath.Join(paths.ConfigDir, "catalog.yaml")
	paths.LogLevel = "INFO"
	return paths
}

// newViper builds the viper instance with defaults, config file lookup and
// PAGEWIDTH_ environment overrides.
func newViper(cfgFile string, defaults DefaultPaths) *viper.Viper {
	v := viper.New()
	v.SetDefault("database.path", defaults.DBPath)
	v.SetDefault("server.port", "8778")
	v.SetDefault("server.log_path", defaults.LogPathApp)
	v.SetDefault("proxy.port", "8777")
	v.SetDefault("proxy.ca_cert_path", defaults.CACertPath)
	v.SetDefault("proxy.ca_key_path", defaults.CAKeyPath)
	v.SetDefault("proxy.log_path", defaults.LogPathProxy)
	v.SetDefault("logging.level", defaults.LogLevel)
	v.SetDefault("catalog.path", defaults.CatalogPath)
	v.SetDefault("page.default_viewport_width", DefaultViewportWidth)

	if cfgFile != "" {
		expanded, err := expandTilde(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in config file path '%s': %v. Trying original path.\n", cfgFile, err)
			expanded = cfgFile
		}
		v.SetConfigFile(expanded)
	} else {
		v.AddConfigPath(defaults.ConfigDir)
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PAGEWIDTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration into a Configuration without touching loggers.
// The returned message says where the values came from.
func Load(cfgFile string) (Configuration, string, error) {
	var cfg Configuration
	defaults := GetDefaultConfigPaths()
	v := newViper(cfgFile, defaults)

	msg := "Using default/environment configuration."
	if err := v.ReadInConfig(); err == nil {
		msg = fmt.Sprintf("Using config file: %s", v.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		return cfg, msg, fmt.Errorf("reading config file %s: %w", v.ConfigFileUsed(), err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, msg, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	for _, p := range []*string{
		&cfg.Database.Path,
		&cfg.Server.LogPath,
		&cfg.Proxy.LogPath,
		&cfg.Proxy.CACertPath,
		&cfg.Proxy.CAKeyPath,
		&cfg.Catalog.Path,
	} {
		expanded, err := expandTilde(*p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in '%s': %v.\n", *p, err)
			continue
		}
		*p = expanded
	}
	if cfg.Page.DefaultViewportWidth <= 0 {
		cfg.Page.DefaultViewportWidth = DefaultViewportWidth
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	return cfg, msg, nil
}

// Init loads configuration into AppConfig, applies flag overrides and
// initializes the global loggers.
func Init(cfgFile string, flagAppLogPath, flagProxyLogPath, flagLogLevel string) error {
	cfg, msg, err := Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: %v\n", err)
		return err
	}

	if flagAppLogPath != "" {
		if cfg.Server.LogPath, err = expandTilde(flagAppLogPath); err != nil {
			cfg.Server.LogPath = flagAppLogPath
		}
	}
	if flagProxyLogPath != "" {
		if cfg.Proxy.LogPath, err = expandTilde(flagProxyLogPath); err != nil {
			cfg.Proxy.LogPath = flagProxyLogPath
		}
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = strings.ToUpper(flagLogLevel)
	}
	AppConfig = cfg

	if err := os.MkdirAll(GetDefaultConfigPaths().ConfigDir, 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create main config directory: %v\n", err)
	}
	if err := logger.InitGlobalLoggers(AppConfig.Server.LogPath, AppConfig.Proxy.LogPath, AppConfig.Logging.Level); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Failed to initialize global loggers with final config: %v\n", err)
		return fmt.Errorf("failed to initialize global loggers with final config: %w", err)
	}

	logger.Info("%s", msg)
	if flagAppLogPath != "" || flagProxyLogPath != "" || flagLogLevel != "" {
		logger.Info("Log path/level flags may have overridden config file/defaults.")
	}
	logger.Debug("Final AppConfig Initialized: %+v", AppConfig)
	return nil
}
