package cmd

import (
	"fmt"
	"pagewidth/config"
	"pagewidth/core"
	"pagewidth/logger"

	"github.com/spf13/cobra"
)

var standaloneProxyPort string

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Manages the style injection proxy (can be run standalone or as part of 'start')",
}

var proxyStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the style injection proxy",
	Long: `Starts the Man-in-the-Middle proxy that applies page width settings to
HTML documents as they are loaded. Configure your browser to use this proxy
and trust the CA certificate generated with 'proxy init-ca'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		portToUse := portOrDefault(cmd, "port", standaloneProxyPort, config.AppConfig.Proxy.Port, "8777")

		caCertPath := config.AppConfig.Proxy.CACertPath
		caKeyPath := config.AppConfig.Proxy.CAKeyPath
		if caCertPath == "" || caKeyPath == "" {
			return fmt.Errorf("proxy CA certificate or key path not configured; check config or run 'proxy init-ca' first")
		}
		logger.ProxyInfo("Proxy using CA Cert: %s, CA Key: %s", caCertPath, caKeyPath)

		err := core.StartStyleProxy(portToUse, engine, caCertPath, caKeyPath, config.AppConfig.Page.DefaultViewportWidth)
		if err != nil {
			logger.ProxyError("Error starting proxy: %v", err)
		}
		return err
	},
}

var proxyInitCACmd = &cobra.Command{
	Use:   "init-ca",
	Short: "Generates the root CA certificate and key for the proxy",
	RunE: func(cmd *cobra.Command, args []string) error {
		certPath := config.AppConfig.Proxy.CACertPath
		keyPath := config.AppConfig.Proxy.CAKeyPath
		if certPath == "" || keyPath == "" {
			return fmt.Errorf("CA certificate or key path is not defined in configuration")
		}
		if err := core.GenerateAndSaveCA(certPath, keyPath); err != nil {
			return err
		}
		fmt.Printf("CA certificate saved to %s\nCA private key saved to %s\n", certPath, keyPath)
		fmt.Println("Please import the CA certificate into your browser/system's trust store.")
		return nil
	},
}

func init() {
	proxyStartCmd.Flags().StringVarP(&standaloneProxyPort, "port", "p", "8777", "Port for the proxy server to listen on (overrides config)")

	proxyCmd.AddCommand(proxyStartCmd)
	proxyCmd.AddCommand(proxyInitCACmd)
	rootCmd.AddCommand(proxyCmd)
}
