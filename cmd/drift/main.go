// Package main provides the SignalDrift terminal client.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/signaldrift/signaldrift/internal/client/gateway"
	"github.com/signaldrift/signaldrift/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "drift",
	Short: "SignalDrift analysis client",
	Long:  "SignalDrift uploads documents, manages analysis prompts, and runs AI analysis against a SignalDrift server, from the command line or an interactive terminal UI.",
}

var (
	flagConfig string
	flagServer string
	flagAPIKey string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config.yaml (defaults to CONFIG_PATH or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "Server base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "API key (overrides config)")
}

// loadConfig resolves the config file path and falls back to built-in
// defaults when no file exists.
func loadConfig() *config.Config {
	path := flagConfig
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Default()
	}
	return cfg
}

// newGateway builds the API client from config plus flag overrides.
func newGateway() *gateway.Client {
	cfg := loadConfig()
	baseURL := cfg.Client.BaseURL
	if flagServer != "" {
		baseURL = flagServer
	}
	apiKey := cfg.Client.APIKey
	if flagAPIKey != "" {
		apiKey = flagAPIKey
	}
	return gateway.New(baseURL, apiKey)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
