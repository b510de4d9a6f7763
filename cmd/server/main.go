package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/logging"
)

var (
	port     string
	logLevel string
	devMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "postgen",
	Short: "Turn product pages into social media posts",
	Long: `postgen fetches a product page, asks Gemini for a ready to publish
social media post with an illustration and forwards approved posts to an
automation webhook.

Configuration comes from the environment and .env.local / .env files.
Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "human readable logs and gin debug mode")
	rootCmd.Flags().StringVar(&port, "port", "", "server port (overrides PORT)")
	serveCmd.Flags().StringVar(&port, "port", "", "server port (overrides PORT)")

	rootCmd.AddCommand(serveCmd, generateCmd, publishCmd)
}

// loadConfig reads configuration and applies global flag overrides.
func loadConfig() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if devMode {
		cfg.Logging.Development = true
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}
	return cfg, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
