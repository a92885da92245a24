// Package main provides the cv_studio command: the preview server of the CV
// editor and offline tools to render, export, and check CVs.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-studio/internal/config"
	"github.com/jonathan/cv-studio/internal/observability"
)

var (
	configFile string
	verbose    bool

	// settings and logger are set by the root pre-run hook.
	settings config.Config
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cv_studio",
	Short: "CV editor with live preview and PDF export",
	Long: `cv_studio serves a CV editor with a live preview in twelve templates and
exports the rendered CV as a paginated A4 PDF. The subcommands render, export,
and check CV documents without the server.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

// loadSettings resolves the configuration: defaults, then the config file,
// then the environment.
func loadSettings(_ *cobra.Command, _ []string) error {
	cfg := config.Config{}
	if configFile != "" {
		loaded, err := config.LoadConfig(configFile)
		if err != nil {
			return err
		}
		cfg = *loaded
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return err
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	settings = cfg
	logger = observability.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
