package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/v0gen/v0gen/internal"
)

var (
	verbose    bool
	dbPath     string
	configPath string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "v0gen",
	Short: "Streaming AI code generation service",
	Long: `A multi-stage AI generation service that turns natural language prompts
into React components, streaming partial results as they are produced.

The workflow runs three stages (planning, code generation, review) against
a language model and streams every step over HTTP: agent messages, tool
calls, phase transitions, and the generated files chunk by chunk.

Quick Start:
  v0gen serve                       # Start the HTTP server
  v0gen sessions list               # List stored sessions
  v0gen healthcheck                 # Verify configuration and storage

Set ANTHROPIC_API_KEY to generate with a live model; without a key the
server replays a canned workflow, which is useful for frontend development.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the session database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig resolves the effective configuration from environment,
// optional config file, and command-line overrides.
func loadConfig() (*internal.Config, error) {
	var (
		cfg *internal.Config
		err error
	)
	if configPath != "" {
		cfg, err = internal.LoadConfigFile(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = internal.LoadConfig()
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
