package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ideaforge/internal/config"
	"ideaforge/internal/logger"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ideaforge",
		Short: "Generate, critique and publish product ideas with LLMs",
		Long: `ideaforge runs a generate -> critique -> decide loop against an LLM.

Ideas that clear the score threshold are stored, rendered as a Markdown
report and a landing page, and announced on the configured channels.
Everything else goes to the rejected log. Each run refreshes a knowledge
snapshot that steers the next prompts.

Examples:
  # Run one pipeline
  ideaforge run

  # Try three times, focusing on a vertical
  ideaforge run --count 3 --focus healthcare

  # Inspect what has worked so far
  ideaforge analyze

  # Browse and export stored ideas
  ideaforge browse
  ideaforge export --format xlsx --out ideas.xlsx`,
		SilenceUsage: true,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.ideaforge.yaml or $HOME/.ideaforge.yaml)")

	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewAnalyzeCmd())
	rootCmd.AddCommand(NewListCmd())
	rootCmd.AddCommand(NewBrowseCmd())
	rootCmd.AddCommand(NewDashboardCmd())
	rootCmd.AddCommand(NewExportCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewWatchCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in the config file and ENV variables.
func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Logging.Level)
}
