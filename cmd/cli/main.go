package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	rootCmd := &cobra.Command{
		Use:     "versecraft",
		Short:   "VerseCraft - AI content generation",
		Long:    `VerseCraft generates quotes, poems and reflections through configurable AI providers.`,
		Version: version,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $HOME/.versecraft.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(sourceCmd())
	rootCmd.AddCommand(explainCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(promptsCmd())
	rootCmd.AddCommand(settingsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	configPath string
	verbose    bool
)
