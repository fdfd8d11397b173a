package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Global options
type Options struct {
	EnvFiles []string
	Verbose  bool
}

var (
	opts    Options
	logger  *zap.Logger
	rootCmd *cobra.Command
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd = &cobra.Command{
		Use:   "crate",
		Short: "Inspect and serve crate service containers",
		Long: `A command-line tool for crate containers built from YAML
definition files.

Examples:
  crate inspect services.yaml
  crate serve services.yaml --addr :8080`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if opts.Verbose {
				logger, err = zap.NewDevelopment()
			} else {
				logger, err = zap.NewProduction()
			}
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}

			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logger != nil {
				_ = logger.Sync()
			}

			return nil
		},
	}

	rootCmd.PersistentFlags().StringSliceVarP(&opts.EnvFiles, "env", "e", nil, "env files used to expand ${VAR} references")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log resolution details")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(serveCmd)
}
