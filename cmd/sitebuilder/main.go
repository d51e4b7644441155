// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thatcatcamp/sitebuilder/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	noInteraction bool
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "sitebuilder",
	Short: "Sitebuilder - scaffold content bundles, fields and image styles",
	Long: `Sitebuilder asks a short series of questions and creates the content
model configuration for a CMS: bundles with their fields and displays,
and responsive image styles with one derivative per breakpoint.

Options given on the command line are not asked again. Use --no-interaction
to accept every default without prompting.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		return initLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&noInteraction, "no-interaction", "n", false, "Do not ask any interactive question")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// initLogger installs the global zap logger at the configured level
func initLogger() error {
	level, err := zapcore.ParseLevel(config.GetString("log.level"))
	if err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = !verbose
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
