// Package cli provides the command-line interface for gradeflow.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"gradeflow/internal/batch"
	"gradeflow/internal/config"
	"gradeflow/internal/extract"
	"gradeflow/internal/feedback"
	"gradeflow/internal/metrics"
	"gradeflow/internal/report"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and logger
	cfg       config.Config
	logger    *slog.Logger
	closeLogs func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gradeflow",
	Short: "Bulk grading of student submissions against a class roster",
	Long: `Gradeflow grades a ZIP archive of student submissions (PDF or DOCX),
matches each document to a student in a CSV roster by filename, and
writes the feedback and scores back into the roster plus an Excel
report.

Run it as a server for streaming web clients, or grade a batch
directly from the command line.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, closeLogs = config.SetupLogger(cfg.LogFile, level)
		slog.SetDefault(logger)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLogs != nil {
			if err := closeLogs(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// buildRunner assembles the batch pipeline. The LLM client is the only
// component that can fail to initialize.
func buildRunner(ctx context.Context) (*batch.Runner, *batch.SessionStore, *metrics.Collector, error) {
	model, err := feedback.NewModel(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init model: %w", err)
	}

	store := batch.NewSessionStore(cfg.SessionTTL, logger)
	collector := metrics.NewCollector()
	runner := batch.NewRunner(cfg, store, extract.New(), model, report.New(), collector, logger)
	return runner, store, collector, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(tasksCmd)
}
