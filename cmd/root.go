// Package cmd contains all CLI commands for the sheetkit binary.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetkit/cmd/completion"
	cmdconfig "github.com/klytics/sheetkit/cmd/config"
	"github.com/klytics/sheetkit/cmd/sheets"
	cmdshell "github.com/klytics/sheetkit/cmd/shell"
	"github.com/klytics/sheetkit/cmd/version"
	"github.com/klytics/sheetkit/cmd/view"
	"github.com/klytics/sheetkit/internal/app"
	"github.com/klytics/sheetkit/internal/config"
	"github.com/klytics/sheetkit/internal/logger"
	"github.com/klytics/sheetkit/internal/output"
)

var (
	jsonOutput bool
	verbose    bool
	noColor    bool
	configFile string

	closeLog func() error
)

// NewRootCommand creates and returns the root cobra command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetkit",
		Short: "Browse and reshape spreadsheet tables from the terminal",
		Long: `sheetkit — a terminal viewer for Excel sheets.

Open a workbook, pick a sheet, then hide, rename, sort, filter and color its
columns without touching the file. Every change is a view over the original rows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}
			if configFile != "" {
				config.UseFile(configFile)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.Output.Color {
				color.NoColor = true
			}

			closeLog, err = logger.Init(logger.Options{
				Level:   cfg.Log.Level,
				Verbose: verbose,
				File:    cfg.Log.File,
				NoColor: color.NoColor,
			})
			if err != nil {
				return err
			}

			ctx := logger.Get().WithContext(cmd.Context())
			cmd.SetContext(app.WithConfig(ctx, cfg))
			return nil
		},
	}

	// Global persistent flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI color output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ~/.sheetkit/config.yaml)")

	// Register subcommands
	rootCmd.AddCommand(sheets.NewCommand())
	rootCmd.AddCommand(view.NewCommand())
	rootCmd.AddCommand(cmdshell.NewCommand())
	rootCmd.AddCommand(cmdconfig.NewCommand())
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

// Execute runs the root command and handles any returned errors.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := NewRootCommand()
	cmd, err := rootCmd.ExecuteContextC(ctx)
	closeLogFile(os.Stderr)
	if err == nil {
		return
	}
	code := app.ExitCode(err)
	if jsonOutput {
		name := rootCmd.Name()
		if cmd != nil {
			name = cmd.Name()
		}
		output.PrintJSONError(name, err, code)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	stop()
	os.Exit(code)
}

// closeLogFile flushes and closes the log file opened by the last run, if
// any. A failure is reported on w since the logger may be gone.
func closeLogFile(w io.Writer) {
	if closeLog == nil {
		return
	}
	if err := closeLog(); err != nil {
		fmt.Fprintf(w, "Warning: could not close log file: %s\n", err)
	}
	closeLog = nil
}
