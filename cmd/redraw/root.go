package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/redraw/internal/adapters/logging"
	"github.com/felixgeelhaar/redraw/internal/app"
	"github.com/felixgeelhaar/redraw/internal/domain/config"
	"github.com/felixgeelhaar/redraw/internal/domain/plan"
	"github.com/felixgeelhaar/redraw/internal/ports"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	logFormat string
	logLevel  string
	devMode   bool
)

var rootCmd = &cobra.Command{
	Use:   "redraw",
	Short: "An incremental redraw planner for visualisations",
	Long: `Redraw keeps a rendered visualisation in line with its configuration.

Each change to a chart document is turned into the shortest ordered list of
steps that brings the drawing up to date:
  Load → Index → Validate → Layout → Draw`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "redraw.yaml", "chart document")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "log step timings")

	registerFlagCompletions()

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the logger selected by the global flags.
func newLogger(w io.Writer) (ports.Logger, error) {
	level, err := ports.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	if verbose || devMode {
		level = ports.LevelDebug
	}
	switch logFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("unknown log format %q", logFormat)
	}
	return logging.NewConsoleLogger(
		logging.WithOutput(w),
		logging.WithLevel(level),
		logging.WithJSONFormat(logFormat == "json"),
		logging.WithTimestamp(logFormat == "json"),
	), nil
}

// newApp creates the application with the logger and options from flags.
var newApp = func(out io.Writer, opts ...app.Option) (*app.App, error) {
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return nil, err
	}
	return app.New(out, append([]app.Option{app.WithLogger(logger)}, opts...)...), nil
}

// loadDocument reads path and applies the global overrides.
func loadDocument(a *app.App, path string) (*config.Document, error) {
	doc, err := a.LoadDocument(path)
	if err != nil {
		return nil, err
	}
	if devMode {
		doc.Dev = true
	}
	return doc, nil
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}
	var stepErr *plan.StepError
	if errors.As(err, &stepErr) && !verbose {
		return stepErr.Format()
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

// registerFlagCompletions sets up custom completions for global flags.
func registerFlagCompletions() {
	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"text\tHuman-readable lines",
			"json\tOne JSON object per line",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
}
