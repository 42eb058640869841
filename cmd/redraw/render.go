package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/redraw/internal/app"
	"github.com/felixgeelhaar/redraw/internal/domain/config"
	"github.com/felixgeelhaar/redraw/internal/domain/execution"
	"github.com/felixgeelhaar/redraw/internal/domain/reconcile"
	"github.com/felixgeelhaar/redraw/internal/tui"
)

var renderCmd = &cobra.Command{
	Use:   "render [update.yaml...]",
	Short: "Draw a chart and apply follow-up documents incrementally",
	Long: `Render reconciles the chart document and writes the final frame as a PNG.

Each additional document is applied to the same visualisation state, and the
next cycle redraws only what that document changed. Use --dry-run to report
the cycles without running any step.`,
	Example: `  redraw render -c chart.yaml -o chart.png
  redraw render -c chart.yaml focus.yaml recolor.yaml -o chart.png
  redraw render -c chart.yaml --progress`,
	RunE: runRender,
}

var (
	renderOutput      string
	renderDryRun      bool
	renderTimeout     time.Duration
	renderHistoryPath string
	renderQuiet       bool
	renderProgress    bool
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "redraw.png", "PNG file for the final frame")
	renderCmd.Flags().BoolVar(&renderDryRun, "dry-run", false, "plan and report cycles without running steps")
	renderCmd.Flags().DurationVar(&renderTimeout, "timeout", 0, "abort rendering after this duration (0 for none)")
	renderCmd.Flags().StringVar(&renderHistoryPath, "history", "", "write the recorded layouts to this YAML file")
	renderCmd.Flags().BoolVarP(&renderQuiet, "quiet", "q", false, "do not print cycle results")
	renderCmd.Flags().BoolVar(&renderProgress, "progress", false, "show an interactive progress view while rendering")
}

func runRender(_ *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if renderTimeout > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, renderTimeout)
		defer stop()
	}

	var report execution.ProgressFunc
	opts := []app.Option{app.WithDryRun(renderDryRun)}
	if renderProgress {
		opts = append(opts, app.WithProgress(func(p execution.Progress) {
			if report != nil {
				report(p)
			}
		}))
	}
	a, err := newApp(os.Stdout, opts...)
	if err != nil {
		return err
	}

	docs := make([]*config.Document, 0, len(args)+1)
	for _, path := range append([]string{cfgFile}, args...) {
		doc, err := loadDocument(a, path)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	var cycles []reconcile.Cycle
	var renderErr error
	if renderProgress {
		renderErr = tui.RunRenderProgress(ctx, tui.RenderProgressOptions{},
			func(ctx context.Context, progress execution.ProgressFunc) error {
				report = progress
				var err error
				cycles, err = a.Render(ctx, renderOutput, docs...)
				return err
			})
	} else {
		cycles, renderErr = a.Render(ctx, renderOutput, docs...)
	}
	if !renderQuiet {
		for _, c := range cycles {
			a.PrintResult(c)
		}
	}

	if renderHistoryPath != "" {
		if err := a.History().Save(renderHistoryPath); err != nil {
			return fmt.Errorf("failed to save history: %w", err)
		}
	}

	if renderErr != nil {
		return fmt.Errorf("render failed: %w", renderErr)
	}
	if !renderDryRun && !renderQuiet {
		fmt.Printf("\nWrote %s\n", renderOutput)
	}
	return nil
}
