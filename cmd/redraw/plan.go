package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the steps the first redraw of a chart would run",
	Long: `Plan loads a chart document and lists the steps of its first redraw.

This command:
1. Loads and validates the chart document
2. Builds the initial visualisation state
3. Shows the ordered steps (without loading data or drawing)

Markers: '+' always runs, '?' runs when its check holds, '~' waits for a load.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(_ *cobra.Command, _ []string) error {
	a, err := newApp(os.Stdout)
	if err != nil {
		return err
	}

	doc, err := loadDocument(a, cfgFile)
	if err != nil {
		return err
	}

	p, err := a.Plan(doc)
	if err != nil {
		return fmt.Errorf("plan failed: %w", err)
	}

	a.PrintPlan(p)
	return nil
}
