package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/redraw/internal/domain/config"
)

// Version information set by build flags.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "redraw %s\n", version)
		_, _ = fmt.Fprintf(out, "  commit:   %s\n", commit)
		_, _ = fmt.Fprintf(out, "  built:    %s\n", buildDate)
		_, _ = fmt.Fprintf(out, "  document: %s\n", config.SupportedMajor)
	},
}
