package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/redraw/internal/domain/locale"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the supported visualisation types",
	Args:  cobra.NoArgs,
	RunE:  runTypes,
}

var typesLocale string

func init() {
	rootCmd.AddCommand(typesCmd)

	typesCmd.Flags().StringVar(&typesLocale, "locale", locale.DefaultTag, "locale for type names")
	_ = typesCmd.RegisterFlagCompletionFunc("locale", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return locale.Available(), cobra.ShellCompDirectiveNoFileComp
	})
}

func runTypes(_ *cobra.Command, _ []string) error {
	a, err := newApp(os.Stdout)
	if err != nil {
		return err
	}
	return a.PrintTypes(typesLocale)
}
