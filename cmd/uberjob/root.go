package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose bool
	dryRun  bool
}

func newRootCmd(app *AppContext) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "uberjob",
		Short:         "Run and render überjob symbolic call-graph plans",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, "Build the pruned physical plan and print its node count instead of executing it")

	cmd.AddCommand(newRunCmd(flags, app))
	cmd.AddCommand(newRenderCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
