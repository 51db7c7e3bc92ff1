package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uberjob-go/uberjob/pkg/uberjob"
)

type renderOptions struct {
	A        float64
	B        float64
	StoreDir string
	Level    int
	Outputs  bool
}

// newRenderCmd demonstrates uberjob.Render by emitting the demo plan's
// physical graph as Graphviz DOT text, grounded on cmd/streamy's "plan"
// subcommand (a dry, read-only view of what a run would do).
func newRenderCmd(app *AppContext) *cobra.Command {
	opts := renderOptions{A: 4, B: 7}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the demo plan's physical graph as Graphviz DOT",
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderDemo(cmd, app, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.A, "a", opts.A, "First operand")
	cmd.Flags().Float64Var(&opts.B, "b", opts.B, "Second operand")
	cmd.Flags().StringVar(&opts.StoreDir, "store-dir", "./uberjob-data", "Directory the demo's stored node persists through")
	cmd.Flags().IntVar(&opts.Level, "level", 0, "Truncate visible scope depth (0 = full depth)")
	cmd.Flags().BoolVar(&opts.Outputs, "outputs", false, "Keep sum and product as two independent outputs instead of pruning to total")

	return cmd
}

func renderDemo(cmd *cobra.Command, app *AppContext, opts renderOptions) error {
	_, log := app.CommandContext(cmd, "render")
	if log != nil {
		log.Debug(cmd.Context(), "rendering demo plan", "store_dir", opts.StoreDir, "level", opts.Level, "outputs", opts.Outputs)
	}

	demo, err := buildDemoPlan(runOptions{A: opts.A, B: opts.B, StoreDir: opts.StoreDir})
	if err != nil {
		return err
	}

	renderOpts := []uberjob.Option{uberjob.WithRegistry(demo.Reg), uberjob.WithLevel(opts.Level)}
	if opts.Outputs {
		renderOpts = append(renderOpts, uberjob.WithOutputs(demo.Sum, demo.Product))
	} else {
		renderOpts = append(renderOpts, uberjob.WithOutput(demo.Total))
	}

	dot, err := uberjob.Render(demo.Plan, renderOpts...)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), dot)
	return nil
}
