package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/uberjob-go/uberjob/internal/tui"
	"github.com/uberjob-go/uberjob/pkg/plan"
	"github.com/uberjob-go/uberjob/pkg/progress"
	"github.com/uberjob-go/uberjob/pkg/registry"
	"github.com/uberjob-go/uberjob/pkg/uberjob"
	"github.com/uberjob-go/uberjob/pkg/valuestore/jsonstore"
)

type runOptions struct {
	A              float64
	B              float64
	StoreDir       string
	MaxWorkers     int
	MaxErrors      int
	DryRun         bool
	Verbose        bool
	NonInteractive bool
}

// newRunCmd demonstrates the library end to end: it builds a small plan
// computing sum(a, b) and product(a, b) in parallel, persists sum through a
// jsonstore so a second run with the same --store-dir skips recomputing it
// (spec.md §4.5), then combines both into a total. Grounded on
// cmd/streamy's apply.go dispatch pattern: interactively, scheduler
// callbacks drive a Bubbletea program; non-interactively, they update a
// local Model whose final View is printed once.
func newRunCmd(root *rootFlags, app *AppContext) *cobra.Command {
	opts := runOptions{A: 4, B: 7}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the demo plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.DryRun = root.dryRun
			opts.Verbose = root.verbose
			opts.NonInteractive = !term.IsTerminal(int(os.Stdout.Fd()))
			return runDemo(cmd, app, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.A, "a", opts.A, "First operand")
	cmd.Flags().Float64Var(&opts.B, "b", opts.B, "Second operand")
	cmd.Flags().StringVar(&opts.StoreDir, "store-dir", "./uberjob-data", "Directory the demo's stored node persists through")
	cmd.Flags().IntVar(&opts.MaxWorkers, "max-workers", 0, "Bound concurrent node evaluations (0 = runtime.NumCPU())")
	cmd.Flags().IntVar(&opts.MaxErrors, "max-errors", 0, "Bound tolerated node failures (0 = 1)")

	return cmd
}

// demoPlan exposes every node of the demo graph a caller might want to
// gather: run always wants Total, while render's --outputs flag wants Sum
// and Product kept independently to exercise TransformAll's multi-output
// pruning instead of Total's single reconstructor node.
type demoPlan struct {
	Plan    *plan.Plan
	Reg     *registry.Registry
	Sum     plan.Node
	Product plan.Node
	Total   plan.Node
}

func buildDemoPlan(opts runOptions) (demoPlan, error) {
	p := plan.New()

	unscope := p.EnterScope("compute")
	a, err := p.Lit(opts.A)
	if err != nil {
		return demoPlan{}, err
	}
	b, err := p.Lit(opts.B)
	if err != nil {
		return demoPlan{}, err
	}
	sum, err := p.Call("sum", func(_ context.Context, args []any, _ map[string]any) (any, error) {
		return args[0].(float64) + args[1].(float64), nil
	}, plan.Exactly(2), []any{a, b}, nil)
	if err != nil {
		return demoPlan{}, err
	}
	product, err := p.Call("product", func(_ context.Context, args []any, _ map[string]any) (any, error) {
		return args[0].(float64) * args[1].(float64), nil
	}, plan.Exactly(2), []any{a, b}, nil)
	if err != nil {
		return demoPlan{}, err
	}
	unscope()

	total, err := p.Call("total", func(_ context.Context, args []any, _ map[string]any) (any, error) {
		return args[0].(float64) + args[1].(float64), nil
	}, plan.Exactly(2), []any{sum, product}, nil)
	if err != nil {
		return demoPlan{}, err
	}

	r := registry.New(p)
	store := jsonstore.New(filepath.Join(opts.StoreDir, "sum.json"))
	if err := r.Add(sum, store); err != nil {
		return demoPlan{}, err
	}

	return demoPlan{Plan: p, Reg: r, Sum: sum, Product: product, Total: total}, nil
}

func runDemo(cmd *cobra.Command, app *AppContext, opts runOptions) error {
	ctx, log := app.CommandContext(cmd, "run")
	if opts.Verbose && log != nil {
		log.Debug(ctx, "building demo plan", "a", opts.A, "b", opts.B, "store_dir", opts.StoreDir)
	}

	demo, err := buildDemoPlan(opts)
	if err != nil {
		return err
	}
	p, r, output := demo.Plan, demo.Reg, demo.Total

	modelState := tui.NewModel("demo plan", opts.NonInteractive)
	interactive := !opts.NonInteractive

	var program *tea.Program
	var programErr error
	done := make(chan struct{})

	obs := &tui.ProgramObserver{Interactive: interactive, Model: &modelState}
	if interactive {
		program = tea.NewProgram(modelState)
		obs.Program = program
		go func() {
			_, programErr = program.Run()
			close(done)
		}()
	}

	var observer progress.Observer = obs
	if log != nil {
		observer = progress.Composite{obs, progress.NewLogObserver(log)}
	}

	uberOpts := []uberjob.Option{
		uberjob.WithRegistry(r),
		uberjob.WithOutput(output),
		uberjob.WithProgress(observer),
	}
	if opts.DryRun {
		uberOpts = append(uberOpts, uberjob.WithDryRun())
	}
	if opts.MaxWorkers > 0 {
		uberOpts = append(uberOpts, uberjob.WithMaxWorkers(opts.MaxWorkers))
	}
	if opts.MaxErrors > 0 {
		uberOpts = append(uberOpts, uberjob.WithMaxErrors(opts.MaxErrors))
	}

	result, runErr := uberjob.Run(ctx, p, uberOpts...)

	if interactive {
		if program != nil {
			program.Send(tea.QuitMsg{})
		}
		<-done
		if programErr != nil {
			return programErr
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), modelState.View())
	}

	if runErr != nil {
		return runErr
	}
	if opts.DryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "physical plan has %d nodes\n", len(result.Physical.Nodes()))
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "total = %v\n", result.Value)
	return nil
}
