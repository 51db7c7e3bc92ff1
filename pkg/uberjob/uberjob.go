// Package uberjob composes überjob's core into the two entry points
// spec.md §6 describes: Run, which transforms, analyzes, and schedules a
// plan end to end, and Render, which stops after transformation to hand a
// visualizer a physical plan. It plays the role streamy's
// cmd/streamy/apply.go plays over internal/engine: a thin orchestration
// layer gluing together otherwise-independent packages.
package uberjob

import (
	"context"

	"github.com/uberjob-go/uberjob/pkg/plan"
	"github.com/uberjob-go/uberjob/pkg/progress"
	"github.com/uberjob-go/uberjob/pkg/registry"
	"github.com/uberjob-go/uberjob/pkg/scheduler"
	"github.com/uberjob-go/uberjob/pkg/staleness"
	"github.com/uberjob-go/uberjob/pkg/transform"
	"github.com/uberjob-go/uberjob/pkg/valuestore"
)

// Option configures a Run or Render call.
type Option func(*options)

type options struct {
	registry    *registry.Registry
	output      any
	outputs     []any
	dryRun      bool
	maxWorkers  int
	maxErrors   int
	retry       scheduler.RetryFunc
	progress    progress.Observer
	freshTime   valuestore.Timestamp
	freshTimeOK bool
	level       int
}

// WithRegistry supplies the Registry whose entries the transformer uses to
// rewrite stored and sourced nodes. Omitting it is valid: every node is
// then treated as plain in-memory computation.
func WithRegistry(r *registry.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithOutput designates the value Run should gather and return. It may be
// a plan.Node, or any structure Gather accepts (see pkg/plan). Omitting it
// means no pruning happens and Run's Result.Value is nil.
func WithOutput(output any) Option {
	return func(o *options) { o.output = output }
}

// WithOutputs designates several independent outputs for Render to keep,
// each gathered separately rather than combined into one node the way
// WithOutput's Gather does. Render prunes to the union of their ancestors
// (pkg/transform.TransformAll) instead of a single reconstructor node, so
// the rendered graph shows exactly the requested outputs. Run ignores it;
// it has no notion of returning more than one value.
func WithOutputs(outputs ...any) Option {
	return func(o *options) { o.outputs = outputs }
}

// WithDryRun makes Run stop after transformation and return the pruned
// physical plan instead of executing it.
func WithDryRun() Option {
	return func(o *options) { o.dryRun = true }
}

// WithMaxWorkers bounds the scheduler's concurrent node evaluations.
func WithMaxWorkers(n int) Option {
	return func(o *options) { o.maxWorkers = n }
}

// WithMaxErrors bounds how many node failures the scheduler tolerates
// before it stops admitting new work.
func WithMaxErrors(n int) Option {
	return func(o *options) { o.maxErrors = n }
}

// WithRetry installs a retry decision function consulted after each failed
// node attempt.
func WithRetry(fn scheduler.RetryFunc) Option {
	return func(o *options) { o.retry = fn }
}

// WithProgress installs a progress observer. Pass progress.Composite to
// attach more than one.
func WithProgress(p progress.Observer) Option {
	return func(o *options) { o.progress = p }
}

// WithFreshTime sets the staleness analyzer's lower bound: any read whose
// store reports an absent or older modified time is treated as absent.
func WithFreshTime(ts valuestore.Timestamp) Option {
	return func(o *options) { o.freshTime, o.freshTimeOK = ts, true }
}

// WithLevel truncates Render's visible scope depth.
func WithLevel(level int) Option {
	return func(o *options) { o.level = level }
}

// Result is what Run returns: either a gathered value, or — under
// WithDryRun — the pruned physical plan for inspection.
type Result struct {
	Value    any
	Physical *plan.Plan
	Report   *staleness.Report
}

// Run transforms p through the supplied registry (if any), analyzes
// staleness, schedules the resulting physical plan, and returns the
// requested output's value. With WithDryRun it stops after transformation
// and returns the pruned physical plan in Result.Physical instead of
// executing anything.
func Run(ctx context.Context, p *plan.Plan, opts ...Option) (Result, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	r := o.registry
	if r == nil {
		r = registry.New(p)
	}

	var output plan.Node
	if o.output != nil {
		gathered, err := p.Gather(o.output)
		if err != nil {
			return Result{}, err
		}
		output = gathered
	}

	phys, err := transform.Transform(p, r, output)
	if err != nil {
		return Result{}, err
	}

	if o.dryRun {
		return Result{Physical: phys.Plan}, nil
	}

	report, err := staleness.Analyze(ctx, phys, o.freshTime, o.freshTimeOK)
	if err != nil {
		return Result{}, err
	}

	results, err := scheduler.Run(ctx, phys.Plan, scheduler.Options{
		MaxWorkers: o.maxWorkers,
		MaxErrors:  o.maxErrors,
		Retry:      o.retry,
		Progress:   o.progress,
	})
	if err != nil {
		return Result{Report: report}, err
	}

	var value any
	if !phys.Output.IsZero() {
		value = results[phys.Output]
	}
	return Result{Value: value, Report: report}, nil
}

// Render transforms p through registry (if supplied), then renders the
// resulting physical (or, with no registry, logical) plan as Graphviz DOT
// text. WithLevel truncates the visible scope depth used for clustering.
func Render(p *plan.Plan, opts ...Option) (string, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	target := p
	if o.registry != nil {
		switch {
		case len(o.outputs) > 0:
			outputs := make([]plan.Node, len(o.outputs))
			for i, raw := range o.outputs {
				gathered, err := p.Gather(raw)
				if err != nil {
					return "", err
				}
				outputs[i] = gathered
			}

			phys, err := transform.TransformAll(p, o.registry, outputs)
			if err != nil {
				return "", err
			}
			target = phys.Plan

		default:
			var output plan.Node
			if o.output != nil {
				gathered, err := p.Gather(o.output)
				if err != nil {
					return "", err
				}
				output = gathered
			}

			phys, err := transform.Transform(p, o.registry, output)
			if err != nil {
				return "", err
			}
			target = phys.Plan
		}
	}

	return renderDOT(target, o.level), nil
}
