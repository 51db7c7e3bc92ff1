// Package transform implements überjob's physical-plan transformer
// (spec.md §4.4): it rewrites a logical Plan through a Registry into a
// physical Plan where stored nodes become write-then-read pairs and
// sourced placeholders become reads, then prunes to the requested output
// and rejects cyclic results. It is grounded on streamy's
// internal/engine.Executor, which likewise derives an execution-ready
// structure from a user-authored one before anything runs.
package transform

import (
	"context"
	"fmt"

	uerrors "github.com/uberjob-go/uberjob/pkg/errors"
	"github.com/uberjob-go/uberjob/pkg/plan"
	"github.com/uberjob-go/uberjob/pkg/registry"
	"github.com/uberjob-go/uberjob/pkg/valuestore"
)

// Pair records the write/read nodes the transformer substituted for one
// stored logical node.
type Pair struct {
	Write plan.Node
	Read  plan.Node
}

// Physical is the result of transforming a logical plan: the physical
// Plan itself, plus the bookkeeping the staleness analyzer and scheduler
// need to relate physical nodes back to registry entries.
type Physical struct {
	Plan *plan.Plan

	// LogicalToPhysical maps every logical node to its image in Plan. For a
	// stored node this is the stored computation itself, which now feeds
	// only its Write node — callers that need the (write, read) pair should
	// use StoredPairs.
	LogicalToPhysical map[plan.Node]plan.Node

	// StoredPairs maps a logical stored node to the (Write, Read) pair that
	// replaced it.
	StoredPairs map[plan.Node]Pair

	// Sourced maps a sourced placeholder's physical node to the store it
	// reads from, for nodes that are reads but have no Write counterpart.
	Sourced map[plan.Node]valuestore.ValueStore

	// Reads maps every read node (stored or sourced) introduced by the
	// transformer to the store it reads from. The staleness analyzer walks
	// this set.
	Reads map[plan.Node]valuestore.ValueStore

	// Output is the physical image of the requested output, if one was
	// given.
	Output plan.Node

	// Outputs is the physical image of every output TransformAll was asked
	// to keep, in the order given. Transform leaves this nil; it populates
	// Output instead.
	Outputs []plan.Node
}

// Transform builds the physical plan for p under registry r, optionally
// pruning to the gathered representative of output (the zero Node means
// "no output requested", in which case no pruning happens and every node
// reachable from nothing is kept — callers normally always pass an
// output).
func Transform(p *plan.Plan, r *registry.Registry, output plan.Node) (*Physical, error) {
	result, redirected, err := rewrite(p, r)
	if err != nil {
		return nil, err
	}

	if !output.IsZero() {
		physOutput, ok := result.LogicalToPhysical[output]
		if !ok {
			return nil, uerrors.NewTransformerError("prune", "requested output does not belong to the transformed plan", nil)
		}
		if rd, ok := redirected[physOutput]; ok {
			physOutput = rd
		}
		result.Plan.PruneTo(physOutput)
		result.Output = physOutput
	}

	if cycle, has := cycleLabels(result.Plan); has {
		return nil, uerrors.NewCycleError(cycle)
	}

	return result, nil
}

// TransformAll builds the physical plan for p under registry r, pruning to
// the backward-reachable ancestors of every node in outputs rather than a
// single gathered representative — the path a visualizer uses to keep
// several independent outputs of interest in one rendered graph without
// Gather's synthetic reconstructor node standing in for them (spec.md §6,
// "Render... optional level").
func TransformAll(p *plan.Plan, r *registry.Registry, outputs []plan.Node) (*Physical, error) {
	result, redirected, err := rewrite(p, r)
	if err != nil {
		return nil, err
	}

	physOutputs := make([]plan.Node, 0, len(outputs))
	for _, output := range outputs {
		physOutput, ok := result.LogicalToPhysical[output]
		if !ok {
			return nil, uerrors.NewTransformerError("prune", "requested output does not belong to the transformed plan", nil)
		}
		if rd, ok := redirected[physOutput]; ok {
			physOutput = rd
		}
		physOutputs = append(physOutputs, physOutput)
	}
	if len(physOutputs) > 0 {
		result.Plan.PruneToAll(physOutputs)
	}
	result.Outputs = physOutputs

	if cycle, has := cycleLabels(result.Plan); has {
		return nil, uerrors.NewCycleError(cycle)
	}

	return result, nil
}

// rewrite performs spec.md §4.4 steps 1-3 (clone, rewrite stored/sourced
// nodes) shared by Transform and TransformAll; pruning (step 4) and cycle
// rejection (step 5) are each caller's responsibility since they differ on
// single- vs multi-output plans.
func rewrite(p *plan.Plan, r *registry.Registry) (*Physical, map[plan.Node]plan.Node, error) {
	physPlan, mapping := p.Clone()

	result := &Physical{
		Plan:              physPlan,
		LogicalToPhysical: mapping,
		StoredPairs:       make(map[plan.Node]Pair),
		Sourced:           make(map[plan.Node]valuestore.ValueStore),
		Reads:             make(map[plan.Node]valuestore.ValueStore),
	}

	// redirected tracks, for a stored node's original physical image, the
	// Read node now standing in for it — the same substitution every other
	// consumer of that node gets via RedirectOutgoing. Any requested output
	// must go through it too when the output itself happens to be a stored
	// node (spec.md §4.4/§4.5, testable-properties scenario 2).
	redirected := make(map[plan.Node]plan.Node)

	for _, entry := range r.Entries() {
		physImage, ok := mapping[entry.Node]
		if !ok {
			return nil, nil, uerrors.NewTransformerError("rewrite", "registered node does not belong to the transformed plan", nil)
		}

		switch entry.Relation {
		case registry.Stored:
			pair, err := rewriteStored(physPlan, physImage, entry.Store)
			if err != nil {
				return nil, nil, err
			}
			result.StoredPairs[entry.Node] = pair
			result.Reads[pair.Read] = entry.Store
			redirected[physImage] = pair.Read
		case registry.Sourced:
			rewriteSourced(physPlan, physImage, entry.Store)
			result.Sourced[physImage] = entry.Store
			result.Reads[physImage] = entry.Store
		default:
			return nil, nil, uerrors.NewTransformerError("rewrite", fmt.Sprintf("unknown relation %v", entry.Relation), nil)
		}
	}

	return result, redirected, nil
}

// rewriteStored implements spec.md §4.4 step 2: create W = store.write(n),
// Rd = store.read() depending on W, redirect n's outgoing edges to
// originate from Rd instead.
func rewriteStored(p *plan.Plan, n plan.Node, store valuestore.ValueStore) (Pair, error) {
	scope := p.Scope(n)
	frames := p.Frames(n)

	w := p.AddCallNode(fmt.Sprintf("write(%s)", p.Label(n)), writeFn(store), plan.Exactly(1), scope, frames)
	p.AddPositionalEdge(n, w, 0)

	rd := p.AddCallNode(fmt.Sprintf("read(%s)", p.Label(n)), readFn(store), plan.Exactly(0), scope, frames)
	if err := p.AddDependency(w, rd); err != nil {
		return Pair{}, err
	}

	p.RedirectOutgoing(n, rd)

	return Pair{Write: w, Read: rd}, nil
}

// rewriteSourced implements spec.md §4.4 step 3: replace the placeholder's
// fn with store.read, keeping its scope and any Dependency edges the user
// attached via AddDependency.
func rewriteSourced(p *plan.Plan, n plan.Node, store valuestore.ValueStore) {
	p.SetFn(n, readFn(store), plan.Exactly(0))
	p.SetLabel(n, "read(source)")
}

func writeFn(store valuestore.ValueStore) plan.Fn {
	return func(ctx context.Context, args []any, _ map[string]any) (any, error) {
		if err := store.Write(ctx, args[0]); err != nil {
			return nil, err
		}
		return args[0], nil
	}
}

func readFn(store valuestore.ValueStore) plan.Fn {
	return func(ctx context.Context, _ []any, _ map[string]any) (any, error) {
		return store.Read(ctx)
	}
}

// cycleLabels detects a cycle in p and, if found, returns the labels of the
// nodes on it for a diagnostic message.
func cycleLabels(p *plan.Plan) ([]string, bool) {
	ids, has := p.DetectCycleNodes()
	if !has {
		return nil, false
	}
	labels := make([]string, len(ids))
	for i, n := range ids {
		label := p.Label(n)
		if label == "" {
			label = fmt.Sprintf("literal@%d", i)
		}
		labels[i] = label
	}
	return labels, true
}
