// Package staleness implements überjob's staleness analyzer (spec.md
// §4.5): given a physical plan and the set of read nodes the transformer
// introduced, it queries each store's modified time, decides which reads
// are fresh, and elides the upstream work a fresh read no longer needs —
// the write half of its (W, Rd) pair, and, for sourced reads with
// preparatory Dependency edges, whatever those edges fed. It runs
// immediately before scheduling, mirroring where streamy's
// internal/engine.Executor separates "decide what needs to run" from
// "run it".
package staleness

import (
	"context"

	"github.com/uberjob-go/uberjob/pkg/plan"
	"github.com/uberjob-go/uberjob/pkg/transform"
	"github.com/uberjob-go/uberjob/pkg/valuestore"
)

// Report records the outcome of analyzing one physical plan.
type Report struct {
	// Fresh lists the read nodes the analyzer found fresh; their upstream
	// edges have already been removed from the plan.
	Fresh []plan.Node
	// Stale lists every other read node; it and its upstream chain remain
	// in the plan to be scheduled normally.
	Stale []plan.Node
}

// Analyze mutates phys.Plan in place: fresh read nodes have their incoming
// edges stripped (spec.md §4.5's elision, generalized from "elide only W"
// to "elide every incoming edge of a fresh read", so that a fresh sourced
// read also sheds any preparatory Dependency-edge work feeding it — see
// the "dependent source" scenario in the glossary), then the plan is
// re-pruned from output so now-orphaned preparatory nodes drop out
// entirely if nothing else consumes them.
//
// freshTime is an optional lower bound: a store's modified time older than
// freshTime (or absent) is treated as absent. Pass (Timestamp{}, false) for
// no bound.
func Analyze(ctx context.Context, phys *transform.Physical, freshTime valuestore.Timestamp, freshTimeOK bool) (*Report, error) {
	p := phys.Plan

	mtimes := make(map[plan.Node]valuestore.Timestamp, len(phys.Reads))
	mtimeOK := make(map[plan.Node]bool, len(phys.Reads))

	for n, store := range phys.Reads {
		ts, ok, err := store.ModifiedTime(ctx)
		if err != nil {
			return nil, err
		}
		if ok && freshTimeOK && ts.Before(freshTime) {
			ok = false
		}
		mtimes[n] = ts
		mtimeOK[n] = ok
	}

	report := &Report{}

	for n := range phys.Reads {
		if !mtimeOK[n] {
			report.Stale = append(report.Stale, n)
			continue
		}

		fresh := true
		for _, ancestor := range ancestorReads(p, phys.Reads, n) {
			if !mtimeOK[ancestor] {
				fresh = false
				break
			}
			// Tie-break: equal timestamps are fresh (spec.md §4.5).
			if mtimes[ancestor].After(mtimes[n]) {
				fresh = false
				break
			}
		}

		if fresh {
			report.Fresh = append(report.Fresh, n)
		} else {
			report.Stale = append(report.Stale, n)
		}
	}

	for _, n := range report.Fresh {
		p.RemoveIncoming(n)
	}

	if !phys.Output.IsZero() {
		p.PruneTo(phys.Output)
	}

	return report, nil
}

// ancestorReads returns every node in reads backward-reachable from n
// (excluding n itself), traversing through every edge kind and continuing
// past already-found read nodes so chained stored pipelines are fully
// accounted for.
func ancestorReads(p *plan.Plan, reads map[plan.Node]valuestore.ValueStore, n plan.Node) []plan.Node {
	visited := map[plan.Node]bool{n: true}
	var out []plan.Node

	queue := p.Predecessors(n)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true

		if _, ok := reads[cur]; ok {
			out = append(out, cur)
		}
		queue = append(queue, p.Predecessors(cur)...)
	}

	return out
}
