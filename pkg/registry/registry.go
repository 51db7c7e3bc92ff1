// Package registry implements überjob's Registry: the mapping from plan
// nodes to ValueStores that drives the physical-plan transformer (spec.md
// §3, §4.3). It is grounded on streamy's internal/registry package — a
// mutex-guarded, in-memory mapping — repurposed from "registry of
// pipelines" to "registry of node→ValueStore bindings".
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/uberjob-go/uberjob/pkg/plan"
	"github.com/uberjob-go/uberjob/pkg/valuestore"
)

// Relation classifies how a registered node relates to its store.
type Relation int

const (
	// Stored marks a node produced by user computation whose value is
	// persisted: the scheduler writes then reads back through the store.
	Stored Relation = iota
	// Sourced marks a placeholder node whose only way to produce a value
	// is to read from the store.
	Sourced
)

// Entry is one registered node→store binding.
type Entry struct {
	Node     plan.Node
	Store    valuestore.ValueStore
	Relation Relation
}

// Registry holds, for a single Plan, the disjoint stored/sourced
// relationships over its nodes. A node appears in at most one relationship.
type Registry struct {
	plan *plan.Plan

	mu      sync.RWMutex
	entries map[plan.Node]Entry
}

// New creates an empty Registry bound to p. All nodes added to, or sourced
// from, this registry must belong to p.
func New(p *plan.Plan) *Registry {
	return &Registry{plan: p, entries: make(map[plan.Node]Entry)}
}

// Add records a stored relationship between an existing node and a store.
// It fails if the node is already stored or sourced, or does not belong to
// the registry's plan.
func (r *Registry) Add(n plan.Node, store valuestore.ValueStore) error {
	if !r.plan.Owns(n) {
		return fmt.Errorf("uberjob: node does not belong to this registry's plan")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[n]; exists {
		return fmt.Errorf("uberjob: node is already registered (stored or sourced)")
	}

	r.entries[n] = Entry{Node: n, Store: store, Relation: Stored}
	return nil
}

// notTransformedError is what the Fn of every placeholder node created by
// Source returns. That Fn must never actually run: the physical-plan
// transformer always replaces it with store.Read before scheduling. If it
// does run, that
// indicates a bug in the transformer or a plan being scheduled without
// passing through it — the spec's "not-transformed" error kind.
type notTransformedError struct{}

func (notTransformedError) Error() string {
	return "uberjob: source placeholder invoked directly; the plan was not run through the physical-plan transformer"
}

// NotTransformedError is returned by a sourced placeholder if it is ever
// invoked without having been rewritten by the transformer.
var NotTransformedError error = notTransformedError{}

// Source adds a placeholder Call node to plan (fn raises NotTransformedError
// if ever invoked) and records a sourced relationship for it against store.
// Source always creates a fresh placeholder, even if called twice for the
// same conceptual source.
func (r *Registry) Source(store valuestore.ValueStore) (plan.Node, error) {
	n, err := r.plan.Call("source", func(_ context.Context, _ []any, _ map[string]any) (any, error) {
		return nil, NotTransformedError
	}, plan.Exactly(0), nil, nil)
	if err != nil {
		return plan.Node{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[n] = Entry{Node: n, Store: store, Relation: Sourced}
	return n, nil
}

// Lookup returns the entry registered for n, if any.
func (r *Registry) Lookup(n plan.Node) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[n]
	return e, ok
}

// Entries returns a snapshot of every registered (node, store) pair.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}
