// Package plan implements überjob's logical plan: the symbolic call-graph
// data structure, its builder operations, and the structured-value gather
// algorithm. It is the Go realization of spec.md §3 and §4.1–§4.2.
package plan

import (
	"context"
	"fmt"
	"sort"

	"github.com/uberjob-go/uberjob/pkg/traceback"
)

// Traceback is re-exported so callers constructing Plans don't need to
// import pkg/traceback directly for type signatures.
type Traceback = traceback.Traceback

// Fn is a deferred call's callable. args holds positional argument values in
// index order; kwargs holds keyword argument values by name. Dependency
// edges contribute no argument.
type Fn func(ctx context.Context, args []any, kwargs map[string]any) (any, error)

// Signature describes the arity and keyword shape a Call's arguments must
// bind to, checked eagerly at Call time. Go cannot introspect an arbitrary
// func value's parameter names at runtime (spec.md §9 "Runtime reflection"),
// so callers supply this shape explicitly, or use the Exactly helper.
type Signature struct {
	MinArgs         int
	MaxArgs         int // -1 means unbounded
	Keywords        map[string]bool
	AllowAnyKeyword bool
}

// Bind reports whether nPositional positional arguments and the given
// keyword names satisfy the signature.
func (s Signature) Bind(nPositional int, keywords []string) error {
	if nPositional < s.MinArgs || (s.MaxArgs >= 0 && nPositional > s.MaxArgs) {
		return fmt.Errorf("expected between %d and %d positional arguments, got %d", s.MinArgs, maxArgsDisplay(s.MaxArgs), nPositional)
	}
	if s.AllowAnyKeyword {
		return nil
	}
	for _, k := range keywords {
		if !s.Keywords[k] {
			return fmt.Errorf("unexpected keyword argument %q", k)
		}
	}
	return nil
}

func maxArgsDisplay(max int) any {
	if max < 0 {
		return "unbounded"
	}
	return max
}

// Exactly returns a Signature requiring exactly n positional arguments and
// no keyword arguments, the common case for reconstructor Fns and simple
// helper calls.
func Exactly(n int) Signature {
	return Signature{MinArgs: n, MaxArgs: n}
}

// Node is an opaque, identity-based handle into a Plan. Two Node values
// compare equal via == iff they were produced by the same Plan operation;
// two nodes with identical content but separate construction calls always
// compare unequal.
type Node struct {
	plan *Plan
	id   nodeID
}

// IsZero reports whether n is the zero Node (no node).
func (n Node) IsZero() bool { return n.plan == nil }

// Plan owns a multidigraph of Literal and Call nodes joined by
// PositionalArg, KeywordArg, and Dependency edges. Plan is mutated only by
// the constructing goroutine; once Run or Render is called it must be
// treated as read-only.
type Plan struct {
	g     *graph
	scope []string
	depth int // symbolic-traceback capture depth, 0 selects the default
}

// New creates an empty Plan.
func New() *Plan {
	return &Plan{g: newGraph()}
}

// SetTracebackDepth overrides the number of symbolic-traceback frames
// captured at each plan-mutating call. depth <= 0 restores the default.
func (p *Plan) SetTracebackDepth(depth int) {
	p.depth = depth
}

func (p *Plan) capture() Traceback {
	return traceback.Capture(1, p.depth)
}

func (p *Plan) currentScope() []string {
	return append([]string(nil), p.scope...)
}

func (p *Plan) own(n Node) error {
	if n.plan != p {
		return NewConstructionError("node", "node does not belong to this plan", nil)
	}
	return nil
}

// Owns reports whether n was created by p. Callers outside this package
// (e.g. Registry.Add) use it to reject cross-plan nodes eagerly, the same
// way the builder operations do internally via own.
func (p *Plan) Owns(n Node) bool {
	return n.plan == p
}

// Lit creates a Literal node carrying value, tagged with the plan's current
// scope and construction-site traceback.
func (p *Plan) Lit(value any) (Node, error) {
	if existing, ok := value.(Node); ok {
		return existing, p.own(existing)
	}
	id := p.g.addNode(node{
		kind:   KindLiteral,
		value:  value,
		scope:  p.currentScope(),
		frames: p.capture(),
	})
	return Node{plan: p, id: id}, nil
}

// Call validates that positional/keyword arguments bind to sig, gathers
// each argument (see Gather), and creates a Call node with PositionalArg(i)
// / KeywordArg(name) edges from each argument's gathered node.
//
// fn's fully-qualified scope tag (per spec.md §4.1, "All created Call nodes
// have their fully-qualified function name appended to their scope at
// creation time") is supplied explicitly via name, since Go cannot recover a
// func value's qualified name through reflection alone in the general case.
func (p *Plan) Call(name string, fn Fn, sig Signature, args []any, kwargs map[string]any) (Node, error) {
	keywordNames := make([]string, 0, len(kwargs))
	for k := range kwargs {
		keywordNames = append(keywordNames, k)
	}
	sort.Strings(keywordNames)

	if err := sig.Bind(len(args), keywordNames); err != nil {
		return Node{}, NewConstructionError("call", err.Error(), nil)
	}

	gatheredArgs := make([]Node, len(args))
	for i, a := range args {
		gn, err := p.Gather(a)
		if err != nil {
			return Node{}, err
		}
		gatheredArgs[i] = gn
	}
	gatheredKwargs := make(map[string]Node, len(kwargs))
	for _, k := range keywordNames {
		gn, err := p.Gather(kwargs[k])
		if err != nil {
			return Node{}, err
		}
		gatheredKwargs[k] = gn
	}

	scope := p.currentScope()
	if name != "" {
		scope = append(scope, name)
	}

	id := p.g.addNode(node{
		kind:   KindCall,
		fn:     fn,
		sig:    sig,
		scope:  scope,
		frames: p.capture(),
		label:  name,
	})
	call := Node{plan: p, id: id}

	for i, an := range gatheredArgs {
		p.g.addEdge(edge{from: an.id, to: id, kind: EdgePositional, idx: i})
	}
	for k, an := range gatheredKwargs {
		p.g.addEdge(edge{from: an.id, to: id, kind: EdgeKeyword, name: k})
	}

	return call, nil
}

// AddDependency adds a Dependency edge: source must complete before target
// runs. Both nodes must belong to p.
func (p *Plan) AddDependency(source, target Node) error {
	if err := p.own(source); err != nil {
		return err
	}
	if err := p.own(target); err != nil {
		return err
	}
	p.g.addEdge(edge{from: source.id, to: target.id, kind: EdgeDependency})
	return nil
}

// Kind reports whether n is a Literal or a Call.
func (p *Plan) Kind(n Node) NodeKind {
	return p.g.node(n.id).kind
}

// Scope returns the ordered scope tags attached to n.
func (p *Plan) Scope(n Node) []string {
	return append([]string(nil), p.g.node(n.id).scope...)
}

// Frames returns the symbolic traceback captured when n was created.
func (p *Plan) Frames(n Node) Traceback {
	return p.g.node(n.id).frames
}

// LiteralValue returns the opaque value carried by a Literal node.
func (p *Plan) LiteralValue(n Node) any {
	return p.g.node(n.id).value
}

// CallFn returns the callable carried by a Call node.
func (p *Plan) CallFn(n Node) Fn {
	return p.g.node(n.id).fn
}

// HasCycle reports whether the plan (considering every edge kind) contains
// a directed cycle. Plan construction permits cycles only when introduced
// via AddDependency; Run rejects such plans (spec.md §3 invariant I3).
func (p *Plan) HasCycle() bool {
	_, has := p.g.detectCycle()
	return has
}

// nodeCount reports the number of nodes currently in the plan, used by
// tests and diagnostics.
func (p *Plan) nodeCount() int { return len(p.g.nodes) }
