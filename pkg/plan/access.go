package plan

// This file exposes the lower-level graph operations the physical-plan
// transformer, staleness analyzer, and scheduler need. Ordinary Plan
// construction code never needs these; they exist so those packages can
// manipulate a Plan without reaching into its unexported graph.

// EdgeView describes one incoming edge of a node, from the consumer's point
// of view.
type EdgeView struct {
	Source Node
	Kind   EdgeKind
	Index  int    // valid when Kind == EdgePositional
	Name   string // valid when Kind == EdgeKeyword
}

// Nodes returns every node currently in the plan, in creation order.
func (p *Plan) Nodes() []Node {
	out := make([]Node, len(p.g.nodes))
	for i := range p.g.nodes {
		out[i] = Node{plan: p, id: nodeID(i)}
	}
	return out
}

// Label returns the diagnostic label attached to a Call node (its
// fully-qualified function name, or a transformer-assigned name such as
// "write(x)"/"read(x)").
func (p *Plan) Label(n Node) string {
	return p.g.node(n.id).label
}

// SetLabel overrides n's diagnostic label.
func (p *Plan) SetLabel(n Node, label string) {
	p.g.node(n.id).label = label
}

// InEdges returns n's incoming edges, each identifying its source node and
// edge kind.
func (p *Plan) InEdges(n Node) []EdgeView {
	eids := p.g.inEdges(n.id)
	out := make([]EdgeView, len(eids))
	for i, eid := range eids {
		e := p.g.edge(eid)
		out[i] = EdgeView{
			Source: Node{plan: p, id: e.from},
			Kind:   e.kind,
			Index:  e.idx,
			Name:   e.name,
		}
	}
	return out
}

// Predecessors returns the distinct nodes with an edge (of any kind) into
// n.
func (p *Plan) Predecessors(n Node) []Node {
	views := p.InEdges(n)
	seen := make(map[nodeID]bool, len(views))
	out := make([]Node, 0, len(views))
	for _, v := range views {
		if !seen[v.Source.id] {
			seen[v.Source.id] = true
			out = append(out, v.Source)
		}
	}
	return out
}

// Successors returns the distinct nodes with an edge (of any kind) from n.
func (p *Plan) Successors(n Node) []Node {
	eids := p.g.outEdges(n.id)
	seen := make(map[nodeID]bool, len(eids))
	out := make([]Node, 0, len(eids))
	for _, eid := range eids {
		to := p.g.edge(eid).to
		if !seen[to] {
			seen[to] = true
			out = append(out, Node{plan: p, id: to})
		}
	}
	return out
}

// AddLiteralNode creates a Literal node carrying value with an explicit
// scope and traceback, bypassing Lit's "current scope" capture. Used by the
// physical-plan transformer to create nodes that inherit a logical node's
// scope rather than the builder's current scope.
func (p *Plan) AddLiteralNode(value any, scope []string, frames Traceback) Node {
	id := p.g.addNode(node{
		kind:   KindLiteral,
		value:  value,
		scope:  append([]string(nil), scope...),
		frames: frames,
	})
	return Node{plan: p, id: id}
}

// AddCallNode creates a Call node with an explicit scope and traceback, and
// no argument edges; the caller wires argument edges separately via
// AddPositionalEdge/AddKeywordEdge/AddDependencyEdgeTo. Used by the
// physical-plan transformer to create write/read nodes.
func (p *Plan) AddCallNode(label string, fn Fn, sig Signature, scope []string, frames Traceback) Node {
	id := p.g.addNode(node{
		kind:   KindCall,
		fn:     fn,
		sig:    sig,
		scope:  append([]string(nil), scope...),
		frames: frames,
		label:  label,
	})
	return Node{plan: p, id: id}
}

// AddPositionalEdge adds a PositionalArg(index) edge from source to target.
func (p *Plan) AddPositionalEdge(source, target Node, index int) {
	p.g.addEdge(edge{from: source.id, to: target.id, kind: EdgePositional, idx: index})
}

// AddKeywordEdge adds a KeywordArg(name) edge from source to target.
func (p *Plan) AddKeywordEdge(source, target Node, name string) {
	p.g.addEdge(edge{from: source.id, to: target.id, kind: EdgeKeyword, name: name})
}

// RedirectOutgoing moves every outgoing edge of from so it originates at to
// instead, leaving from with no outgoing edges. Used by the transformer's
// stored-node rewrite: "redirect every outgoing edge of the physical image
// of n to originate from Rd instead" (spec.md §4.4 step 2c).
func (p *Plan) RedirectOutgoing(from, to Node) {
	eids := append([]edgeID(nil), p.g.outEdges(from.id)...)
	for _, eid := range eids {
		p.g.edge(eid).from = to.id
	}
	p.g.out[to.id] = append(p.g.out[to.id], eids...)
	delete(p.g.out, from.id)
	// Each edge's in-edge bucket (keyed by its unchanged `to`) already
	// references eid; only the `from` endpoint moved.
}

// RemoveIncoming deletes every incoming edge of n, leaving it with no
// predecessors. Used by the staleness analyzer to elide a fresh read's
// upstream write/preparation chain.
func (p *Plan) RemoveIncoming(n Node) {
	p.g.removeInEdges(n.id)
}

// PruneTo discards every node not a backward-reachable ancestor of output
// (output included), walking every edge kind. It is used both by the
// physical-plan transformer (initial pruning to the requested output) and
// by the staleness analyzer (re-pruning after eliding fresh reads'
// upstream edges).
func (p *Plan) PruneTo(output Node) {
	keep := p.g.reachableBackward([]nodeID{output.id})
	p.g.deleteExcept(keep)
}

// PruneToAll discards every node not a backward-reachable ancestor of any
// node in outputs.
func (p *Plan) PruneToAll(outputs []Node) {
	roots := make([]nodeID, len(outputs))
	for i, o := range outputs {
		roots[i] = o.id
	}
	keep := p.g.reachableBackward(roots)
	p.g.deleteExcept(keep)
}

// SetFn overrides a Call node's callable and signature in place, used by
// the physical-plan transformer to turn a sourced placeholder into a
// store.read call without disturbing its scope, traceback, or edges.
func (p *Plan) SetFn(n Node, fn Fn, sig Signature) {
	nd := p.g.node(n.id)
	nd.fn = fn
	nd.sig = sig
}

// DetectCycleNodes reports whether p (considering every edge kind)
// contains a directed cycle and, if so, returns the Nodes on one such
// cycle in traversal order.
func (p *Plan) DetectCycleNodes() ([]Node, bool) {
	ids, has := p.g.detectCycle()
	if !has {
		return nil, false
	}
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{plan: p, id: id}
	}
	return out, true
}

// Clone returns a deep-enough independent copy of p, along with a mapping
// from each original Node to its image in the clone. Used by the
// physical-plan transformer to build the physical plan without mutating
// the logical plan the user built.
func (p *Plan) Clone() (*Plan, map[Node]Node) {
	np := &Plan{g: p.g.clone(), depth: p.depth}
	mapping := make(map[Node]Node, len(p.g.nodes))
	for i := range p.g.nodes {
		old := Node{plan: p, id: nodeID(i)}
		mapping[old] = Node{plan: np, id: nodeID(i)}
	}
	return np, mapping
}
