package uberjob

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/uberjob-go/uberjob/pkg/plan"
)

// renderDOT builds a Graphviz DOT representation of p, grounded on
// streamy's ExecutionPlan.String() human-readable summary
// (internal/engine/planner.go): a single strings.Builder pass over the
// plan's nodes and edges, extended here from a flat per-level listing to a
// full graph format with scope-based clustering.
//
// level truncates each node's scope tag list to its first level entries
// before clustering, collapsing deeper scopes into their shared ancestor
// cluster; level <= 0 means no truncation.
func renderDOT(p *plan.Plan, level int) string {
	nodes := p.Nodes()
	ids := make(map[plan.Node]string, len(nodes))
	for i, n := range nodes {
		ids[n] = "n" + strconv.Itoa(i)
	}

	clusters := make(map[string][]plan.Node)
	var clusterOrder []string
	for _, n := range nodes {
		scope := p.Scope(n)
		if level > 0 && len(scope) > level {
			scope = scope[:level]
		}
		if len(scope) == 0 {
			continue
		}
		key := strings.Join(scope, "/")
		if _, seen := clusters[key]; !seen {
			clusterOrder = append(clusterOrder, key)
		}
		clusters[key] = append(clusters[key], n)
	}
	sort.Strings(clusterOrder)

	clustered := make(map[plan.Node]bool)
	for _, key := range clusterOrder {
		for _, n := range clusters[key] {
			clustered[n] = true
		}
	}

	var b strings.Builder
	b.WriteString("digraph uberjob {\n")
	b.WriteString("  rankdir=LR;\n")

	for ci, key := range clusterOrder {
		fmt.Fprintf(&b, "  subgraph cluster_%d {\n", ci)
		fmt.Fprintf(&b, "    label=%q;\n", key)
		for _, n := range clusters[key] {
			writeNode(&b, p, n, ids[n], "    ")
		}
		b.WriteString("  }\n")
	}

	for _, n := range nodes {
		if clustered[n] {
			continue
		}
		writeNode(&b, p, n, ids[n], "  ")
	}

	for _, n := range nodes {
		for _, e := range p.InEdges(n) {
			label := edgeLabel(e)
			fmt.Fprintf(&b, "  %s -> %s", ids[e.Source], ids[n])
			if label != "" {
				fmt.Fprintf(&b, " [label=%q]", label)
			}
			b.WriteString(";\n")
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func writeNode(b *strings.Builder, p *plan.Plan, n plan.Node, id, indent string) {
	shape := "ellipse"
	label := fmt.Sprintf("literal@%s", id)
	if p.Kind(n) == plan.KindCall {
		shape = "box"
		label = p.Label(n)
	}
	fmt.Fprintf(b, "%s%s [label=%q shape=%s];\n", indent, id, label, shape)
}

func edgeLabel(e plan.EdgeView) string {
	switch e.Kind {
	case plan.EdgePositional:
		return fmt.Sprintf("arg%d", e.Index)
	case plan.EdgeKeyword:
		return e.Name
	default:
		return ""
	}
}
