package plan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constFn(v any) Fn {
	return func(_ context.Context, _ []any, _ map[string]any) (any, error) {
		return v, nil
	}
}

func TestRedirectOutgoingMovesOutEdgesOnly(t *testing.T) {
	t.Parallel()

	p := New()
	producer, err := p.Lit(1)
	require.NoError(t, err)
	consumer, err := p.Call("consume", constFn(nil), Exactly(1), []any{producer}, nil)
	require.NoError(t, err)

	replacement := p.AddCallNode("read(x)", constFn(5), Exactly(0), nil, nil)
	p.RedirectOutgoing(producer, replacement)

	// consumer's positional edge now originates at replacement instead of
	// producer.
	edges := p.InEdges(consumer)
	require.Len(t, edges, 1)
	assert.Equal(t, replacement, edges[0].Source)

	// producer itself is untouched and has no outgoing edges left.
	assert.Empty(t, p.Successors(producer))
}

func TestPruneToKeepsOnlyBackwardReachableNodes(t *testing.T) {
	t.Parallel()

	p := New()
	used, err := p.Lit("kept")
	require.NoError(t, err)
	unused, err := p.Lit("dropped")
	require.NoError(t, err)
	_ = unused

	output, err := p.Call("identity", constFn("kept"), Exactly(1), []any{used}, nil)
	require.NoError(t, err)

	p.PruneTo(output)

	nodes := p.Nodes()
	values := make([]any, 0, len(nodes))
	for _, n := range nodes {
		if p.Kind(n) == KindLiteral {
			values = append(values, p.LiteralValue(n))
		}
	}
	assert.Equal(t, []any{"kept"}, values)
}

func TestCloneIsIndependentOfOriginal(t *testing.T) {
	t.Parallel()

	p := New()
	n, err := p.Lit(1)
	require.NoError(t, err)

	clone, mapping := p.Clone()
	cn, ok := mapping[n]
	require.True(t, ok)

	clone.SetLabel(cn, "renamed")
	assert.Empty(t, p.Label(n))
	assert.Equal(t, "renamed", clone.Label(cn))
}

func TestRemoveIncomingStripsPredecessors(t *testing.T) {
	t.Parallel()

	p := New()
	a, err := p.Lit(1)
	require.NoError(t, err)
	call, err := p.Call("f", constFn(nil), Exactly(1), []any{a}, nil)
	require.NoError(t, err)

	p.RemoveIncoming(call)
	assert.Empty(t, p.Predecessors(call))
}
