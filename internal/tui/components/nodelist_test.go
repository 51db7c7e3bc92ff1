package components

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNodeListRespectsOrder(t *testing.T) {
	t.Parallel()

	order := []string{"c", "a", "b"}
	nodes := map[string]NodeResult{
		"a": {Status: NodeStatusSucceeded},
		"b": {Status: NodeStatusRunning},
		"c": {Status: NodeStatusPending},
	}

	l := NewNodeList(order, nodes)
	entries := l.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, "c", entries[0].ID)
	require.Equal(t, "a", entries[1].ID)
	require.Equal(t, "b", entries[2].ID)
	require.Equal(t, NodeStatusSucceeded, entries[1].Result.Status)
}

func TestNewNodeListEmpty(t *testing.T) {
	t.Parallel()

	l := NewNodeList(nil, nil)
	require.Empty(t, l.Entries())
}

func TestNodeListEntriesReturnsIndependentCopy(t *testing.T) {
	t.Parallel()

	l := NewNodeList([]string{"a"}, map[string]NodeResult{"a": {Status: NodeStatusPending}})
	first := l.Entries()
	first[0].ID = "mutated"

	second := l.Entries()
	require.Equal(t, "a", second[0].ID)
}
