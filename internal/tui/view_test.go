package tui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uberjob-go/uberjob/internal/tui/components"
)

func TestViewRendersBasicLayout(t *testing.T) {
	m := NewModel("Test Plan", false)
	m.order = []string{"a", "b"}
	m.total = 2
	m.nodes = map[string]components.NodeResult{
		"a": {Label: "a", Status: components.NodeStatusSucceeded},
		"b": {Label: "b", Status: components.NodeStatusRunning},
	}
	m.completed = 1

	view := m.View()
	require.Contains(t, view, "Test Plan")
	require.Contains(t, view, "a")
	require.Contains(t, view, "b")
}

func TestViewShowsSummaryWhenFinished(t *testing.T) {
	m := NewModel("Finished", false)
	m.finished = true
	m.completed = 3
	m.total = 4

	view := m.View()
	require.Contains(t, view, "Finished")
	require.Contains(t, view, "3/4")
}

func TestStatusIcon(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status   components.NodeStatus
		expected string
	}{
		{components.NodeStatusSucceeded, "✓"},
		{components.NodeStatusRunning, "⏳"},
		{components.NodeStatusFailed, "✗"},
		{components.NodeStatusScheduled, "↻"},
		{components.NodeStatusPending, "…"},
		{"unknown", "…"},
	}

	for _, tt := range tests {
		icon := StatusIcon(tt.status)
		require.Contains(t, icon, tt.expected)
	}
}
