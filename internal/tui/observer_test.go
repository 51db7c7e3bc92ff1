package tui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uberjob-go/uberjob/internal/tui/components"
)

func TestProgramObserverUpdatesModelDirectlyWhenNonInteractive(t *testing.T) {
	m := NewModel("Test", true)
	obs := &ProgramObserver{Interactive: false, Model: &m}

	obs.Scheduled("sum", []string{"add"})
	obs.Started("sum", []string{"add"})
	obs.Succeeded("sum", []string{"add"})

	require.Equal(t, components.NodeStatusSucceeded, m.nodes["sum"].Status)
	require.Equal(t, 1, m.completed)
}

func TestProgramObserverRecordsFailures(t *testing.T) {
	m := NewModel("Test", true)
	obs := &ProgramObserver{Interactive: false, Model: &m}

	obs.Scheduled("boom", nil)
	obs.Failed("boom", nil, errors.New("kaboom"))

	require.Equal(t, components.NodeStatusFailed, m.nodes["boom"].Status)
	require.Equal(t, 1, m.failed)
}

func TestProgramObserverNoOpWhenInteractiveWithoutProgram(t *testing.T) {
	obs := &ProgramObserver{Interactive: true}
	require.NotPanics(t, func() {
		obs.Scheduled("n", nil)
		obs.ScopeEntered([]string{"a"})
	})
}
