// Package tui implements an interactive Bubbletea front end for überjob
// runs: a progress.Observer (see observer.go) translates scheduler
// callbacks into Bubbletea messages this model consumes, rendering node
// status and a running summary. Scope entry and exit are tracked in the
// model but not shown in the view. It is grounded on
// streamy's internal/tui, which drives the same loop over step results
// instead of plan nodes.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/uberjob-go/uberjob/internal/tui/components"
)

type tickMsg struct{}

// Model holds the Bubbletea state for überjob's run TUI.
type Model struct {
	title          string
	nodes          map[string]components.NodeResult
	order          []string
	scopes         []string
	total          int
	completed      int
	failed         int
	finished       bool
	cancelled      bool
	nonInteractive bool
}

// NewModel constructs an empty TUI model. Nodes are added as the scheduler
// reports them Scheduled, since a Plan's full node set is only discoverable
// by walking it — which the progress.Observer contract deliberately does
// not require of its implementers.
func NewModel(title string, nonInteractive bool) Model {
	return Model{
		title:          title,
		nodes:          make(map[string]components.NodeResult),
		nonInteractive: nonInteractive,
	}
}

// Init starts the Bubbletea program.
func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

// TotalNodes returns the number of nodes seen so far.
func (m Model) TotalNodes() int { return m.total }

// CompletedNodes returns the number of nodes that have succeeded or failed.
func (m Model) CompletedNodes() int { return m.completed }

// IsFinished reports whether the run has completed.
func (m Model) IsFinished() bool { return m.finished }

func (m *Model) ensureNode(id string) {
	if id == "" {
		return
	}
	if _, exists := m.nodes[id]; !exists {
		m.nodes[id] = components.NodeResult{Label: id, Status: components.NodeStatusPending}
		m.order = append(m.order, id)
		m.total++
	}
}
