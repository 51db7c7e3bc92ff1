package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/uberjob-go/uberjob/internal/tui/components"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, nil

	case nodeScheduledMsg:
		m.ensureNode(msg.node)
		return m, nil

	case nodeStartedMsg:
		m.ensureNode(msg.node)
		n := m.nodes[msg.node]
		n.Status = components.NodeStatusRunning
		m.nodes[msg.node] = n
		return m, nil

	case nodeSucceededMsg:
		m.ensureNode(msg.node)
		n := m.nodes[msg.node]
		if n.Status != components.NodeStatusSucceeded && n.Status != components.NodeStatusFailed {
			m.completed++
		}
		n.Status = components.NodeStatusSucceeded
		m.nodes[msg.node] = n
		m.markFinishedIfComplete()
		return m, nil

	case nodeFailedMsg:
		m.ensureNode(msg.node)
		n := m.nodes[msg.node]
		if n.Status != components.NodeStatusSucceeded && n.Status != components.NodeStatusFailed {
			m.completed++
		}
		n.Status = components.NodeStatusFailed
		n.Err = msg.err
		m.nodes[msg.node] = n
		m.failed++
		return m, nil

	case scopeEnteredMsg:
		m.scopes = append(m.scopes, scopeKey(msg.scope))
		return m, nil

	case scopeExitedMsg:
		m.scopes = removeScope(m.scopes, scopeKey(msg.scope))
		if len(m.scopes) == 0 {
			m.markFinishedIfComplete()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			return m, nil
		}

	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}

func (m *Model) markFinishedIfComplete() {
	if m.total > 0 && m.completed >= m.total {
		m.finished = true
	}
}

func removeScope(scopes []string, key string) []string {
	out := scopes[:0]
	for _, s := range scopes {
		if s != key {
			out = append(out, s)
		}
	}
	return out
}

func scopeKey(scope []string) string {
	key := ""
	for i, s := range scope {
		if i > 0 {
			key += "."
		}
		key += s
	}
	return key
}
