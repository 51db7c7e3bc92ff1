package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/uberjob-go/uberjob/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	title := titleStyle.Render(fmt.Sprintf("überjob • %s", m.title))
	sections = append(sections, title)

	progress := components.NewProgress(m.total).View(m.completed)
	sections = append(sections, sectionStyle.Render("Progress"), progress)

	listComp := components.NewNodeList(m.order, m.nodes)
	entries := listComp.Entries()
	if len(entries) > 0 {
		sections = append(sections, sectionStyle.Render("Nodes"))
		sections = append(sections, renderNodeEntries(entries))
	}

	summary := components.NewSummary(components.SummaryData{
		Total:     m.total,
		Completed: m.completed,
		Failed:    m.failed,
		Finished:  m.finished,
		Cancelled: m.cancelled,
	}).View()
	if strings.TrimSpace(summary) != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderNodeEntries(entries []components.NodeEntry) string {
	var lines []string
	for _, entry := range entries {
		res := entry.Result
		icon := StatusIcon(res.Status)
		line := fmt.Sprintf(" %s %s", icon, entry.ID)
		if res.Err != nil {
			line = fmt.Sprintf("%s — %v", line, res.Err)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// StatusIcon returns the glyph representing a node's status.
func StatusIcon(status components.NodeStatus) string {
	switch status {
	case components.NodeStatusSucceeded:
		return successStyle.Render("✓")
	case components.NodeStatusRunning:
		return runningStyle.Render("⏳")
	case components.NodeStatusFailed:
		return failureStyle.Render("✗")
	case components.NodeStatusScheduled:
		return pendingStyle.Render("↻")
	default:
		return pendingStyle.Render("…")
	}
}
