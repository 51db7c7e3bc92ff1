package components

// NodeStatus mirrors the scheduler's node state machine (spec.md §4.6),
// narrowed to what the TUI can actually observe through progress.Observer:
// the scheduler never reports Skipped explicitly and never reports a
// skipped node as Scheduled, so skipped nodes do not appear in the view.
type NodeStatus string

const (
	NodeStatusPending   NodeStatus = "pending"
	NodeStatusScheduled NodeStatus = "scheduled"
	NodeStatusRunning   NodeStatus = "running"
	NodeStatusSucceeded NodeStatus = "succeeded"
	NodeStatusFailed    NodeStatus = "failed"
)

// NodeResult captures what the TUI knows about one plan node.
type NodeResult struct {
	Label  string
	Status NodeStatus
	Err    error
}

// NodeEntry represents a single node for rendering.
type NodeEntry struct {
	ID     string
	Result NodeResult
}

// NodeList renders a list of nodes with their current status.
type NodeList struct {
	entries []NodeEntry
}

// NewNodeList constructs a node list component, in caller-supplied order.
func NewNodeList(order []string, nodes map[string]NodeResult) NodeList {
	entries := make([]NodeEntry, 0, len(order))
	for _, id := range order {
		entries = append(entries, NodeEntry{ID: id, Result: nodes[id]})
	}
	return NodeList{entries: entries}
}

// Entries returns the ordered node entries.
func (l NodeList) Entries() []NodeEntry {
	clone := make([]NodeEntry, len(l.entries))
	copy(clone, l.entries)
	return clone
}
