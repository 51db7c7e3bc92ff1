package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/uberjob-go/uberjob/pkg/progress"
)

// ProgramObserver implements progress.Observer by translating scheduler
// callbacks into Bubbletea messages, mirroring cmd/streamy's dispatchTuiMessage:
// interactively it sends through the running *tea.Program, and
// non-interactively it updates a local Model directly.
type ProgramObserver struct {
	Interactive bool
	Program     *tea.Program
	Model       *Model
}

func (o *ProgramObserver) dispatch(msg tea.Msg) {
	if o.Interactive {
		if o.Program != nil {
			o.Program.Send(msg)
		}
		return
	}
	if o.Model == nil {
		return
	}
	updated, _ := o.Model.Update(msg)
	if m, ok := updated.(Model); ok {
		*o.Model = m
	}
}

func (o *ProgramObserver) ScopeEntered(scope []string) { o.dispatch(scopeEnteredMsg{scope: scope}) }
func (o *ProgramObserver) ScopeExited(scope []string)  { o.dispatch(scopeExitedMsg{scope: scope}) }
func (o *ProgramObserver) Scheduled(node string, _ []string) {
	o.dispatch(nodeScheduledMsg{node: node})
}
func (o *ProgramObserver) Started(node string, _ []string) { o.dispatch(nodeStartedMsg{node: node}) }
func (o *ProgramObserver) Succeeded(node string, _ []string) {
	o.dispatch(nodeSucceededMsg{node: node})
}
func (o *ProgramObserver) Failed(node string, _ []string, err error) {
	o.dispatch(nodeFailedMsg{node: node, err: err})
}
func (o *ProgramObserver) Retrying(string, []string, int) {}

var _ progress.Observer = (*ProgramObserver)(nil)
