package tui

// Messages the bridging progress.Observer (see observer.go) sends into the
// Bubbletea program, one per scheduler callback the model cares about.

type nodeScheduledMsg struct{ node string }

type nodeStartedMsg struct{ node string }

type nodeSucceededMsg struct{ node string }

type nodeFailedMsg struct {
	node string
	err  error
}

type scopeEnteredMsg struct{ scope []string }

type scopeExitedMsg struct{ scope []string }
