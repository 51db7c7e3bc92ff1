package progress

import (
	"context"
	"strings"

	"github.com/uberjob-go/uberjob/internal/ports"
)

// LogObserver renders every scheduler callback as a structured log line
// through a ports.Logger, the fallback observer when a caller wants
// visibility without wiring a TUI (see internal/tui for the interactive
// alternative).
type LogObserver struct {
	Logger ports.Logger
}

// NewLogObserver wraps logger as an Observer.
func NewLogObserver(logger ports.Logger) *LogObserver {
	return &LogObserver{Logger: logger}
}

func scopeKey(scope []string) string {
	return strings.Join(scope, ".")
}

func (o *LogObserver) ScopeEntered(scope []string) {
	o.Logger.Debug(context.Background(), "scope entered", "scope", scopeKey(scope))
}

func (o *LogObserver) ScopeExited(scope []string) {
	o.Logger.Debug(context.Background(), "scope exited", "scope", scopeKey(scope))
}

func (o *LogObserver) Scheduled(node string, scope []string) {
	o.Logger.Debug(context.Background(), "node scheduled", "node", node, "scope", scopeKey(scope))
}

func (o *LogObserver) Started(node string, scope []string) {
	o.Logger.Info(context.Background(), "node started", "node", node, "scope", scopeKey(scope))
}

func (o *LogObserver) Succeeded(node string, scope []string) {
	o.Logger.Info(context.Background(), "node succeeded", "node", node, "scope", scopeKey(scope))
}

func (o *LogObserver) Failed(node string, scope []string, err error) {
	o.Logger.Error(context.Background(), "node failed", "node", node, "scope", scopeKey(scope), "error", err)
}

func (o *LogObserver) Retrying(node string, scope []string, attempt int) {
	o.Logger.Warn(context.Background(), "node retrying", "node", node, "scope", scopeKey(scope), "attempt", attempt)
}

var _ Observer = (*LogObserver)(nil)
