package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/uberjob-go/uberjob/internal/ports"
	"github.com/uberjob-go/uberjob/pkg/plan"
)

type callLog struct {
	calls []string
}

func (c *callLog) record(name string) { c.calls = append(c.calls, name) }

type spyObserver struct {
	log *callLog
}

func (s spyObserver) ScopeEntered(scope []string)             { s.log.record("entered:" + scopeKey(scope)) }
func (s spyObserver) ScopeExited(scope []string)              { s.log.record("exited:" + scopeKey(scope)) }
func (s spyObserver) Scheduled(node string, _ []string)       { s.log.record("scheduled:" + node) }
func (s spyObserver) Started(node string, _ []string)         { s.log.record("started:" + node) }
func (s spyObserver) Succeeded(node string, _ []string)       { s.log.record("succeeded:" + node) }
func (s spyObserver) Failed(node string, _ []string, _ error) { s.log.record("failed:" + node) }
func (s spyObserver) Retrying(node string, _ []string, _ int) { s.log.record("retrying:" + node) }

func TestCompositeFansOutToEveryObserver(t *testing.T) {
	t.Parallel()

	logA := &callLog{}
	logB := &callLog{}
	c := Composite{spyObserver{log: logA}, spyObserver{log: logB}}

	c.Scheduled("n", []string{"s"})
	c.Succeeded("n", []string{"s"})

	assert.Equal(t, []string{"scheduled:n", "succeeded:n"}, logA.calls)
	assert.Equal(t, []string{"scheduled:n", "succeeded:n"}, logB.calls)
}

func TestNoOpDiscardsEveryCallback(t *testing.T) {
	t.Parallel()

	var o Observer = NoOp{}
	assert.NotPanics(t, func() {
		o.ScopeEntered(nil)
		o.ScopeExited(nil)
		o.Scheduled("n", nil)
		o.Started("n", nil)
		o.Succeeded("n", nil)
		o.Failed("n", nil, nil)
		o.Retrying("n", nil, 1)
	})
}

func TestScopeOfReturnsNodeScopeTags(t *testing.T) {
	t.Parallel()

	p := plan.New()
	n, err := p.Lit(1)
	assert.NoError(t, err)
	assert.Empty(t, ScopeOf(p, n))
}

type recordingLogger struct {
	kinds []string
}

func (l *recordingLogger) Debug(_ context.Context, msg string, _ ...interface{}) {
	l.kinds = append(l.kinds, "debug:"+msg)
}
func (l *recordingLogger) Info(_ context.Context, msg string, _ ...interface{}) {
	l.kinds = append(l.kinds, "info:"+msg)
}
func (l *recordingLogger) Warn(_ context.Context, msg string, _ ...interface{}) {
	l.kinds = append(l.kinds, "warn:"+msg)
}
func (l *recordingLogger) Error(_ context.Context, msg string, _ ...interface{}) {
	l.kinds = append(l.kinds, "error:"+msg)
}
func (l *recordingLogger) With(_ ...interface{}) ports.Logger { return l }

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestLogObserverRendersEachCallbackKind(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	o := NewLogObserver(logger)

	o.ScopeEntered([]string{"a", "b"})
	o.Scheduled("n", []string{"a"})
	o.Started("n", []string{"a"})
	o.Succeeded("n", []string{"a"})
	o.Failed("n", []string{"a"}, assertErr{})
	o.Retrying("n", []string{"a"}, 2)
	o.ScopeExited([]string{"a", "b"})

	assert.Equal(t, []string{
		"debug:scope entered",
		"debug:node scheduled",
		"info:node started",
		"info:node succeeded",
		"error:node failed",
		"warn:node retrying",
		"debug:scope exited",
	}, logger.kinds)
}
