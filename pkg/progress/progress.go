// Package progress defines überjob's progress-observer contract (spec.md
// §4.8) and a couple of concrete observers. It is grounded on streamy's
// internal/ports.EventPublisher/DomainEvent pattern, narrowed to the
// scheduler's fixed callback set instead of an open string-keyed event bus,
// since the core only ever emits these seven signals.
package progress

import "github.com/uberjob-go/uberjob/pkg/plan"

// Observer receives lifecycle callbacks from the scheduler. All methods
// must be safe for concurrent use: the scheduler may invoke them from any
// worker goroutine. Node is the diagnostic label assigned at plan
// construction time (see plan.Plan.Label); Scope is the node's scope tags,
// the progress grouping key spec.md §4.8 calls for — not node identity.
type Observer interface {
	ScopeEntered(scope []string)
	ScopeExited(scope []string)
	Scheduled(node string, scope []string)
	Started(node string, scope []string)
	Succeeded(node string, scope []string)
	Failed(node string, scope []string, err error)
	Retrying(node string, scope []string, attempt int)
}

// Composite fans every callback out to each of its observers in order, so
// "multiple observers compose" (spec.md §4.8) without the scheduler itself
// knowing how many are attached.
type Composite []Observer

func (c Composite) ScopeEntered(scope []string) {
	for _, o := range c {
		o.ScopeEntered(scope)
	}
}

func (c Composite) ScopeExited(scope []string) {
	for _, o := range c {
		o.ScopeExited(scope)
	}
}

func (c Composite) Scheduled(node string, scope []string) {
	for _, o := range c {
		o.Scheduled(node, scope)
	}
}

func (c Composite) Started(node string, scope []string) {
	for _, o := range c {
		o.Started(node, scope)
	}
}

func (c Composite) Succeeded(node string, scope []string) {
	for _, o := range c {
		o.Succeeded(node, scope)
	}
}

func (c Composite) Failed(node string, scope []string, err error) {
	for _, o := range c {
		o.Failed(node, scope, err)
	}
}

func (c Composite) Retrying(node string, scope []string, attempt int) {
	for _, o := range c {
		o.Retrying(node, scope, attempt)
	}
}

var _ Observer = Composite(nil)

// NoOp discards every callback. It is the scheduler's default observer
// when the caller supplies none.
type NoOp struct{}

func (NoOp) ScopeEntered([]string)                {}
func (NoOp) ScopeExited([]string)                 {}
func (NoOp) Scheduled(string, []string)           {}
func (NoOp) Started(string, []string)             {}
func (NoOp) Succeeded(string, []string)           {}
func (NoOp) Failed(string, []string, error)       {}
func (NoOp) Retrying(string, []string, int)       {}

var _ Observer = NoOp{}

// ScopeOf returns n's scope tags, the convenience most callers constructing
// an Observer call site want instead of threading plan.Plan through.
func ScopeOf(p *plan.Plan, n plan.Node) []string {
	return p.Scope(n)
}
