// Package scheduler implements überjob's parallel scheduler (spec.md
// §4.6): a Kahn's-algorithm-style Ready queue drained by a bounded worker
// pool, with retry, bounded error tolerance, first-error-wins semantics,
// cooperative cancellation, and thread-safe progress callbacks. It
// generalizes streamy's internal/engine.Execute, which synchronizes whole
// dependency "levels" with a WaitGroup per level, to node-granularity
// scheduling so independent branches at different depths never wait on
// each other.
package scheduler

import (
	"context"
	"runtime"
	"sync"

	uerrors "github.com/uberjob-go/uberjob/pkg/errors"
	"github.com/uberjob-go/uberjob/pkg/plan"
	"github.com/uberjob-go/uberjob/pkg/progress"
)

// state is a node's position in the spec's {Pending, Ready, Running,
// Succeeded, Failed, Skipped} state machine.
type state int

const (
	statePending state = iota
	stateReady
	stateRunning
	stateSucceeded
	stateFailed
	stateSkipped
)

// RetryFunc decides, after a node's attempt-th invocation failed with err,
// whether the scheduler should invoke it again. Returning false (or a nil
// RetryFunc) means "deliver err as the node's failure".
type RetryFunc func(attempt int, err error) bool

// Options configures a Run.
type Options struct {
	// MaxWorkers bounds concurrent node evaluations. <= 0 selects
	// runtime.NumCPU().
	MaxWorkers int
	// MaxErrors bounds how many node failures are tolerated before the
	// scheduler stops admitting new work. <= 0 selects 1 (spec.md default).
	MaxErrors int
	// Retry, if set, is consulted after every failed attempt.
	Retry RetryFunc
	// Progress receives lifecycle callbacks. Defaults to progress.NoOp.
	Progress progress.Observer
}

func (o Options) workers() int {
	if o.MaxWorkers > 0 {
		return o.MaxWorkers
	}
	return runtime.NumCPU()
}

func (o Options) maxErrors() int {
	if o.MaxErrors > 0 {
		return o.MaxErrors
	}
	return 1
}

func (o Options) observer() progress.Observer {
	if o.Progress != nil {
		return o.Progress
	}
	return progress.NoOp{}
}

// Run evaluates every node of p — assumed already transformed and pruned —
// and returns each node's result value. On the first recorded failure it
// returns a *uerrors.CallError identifying the failing node; other failures
// recorded in the same run are only delivered to Progress.
func Run(ctx context.Context, p *plan.Plan, opts Options) (map[plan.Node]any, error) {
	s := &scheduler{
		ctx:           ctx,
		plan:          p,
		opts:          opts,
		results:       make(map[plan.Node]any),
		state:         make(map[plan.Node]state),
		pending:       make(map[plan.Node]int),
		observer:      opts.observer(),
		enteredScopes: make(map[string]bool),
	}
	return s.run()
}

type scheduler struct {
	ctx  context.Context
	plan *plan.Plan
	opts Options

	mu            sync.Mutex
	cond          *sync.Cond
	results       map[plan.Node]any
	state         map[plan.Node]state
	pending       map[plan.Node]int // unsatisfied distinct-predecessor count
	ready         []plan.Node
	running       int
	errs          []error
	observer      progress.Observer
	enteredScopes map[string]bool
}

// scopeEvent carries a scope tuple whose notification is queued up while a
// lock is held and fired once it's released.
type scopeEvent struct {
	scope []string
}

func (s *scheduler) run() (map[plan.Node]any, error) {
	s.cond = sync.NewCond(&s.mu)
	nodes := s.plan.Nodes()

	var initialReady []plan.Node
	var initialScopes []scopeEvent

	s.mu.Lock()
	for _, n := range nodes {
		preds := s.plan.Predecessors(n)
		s.state[n] = statePending
		s.pending[n] = len(preds)
	}
	for _, n := range nodes {
		if s.pending[n] == 0 {
			s.state[n] = stateReady
			s.ready = append(s.ready, n)
			initialReady = append(initialReady, n)
			if ev, entered := s.noteScope(n); entered {
				initialScopes = append(initialScopes, ev)
			}
		}
	}
	s.mu.Unlock()

	for _, ev := range initialScopes {
		s.observer.ScopeEntered(ev.scope)
	}
	for _, n := range initialReady {
		s.observer.Scheduled(s.plan.Label(n), s.plan.Scope(n))
	}

	var wg sync.WaitGroup
	workers := s.opts.workers()
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker()
		}()
	}
	wg.Wait()

	for _, n := range nodes {
		if ev, entered := s.noteScopeExit(n); entered {
			s.observer.ScopeExited(ev.scope)
		}
	}

	if len(s.errs) > 0 {
		return s.results, s.errs[0]
	}
	return s.results, nil
}

// worker repeatedly claims a Ready node and evaluates it until no more work
// will ever arrive.
func (s *scheduler) worker() {
	for {
		n, ok := s.claim()
		if !ok {
			return
		}
		s.evaluate(n)
	}
}

// claim blocks until a Ready node is available, the run is finished, or the
// error budget has been exceeded and nothing is Running to wait for.
func (s *scheduler) claim() (plan.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		exceeded := len(s.errs) > s.opts.maxErrors()
		if len(s.ready) > 0 && !exceeded {
			n := s.ready[0]
			s.ready = s.ready[1:]
			s.state[n] = stateRunning
			s.running++
			return n, true
		}
		if exceeded && s.running == 0 {
			s.cond.Broadcast()
			return plan.Node{}, false
		}
		if s.allSettledLocked() {
			s.cond.Broadcast()
			return plan.Node{}, false
		}
		s.cond.Wait()
	}
}

func (s *scheduler) allSettledLocked() bool {
	for _, st := range s.state {
		if st == statePending || st == stateReady || st == stateRunning {
			return false
		}
	}
	return true
}

// evaluate runs n to completion (including retries) and updates scheduler
// state. It holds no lock while invoking n's Fn, so independent nodes
// evaluate concurrently.
func (s *scheduler) evaluate(n plan.Node) {
	scope := s.plan.Scope(n)
	label := s.plan.Label(n)
	s.observer.Started(label, scope)

	value, err := s.invoke(n, label, scope)

	s.mu.Lock()
	s.running--
	if err != nil {
		s.state[n] = stateFailed
		s.errs = append(s.errs, uerrors.NewCallError(label, scope, s.plan.Frames(n), err))
		s.skipSuccessorsLocked(n)
		s.mu.Unlock()
		s.observer.Failed(label, scope, err)
		s.cond.Broadcast()
		return
	}

	s.state[n] = stateSucceeded
	s.results[n] = value

	var newlyReady []plan.Node
	var newlyScoped []scopeEvent
	for _, succ := range s.plan.Successors(n) {
		s.pending[succ]--
		if s.pending[succ] == 0 && s.state[succ] == statePending {
			s.state[succ] = stateReady
			s.ready = append(s.ready, succ)
			newlyReady = append(newlyReady, succ)
			if ev, entered := s.noteScope(succ); entered {
				newlyScoped = append(newlyScoped, ev)
			}
		}
	}
	s.mu.Unlock()

	s.observer.Succeeded(label, scope)
	for _, ev := range newlyScoped {
		s.observer.ScopeEntered(ev.scope)
	}
	for _, succ := range newlyReady {
		s.observer.Scheduled(s.plan.Label(succ), s.plan.Scope(succ))
	}
	s.cond.Broadcast()
}

// invoke runs n's Literal value lookup or Call (with retry), gathering
// argument values from already-completed predecessors.
func (s *scheduler) invoke(n plan.Node, label string, scope []string) (any, error) {
	if s.plan.Kind(n) == plan.KindLiteral {
		return s.plan.LiteralValue(n), nil
	}

	args, kwargs := s.gatherArgs(n)
	fn := s.plan.CallFn(n)

	attempt := 1
	value, err := fn(s.ctx, args, kwargs)
	for err != nil && s.opts.Retry != nil && s.opts.Retry(attempt, err) {
		attempt++
		s.observer.Retrying(label, scope, attempt)
		value, err = fn(s.ctx, args, kwargs)
	}
	return value, err
}

func (s *scheduler) gatherArgs(n plan.Node) ([]any, map[string]any) {
	edges := s.plan.InEdges(n)

	maxIdx := -1
	for _, e := range edges {
		if e.Kind == plan.EdgePositional && e.Index > maxIdx {
			maxIdx = e.Index
		}
	}
	args := make([]any, maxIdx+1)
	kwargs := make(map[string]any)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range edges {
		switch e.Kind {
		case plan.EdgePositional:
			args[e.Index] = s.results[e.Source]
		case plan.EdgeKeyword:
			kwargs[e.Name] = s.results[e.Source]
		case plan.EdgeDependency:
			// contributes no argument
		}
	}
	return args, kwargs
}

// skipSuccessorsLocked recursively marks every downstream node of a failed
// node as Skipped: it never runs, never becomes Ready. Caller must hold
// s.mu.
func (s *scheduler) skipSuccessorsLocked(n plan.Node) {
	queue := s.plan.Successors(n)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		switch s.state[cur] {
		case stateSucceeded, stateFailed, stateSkipped:
			continue
		}
		s.state[cur] = stateSkipped
		queue = append(queue, s.plan.Successors(cur)...)
	}
}

// noteScope records the first sighting of n's scope tuple. Caller must hold
// s.mu. Returns (event, true) the first time a given scope tuple is seen.
func (s *scheduler) noteScope(n plan.Node) (scopeEvent, bool) {
	scope := s.plan.Scope(n)
	key := scopeKey(scope)
	if s.enteredScopes[key] {
		return scopeEvent{}, false
	}
	s.enteredScopes[key] = true
	return scopeEvent{scope: scope}, true
}

// noteScopeExit reports the first sighting of n's scope tuple during the
// final exit sweep, reusing enteredScopes as a "not yet exited" set.
func (s *scheduler) noteScopeExit(n plan.Node) (scopeEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scope := s.plan.Scope(n)
	key := scopeKey(scope)
	if !s.enteredScopes[key] {
		return scopeEvent{}, false
	}
	delete(s.enteredScopes, key)
	return scopeEvent{scope: scope}, true
}

func scopeKey(scope []string) string {
	key := ""
	for i, tag := range scope {
		if i > 0 {
			key += "\x00"
		}
		key += tag
	}
	return key
}
