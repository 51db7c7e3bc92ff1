package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uerrors "github.com/uberjob-go/uberjob/pkg/errors"
	"github.com/uberjob-go/uberjob/pkg/plan"
)

func addFn(_ context.Context, args []any, _ map[string]any) (any, error) {
	return args[0].(int) + args[1].(int), nil
}

func TestRunEvaluatesDiamondDependency(t *testing.T) {
	t.Parallel()

	p := plan.New()
	root, err := p.Lit(1)
	require.NoError(t, err)
	left, err := p.Call("left", func(_ context.Context, args []any, _ map[string]any) (any, error) {
		return args[0].(int) + 1, nil
	}, plan.Exactly(1), []any{root}, nil)
	require.NoError(t, err)
	right, err := p.Call("right", func(_ context.Context, args []any, _ map[string]any) (any, error) {
		return args[0].(int) + 10, nil
	}, plan.Exactly(1), []any{root}, nil)
	require.NoError(t, err)
	sum, err := p.Call("sum", addFn, plan.Exactly(2), []any{left, right}, nil)
	require.NoError(t, err)

	results, err := Run(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.Equal(t, 13, results[sum])
}

func TestRunReturnsCallErrorForFailingNode(t *testing.T) {
	t.Parallel()

	p := plan.New()
	boom, err := p.Call("boom", func(_ context.Context, _ []any, _ map[string]any) (any, error) {
		return nil, errors.New("kaboom")
	}, plan.Exactly(0), nil, nil)
	require.NoError(t, err)

	_, err = Run(context.Background(), p, Options{})
	require.Error(t, err)

	var callErr *uerrors.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "boom", callErr.NodeLabel)
	_ = boom
}

func TestRunSkipsSuccessorsOfFailedNode(t *testing.T) {
	t.Parallel()

	p := plan.New()
	boom, err := p.Call("boom", func(_ context.Context, _ []any, _ map[string]any) (any, error) {
		return nil, errors.New("kaboom")
	}, plan.Exactly(0), nil, nil)
	require.NoError(t, err)

	var ran int32
	downstream, err := p.Call("downstream", func(_ context.Context, args []any, _ map[string]any) (any, error) {
		atomic.AddInt32(&ran, 1)
		return args[0], nil
	}, plan.Exactly(1), []any{boom}, nil)
	require.NoError(t, err)

	_, err = Run(context.Background(), p, Options{})
	require.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&ran))
	_ = downstream
}

func TestRunRetriesUntilRetryFuncDeclines(t *testing.T) {
	t.Parallel()

	p := plan.New()
	var attempts int32
	n, err := p.Call("flaky", func(_ context.Context, _ []any, _ map[string]any) (any, error) {
		a := atomic.AddInt32(&attempts, 1)
		if a < 3 {
			return nil, errors.New("not yet")
		}
		return "ok", nil
	}, plan.Exactly(0), nil, nil)
	require.NoError(t, err)

	retry := func(attempt int, _ error) bool { return attempt < 3 }

	results, err := Run(context.Background(), p, Options{Retry: retry})
	require.NoError(t, err)
	assert.Equal(t, "ok", results[n])
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestRunStopsAdmittingWorkAfterMaxErrorsExceeded(t *testing.T) {
	t.Parallel()

	p := plan.New()
	var calls int32
	for i := 0; i < 5; i++ {
		_, err := p.Call("fail", func(_ context.Context, _ []any, _ map[string]any) (any, error) {
			atomic.AddInt32(&calls, 1)
			return nil, errors.New("boom")
		}, plan.Exactly(0), nil, nil)
		require.NoError(t, err)
	}

	_, err := Run(context.Background(), p, Options{MaxWorkers: 1, MaxErrors: 2})
	require.Error(t, err)
	// With one worker, the third failure exceeds MaxErrors and the remaining
	// two nodes are never admitted.
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

type recordingObserver struct {
	mu        sync.Mutex
	succeeded []string
	failed    []string
}

func (o *recordingObserver) ScopeEntered([]string) {}
func (o *recordingObserver) ScopeExited([]string)  {}
func (o *recordingObserver) Scheduled(string, []string) {}
func (o *recordingObserver) Started(string, []string)   {}
func (o *recordingObserver) Succeeded(node string, _ []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.succeeded = append(o.succeeded, node)
}
func (o *recordingObserver) Failed(node string, _ []string, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed = append(o.failed, node)
}
func (o *recordingObserver) Retrying(string, []string, int) {}

func TestRunDeliversEveryFailureToProgressNotJustTheFirst(t *testing.T) {
	t.Parallel()

	p := plan.New()
	for i := 0; i < 3; i++ {
		_, err := p.Call("fail", func(_ context.Context, _ []any, _ map[string]any) (any, error) {
			return nil, errors.New("boom")
		}, plan.Exactly(0), nil, nil)
		require.NoError(t, err)
	}

	obs := &recordingObserver{}
	_, err := Run(context.Background(), p, Options{MaxErrors: 10, Progress: obs})
	require.Error(t, err)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Len(t, obs.failed, 3)
}

func TestRunIsDeterministicAcrossRepeatedRuns(t *testing.T) {
	t.Parallel()

	build := func() (*plan.Plan, plan.Node) {
		p := plan.New()
		a, err := p.Lit(2)
		require.NoError(t, err)
		b, err := p.Lit(3)
		require.NoError(t, err)
		sum, err := p.Call("sum", addFn, plan.Exactly(2), []any{a, b}, nil)
		require.NoError(t, err)
		return p, sum
	}

	for i := 0; i < 5; i++ {
		p, sum := build()
		results, err := Run(context.Background(), p, Options{})
		require.NoError(t, err)
		assert.Equal(t, 5, results[sum])
	}
}
