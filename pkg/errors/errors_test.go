package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uberjob-go/uberjob/pkg/traceback"
)

func TestParseErrorWrapsUnderlying(t *testing.T) {
	t.Parallel()

	underlying := fmt.Errorf("unexpected token")
	err := NewParseError("job.yaml", 12, underlying)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "job.yaml", parseErr.Path)
	require.Equal(t, 12, parseErr.Line)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "job.yaml")
}

func TestValidationErrorAggregatesFields(t *testing.T) {
	t.Parallel()

	err := NewValidationError("nodes[1].depends_on", "references unknown node", nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "nodes[1].depends_on", validationErr.Field)
	require.Contains(t, validationErr.Message, "references unknown node")
}

func TestTransformerErrorIncludesOp(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("node not found in graph")
	err := NewTransformerError("redirect", "physical image missing", underlying)

	var transformErr *TransformerError
	require.ErrorAs(t, err, &transformErr)
	require.Equal(t, "redirect", transformErr.Op)
	require.True(t, stdErrors.Is(err, underlying))
}

func TestCycleErrorListsNodes(t *testing.T) {
	t.Parallel()

	err := NewCycleError([]string{"a", "b", "a"})

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	require.Contains(t, err.Error(), "a -> b -> a")
}

func TestCallErrorCarriesFramesAndScope(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("boom")
	frames := traceback.Capture(0, 4)
	err := NewCallError("fetch_data", []string{"pipeline", "fetch_data"}, frames, underlying)

	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	require.Equal(t, "fetch_data", callErr.NodeLabel)
	require.Equal(t, []string{"pipeline", "fetch_data"}, callErr.Scope)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "pipeline.fetch_data")
}
