// Package errors collects überjob's typed error kinds, grounded on
// streamy's pkg/errors package: small structs carrying enough structured
// context for callers to errors.As against, each wrapping an underlying
// cause via Unwrap.
package errors

import (
	"fmt"
	"strings"

	"github.com/uberjob-go/uberjob/pkg/traceback"
)

// ParseError represents a YAML parsing failure with optional line
// metadata, raised while decoding a store's sidecar file (see
// pkg/valuestore/touchstore).
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures validation issues surfaced by validator/v10
// struct tags, such as a touchstore sidecar missing its required type.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// TransformerError indicates the physical-plan transformer could not
// derive a physical plan from a logical plan and registry (spec.md §4.4):
// a registered node or requested output not found in the graph, or a
// registry entry with an unknown relation.
type TransformerError struct {
	Op      string
	Message string
	Err     error
}

// NewTransformerError constructs a TransformerError.
func NewTransformerError(op, message string, err error) error {
	return &TransformerError{Op: op, Message: message, Err: err}
}

func (e *TransformerError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("transformer error [%s]: %s", e.Op, e.Message)
}

// Unwrap exposes the underlying error.
func (e *TransformerError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CycleError reports that the physical plan, after transformation and
// pruning, contains a directed cycle (spec.md §4.4 step 5). NodeLabels
// names the nodes on the detected cycle, in traversal order.
type CycleError struct {
	NodeLabels []string
}

// NewCycleError constructs a CycleError from the labels of the nodes on
// the detected cycle.
func NewCycleError(nodeLabels []string) error {
	return &CycleError{NodeLabels: append([]string(nil), nodeLabels...)}
}

func (e *CycleError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("cycle detected in physical plan: %s", strings.Join(e.NodeLabels, " -> "))
}

// CallError wraps the error returned by a failing node's Fn, attaching the
// node's diagnostic label, scope, and the symbolic traceback captured when
// it was created (spec.md §4.6, §4.7). It is the only error the scheduler
// ever returns to Run's caller: the first recorded failure, wrapped.
type CallError struct {
	NodeLabel string
	Scope     []string
	Frames    traceback.Traceback
	Err       error
}

// NewCallError constructs a CallError.
func NewCallError(label string, scope []string, frames traceback.Traceback, err error) error {
	return &CallError{
		NodeLabel: label,
		Scope:     append([]string(nil), scope...),
		Frames:    frames,
		Err:       err,
	}
}

func (e *CallError) Error() string {
	if e == nil {
		return ""
	}
	scope := strings.Join(e.Scope, ".")
	if scope == "" {
		scope = e.NodeLabel
	}
	return fmt.Sprintf("call error in %s: %v", scope, e.Err)
}

// Unwrap exposes the underlying error raised by the node's Fn.
func (e *CallError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
