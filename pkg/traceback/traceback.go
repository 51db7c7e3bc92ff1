// Package traceback captures bounded, symbolic construction-site stacks for
// plan nodes so that a failure deep inside the scheduler can be traced back
// to the line of user code that built the offending node.
package traceback

import (
	"fmt"
	"runtime"
	"strings"
)

// DefaultDepth is the number of frames captured when no explicit depth is
// requested.
const DefaultDepth = 16

// Frame describes a single symbolic stack frame.
type Frame struct {
	Function string
	File     string
	Line     int
}

func (f Frame) String() string {
	return fmt.Sprintf("%s\n\t%s:%d", f.Function, f.File, f.Line)
}

// Traceback is a bounded, ordered list of frames, innermost first.
type Traceback []Frame

// String renders the traceback the way a runtime traceback is rendered,
// innermost frame first.
func (t Traceback) String() string {
	if len(t) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range t {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.String())
	}
	return b.String()
}

// Capture walks the active goroutine's call stack starting `skip` frames
// above its own caller, keeping at most depth frames. depth <= 0 selects
// DefaultDepth.
func Capture(skip int, depth int) Traceback {
	if depth <= 0 {
		depth = DefaultDepth
	}

	pc := make([]uintptr, depth)
	// +2 skips runtime.Callers and Capture itself.
	n := runtime.Callers(skip+2, pc)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pc[:n])
	out := make(Traceback, 0, n)
	for {
		frame, more := frames.Next()
		out = append(out, Frame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})
		if !more {
			break
		}
	}
	return out
}
