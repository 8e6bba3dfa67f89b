package typesystem

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	traceColorReset = "\x1b[0m"
	traceColorDim   = "\x1b[2m"
)

// NewStderrTrace returns a Trace function for SharedState that writes
// "[unify] ..." lines to w, following the teacher's ad-hoc
// fmt.Fprintf(os.Stderr, "[ext] ...") logging idiom rather than pulling
// in a logging framework. When w is os.Stdout or os.Stderr and is a
// real terminal, lines are dimmed so trace output doesn't compete
// visually with reported errors.
func NewStderrTrace(w io.Writer) func(string, ...interface{}) {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return func(format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		if color {
			fmt.Fprintf(w, "%s[unify] %s%s\n", traceColorDim, msg, traceColorReset)
			return
		}
		fmt.Fprintf(w, "[unify] %s\n", msg)
	}
}
