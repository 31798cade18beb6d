// Package origin builds errors that say which operation was running and which
// step of it failed, so callers never see a bare system error.
package origin

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	pkgerrors "github.com/pkg/errors"

	"github.com/YoshitsuguKoike/cautious/internal/app"
)

// DebugEnv is the environment variable that enables debug mode at start-up
const DebugEnv = "CAUTIOUS_DEBUG"

var debugMode atomic.Bool

func init() {
	debugMode.Store(parseBool(os.Getenv(DebugEnv)))
}

// SetDebug switches debug mode on or off for the whole process
func SetDebug(enabled bool) {
	debugMode.Store(enabled)
}

// Debug reports whether debug mode is enabled
func Debug() bool {
	return debugMode.Load()
}

// Error carries the operation context of a failure
type Error struct {
	During   string // operation that was running, e.g. "cautious write"
	FailedTo string // sub-step that failed, e.g. "acquire lock for a.txt"
	Cause    error

	// trace is only captured in debug mode
	trace error
}

// New returns an *Error describing cause in the context of during/failedTo.
// In debug mode it also captures a stack trace and writes one debug line.
// Error() never includes the stack; format with %+v or call StackTrace.
func New(during, failedTo string, cause error) error {
	e := &Error{
		During:   during,
		FailedTo: failedTo,
		Cause:    cause,
	}

	if Debug() {
		if cause != nil {
			e.trace = pkgerrors.WithStack(cause)
		} else {
			e.trace = pkgerrors.New(e.Error())
		}
		app.GetLogger().Debug("%s", e.Error())
	}

	return e
}

// Error implements error
func (e *Error) Error() string {
	var b strings.Builder
	if e.During != "" {
		b.WriteString(e.During)
		b.WriteString(": ")
	}
	b.WriteString("failed to ")
	b.WriteString(e.FailedTo)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// StackTrace returns the stack captured in debug mode, or nil
func (e *Error) StackTrace() pkgerrors.StackTrace {
	type stackTracer interface {
		StackTrace() pkgerrors.StackTrace
	}
	if st, ok := e.trace.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

// Format prints the stack trace for %+v when one was captured
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') && e.trace != nil {
			io.WriteString(s, e.Error())
			fmt.Fprintf(s, "\n%+v", e.trace)
			return
		}
		io.WriteString(s, e.Error())
	case 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	default:
		io.WriteString(s, e.Error())
	}
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && v
}
