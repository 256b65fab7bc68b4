// Package crash is the fatal-path fallback spec.md §7 names: the
// dispatcher recovers a panic from any one event (see
// internal/dispatcher's executeWithRecovery-style guard), but a panic
// outside that guard on the goroutine that deferred Recover — in Run's
// own setup, in RenderFrames — still needs to land somewhere other than a bare
// stack trace on stderr. Grounded on the teacher's
// dispatch.executeWithRecovery (runtime.Stack capture into an error
// value) generalized from "recover into a result" to "recover into a
// crash report file", since there is no caller left to hand a result
// to once a panic escapes main's own call stack.
package crash

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"
)

// DefaultPath is where Recover writes when called with an empty path,
// matching the original Rust pepper's "pepper-crash.txt in the current
// directory" convention (spec.md §6 "On-disk").
const DefaultPath = "pepper-crash.txt"

// Recover must be deferred directly in a main function:
//
//	defer crash.Recover("")
//
// It is a no-op unless a panic is already unwinding. When one is, it
// writes a timestamped report to path (DefaultPath if empty) and exits
// the process with status 2 rather than letting the runtime print a
// bare stack trace and exit 2 itself — same exit code, a report left
// on disk instead of only on a terminal that may already be gone.
func Recover(path string) {
	r := recover()
	if r == nil {
		return
	}
	if path == "" {
		path = DefaultPath
	}
	report := Report(r)
	if err := os.WriteFile(path, []byte(report), 0o600); err != nil {
		fmt.Fprintln(os.Stderr, "crash: writing", path, "failed:", err)
	}
	fmt.Fprintln(os.Stderr, report)
	os.Exit(2)
}

// Report formats a panic value and the current goroutine's stack into
// the text Recover persists, split out so tests can check its shape
// without actually panicking the test binary.
func Report(r any) string {
	return fmt.Sprintf("pepper panic at %s\n\n%v\n\n%s",
		time.Now().UTC().Format(time.RFC3339), r, debug.Stack())
}

// AttachDebugger is the opt-in debugger-attach hook spec.md §9 leaves
// as an open question beyond "some platforms support attaching a
// debugger on crash". No such facility exists that this module can
// reach without a platform-specific CGo bridge, so it is a documented
// no-op rather than a silently-ignored flag.
func AttachDebugger() error {
	return errUnsupportedDebugger
}

var errUnsupportedDebugger = fmt.Errorf("crash: debugger attach is not supported on this platform")
