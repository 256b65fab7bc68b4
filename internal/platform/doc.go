// Package platform implements the single-threaded readiness multiplexer
// described in spec.md §4.6: a listening socket, per-client streams,
// per-process stdin/stdout/stderr pipes, and a request queue the editor
// core drains once per tick. Handles are small free-listed integers
// (u8) stable for the life of the connection or process, per spec.
//
// The readiness primitive itself is epoll on Linux
// (golang.org/x/sys/unix), isolated behind the unexported
// poller type so the rest of the package only ever sees Wait's
// abstract []Event result — mirrors spec's "abstract capabilities,
// not platform-specific readiness primitives" framing. Child process
// spawning is grounded on the teacher's internal/integration/process
// package (Process/Supervisor lifecycle, ID bookkeeping, exit-code and
// signal handling) adapted from goroutine-per-process monitoring to
// nonblocking pipe reads driven by the same epoll fd as client
// sockets, since the spec requires a single core thread.
package platform
