// Package bufpool provides recyclable, reference-counted byte buffers
// used for platform I/O: client writes, process pipe reads, and
// rendered frames all flow through buffers acquired here instead of
// fresh allocations.
//
// All access is single-threaded: the dispatcher's core goroutine is the
// only caller, so the reference count is a plain int, not atomic.
package bufpool
