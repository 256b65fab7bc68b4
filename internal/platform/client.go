package platform

import "golang.org/x/sys/unix"

// client tracks one accepted connection. Reads/writes go through raw
// syscalls against fd directly (not the os/net packages) so the
// connection participates in this package's own epoll loop instead of
// the Go runtime's netpoller — the point of a single-threaded,
// readiness-driven core per spec.md §5.
type client struct {
	handle  Handle
	fd      int
	in      *readBuf
	out     []byte // queued, not-yet-written bytes
	outSent int     // bytes of out already written
	writable bool   // whether epoll is currently watching EPOLLOUT
}

func newClient(handle Handle, fd int) *client {
	return &client{handle: handle, fd: fd, in: newReadBuf()}
}

// read drains available bytes into in, returning the number of bytes
// read, whether the peer closed (zero-length read), and any hard
// error distinct from EAGAIN.
func (c *client) read() (n int, closed bool, err error) {
	const chunk = 4096
	for {
		dst := c.in.reserve(chunk)
		m, rerr := unix.Read(c.fd, dst)
		if m > 0 {
			c.in.commit(m)
			n += m
		}
		if rerr == unix.EAGAIN || rerr == unix.EWOULDBLOCK {
			return n, false, nil
		}
		if rerr != nil {
			return n, false, rerr
		}
		if m == 0 {
			return n, true, nil
		}
		if m < chunk {
			return n, false, nil
		}
	}
}

// enqueue appends buf to the pending write queue.
func (c *client) enqueue(buf []byte) {
	c.out = append(c.out, buf...)
}

// flush writes as much of the pending queue as the socket accepts
// without blocking. Returns true once the whole queue has drained.
func (c *client) flush() (drained bool, err error) {
	for c.outSent < len(c.out) {
		n, werr := unix.Write(c.fd, c.out[c.outSent:])
		if n > 0 {
			c.outSent += n
		}
		if werr == unix.EAGAIN || werr == unix.EWOULDBLOCK {
			return false, nil
		}
		if werr != nil {
			return false, werr
		}
		if n == 0 {
			return false, nil
		}
	}
	c.out = c.out[:0]
	c.outSent = 0
	return true, nil
}

func (c *client) hasPendingWrite() bool {
	return c.outSent < len(c.out)
}

func (c *client) close() {
	_ = unix.Close(c.fd)
}
