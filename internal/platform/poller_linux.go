//go:build linux

package platform

import "golang.org/x/sys/unix"

// poller wraps a Linux epoll instance. It is the only platform-specific
// surface in the package; everything above it only sees Wait's
// abstract []Event slice, per spec.md's "only their abstract
// capabilities" framing for epoll/kqueue/IOCP.
type poller struct {
	epfd int
}

func newPoller() (*poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &poller{epfd: fd}, nil
}

func (p *poller) close() error {
	return unix.Close(p.epfd)
}

// add registers fd for readability, and for writability too when
// writable is true (set once a write would block, per spec's "short
// writes are tracked per stream").
func (p *poller) add(fd int, writable bool) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, p.event(fd, writable))
}

func (p *poller) modify(fd int, writable bool) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, p.event(fd, writable))
}

func (p *poller) remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, &unix.EpollEvent{})
}

func (p *poller) event(fd int, writable bool) *unix.EpollEvent {
	events := uint32(unix.EPOLLIN)
	if writable {
		events |= unix.EPOLLOUT
	}
	return &unix.EpollEvent{Events: events, Fd: int32(fd)}
}

// wait blocks for up to timeoutMS (negative = forever, per spec's
// "Timeout null = block") and returns the ready raw events.
func (p *poller) wait(timeoutMS int, out []unix.EpollEvent) (int, error) {
	for {
		n, err := unix.EpollWait(p.epfd, out, timeoutMS)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}
