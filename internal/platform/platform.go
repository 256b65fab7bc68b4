package platform

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Platform is the single-threaded readiness multiplexer of spec.md
// §4.6. It owns the listening socket, every accepted client stream,
// every spawned process's pipes, and the request queue the editor
// core drains each tick. Platform is not safe for concurrent use — it
// is touched only by the dispatcher's one core thread.
type Platform struct {
	poll       *poller
	listenFD   int
	socketPath string

	clients       map[Handle]*client
	clientHandles *handleSet

	processes      map[Handle]*process
	processHandles *handleSet

	// fds maps every registered raw file descriptor back to what owns
	// it, so a ready epoll event (which only carries the fd) can be
	// routed without a linear scan.
	fds map[int]fdOwner

	queue requestQueue
}

type fdOwner struct {
	kind   fdKind
	handle Handle
}

type fdKind int

const (
	fdListener fdKind = iota
	fdClient
	fdProcStdout
	fdProcStderr
)

const listenBacklog = 16

// Listen creates the listening Unix domain socket at path and the
// epoll instance that will drive it, per spec.md §6 ("the server
// binds; clients connect").
func Listen(path string) (*Platform, error) {
	_ = os.Remove(path) // stale socket from a crashed prior run

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("platform: socket: %w", err)
	}
	addr := &unix.SockaddrUnix{Name: path}
	if err := unix.Bind(fd, addr); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("platform: bind %s: %w", path, err)
	}
	if err := unix.Listen(fd, listenBacklog); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("platform: listen %s: %w", path, err)
	}

	poll, err := newPoller()
	if err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	if err := poll.add(fd, false); err != nil {
		_ = unix.Close(fd)
		_ = poll.close()
		return nil, fmt.Errorf("platform: register listener: %w", err)
	}

	p := &Platform{
		poll:           poll,
		listenFD:       fd,
		socketPath:     path,
		clients:        make(map[Handle]*client),
		clientHandles:  newHandleSet(),
		processes:      make(map[Handle]*process),
		processHandles: newHandleSet(),
		fds:            map[int]fdOwner{fd: {kind: fdListener}},
	}
	return p, nil
}

// Submit enqueues a request for the next Flush, per spec's "submission
// is lock-free for the editor side, drained after every tick".
func (p *Platform) Submit(r Request) {
	p.queue.push(r)
}

// Wait blocks for up to timeoutMS milliseconds (negative blocks
// forever) and returns every ready event translated from the raw
// epoll batch, accepting new connections inline so a single Wait call
// can both accept and immediately report ClientAccepted.
func (p *Platform) Wait(timeoutMS int) ([]Event, error) {
	raw := make([]unix.EpollEvent, 64)
	n, err := p.poll.wait(timeoutMS, raw)
	if err != nil {
		return nil, fmt.Errorf("platform: epoll wait: %w", err)
	}
	if n == 0 {
		return []Event{{Kind: Idle}}, nil
	}

	var out []Event
	for i := 0; i < n; i++ {
		fd := int(raw[i].Fd)
		owner, ok := p.fds[fd]
		if !ok {
			continue // stale entry for an fd removed earlier this batch
		}
		switch owner.kind {
		case fdListener:
			out = append(out, p.acceptAll()...)
		case fdClient:
			out = append(out, p.handleClientReady(owner.handle, raw[i])...)
		case fdProcStdout:
			out = append(out, p.handleProcessReady(owner.handle, ProcessStdout)...)
		case fdProcStderr:
			out = append(out, p.handleProcessReady(owner.handle, ProcessStderr)...)
		}
	}
	if len(out) == 0 {
		return []Event{{Kind: Idle}}, nil
	}
	return out, nil
}

func (p *Platform) acceptAll() []Event {
	var out []Event
	for {
		fd, _, err := unix.Accept4(p.listenFD, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return out
		}
		if err != nil {
			return out
		}
		h, herr := p.clientHandles.alloc()
		if herr != nil {
			_ = unix.Close(fd)
			continue
		}
		if err := p.poll.add(fd, false); err != nil {
			_ = unix.Close(fd)
			p.clientHandles.release(h)
			continue
		}
		p.clients[h] = newClient(h, fd)
		p.fds[fd] = fdOwner{kind: fdClient, handle: h}
		out = append(out, Event{Kind: ClientAccepted, Client: h})
	}
}

func (p *Platform) handleClientReady(h Handle, raw unix.EpollEvent) []Event {
	c, ok := p.clients[h]
	if !ok {
		return nil
	}
	var out []Event

	if raw.Events&unix.EPOLLOUT != 0 && c.hasPendingWrite() {
		drained, err := c.flush()
		if err != nil {
			out = append(out, p.closeClient(h)...)
			return out
		}
		if drained && c.writable {
			c.writable = false
			_ = p.poll.modify(c.fd, false)
		}
	}

	if raw.Events&unix.EPOLLIN != 0 {
		n, closed, err := c.read()
		if n > 0 {
			out = append(out, Event{Kind: ClientReadable, Client: h, Data: append([]byte(nil), c.in.bytes()...)})
			c.in.consume(n)
		}
		if closed || err != nil {
			out = append(out, p.closeClient(h)...)
		}
	}
	return out
}

func (p *Platform) handleProcessReady(h Handle, kind EventKind) []Event {
	proc, ok := p.processes[h]
	if !ok {
		return nil
	}
	var (
		fd  int
		buf *readBuf
	)
	if kind == ProcessStdout {
		fd, buf = proc.stdoutFD, proc.stdoutBuf
	} else {
		fd, buf = proc.stderrFD, proc.stderrBuf
	}

	n, eof, err := readPipe(fd, buf)
	var out []Event
	if n > 0 {
		out = append(out, Event{Kind: kind, Process: h, Tag: proc.tag, Data: append([]byte(nil), buf.bytes()...)})
		buf.consume(n)
	}
	if eof || err != nil {
		_ = p.poll.remove(fd)
		delete(p.fds, fd)
		if kind == ProcessStdout {
			proc.stdoutClosed = true
		} else {
			proc.stderrClosed = true
		}
		if proc.reaped() {
			code := proc.wait()
			tag := proc.tag
			proc.closeFDs()
			delete(p.fds, proc.stdinFD)
			delete(p.processes, h)
			p.processHandles.release(h)
			out = append(out, Event{Kind: ProcessExited, Process: h, Tag: tag, Code: code})
		}
	}
	return out
}

func (p *Platform) closeClient(h Handle) []Event {
	c, ok := p.clients[h]
	if !ok {
		return nil
	}
	_ = p.poll.remove(c.fd)
	delete(p.fds, c.fd)
	c.close()
	delete(p.clients, h)
	p.clientHandles.release(h)
	return []Event{{Kind: ClientClosed, Client: h}}
}

// Flush drains and applies every queued Request, per spec's "drained
// after every tick". Returns true if a Quit request was processed.
func (p *Platform) Flush() (quit bool) {
	for _, r := range p.queue.drain() {
		switch r.Kind {
		case WriteToClient:
			p.applyWriteToClient(r)
		case CloseClient:
			p.closeClient(r.Client)
		case SpawnProcess:
			p.applySpawnProcess(r)
		case WriteToProcess:
			p.applyWriteToProcess(r)
		case KillProcess:
			if proc, ok := p.processes[r.Process]; ok {
				_ = proc.kill()
			}
		case Quit:
			quit = true
		}
	}
	return quit
}

func (p *Platform) applyWriteToClient(r Request) {
	c, ok := p.clients[r.Client]
	if !ok {
		return
	}
	c.enqueue(r.Buf)
	drained, err := c.flush()
	if err != nil {
		p.closeClient(r.Client)
		return
	}
	if !drained && !c.writable {
		c.writable = true
		_ = p.poll.modify(c.fd, true)
	}
}

func (p *Platform) applyWriteToProcess(r Request) {
	proc, ok := p.processes[r.Process]
	if !ok {
		return
	}
	proc.enqueueStdin(r.Buf)
	_, _ = proc.writeStdin()
}

func (p *Platform) applySpawnProcess(r Request) {
	h, err := p.processHandles.alloc()
	if err != nil {
		return
	}
	proc, err := spawnProcess(h, r.Tag, r.Command, r.Env)
	if err != nil {
		p.processHandles.release(h)
		return
	}
	if r.SpawnBufCap > 0 {
		proc.stdoutBuf = &readBuf{buf: make([]byte, 0, r.SpawnBufCap)}
		proc.stderrBuf = &readBuf{buf: make([]byte, 0, r.SpawnBufCap)}
	}
	if err := p.poll.add(proc.stdoutFD, false); err != nil {
		p.processHandles.release(h)
		return
	}
	if err := p.poll.add(proc.stderrFD, false); err != nil {
		_ = p.poll.remove(proc.stdoutFD)
		p.processHandles.release(h)
		return
	}
	p.processes[h] = proc
	p.fds[proc.stdoutFD] = fdOwner{kind: fdProcStdout, handle: h}
	p.fds[proc.stderrFD] = fdOwner{kind: fdProcStderr, handle: h}
}

// Close tears down every client, process and the listening socket.
// Called once Flush reports a Quit request was processed.
func (p *Platform) Close() {
	for h := range p.clients {
		p.closeClient(h)
	}
	for h, proc := range p.processes {
		_ = proc.kill()
		proc.closeFDs()
		p.processHandles.release(h)
	}
	_ = p.poll.remove(p.listenFD)
	_ = unix.Close(p.listenFD)
	_ = p.poll.close()
	_ = os.Remove(p.socketPath)
}
