package platform

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// process tracks one spawned child, grounded on the teacher's
// internal/integration/process.Process (ID, Stdin/Stdout/Stderr,
// State, ExitCode) but driven by the shared epoll fd instead of a
// per-process wait goroutine: stdoutClosed/stderrClosed track EOF on
// each pipe and reap() is called once both have closed, matching
// spec's "zero-length read ⇒ EOF ⇒ emit Close/Exit event".
type process struct {
	handle Handle
	tag    string
	cmd    *exec.Cmd

	// stdinFile/stdoutFile/stderrFile are kept only to stay reachable:
	// os.File sets a GC finalizer that closes its fd, and Fd() does not
	// clear it, so once we start driving stdinFD/stdoutFD/stderrFD with
	// raw syscalls directly we must keep the *os.File values alive
	// ourselves or the finalizer can close the fd out from under us.
	stdinFile  *os.File
	stdoutFile *os.File
	stderrFile *os.File

	stdinFD  int
	stdoutFD int
	stderrFD int

	stdoutBuf *readBuf
	stderrBuf *readBuf

	stdinPending []byte
	stdinSent    int

	stdoutClosed bool
	stderrClosed bool

	exitCode int
}

// spawnProcess starts command with the given environment, returning a
// process with nonblocking stdin/stdout/stderr pipes ready to register
// with the poller. An empty env inherits the current process's
// environment, matching exec.Cmd's own default.
func spawnProcess(handle Handle, tag string, command []string, env []string) (*process, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("platform: spawn: empty command")
	}
	cmd := exec.Command(command[0], command[1:]...)
	if len(env) > 0 {
		cmd.Env = env
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("platform: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("platform: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("platform: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("platform: start %s: %w", command[0], err)
	}

	stdinFile := stdin.(*os.File)
	stdoutFile := stdout.(*os.File)
	stderrFile := stderr.(*os.File)

	stdinFD, err := rawNonblockingFD(stdinFile)
	if err != nil {
		return nil, err
	}
	stdoutFD, err := rawNonblockingFD(stdoutFile)
	if err != nil {
		return nil, err
	}
	stderrFD, err := rawNonblockingFD(stderrFile)
	if err != nil {
		return nil, err
	}

	return &process{
		handle:     handle,
		tag:        tag,
		cmd:        cmd,
		stdinFile:  stdinFile,
		stdoutFile: stdoutFile,
		stderrFile: stderrFile,
		stdinFD:   stdinFD,
		stdoutFD:  stdoutFD,
		stderrFD:  stderrFD,
		stdoutBuf: newReadBuf(),
		stderrBuf: newReadBuf(),
		exitCode:  -1,
	}, nil
}

// rawNonblockingFD extracts f's file descriptor and marks it
// nonblocking. os.File.Fd() itself forces the descriptor into blocking
// mode (so the returned value is usable with raw syscalls by other
// processes); SetNonblock undoes that so the epoll-driven reads and
// writes in this package never block the core thread.
func rawNonblockingFD(f *os.File) (int, error) {
	fd := int(f.Fd())
	if err := unix.SetNonblock(fd, true); err != nil {
		return 0, fmt.Errorf("platform: set nonblocking: %w", err)
	}
	return fd, nil
}

// readPipe mirrors client.read against a given pipe fd.
func readPipe(fd int, buf *readBuf) (n int, eof bool, err error) {
	const chunk = 4096
	for {
		dst := buf.reserve(chunk)
		m, rerr := unix.Read(fd, dst)
		if m > 0 {
			buf.commit(m)
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

// writeStdin drains as much of stdinPending as the pipe accepts.
func (p *process) writeStdin() (drained bool, err error) {
	for p.stdinSent < len(p.stdinPending) {
		n, werr := unix.Write(p.stdinFD, p.stdinPending[p.stdinSent:])
		if n > 0 {
			p.stdinSent += n
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
	p.stdinPending = p.stdinPending[:0]
	p.stdinSent = 0
	return true, nil
}

func (p *process) enqueueStdin(buf []byte) {
	p.stdinPending = append(p.stdinPending, buf...)
}

// reaped reports whether both output pipes have seen EOF, the point
// at which it is safe to call wait without risking a core-thread
// stall: exec.Cmd closes both pipes only around process exit.
func (p *process) reaped() bool {
	return p.stdoutClosed && p.stderrClosed
}

// wait reaps the child and records its exit code, mirroring the
// teacher's waitLoop exit-code/signal classification.
func (p *process) wait() int {
	err := p.cmd.Wait()
	if err == nil {
		p.exitCode = 0
		return p.exitCode
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		p.exitCode = exitErr.ExitCode()
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			p.exitCode = -1
		}
		return p.exitCode
	}
	p.exitCode = -1
	return p.exitCode
}

func (p *process) kill() error {
	if p.cmd.Process == nil {
		return fmt.Errorf("platform: process %s not started", p.tag)
	}
	return p.cmd.Process.Signal(syscall.SIGKILL)
}

func (p *process) closeFDs() {
	_ = unix.Close(p.stdinFD)
	_ = unix.Close(p.stdoutFD)
	_ = unix.Close(p.stderrFD)
}
