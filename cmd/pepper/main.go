// Command pepper is the thin TTY frontend: it owns no editor state of
// its own, only a terminal and a socket. Every key press goes to
// pepperd as a ClientEvent; every frame it draws came from pepperd as a
// ServerEvent{Kind: DisplayEvent}.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/pepperd/internal/crash"
	"github.com/dshills/pepperd/internal/protocol"
	"github.com/dshills/pepperd/internal/renderer"
	"github.com/dshills/pepperd/internal/renderer/backend"
)

var sessionName string

func main() {
	root := &cobra.Command{
		Use:   "pepper [file]",
		Short: "Modal text editor client",
		Long:  "pepper attaches to a pepperd session over a local socket and renders what it sends.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  run,
	}
	root.Flags().StringVarP(&sessionName, "session", "s", "", "Session name to attach to; defaults to a hash of the working directory")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pepper:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	defer crash.Recover("")

	sockPath, err := socketPath(sessionName)
	if err != nil {
		return fmt.Errorf("resolving socket path: %w", err)
	}

	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		return fmt.Errorf("connecting to %s (is pepperd running?): %w", sockPath, err)
	}
	defer conn.Close()

	handleByte := make([]byte, 1)
	if _, err := conn.Read(handleByte); err != nil {
		return fmt.Errorf("reading client handle: %w", err)
	}
	handle := handleByte[0]

	term, err := backend.NewTerminal()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	if err := term.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer term.Shutdown()

	w, h := term.Size()
	writeEvent(conn, protocol.ClientEvent{Kind: protocol.ResizeEvent, Handle: handle, Width: uint16(w), Height: uint16(h)})
	if len(args) == 1 {
		writeEvent(conn, protocol.ClientEvent{Kind: protocol.OpenBufferEvent, Handle: handle, Path: args[0]})
	}

	errCh := make(chan error, 2)
	go readInput(conn, term, handle, errCh)
	go readFrames(conn, term, errCh)

	return <-errCh
}

// readInput polls the terminal for key presses and resizes and forwards
// each as a ClientEvent, matching the teacher's own "translate backend
// events into application events" read loop in application.Run.
func readInput(conn net.Conn, term backend.Backend, handle byte, errCh chan<- error) {
	for {
		ev := term.PollEvent()
		switch ev.Kind {
		case backend.EventKey:
			writeEvent(conn, protocol.ClientEvent{Kind: protocol.KeyEvent, Handle: handle, Key: ev.Key})
		case backend.EventResize:
			writeEvent(conn, protocol.ClientEvent{Kind: protocol.ResizeEvent, Handle: handle, Width: uint16(ev.Width), Height: uint16(ev.Height)})
		}
	}
}

// readFrames drains framed ServerEvents off conn and applies them to
// term, the client-side mirror of dispatcher.Loop.handleClientReadable.
func readFrames(conn net.Conn, term backend.Backend, errCh chan<- error) {
	buf := make([]byte, 0, 4096)
	read := make([]byte, 4096)
	for {
		n, err := conn.Read(read)
		if err != nil {
			errCh <- fmt.Errorf("connection closed: %w", err)
			return
		}
		buf = append(buf, read[:n]...)

		for {
			payload, consumed, status := protocol.DecodeFrame(buf)
			if status != protocol.Complete {
				break
			}
			buf = buf[consumed:]
			applyServerEvent(payload, term)
		}
	}
}

func applyServerEvent(payload []byte, term backend.Backend) {
	sev, status := protocol.DecodeServerEvent(payload)
	if status != protocol.Complete {
		return
	}
	switch sev.Kind {
	case protocol.DisplayEvent:
		if df, ok := renderer.DecodeFrame(sev.Display); ok {
			term.ApplyFrame(df)
		}
	case protocol.SuspendEvent:
		_ = term.Suspend()
		_ = term.Resume()
	case protocol.CommandOutputEvent, protocol.RequestEvent:
		// Command output is not displayed by this client (the frame's
		// status line shows only path, modified flag and mode); a
		// clipboard-paste request has no client-local source to serve in
		// a headless TTY. Both are no-ops here.
	}
}

func writeEvent(conn net.Conn, ev protocol.ClientEvent) {
	_, _ = conn.Write(ev.Encode())
}

// socketPath mirrors cmd/pepperd's derivation exactly (spec.md §6):
// the two binaries must agree on where the socket lives without
// sharing a package, the same way the protocol relies on both sides
// agreeing on the wire format rather than sharing a connection object.
func socketPath(name string) (string, error) {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = os.TempDir()
	}
	if name == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		sum := sha256.Sum256([]byte(cwd))
		name = hex.EncodeToString(sum[:])[:16]
	}
	return filepath.Join(runtimeDir, "pepper", name), nil
}
