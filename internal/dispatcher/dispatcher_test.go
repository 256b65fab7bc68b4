package dispatcher

import (
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/pepperd/internal/config"
	"github.com/dshills/pepperd/internal/editor"
	"github.com/dshills/pepperd/internal/platform"
	"github.com/dshills/pepperd/internal/protocol"
)

func newTestLoop(t *testing.T) (*Loop, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pepperd.sock")
	p, err := platform.Listen(path)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	s := editor.NewState(config.Default())
	return New(p, s, nil, 200), path
}

// TestRunExitsOnQuitAll dials the server, sends a Command("quit-all")
// event, and expects Run to return once Platform.Flush processes the
// resulting Quit request — the same "core stops once told to" path
// spec.md §4.9 describes.
func TestRunExitsOnQuitAll(t *testing.T) {
	loop, path := newTestLoop(t)

	done := make(chan error, 1)
	go func() { done <- loop.Run() }()

	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	msg := protocol.ClientEvent{Kind: protocol.CommandEvent, Handle: 1, Command: "quit-all"}.Encode()
	if _, err := conn.Write(msg); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not exit after quit-all")
	}
}

// TestRunEchoesCommandOutputStatus verifies a Command event that
// produces a status message (an unknown command, via Evaluator.Run's
// "not a command" error) is written back to the client as a
// CommandOutputEvent.
func TestRunEchoesCommandOutputStatus(t *testing.T) {
	loop, path := newTestLoop(t)

	go loop.Run()
	t.Cleanup(func() {
		conn, err := net.Dial("unix", path)
		if err == nil {
			conn.Write(protocol.ClientEvent{Kind: protocol.CommandEvent, Handle: 1, Command: "quit-all"}.Encode())
			conn.Close()
		}
	})

	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	handshake := make([]byte, 1)
	if _, err := conn.Read(handshake); err != nil {
		t.Fatalf("reading client handle: %v", err)
	}

	msg := protocol.ClientEvent{Kind: protocol.CommandEvent, Handle: 1, Command: "nonexistent-command"}.Encode()
	if _, err := conn.Write(msg); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// Every tick also renders a DisplayEvent for each connected client,
	// so display frames are read past until the status output arrives.
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var pending []byte
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil && err != io.EOF {
			t.Fatalf("Read: %v", err)
		}
		if n == 0 {
			t.Fatal("expected a CommandOutputEvent frame from the server")
		}
		pending = append(pending, buf[:n]...)

		for {
			payload, consumed, status := protocol.DecodeFrame(pending)
			if status == protocol.InsufficientData {
				break
			}
			if status != protocol.Complete {
				t.Fatalf("DecodeFrame: status=%v", status)
			}
			pending = pending[consumed:]
			ev, status := protocol.DecodeServerEvent(payload)
			if status != protocol.Complete {
				t.Fatalf("DecodeServerEvent: status=%v", status)
			}
			if ev.Kind == protocol.DisplayEvent {
				continue
			}
			if ev.Kind != protocol.CommandOutputEvent {
				t.Fatalf("got ServerEvent kind %v, want CommandOutputEvent", ev.Kind)
			}
			if ev.Output == "" {
				t.Error("expected a non-empty status message for an unknown command")
			}
			return
		}
	}
}
