package platform

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "pepperd.sock")
}

func TestListenCreatesSocketFile(t *testing.T) {
	path := testSocketPath(t)
	p, err := Listen(path)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer p.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("socket file missing: %v", err)
	}
}

func TestAcceptReadWriteRoundTrip(t *testing.T) {
	path := testSocketPath(t)
	p, err := Listen(path)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer p.Close()

	connected := make(chan net.Conn, 1)
	go func() {
		conn, derr := net.Dial("unix", path)
		if derr == nil {
			connected <- conn
		}
	}()

	events, err := p.Wait(1000)
	if err != nil {
		t.Fatalf("Wait (accept): %v", err)
	}
	var accepted *Handle
	for _, e := range events {
		if e.Kind == ClientAccepted {
			h := e.Client
			accepted = &h
		}
	}
	if accepted == nil {
		t.Fatalf("no ClientAccepted event in %+v", events)
	}

	conn := <-connected
	defer conn.Close()

	if _, err := conn.Write([]byte("hello")); err != nil {
		t.Fatalf("client write: %v", err)
	}

	events, err = p.Wait(1000)
	if err != nil {
		t.Fatalf("Wait (read): %v", err)
	}
	var gotRead bool
	for _, e := range events {
		if e.Kind == ClientReadable && e.Client == *accepted && string(e.Data) == "hello" {
			gotRead = true
		}
	}
	if !gotRead {
		t.Fatalf("expected ClientReadable(hello) in %+v", events)
	}

	p.Submit(Request{Kind: WriteToClient, Client: *accepted, Buf: []byte("world")})
	p.Flush()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	reply := make([]byte, 5)
	if _, err := conn.Read(reply); err != nil {
		t.Fatalf("client read reply: %v", err)
	}
	if string(reply) != "world" {
		t.Fatalf("reply = %q, want world", reply)
	}
}

func TestCloseClientFreesHandle(t *testing.T) {
	path := testSocketPath(t)
	p, err := Listen(path)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer p.Close()

	go net.Dial("unix", path)

	events, err := p.Wait(1000)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	var h Handle
	for _, e := range events {
		if e.Kind == ClientAccepted {
			h = e.Client
		}
	}

	p.Submit(Request{Kind: CloseClient, Client: h})
	p.Flush()

	if p.clientHandles.isUsed(h) {
		t.Fatal("handle still marked used after CloseClient")
	}
}

func TestSpawnProcessWriteAndReadStdout(t *testing.T) {
	path := testSocketPath(t)
	p, err := Listen(path)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer p.Close()

	p.Submit(Request{Kind: SpawnProcess, Tag: "echo", Command: []string{"cat"}})
	p.Flush()

	if len(p.processes) != 1 {
		t.Fatalf("processes = %d, want 1", len(p.processes))
	}
	var procHandle Handle
	for h := range p.processes {
		procHandle = h
	}

	p.Submit(Request{Kind: WriteToProcess, Process: procHandle, Buf: []byte("ping\n")})
	p.Flush()

	deadline := time.Now().Add(2 * time.Second)
	var gotStdout bool
	for time.Now().Before(deadline) && !gotStdout {
		events, werr := p.Wait(200)
		if werr != nil {
			t.Fatalf("Wait: %v", werr)
		}
		for _, e := range events {
			if e.Kind == ProcessStdout && string(e.Data) == "ping\n" {
				gotStdout = true
			}
		}
	}
	if !gotStdout {
		t.Fatal("never observed ProcessStdout echo from cat")
	}

	p.Submit(Request{Kind: KillProcess, Process: procHandle})
	p.Flush()

	deadline = time.Now().Add(2 * time.Second)
	var gotExit bool
	for time.Now().Before(deadline) && !gotExit {
		events, werr := p.Wait(200)
		if werr != nil {
			t.Fatalf("Wait: %v", werr)
		}
		for _, e := range events {
			if e.Kind == ProcessExited {
				gotExit = true
			}
		}
	}
	if !gotExit {
		t.Fatal("never observed ProcessExited after KillProcess")
	}
}
