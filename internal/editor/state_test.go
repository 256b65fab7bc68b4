package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/pepperd/internal/config"
	"github.com/dshills/pepperd/internal/engine/buffer"
	"github.com/dshills/pepperd/internal/engine/bufpos"
	"github.com/dshills/pepperd/internal/input/key"
	"github.com/dshills/pepperd/internal/input/mode"
	"github.com/dshills/pepperd/internal/lsp"
	"github.com/dshills/pepperd/internal/platform"
	"github.com/dshills/pepperd/internal/protocol"
)

func testSettings() *config.Settings {
	s := config.Default()
	s.LSP = []config.Recipe{{Glob: "**/*.go", Command: []string{"gopls"}, Root: "/proj"}}
	return s
}

func TestAddClientStartsInNormalModeWithEmptyBuffer(t *testing.T) {
	s := NewState(testSettings())
	s.AddClient(1)

	cs, ok := s.clients[1]
	if !ok {
		t.Fatal("expected client 1 to be registered")
	}
	if cs.machine.Active() != mode.Normal {
		t.Errorf("Active(): got %v, want Normal", cs.machine.Active())
	}
	if cs.ctx.Buffer.LineCount() != 1 || cs.ctx.Buffer.Line(0) != "" {
		t.Error("expected a fresh client's buffer to be a single empty line")
	}
}

func TestRemoveClientClearsActiveClient(t *testing.T) {
	s := NewState(testSettings())
	s.AddClient(1)
	s.RemoveClient(1)

	if _, ok := s.clients[1]; ok {
		t.Error("expected client 1 to be removed")
	}
	if s.activeClient != 0 {
		t.Error("expected activeClient to be cleared once the active client disconnects")
	}
}

func TestHandleClientEventOpenBufferLoadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	if err := os.WriteFile(path, []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewState(testSettings())
	s.AddClient(1)

	out := s.HandleClientEvent(1, protocol.ClientEvent{Kind: protocol.OpenBufferEvent, Path: path})
	if out.Message == "" {
		t.Error("expected a status message confirming the file was opened")
	}

	cs := s.clients[1]
	if cs.ctx.Buffer.Path() != path {
		t.Errorf("Buffer.Path(): got %q, want %q", cs.ctx.Buffer.Path(), path)
	}
	if cs.ctx.Buffer.Line(0) != "package main" {
		t.Errorf("Buffer.Line(0): got %q", cs.ctx.Buffer.Line(0))
	}

	// Opening the same path twice must reuse the buffer rather than
	// duplicating it.
	if len(s.buffers) != 2 { // the client's own scratch buffer + the loaded one
		t.Fatalf("expected 2 buffers open, got %d", len(s.buffers))
	}
	h2, err := s.OpenBufferForPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.buffers) != 2 {
		t.Errorf("re-opening an already-open path should not allocate a new buffer, got %d buffers", len(s.buffers))
	}
	if _, ok := s.buffers[h2]; !ok {
		t.Error("expected the reused handle to still resolve")
	}
}

func TestHandleClientEventCommandRunsThroughEvaluator(t *testing.T) {
	s := NewState(testSettings())
	s.AddClient(1)

	out := s.HandleClientEvent(1, protocol.ClientEvent{Kind: protocol.CommandEvent, Command: "not-a-real-command"})
	if out.Message == "" {
		t.Error("expected an error status message for an unknown command")
	}
}

func TestHandleClientEventKeyFeedsModeMachine(t *testing.T) {
	s := NewState(testSettings())
	s.AddClient(1)

	out := s.HandleClientEvent(1, protocol.ClientEvent{Kind: protocol.KeyEvent, Key: key.Key{Code: key.Char, Rune: 'i'}})
	if out.Signal != mode.None && out.Signal != mode.Pending {
		t.Errorf("unexpected signal entering insert mode: %v", out.Signal)
	}
	if s.clients[1].machine.Active() != mode.Insert {
		t.Errorf("expected 'i' to enter Insert mode, got %v", s.clients[1].machine.Active())
	}
}

func TestBufferPathsImplementsCommandHost(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	os.WriteFile(path, []byte("hi\n"), 0o644)

	s := NewState(testSettings())
	s.AddClient(1)
	if _, err := s.OpenBufferForPath(path); err != nil {
		t.Fatal(err)
	}

	found := false
	for _, p := range s.BufferPaths() {
		if p == path {
			found = true
		}
	}
	if !found {
		t.Errorf("BufferPaths(): %v does not contain %q", s.BufferPaths(), path)
	}
}

func TestApplyEditsInsertsAndDeletes(t *testing.T) {
	s := NewState(testSettings())
	h := s.NewScratchBuffer("scratch", []string{"hello world"})

	err := s.ApplyEdits(h, []lsp.Edit{
		{Range: bufpos.Range{From: bufpos.Position{Line: 0, Column: 6}, To: bufpos.Position{Line: 0, Column: 11}}, NewText: "there"},
	})
	if err != nil {
		t.Fatal(err)
	}
	text, _ := s.BufferText(h)
	if text != "hello there" {
		t.Errorf("BufferText(): got %q, want %q", text, "hello there")
	}
}

func TestApplyEditsUnknownBufferReturnsErrBufferNotOpen(t *testing.T) {
	s := NewState(testSettings())
	if err := s.ApplyEdits(999, nil); err != lsp.ErrBufferNotOpen {
		t.Errorf("got %v, want ErrBufferNotOpen", err)
	}
}

func TestFocusBufferRetargetsActiveClientView(t *testing.T) {
	s := NewState(testSettings())
	s.AddClient(1)
	h := s.NewScratchBuffer("scratch", []string{"one", "two", "three"})

	s.FocusBuffer(h, bufpos.Position{Line: 2, Column: 1})

	cs := s.clients[1]
	if cs.view.Handle() != h {
		t.Errorf("expected active client's view to retarget to %v, got %v", h, cs.view.Handle())
	}
	if got := cs.view.Cursors().Primary().Position; got != (bufpos.Position{Line: 2, Column: 1}) {
		t.Errorf("cursor position: got %+v", got)
	}
}

func TestShowPickerSwitchesToPickerModeAndRoutesSelection(t *testing.T) {
	s := NewState(testSettings())
	s.AddClient(1)

	var selected int = -1
	s.ShowPicker([]string{"alpha", "beta"}, func(idx int) { selected = idx })

	cs := s.clients[1]
	if cs.machine.Active() != mode.Picker {
		t.Fatalf("expected ShowPicker to switch to Picker mode, got %v", cs.machine.Active())
	}

	// Submit immediately (filter is empty, so the first entry is current).
	out := cs.machine.Feed(cs.ctx, key.Key{Code: key.Enter})
	if selected != 0 {
		t.Errorf("expected onSelect(0) on submit, got %d", selected)
	}
	// Feed handles the EnterMode switch itself and reports None.
	if out.Signal != mode.None {
		t.Errorf("expected Feed to report None after the picker submit, got %+v", out)
	}
	if cs.machine.Active() != mode.Normal {
		t.Errorf("expected machine to have returned to Normal, got %v", cs.machine.Active())
	}
}

func TestStatusQueuesCommandOutputEventForActiveClient(t *testing.T) {
	s := NewState(testSettings())
	s.AddClient(1)

	s.Status("hello", false)
	reqs := s.DrainPlatformRequests()
	if len(reqs) != 1 {
		t.Fatalf("expected one queued status request, got %d", len(reqs))
	}
	if reqs[0].Kind != platform.WriteToClient || reqs[0].Client != 1 {
		t.Errorf("got %+v, want WriteToClient to client 1", reqs[0])
	}
}

func TestEmitWithNoRunningClientIsNoOp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	os.WriteFile(path, []byte("package main\n"), 0o644)

	s := NewState(testSettings())
	s.AddClient(1)

	h, err := s.OpenBufferForPath(path)
	if err != nil {
		t.Fatal(err)
	}
	// No running client yet (EnsureStarted only queued a spawn request),
	// so Emit should simply find zero matching clients and do nothing,
	// rather than panicking on a nil client.
	s.Emit(buffer.Event{Kind: buffer.EventSave, Handle: h})
}
