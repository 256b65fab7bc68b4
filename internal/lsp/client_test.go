package lsp

import (
	"fmt"
	"testing"

	"github.com/dshills/pepperd/internal/engine/buffer"
	"github.com/dshills/pepperd/internal/engine/bufpos"
)

// fakeHost is a minimal Host recording every call a test cares about,
// grounded on the teacher's pattern of a recording fake rather than a
// mock-generator, so these tests need no internal/editor state.
type fakeHost struct {
	byPath map[string]buffer.Handle
	text   map[buffer.Handle]string
	nextH  buffer.Handle

	focusedBuf buffer.Handle
	focusedPos bufpos.Position

	scratchName string
	scratchLines []string

	appliedTo    buffer.Handle
	appliedEdits []Edit

	statusMsg string
	statusErr bool

	pickerEntries []string
	pickerSelect  func(int)
}

func newFakeHost() *fakeHost {
	return &fakeHost{byPath: make(map[string]buffer.Handle), text: make(map[buffer.Handle]string)}
}

func (f *fakeHost) addFile(path, content string) buffer.Handle {
	f.nextH++
	h := f.nextH
	f.byPath[path] = h
	f.text[h] = content
	return h
}

func (f *fakeHost) OpenBufferForPath(path string) (buffer.Handle, error) {
	if h, ok := f.byPath[path]; ok {
		return h, nil
	}
	return 0, fmt.Errorf("no such file: %s", path)
}

func (f *fakeHost) BufferPath(h buffer.Handle) (string, bool) {
	for p, hh := range f.byPath {
		if hh == h {
			return p, true
		}
	}
	return "", false
}

func (f *fakeHost) BufferText(h buffer.Handle) (string, bool) {
	t, ok := f.text[h]
	return t, ok
}

func (f *fakeHost) FocusBuffer(h buffer.Handle, pos bufpos.Position) {
	f.focusedBuf = h
	f.focusedPos = pos
}

func (f *fakeHost) NewScratchBuffer(name string, lines []string) buffer.Handle {
	f.scratchName = name
	f.scratchLines = lines
	f.nextH++
	return f.nextH
}

func (f *fakeHost) ApplyEdits(h buffer.Handle, edits []Edit) error {
	f.appliedTo = h
	f.appliedEdits = edits
	return nil
}

func (f *fakeHost) Status(msg string, isError bool) {
	f.statusMsg = msg
	f.statusErr = isError
}

func (f *fakeHost) ShowPicker(entries []string, onSelect func(int)) {
	f.pickerEntries = entries
	f.pickerSelect = onSelect
}

func TestNewClientStartsInStartingStatus(t *testing.T) {
	c := NewClient(1)
	if c.Status != StatusStarting {
		t.Errorf("Status: got %v, want %v", c.Status, StatusStarting)
	}
	if c.Initialized() {
		t.Error("new client should not be initialized")
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{StatusStarting, "starting"},
		{StatusRunning, "running"},
		{StatusStopped, "stopped"},
		{Status(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestInitializeQueuesRequestAndHandshake(t *testing.T) {
	c := NewClient(1, WithProjectRoot("/proj"))
	c.Initialize()

	out := c.DrainOutbox()
	if len(out) != 1 {
		t.Fatalf("DrainOutbox: got %d messages, want 1", len(out))
	}
	if len(c.pending) != 1 || c.pending[1] != "initialize" {
		t.Fatalf("pending map: got %v", c.pending)
	}

	resp := []byte(`{"jsonrpc":"2.0","id":1,"result":{"capabilities":{"textDocumentSync":2,"definitionProvider":true}}}`)
	c.Feed(encodeMessage(resp))

	if !c.Initialized() {
		t.Fatal("expected client to be initialized after initialize response")
	}
	if c.Status != StatusRunning {
		t.Errorf("Status: got %v, want %v", c.Status, StatusRunning)
	}
	if !c.Capabilities().Definition {
		t.Error("expected Definition capability true")
	}

	out = c.DrainOutbox()
	if len(out) != 1 {
		t.Fatalf("expected one queued 'initialized' notification, got %d", len(out))
	}
}

func TestBufferLoadSendsDidOpenOnceInitialized(t *testing.T) {
	c := NewClient(1)
	c.Initialize()
	c.DrainOutbox()
	c.Feed(encodeMessage([]byte(`{"jsonrpc":"2.0","id":1,"result":{"capabilities":{"textDocumentSync":{"openClose":true,"change":1}}}}`)))
	c.DrainOutbox()

	c.BufferLoad(7, "/proj/main.go", "package main\n")
	out := c.DrainOutbox()
	if len(out) != 1 {
		t.Fatalf("expected didOpen notification, got %d messages", len(out))
	}
}

func TestRequestDefinitionRejectsWhenAlreadyInFlight(t *testing.T) {
	c := NewClient(1)
	c.Initialize()
	c.DrainOutbox()
	c.Feed(encodeMessage([]byte(`{"jsonrpc":"2.0","id":1,"result":{"capabilities":{}}}`)))
	c.DrainOutbox()

	c.BufferLoad(1, "/proj/a.go", "a")
	c.DrainOutbox()

	if err := c.RequestDefinition(1, 0, 0); err != nil {
		t.Fatalf("first RequestDefinition: unexpected error %v", err)
	}
	if err := c.RequestReferences(1, 0, 0, 0, false); err != ErrRequestInFlight {
		t.Fatalf("second request: got %v, want ErrRequestInFlight", err)
	}
}

func TestRequestDefinitionNavigatesOnResponse(t *testing.T) {
	host := newFakeHost()
	target := host.addFile("/proj/other.go", "func other() {}\n")

	c := NewClient(1, WithHost(host))
	c.Initialize()
	c.DrainOutbox()
	c.Feed(encodeMessage([]byte(`{"jsonrpc":"2.0","id":1,"result":{"capabilities":{}}}`)))
	c.DrainOutbox()

	c.BufferLoad(2, "/proj/a.go", "a")
	c.DrainOutbox()

	if err := c.RequestDefinition(2, 3, 4); err != nil {
		t.Fatalf("RequestDefinition: %v", err)
	}
	c.DrainOutbox()

	resp := fmt.Sprintf(`{"jsonrpc":"2.0","id":2,"result":{"uri":%q,"range":{"start":{"line":0,"character":5},"end":{"line":0,"character":10}}}}`, fileURI("/proj/other.go"))
	c.Feed(encodeMessage([]byte(resp)))

	if host.focusedBuf != target {
		t.Errorf("focusedBuf: got %v, want %v", host.focusedBuf, target)
	}
	if host.focusedPos.Line != 0 || host.focusedPos.Column != 5 {
		t.Errorf("focusedPos: got %+v, want {0 5}", host.focusedPos)
	}
	if c.State() != StateIdle {
		t.Errorf("state after response: got %v, want Idle", c.State())
	}
}

func TestRequestRenameAppliesWorkspaceEditDescendingOffset(t *testing.T) {
	host := newFakeHost()
	h := host.addFile("/proj/a.go", "foo foo foo\n")

	c := NewClient(1, WithHost(host))
	c.Initialize()
	c.DrainOutbox()
	c.Feed(encodeMessage([]byte(`{"jsonrpc":"2.0","id":1,"result":{"capabilities":{"renameProvider":true}}}`)))
	c.DrainOutbox()

	c.BufferLoad(h, "/proj/a.go", "foo foo foo\n")
	c.DrainOutbox()

	if err := c.RequestRename(h, 0, 0, "bar"); err != nil {
		t.Fatalf("RequestRename: %v", err)
	}
	c.DrainOutbox()

	uri := fileURI("/proj/a.go")
	resp := fmt.Sprintf(`{"jsonrpc":"2.0","id":2,"result":{"changes":{%q:[
		{"range":{"start":{"line":0,"character":0},"end":{"line":0,"character":3}},"newText":"bar"},
		{"range":{"start":{"line":0,"character":8},"end":{"line":0,"character":11}},"newText":"bar"}
	]}}}`, uri)
	c.Feed(encodeMessage([]byte(resp)))

	if host.appliedTo != h {
		t.Fatalf("appliedTo: got %v, want %v", host.appliedTo, h)
	}
	if len(host.appliedEdits) != 2 {
		t.Fatalf("appliedEdits: got %d, want 2", len(host.appliedEdits))
	}
	if host.appliedEdits[0].Range.From.Column != 8 {
		t.Errorf("first applied edit should be the later offset (descending order), got column %d", host.appliedEdits[0].Range.From.Column)
	}
}

func TestRequestCodeActionPopulatesPickerAndApplies(t *testing.T) {
	host := newFakeHost()
	h := host.addFile("/proj/a.go", "x\n")

	c := NewClient(1, WithHost(host))
	c.Initialize()
	c.DrainOutbox()
	c.Feed(encodeMessage([]byte(`{"jsonrpc":"2.0","id":1,"result":{"capabilities":{"codeActionProvider":true}}}`)))
	c.DrainOutbox()

	c.BufferLoad(h, "/proj/a.go", "x\n")
	c.DrainOutbox()

	if err := c.RequestCodeAction(h, 0, 0, 0, 1); err != nil {
		t.Fatalf("RequestCodeAction: %v", err)
	}
	c.DrainOutbox()

	uri := fileURI("/proj/a.go")
	resp := fmt.Sprintf(`{"jsonrpc":"2.0","id":2,"result":[
		{"title":"Add import","edit":{"changes":{%q:[{"range":{"start":{"line":0,"character":0},"end":{"line":0,"character":0}},"newText":"import x\n"}]}}}
	]}`, uri)
	c.Feed(encodeMessage([]byte(resp)))

	if c.State() != StateFinishCodeAction {
		t.Fatalf("state: got %v, want FinishCodeAction", c.State())
	}
	if len(host.pickerEntries) != 1 || host.pickerEntries[0] != "Add import" {
		t.Fatalf("pickerEntries: got %v", host.pickerEntries)
	}

	host.pickerSelect(0)

	if host.appliedTo != h {
		t.Fatalf("appliedTo: got %v, want %v", host.appliedTo, h)
	}
	if c.State() != StateIdle {
		t.Errorf("state after selection: got %v, want Idle", c.State())
	}
}

func TestCancelCurrentRequestDiscardsLateResponse(t *testing.T) {
	host := newFakeHost()
	h := host.addFile("/proj/a.go", "x\n")

	c := NewClient(1, WithHost(host))
	c.Initialize()
	c.DrainOutbox()
	c.Feed(encodeMessage([]byte(`{"jsonrpc":"2.0","id":1,"result":{"capabilities":{}}}`)))
	c.DrainOutbox()

	c.BufferLoad(h, "/proj/a.go", "x\n")
	c.DrainOutbox()

	if err := c.RequestDefinition(h, 0, 0); err != nil {
		t.Fatalf("RequestDefinition: %v", err)
	}
	c.DrainOutbox()
	c.CancelCurrentRequest()

	resp := `{"jsonrpc":"2.0","id":2,"result":{"uri":"file:///proj/other.go","range":{"start":{"line":0,"character":0},"end":{"line":0,"character":0}}}}`
	c.Feed(encodeMessage([]byte(resp)))

	if host.focusedBuf != 0 {
		t.Errorf("late response should have been discarded, but FocusBuffer was called with %v", host.focusedBuf)
	}
}

func TestBufferSaveFlushesPendingThenSendsDidSave(t *testing.T) {
	host := newFakeHost()
	h := host.addFile("/proj/a.go", "x\n")
	host.text[h] = "xy\n"

	c := NewClient(1, WithHost(host))
	c.Initialize()
	c.DrainOutbox()
	c.Feed(encodeMessage([]byte(`{"jsonrpc":"2.0","id":1,"result":{"capabilities":{"textDocumentSync":{"openClose":true,"change":1,"save":{"includeText":true}}}}}`)))
	c.DrainOutbox()

	c.BufferLoad(h, "/proj/a.go", "x\n")
	c.DrainOutbox()

	c.BufferInsertText(h, 0, 1, "y")
	c.BufferSave(h)

	out := c.DrainOutbox()
	if len(out) != 2 {
		t.Fatalf("expected didChange then didSave, got %d messages", len(out))
	}
}

func TestBufferCloseFreesVersionedBuffer(t *testing.T) {
	c := NewClient(1)
	c.Initialize()
	c.DrainOutbox()
	c.Feed(encodeMessage([]byte(`{"jsonrpc":"2.0","id":1,"result":{"capabilities":{"textDocumentSync":{"openClose":true}}}}`)))
	c.DrainOutbox()

	c.BufferLoad(1, "/proj/a.go", "x\n")
	c.DrainOutbox()

	c.BufferClose(1)
	if _, ok := c.docs.get(1); ok {
		t.Error("expected versioned buffer to be freed after BufferClose")
	}

	out := c.DrainOutbox()
	if len(out) != 1 {
		t.Fatalf("expected one didClose notification, got %d", len(out))
	}
}

func TestHandleShowMessageMapsSeverityToStatus(t *testing.T) {
	host := newFakeHost()
	c := NewClient(1, WithHost(host))

	c.arena.Reset([]byte(`{"jsonrpc":"2.0","method":"window/showMessage","params":{"type":1,"message":"boom"}}`))
	c.handleShowMessage()

	if host.statusMsg != "boom" || !host.statusErr {
		t.Errorf("got msg=%q isError=%v, want msg=boom isError=true", host.statusMsg, host.statusErr)
	}
}

func TestHandlePublishDiagnosticsBindsToOpenBuffer(t *testing.T) {
	c := NewClient(1)
	c.BufferLoad(1, "/proj/a.go", "x\n")

	uri := fileURI("/proj/a.go")
	notif := fmt.Sprintf(`{"jsonrpc":"2.0","method":"textDocument/publishDiagnostics","params":{"uri":%q,"diagnostics":[
		{"range":{"start":{"line":0,"character":0},"end":{"line":0,"character":1}},"severity":1,"message":"oops"}
	]}}`, uri)
	c.Feed(encodeMessage([]byte(notif)))

	diags := c.Diagnostics(1)
	if len(diags) != 1 || diags[0].Message != "oops" {
		t.Fatalf("Diagnostics: got %+v", diags)
	}
}
