// Package editor ties every engine package (buffer, view, mode, command,
// lsp) into the single core the dispatcher drives one tick at a time,
// generalizing the teacher's single-buffer EditorState to spec.md's
// multi-buffer, multi-client, multi-language-server model.
package editor

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dshills/pepperd/internal/command"
	"github.com/dshills/pepperd/internal/config"
	"github.com/dshills/pepperd/internal/engine/buffer"
	"github.com/dshills/pepperd/internal/engine/bufpos"
	"github.com/dshills/pepperd/internal/engine/cursor"
	"github.com/dshills/pepperd/internal/engine/view"
	"github.com/dshills/pepperd/internal/engine/worddb"
	"github.com/dshills/pepperd/internal/input/macro"
	"github.com/dshills/pepperd/internal/input/mode"
	"github.com/dshills/pepperd/internal/input/picker"
	"github.com/dshills/pepperd/internal/lsp"
	"github.com/dshills/pepperd/internal/platform"
	"github.com/dshills/pepperd/internal/protocol"
	"github.com/dshills/pepperd/internal/renderer"
	"github.com/dshills/pepperd/internal/session"
)

// bufEntry is one open buffer plus the word index that feeds its
// picker/completion entries.
type bufEntry struct {
	buf   *buffer.Buffer
	words *worddb.DB

	// lastCursor is the most recent cursor position any client had in
	// this buffer, refreshed each render tick; it seeds the position a
	// later OpenBuffer reuses and is what Snapshot persists.
	lastCursor bufpos.Position
}

// clientState is one connected TTY client's view, mode machine,
// terminal geometry and the Frame its content is painted into.
type clientState struct {
	view    *view.View
	machine *mode.Machine
	ctx     *mode.Context
	width   int
	height  int

	frame     *renderer.Frame
	scrollTop int
}

// State implements command.Host, lsp.Host and buffer.EventSink so the
// command evaluator and every lsp.Client reach buffers, views and
// clients through the same door the dispatcher does.
type State struct {
	buffers    map[buffer.Handle]*bufEntry
	nextBuffer buffer.Handle

	clients map[platform.Handle]*clientState

	lspMgr  *lsp.Manager
	cmdEval *command.Evaluator

	// activeClient is whichever client's key or command most recently
	// triggered an action, including one that may turn into an LSP
	// request. lsp.Host's navigation/picker/status methods carry no
	// per-client parameter (a language server is scoped to a project,
	// not a connected terminal), so this is the implicit target a
	// later response acts against. This is a deliberate simplification:
	// the spec's single core processes one client event at a time, and
	// RequestInFlight already limits a given client to one outstanding
	// LSP request, so the window where activeClient could be "wrong"
	// (two clients racing the same buffer's language server) is the
	// same window the spec already serializes through one core thread.
	activeClient platform.Handle

	tabWidth int

	pending []platform.Request
}

// NewState builds an empty State: no buffers, no clients, an LSP
// manager compiled from cfg's recipes, and the full command set
// (builtins plus the LSP-backed commands this package adds).
func NewState(cfg *config.Settings) *State {
	s := &State{
		buffers:  make(map[buffer.Handle]*bufEntry),
		clients:  make(map[platform.Handle]*clientState),
		tabWidth: cfg.Editor.TabWidth,
	}
	s.lspMgr = lsp.NewManager(s, cfg.LSP)
	s.cmdEval = command.NewEvaluator(command.NewRegistry())
	s.cmdEval.Host = s
	s.cmdEval.RegisterBuiltins()
	registerLSPCommands(s.cmdEval, s)
	return s
}

// LSP returns the manager, for the dispatcher to route ProcessStdout/
// ProcessExited events and ConfirmSpawn calls through.
func (s *State) LSP() *lsp.Manager { return s.lspMgr }

// ReloadRecipes replaces the LSP auto-start recipe set, called by the
// dispatcher when internal/project reports the workspace recipe file
// changed.
func (s *State) ReloadRecipes(recipes []config.Recipe) {
	s.lspMgr.ReloadRecipes(recipes)
}

func (s *State) newBuffer(caps buffer.Capabilities) (buffer.Handle, *bufEntry) {
	s.nextBuffer++
	h := s.nextBuffer
	e := &bufEntry{buf: buffer.New(h, caps), words: worddb.New()}
	s.buffers[h] = e
	return h, e
}

// AddClient registers a freshly accepted client with an empty scratch
// buffer and a fresh Normal-mode machine, and makes it the active
// client.
func (s *State) AddClient(h platform.Handle) {
	bh, e := s.newBuffer(buffer.Capabilities{CanSave: true})
	v := view.New(bh, cursor.At(bufpos.Position{}))
	words := e.words
	ctx := &mode.Context{
		View:      v,
		Buffer:    e.buf,
		Words:     e.words,
		Sink:      s,
		Registers: macro.New(),
		Picker:    picker.New(),
		Commands:  s.cmdEval,
		WordAt:    func(idx int) string { return words.At(idx) },
	}
	const defaultWidth, defaultHeight = 80, 24
	s.clients[h] = &clientState{
		view: v, machine: mode.NewMachine(), ctx: ctx,
		width: defaultWidth, height: defaultHeight,
		frame: renderer.NewFrame(defaultWidth, defaultHeight),
	}
	s.activeClient = h
}

// RemoveClient drops a disconnected client's session state. Buffers it
// had open are left in place; another client (or a later reconnect)
// may still reference them.
func (s *State) RemoveClient(h platform.Handle) {
	delete(s.clients, h)
	if s.activeClient == h {
		s.activeClient = 0
	}
}

// HandleClientEvent dispatches one decoded ClientEvent against h's
// session: keys feed the mode machine, resizes update geometry,
// commands run through the evaluator, and OpenBuffer loads a file into
// h's view.
func (s *State) HandleClientEvent(h platform.Handle, ev protocol.ClientEvent) mode.Outcome {
	cs, ok := s.clients[h]
	if !ok {
		return mode.Outcome{}
	}
	s.activeClient = h

	switch ev.Kind {
	case protocol.KeyEvent:
		return cs.machine.Feed(cs.ctx, ev.Key)
	case protocol.ResizeEvent:
		cs.width, cs.height = int(ev.Width), int(ev.Height)
		cs.frame.Resize(cs.width, cs.height)
		return mode.Outcome{}
	case protocol.CommandEvent:
		return s.cmdEval.Run(cs.ctx, ev.Command)
	case protocol.OpenBufferEvent:
		bh, err := s.OpenBufferForPath(ev.Path)
		if err != nil {
			return mode.OutcomeMessage(err.Error())
		}
		pos := bufpos.Position{}
		if e, ok := s.buffers[bh]; ok {
			pos = e.lastCursor
		}
		s.focusClientBuffer(cs, bh, pos)
		return mode.OutcomeMessage(fmt.Sprintf("%q opened", ev.Path))
	}
	return mode.Outcome{}
}

func (s *State) focusClientBuffer(cs *clientState, h buffer.Handle, pos bufpos.Position) {
	e, ok := s.buffers[h]
	if !ok {
		return
	}
	cs.view = view.New(h, cursor.At(pos))
	cs.ctx.View = cs.view
	cs.ctx.Buffer = e.buf
	cs.ctx.Words = e.words
	words := e.words
	cs.ctx.WordAt = func(idx int) string { return words.At(idx) }
}

// DrainPlatformRequests collects every platform.Request this State and
// its LSP manager have queued since the last call (status-bar writes,
// LSP stdin writes, auto-start spawns), for the dispatcher to append to
// its own batch before calling Platform.Submit.
func (s *State) DrainPlatformRequests() []platform.Request {
	out := append(s.pending, s.lspMgr.DrainOutbound()...)
	s.pending = nil
	return out
}

func (s *State) sendServerEvent(h platform.Handle, ev protocol.ServerEvent) {
	if _, ok := s.clients[h]; !ok {
		return
	}
	s.pending = append(s.pending, platform.Request{Kind: platform.WriteToClient, Client: h, Buf: ev.Encode()})
}

// --- command.Host ---

// BufferPaths implements command.Host.
func (s *State) BufferPaths() []string {
	out := make([]string, 0, len(s.buffers))
	for _, e := range s.buffers {
		if e.buf.Path() != "" {
			out = append(out, e.buf.Path())
		}
	}
	return out
}

// --- buffer.EventSink ---

// Emit forwards a buffer mutation to every running language-server
// client whose recipe matches the buffer's path, via
// lsp.Manager.ClientsForPath rather than Clients(), so a .go edit never
// reaches a running rust-analyzer client's document-sync table.
func (s *State) Emit(ev buffer.Event) {
	e, ok := s.buffers[ev.Handle]
	if !ok {
		return
	}
	path := e.buf.Path()
	if path == "" {
		return
	}
	clients := s.lspMgr.ClientsForPath(path)
	if len(clients) == 0 {
		return
	}

	for _, c := range clients {
		switch ev.Kind {
		case buffer.EventLoad:
			c.BufferLoad(ev.Handle, path, strings.Join(e.buf.Lines(), "\n"))
		case buffer.EventInsertText:
			c.BufferInsertText(ev.Handle, ev.Range.From.Line, ev.Range.From.Column, ev.Text)
		case buffer.EventDeleteText:
			c.BufferDeleteText(ev.Handle, ev.Range.From.Line, ev.Range.From.Column, ev.Range.To.Line, ev.Range.To.Column)
		case buffer.EventSave:
			c.BufferSave(ev.Handle)
		case buffer.EventClose:
			c.BufferClose(ev.Handle)
		}
	}
}

// --- lsp.Host ---

// OpenBufferForPath implements lsp.Host: it reuses an already-open
// buffer for path, otherwise loads it from disk and starts (if not
// already running) the recipe-matched language server for it.
func (s *State) OpenBufferForPath(path string) (buffer.Handle, error) {
	for h, e := range s.buffers {
		if e.buf.Path() == path {
			return h, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("editor: open %s: %w", path, err)
	}
	var lines []string
	if err == nil {
		lines = strings.Split(string(data), "\n")
	}

	h, e := s.newBuffer(buffer.Capabilities{CanSave: true})
	e.buf.Load(path, lines, s, e.words)
	if req := s.lspMgr.EnsureStarted(path); req != nil {
		s.pending = append(s.pending, *req)
	}
	return h, nil
}

// BufferPath implements lsp.Host.
func (s *State) BufferPath(h buffer.Handle) (string, bool) {
	e, ok := s.buffers[h]
	if !ok {
		return "", false
	}
	return e.buf.Path(), true
}

// BufferText implements lsp.Host.
func (s *State) BufferText(h buffer.Handle) (string, bool) {
	e, ok := s.buffers[h]
	if !ok {
		return "", false
	}
	return strings.Join(e.buf.Lines(), "\n"), true
}

// FocusBuffer implements lsp.Host: it retargets the active client's
// view to h and places a single cursor at pos.
func (s *State) FocusBuffer(h buffer.Handle, pos bufpos.Position) {
	cs, ok := s.clients[s.activeClient]
	if !ok {
		return
	}
	s.focusClientBuffer(cs, h, pos)
}

// NewScratchBuffer implements lsp.Host: lines are loaded with a nil
// sink, since a references hit-list or an LSP log buffer is never
// itself the subject of document sync.
func (s *State) NewScratchBuffer(name string, lines []string) buffer.Handle {
	h, e := s.newBuffer(buffer.Capabilities{AutoClose: true})
	e.buf.Load(name, lines, nil, e.words)
	return h
}

// ApplyEdits implements lsp.Host, applying edits in the order given.
func (s *State) ApplyEdits(h buffer.Handle, edits []lsp.Edit) error {
	e, ok := s.buffers[h]
	if !ok {
		return lsp.ErrBufferNotOpen
	}
	for _, ed := range edits {
		if ed.Range.From != ed.Range.To {
			e.buf.DeleteRange(ed.Range, 0, s, e.words)
		}
		if ed.NewText != "" {
			e.buf.InsertText(ed.Range.From, ed.NewText, 0, s, e.words)
		}
	}
	return nil
}

// Status implements lsp.Host by queuing a CommandOutputEvent to the
// active client, the same status-bar channel the command evaluator's
// own error/output messages use.
func (s *State) Status(msg string, isError bool) {
	if isError {
		msg = "error: " + msg
	}
	s.sendServerEvent(s.activeClient, protocol.ServerEvent{Kind: protocol.CommandOutputEvent, Output: msg})
}

// ShowPicker implements lsp.Host: it installs a one-shot PickerImpl on
// the active client's machine and switches to it via Machine.Enter,
// since this call always originates from an asynchronous LSP response
// rather than from that client's own key-queue loop. Each entry's
// original index is round-tripped through picker.Entry.Description
// (picker.Entry is addressed by its Text/Description, not by index,
// and entry titles are not guaranteed unique).
func (s *State) ShowPicker(entries []string, onSelect func(index int)) {
	cs, ok := s.clients[s.activeClient]
	if !ok {
		return
	}
	cs.ctx.Picker.Reset()
	for i, title := range entries {
		cs.ctx.Picker.Add(picker.NewCustomEntry(title, strconv.Itoa(i)))
	}
	cs.machine.SetMode(&mode.PickerImpl{
		OnSubmit: func(ctx *mode.Context, entry picker.Entry) mode.Outcome {
			if idx, err := strconv.Atoi(entry.Description); err == nil && onSelect != nil {
				onSelect(idx)
			}
			return mode.Outcome{Signal: mode.EnterMode, Next: mode.Normal}
		},
		OnCancel: func(ctx *mode.Context) mode.Outcome {
			return mode.Outcome{Signal: mode.EnterMode, Next: mode.Normal}
		},
	})
	cs.machine.Enter(cs.ctx, mode.Picker)
}

// Snapshot captures every named (non-scratch) open buffer's path and
// last known cursor position for internal/session to persist.
func (s *State) Snapshot() session.Snapshot {
	var snap session.Snapshot
	for _, e := range s.buffers {
		if e.buf.Path() == "" {
			continue
		}
		snap.Buffers = append(snap.Buffers, session.Entry{
			Path:   e.buf.Path(),
			Line:   e.lastCursor.Line,
			Column: e.lastCursor.Column,
		})
	}
	return snap
}

// RestoreSession pre-loads every buffer snap names (via the same path
// taken by an LSP go-to-definition jump, OpenBufferForPath) and seeds
// each one's lastCursor so the client that first opens it lands where
// it was left, without requiring a client to already be connected —
// session restore happens before any client has dialed in.
func (s *State) RestoreSession(snap session.Snapshot) {
	for _, entry := range snap.Buffers {
		bh, err := s.OpenBufferForPath(entry.Path)
		if err != nil {
			continue
		}
		if e, ok := s.buffers[bh]; ok {
			e.lastCursor = bufpos.Position{Line: entry.Line, Column: entry.Column}
		}
	}
}
