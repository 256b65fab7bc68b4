package lsp

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/dshills/pepperd/internal/engine/buffer"
	"github.com/dshills/pepperd/internal/engine/bufpos"
	"github.com/dshills/pepperd/internal/platform"
	"github.com/dshills/pepperd/internal/protocol"
	arenajson "github.com/dshills/pepperd/internal/protocol/json"
)

// ErrRequestInFlight is returned by a user-request method when the
// state machine is not Idle, per spec's "at most one in-flight
// user-initiated request per client".
var ErrRequestInFlight = errors.New("lsp: a request is already in flight")

// ErrBufferNotOpen is returned by an operation naming a buffer handle
// this Client has no versioned-buffer record for.
var ErrBufferNotOpen = errors.New("lsp: buffer not open against this client")

// Status mirrors the teacher's ClientStatus idiom: a small enum with a
// String() method, tracked so the dispatcher can render "starting..."
// vs. a live server in a client's status line.
type Status int

const (
	StatusStarting Status = iota
	StatusRunning
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Client is one language server connection: {handle, project-root,
// json-arena, pending-requests map, initialized flag, capabilities,
// log-buffer handle, document-selector globs, versioned-buffer table,
// diagnostics, current request state, last-response raw JSON} — the
// exact field list spec.md §4.8 opens with, restructured into Go types
// (docSync, diagnostics, requestInfo) rather than one flat struct to
// keep each concern independently testable, grounded on the teacher's
// Client/Manager split (client.go) but collapsed to a single
// synchronous type since there is no goroutine-owned Transport here —
// Feed is called directly from the dispatcher's core thread with bytes
// already delivered by a ProcessStdout event.
type Client struct {
	ProcessHandle platform.Handle
	ProjectRoot   string
	Status        Status

	host Host

	arena   arenajson.Arena
	nextID  int64
	pending map[int64]string // id -> method, for every outstanding request (state-machine or not)

	initialized bool
	caps        ServerCapabilities
	selectors   []string // document-selector globs from client/registerCapability

	logBuffer   buffer.Handle
	hasLogBuf   bool
	opened      map[buffer.Handle]bool

	docs  *docSync
	diags *diagnostics

	state           requestInfo
	inFlightID      int64
	lastResponseRaw []byte

	recvBuf []byte   // accumulated, not-yet-framed stdout bytes
	outbox  [][]byte // framed messages waiting to be written to stdin

	tag string // recipe/log label, e.g. "rust-analyzer"
}

// ClientOption configures a Client at construction, the teacher's
// functional-options idiom (client.go's ClientOption).
type ClientOption func(*Client)

// WithHost sets the editor-integration Host.
func WithHost(h Host) ClientOption {
	return func(c *Client) { c.host = h }
}

// WithProjectRoot sets the root URI sent with initialize.
func WithProjectRoot(root string) ClientOption {
	return func(c *Client) { c.ProjectRoot = root }
}

// WithTag sets the client's log/debug label.
func WithTag(tag string) ClientOption {
	return func(c *Client) { c.tag = tag }
}

// NewClient constructs a Client bound to processHandle (the
// internal/platform process already spawned for this language
// server's stdio).
func NewClient(processHandle platform.Handle, opts ...ClientOption) *Client {
	c := &Client{
		ProcessHandle: processHandle,
		Status:        StatusStarting,
		pending:       make(map[int64]string),
		opened:        make(map[buffer.Handle]bool),
		docs:          newDocSync(),
		diags:         newDiagnostics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize sends the initialize request. The caller (Manager) is
// responsible for actually writing DrainOutbox's bytes to the
// process's stdin via a platform.Request{Kind: WriteToProcess}.
func (c *Client) Initialize() {
	params, _ := arenajson.Set(nil, "processId", -1)
	if c.ProjectRoot != "" {
		params, _ = arenajson.Set(params, "rootUri", fileURI(c.ProjectRoot))
		params, _ = arenajson.Set(params, "rootPath", c.ProjectRoot)
	}
	params, _ = arenajson.SetRaw(params, "capabilities", string(defaultClientCapabilitiesJSON()))
	c.sendRequest("initialize", params)
}

// DrainOutbox returns and clears every framed message queued for this
// server's stdin.
func (c *Client) DrainOutbox() [][]byte {
	out := c.outbox
	c.outbox = nil
	return out
}

// Feed accumulates data (one ProcessStdout event's bytes) and
// processes every complete Content-Length-framed message now
// available, synchronously, before returning — matching spec's
// strictly-single-threaded core (§5): there is no background read
// loop to hand messages back across.
func (c *Client) Feed(data []byte) {
	c.recvBuf = append(c.recvBuf, data...)
	for {
		body, consumed, status := decodeMessage(c.recvBuf)
		switch status {
		case protocol.Complete:
			c.recvBuf = c.recvBuf[consumed:]
			c.handleMessage(body)
		case protocol.InsufficientData:
			return
		default: // protocol.InvalidData
			c.recvBuf = nil
			return
		}
	}
}

func (c *Client) queueOut(body []byte) {
	c.outbox = append(c.outbox, encodeMessage(body))
}

func (c *Client) sendRequest(method string, params []byte) int64 {
	c.nextID++
	id := c.nextID
	body, _ := arenajson.Set(nil, "jsonrpc", "2.0")
	body, _ = arenajson.Set(body, "id", id)
	body, _ = arenajson.Set(body, "method", method)
	if params != nil {
		body, _ = arenajson.SetRaw(body, "params", string(params))
	}
	c.pending[id] = method
	c.queueOut(body)
	return id
}

func (c *Client) sendNotification(method string, params []byte) {
	body, _ := arenajson.Set(nil, "jsonrpc", "2.0")
	body, _ = arenajson.Set(body, "method", method)
	if params != nil {
		body, _ = arenajson.SetRaw(body, "params", string(params))
	}
	c.queueOut(body)
}

func (c *Client) respondResult(id int64, raw string) {
	body, _ := arenajson.Set(nil, "jsonrpc", "2.0")
	body, _ = arenajson.Set(body, "id", id)
	body, _ = arenajson.SetRaw(body, "result", raw)
	c.queueOut(body)
}

// respondParseError answers a malformed incoming request with a
// JSON-RPC parse_error, per spec's "on_parse_error responds with
// parse_error to preserve protocol state."
func (c *Client) respondParseError(id int64) {
	body, _ := arenajson.Set(nil, "jsonrpc", "2.0")
	body, _ = arenajson.Set(body, "id", id)
	body, _ = arenajson.Set(body, "error.code", -32700)
	body, _ = arenajson.Set(body, "error.message", "parse error")
	c.queueOut(body)
}

// --- incoming message dispatch ---

func (c *Client) handleMessage(body []byte) {
	c.arena.Reset(body)
	root := c.arena.Root()

	id := root.Get("id")
	method := root.Get("method")

	switch {
	case method.Exists() && id.Exists():
		c.handleServerRequest(id.Int(), method.String())
	case method.Exists():
		c.handleNotification(method.String())
	case id.Exists():
		c.handleResponse(id.Int(), root)
	}
}

func (c *Client) handleResponse(id int64, root arenajson.Value) {
	method, ok := c.pending[id]
	if !ok {
		return // unsolicited or already-handled id; drop silently
	}
	delete(c.pending, id)

	if method == "initialize" {
		c.handleInitializeResult(root)
		return
	}

	// Every other response the state machine cares about must match the
	// one in-flight id; a response arriving after cancelCurrentRequest
	// has a stale method/id pair and is discarded here exactly as spec
	// describes "server replies are discarded".
	if id != c.inFlightID {
		return
	}

	hasError := root.Get("error").Exists()
	result := root.Get("result")

	switch method {
	case "textDocument/definition":
		c.finishDefinition(result, hasError)
	case "textDocument/references":
		c.finishReferences(result, hasError)
	case "textDocument/rename":
		c.finishRename(result, hasError)
	case "textDocument/codeAction":
		c.finishCodeActionRPC(result, hasError)
	case "textDocument/documentSymbol":
		c.finishDocumentSymbolsRPC(result, hasError)
	case "workspace/symbol":
		c.finishWorkspaceSymbols(result, hasError)
	case "textDocument/formatting":
		c.finishFormatting(result, hasError)
	}
}

func (c *Client) handleInitializeResult(root arenajson.Value) {
	c.caps = parseServerCapabilities(&c.arena)
	c.initialized = true
	c.Status = StatusRunning
	c.sendNotification("initialized", []byte(`{}`))

	// didOpen for every buffer loaded before initialize completed.
	if c.caps.OpenClose {
		for h, vb := range c.docs.buffers {
			if !c.opened[h] {
				c.sendDidOpen(vb)
				c.opened[h] = true
			}
		}
	}
	_ = root
}

func (c *Client) handleNotification(method string) {
	switch method {
	case "textDocument/publishDiagnostics":
		c.handlePublishDiagnostics()
	case "window/showMessage":
		c.handleShowMessage()
	case "window/logMessage":
		// not handled: log messages are dropped.
	}
}

func (c *Client) handleServerRequest(id int64, method string) {
	switch method {
	case "client/registerCapability":
		c.handleRegisterCapability(id)
	case "window/showMessage":
		c.handleShowMessage()
		c.respondResult(id, "null")
	case "window/showDocument":
		c.handleShowDocument(id)
	default:
		c.respondParseError(id)
	}
}

func (c *Client) handleRegisterCapability(id int64) {
	regs := c.arena.Get("params.registrations").Array()
	for _, reg := range regs {
		sel := reg.Get("registerOptions.documentSelector").Array()
		for _, s := range sel {
			if pattern := s.Get("pattern").String(); pattern != "" {
				c.selectors = append(c.selectors, pattern)
			}
		}
	}
	c.respondResult(id, "null")
}

func (c *Client) handleShowMessage() {
	if c.host == nil {
		return
	}
	typ := c.arena.Get("params.type").Int()
	msg := c.arena.Get("params.message").String()
	c.host.Status(msg, typ == 1)
}

func (c *Client) handleShowDocument(id int64) {
	if c.host == nil {
		c.respondResult(id, `{"success":false}`)
		return
	}
	path := uriToPath(c.arena.Get("params.uri").String())
	h, err := c.host.OpenBufferForPath(path)
	if err != nil {
		c.respondResult(id, `{"success":false}`)
		return
	}
	pos := bufpos.Position{}
	if sel := c.arena.Get("params.selection"); sel.Exists() {
		pos = bufpos.Position{
			Line:   int(sel.Get("start.line").Int()),
			Column: int(sel.Get("start.character").Int()),
		}
	}
	if c.arena.Get("params.takeFocus").Bool() || !c.arena.Get("params.takeFocus").Exists() {
		c.host.FocusBuffer(h, pos)
	}
	c.respondResult(id, `{"success":true}`)
}

func (c *Client) handlePublishDiagnostics() {
	path := uriToPath(c.arena.Get("params.uri").String())
	var entries []Diagnostic
	for _, d := range c.arena.Get("params.diagnostics").Array() {
		entries = append(entries, Diagnostic{
			Start:    position{Line: int(d.Get("range.start.line").Int()), Character: int(d.Get("range.start.character").Int())},
			End:      position{Line: int(d.Get("range.end.line").Int()), Character: int(d.Get("range.end.character").Int())},
			Severity: Severity(d.Get("severity").Int()),
			Message:  d.Get("message").String(),
		})
	}
	c.diags.publish(path, entries)
	if h, _, ok := c.docs.byURI(fileURI(path)); ok {
		c.diags.bind(path, h)
	}
}

// --- document sync ---

// BufferLoad registers h as freshly loaded, per spec's "BufferLoad ->
// send didOpen if openClose".
func (c *Client) BufferLoad(h buffer.Handle, path, content string) {
	uri := fileURI(path)
	vb := c.docs.open(h, uri, path, detectLanguageID(path), content)
	c.diags.bind(path, h)
	if c.initialized && c.caps.OpenClose {
		c.sendDidOpen(vb)
		c.opened[h] = true
	}
}

func (c *Client) sendDidOpen(vb *versionedBuffer) {
	params, _ := arenajson.Set(nil, "textDocument.uri", vb.uri)
	params, _ = arenajson.Set(params, "textDocument.languageId", vb.languageID)
	params, _ = arenajson.Set(params, "textDocument.version", vb.version)
	params, _ = arenajson.Set(params, "textDocument.text", vb.content)
	c.sendNotification("textDocument/didOpen", params)
}

// BufferInsertText records an insertion into h's pending edit list.
func (c *Client) BufferInsertText(h buffer.Handle, line, col int, text string) {
	p := position{Line: line, Character: col}
	c.docs.insert(h, p, text)
}

// BufferDeleteText records a deletion into h's pending edit list.
func (c *Client) BufferDeleteText(h buffer.Handle, fromLine, fromCol, toLine, toCol int) {
	c.docs.deleteRange(h, position{Line: fromLine, Character: fromCol}, position{Line: toLine, Character: toCol})
}

// flushPending sends one didChange for h's accumulated edits, per
// spec's "Idle or any outgoing user-request -> first flush pending
// changes as one didChange".
func (c *Client) flushPending(h buffer.Handle) {
	vb, ok := c.docs.get(h)
	if !ok || !vb.dirty {
		return
	}
	defer func() { vb.pending = nil; vb.dirty = false }()

	switch c.caps.Change {
	case SyncNone:
		return
	case SyncFull:
		if c.host != nil {
			if text, ok := c.host.BufferText(h); ok {
				vb.content = text
			}
		}
		vb.version++
		params, _ := arenajson.Set(nil, "textDocument.uri", vb.uri)
		params, _ = arenajson.Set(params, "textDocument.version", vb.version)
		params, _ = arenajson.Set(params, "contentChanges.0.text", vb.content)
		c.sendNotification("textDocument/didChange", params)
	case SyncIncremental:
		vb.version++
		params, _ := arenajson.Set(nil, "textDocument.uri", vb.uri)
		params, _ = arenajson.Set(params, "textDocument.version", vb.version)
		for i, e := range vb.pending {
			prefix := "contentChanges." + arenajson.Itoa(i)
			params, _ = arenajson.Set(params, prefix+".range.start.line", e.startPos.Line)
			params, _ = arenajson.Set(params, prefix+".range.start.character", e.startPos.Character)
			params, _ = arenajson.Set(params, prefix+".range.end.line", e.endPos.Line)
			params, _ = arenajson.Set(params, prefix+".range.end.character", e.endPos.Character)
			params, _ = arenajson.Set(params, prefix+".text", e.newText)
		}
		c.sendNotification("textDocument/didChange", params)
	}
}

// BufferSave flushes pending changes then sends didSave, per spec's
// "BufferSave -> flush pending changes, then didSave (Full includes
// text)".
func (c *Client) BufferSave(h buffer.Handle) {
	c.flushPending(h)
	vb, ok := c.docs.get(h)
	if !ok || c.caps.Save == SyncNone {
		return
	}
	params, _ := arenajson.Set(nil, "textDocument.uri", vb.uri)
	if c.caps.SaveIncludesText {
		text := vb.content
		if c.host != nil {
			if t, ok := c.host.BufferText(h); ok {
				text = t
			}
		}
		params, _ = arenajson.Set(params, "text", text)
	}
	c.sendNotification("textDocument/didSave", params)
	c.diags.bind(vb.path, h)
}

// BufferClose flushes pending changes, sends didClose, and frees h's
// versioned buffer, per spec's "BufferClose -> flush then didClose;
// free the versioned buffer."
func (c *Client) BufferClose(h buffer.Handle) {
	c.flushPending(h)
	if vb, ok := c.docs.get(h); ok {
		params, _ := arenajson.Set(nil, "textDocument.uri", vb.uri)
		c.sendNotification("textDocument/didClose", params)
	}
	c.docs.close(h)
	delete(c.opened, h)
}

// --- user-initiated requests ---

func (c *Client) beginRequest(h buffer.Handle, state RequestState, method string, params []byte) error {
	if c.state.state != StateIdle {
		return ErrRequestInFlight
	}
	c.flushPending(h)
	id := c.sendRequest(method, params)
	c.inFlightID = id
	c.state = requestInfo{state: state, buf: h}
	return nil
}

// CancelCurrentRequest returns to Idle without an RPC cancel; any
// later response for the in-flight id is discarded by handleResponse's
// id check, per spec's "cancel_current_request() returns to Idle
// without RPC cancel (server replies are discarded)."
func (c *Client) CancelCurrentRequest() {
	c.state = requestInfo{}
	c.inFlightID = 0
}

func buildPositionParams(uri string, pos position) []byte {
	params, _ := arenajson.Set(nil, "textDocument.uri", uri)
	params, _ = arenajson.Set(params, "position.line", pos.Line)
	params, _ = arenajson.Set(params, "position.character", pos.Character)
	return params
}

// RequestDefinition issues textDocument/definition for (h, pos), not
// Idle.
func (c *Client) RequestDefinition(h buffer.Handle, line, col int) error {
	vb, ok := c.docs.get(h)
	if !ok {
		return ErrBufferNotOpen
	}
	return c.beginRequest(h, StateDefinition, "textDocument/definition", buildPositionParams(vb.uri, position{Line: line, Character: col}))
}

func (c *Client) finishDefinition(result arenajson.Value, hasError bool) {
	defer c.CancelCurrentRequest()
	if hasError || c.host == nil {
		return
	}
	loc := result
	if loc.Kind() == arenajson.KindArray {
		arr := loc.Array()
		if len(arr) == 0 {
			return
		}
		loc = arr[0]
	}
	path := uriToPath(loc.Get("uri").String())
	h, err := c.host.OpenBufferForPath(path)
	if err != nil {
		return
	}
	pos := bufpos.Position{
		Line:   int(loc.Get("range.start.line").Int()),
		Column: int(loc.Get("range.start.character").Int()),
	}
	c.host.FocusBuffer(h, pos)
}

// RequestReferences issues textDocument/references for (h, pos).
// When contextLen > 0, each hit is followed by a window of
// 2*contextLen-1 lines centred on it (see contextSnippet);
// autoClose marks the synthesized buffer as auto-closing once its
// last view goes away.
func (c *Client) RequestReferences(h buffer.Handle, line, col, contextLen int, autoClose bool) error {
	vb, ok := c.docs.get(h)
	if !ok {
		return ErrBufferNotOpen
	}
	params, _ := arenajson.SetRaw(nil, "textDocument", fmt.Sprintf(`{"uri":%q}`, vb.uri))
	params, _ = arenajson.Set(params, "position.line", line)
	params, _ = arenajson.Set(params, "position.character", col)
	params, _ = arenajson.Set(params, "context.includeDeclaration", true)
	if err := c.beginRequest(h, StateReferences, "textDocument/references", params); err != nil {
		return err
	}
	c.state.contextLen = contextLen
	c.state.autoClose = autoClose
	return nil
}

func (c *Client) finishReferences(result arenajson.Value, hasError bool) {
	defer c.CancelCurrentRequest()
	if hasError || c.host == nil {
		return
	}

	var lines []string
	var firstPath string
	for _, loc := range result.Array() {
		path := uriToPath(loc.Get("uri").String())
		if path == "" {
			continue
		}
		if firstPath == "" {
			firstPath = path
		}
		line := int(loc.Get("range.start.line").Int())
		col := int(loc.Get("range.start.character").Int())
		lines = append(lines, fmt.Sprintf("%s:%d,%d", path, line+1, col+1))
		if c.state.contextLen > 0 {
			if text, ok := c.host.BufferText(hostHandleFor(c.host, path)); ok {
				lines = append(lines, contextSnippet(text, line, c.state.contextLen)...)
				lines = append(lines, "")
			}
		}
	}

	// Named from the first resolvable hit, not the origin buffer, so
	// "go to references" from buffer A landing only in buffer B still
	// produces "B.refs" rather than "A.refs" (client.rs:1474-1499).
	name := "refs"
	if firstPath != "" {
		name = filepath.Base(firstPath) + ".refs"
	}
	bh := c.host.NewScratchBuffer(name, lines)
	c.host.FocusBuffer(bh, bufpos.Position{})
}

// hostHandleFor best-effort resolves path to a buffer handle without
// propagating an error into finishReferences's context-snippet path;
// a file the host can't open just contributes no context lines.
func hostHandleFor(host Host, path string) buffer.Handle {
	h, err := host.OpenBufferForPath(path)
	if err != nil {
		return 0
	}
	return h
}

// contextSnippet returns the lines surrounding line, with n counting the
// hit's own line (n=1 is just that line, n=2 adds one on each side),
// matching client.rs's surrounding_len = context_len - 1.
func contextSnippet(text string, line, n int) []string {
	all := splitLinesKeepEmpty(text)
	radius := n - 1
	lo := line - radius
	if lo < 0 {
		lo = 0
	}
	hi := line + radius
	if hi >= len(all) {
		hi = len(all) - 1
	}
	if lo > hi {
		return nil
	}
	return append([]string(nil), all[lo:hi+1]...)
}

func splitLinesKeepEmpty(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

// RequestRename issues textDocument/rename renaming the symbol at
// (h, line, col) to newName.
func (c *Client) RequestRename(h buffer.Handle, line, col int, newName string) error {
	vb, ok := c.docs.get(h)
	if !ok {
		return ErrBufferNotOpen
	}
	params := buildPositionParams(vb.uri, position{Line: line, Character: col})
	params, _ = arenajson.Set(params, "newName", newName)
	if err := c.beginRequest(h, StateRename, "textDocument/rename", params); err != nil {
		return err
	}
	c.state.pos = position{Line: line, Character: col}
	return nil
}

func (c *Client) finishRename(result arenajson.Value, hasError bool) {
	c.state.state = StateFinishRename
	defer c.CancelCurrentRequest()
	if hasError || c.host == nil {
		return
	}

	var changes arenajson.Value
	if raw := result.Get("changes"); raw.Exists() {
		changes = raw
	}
	changes.Object(func(uri string, edits arenajson.Value) {
		path := uriToPath(uri)
		h, err := c.host.OpenBufferForPath(path)
		if err != nil {
			return
		}
		var out []Edit
		for _, e := range edits.Array() {
			out = append(out, Edit{
				Range: bufpos.Range{
					From: bufpos.Position{Line: int(e.Get("range.start.line").Int()), Column: int(e.Get("range.start.character").Int())},
					To:   bufpos.Position{Line: int(e.Get("range.end.line").Int()), Column: int(e.Get("range.end.character").Int())},
				},
				NewText: e.Get("newText").String(),
			})
		}
		// descending start offset per buffer so earlier positions remain
		// valid as each edit is applied.
		sort.Slice(out, func(i, j int) bool { return out[j].Range.From.Less(out[i].Range.From) })
		_ = c.host.ApplyEdits(h, out)
	})
}

// RequestCodeAction issues textDocument/codeAction for the range
// [fromLine,fromCol)-[toLine,toCol) on h, including any diagnostics
// already bound to that buffer in the request context.
func (c *Client) RequestCodeAction(h buffer.Handle, fromLine, fromCol, toLine, toCol int) error {
	vb, ok := c.docs.get(h)
	if !ok {
		return ErrBufferNotOpen
	}
	params, _ := arenajson.Set(nil, "textDocument.uri", vb.uri)
	params, _ = arenajson.Set(params, "range.start.line", fromLine)
	params, _ = arenajson.Set(params, "range.start.character", fromCol)
	params, _ = arenajson.Set(params, "range.end.line", toLine)
	params, _ = arenajson.Set(params, "range.end.character", toCol)
	params, _ = arenajson.Set(params, "context.diagnostics", []any{})
	for i, d := range c.diags.forBuffer(h) {
		p := "context.diagnostics." + arenajson.Itoa(i)
		params, _ = arenajson.Set(params, p+".range.start.line", d.Start.Line)
		params, _ = arenajson.Set(params, p+".range.start.character", d.Start.Character)
		params, _ = arenajson.Set(params, p+".range.end.line", d.End.Line)
		params, _ = arenajson.Set(params, p+".range.end.character", d.End.Character)
		params, _ = arenajson.Set(params, p+".severity", int(d.Severity))
		params, _ = arenajson.Set(params, p+".message", d.Message)
	}
	return c.beginRequest(h, StateCodeAction, "textDocument/codeAction", params)
}

func (c *Client) finishCodeActionRPC(result arenajson.Value, hasError bool) {
	if hasError || c.host == nil {
		c.CancelCurrentRequest()
		return
	}
	c.lastResponseRaw = []byte(result.Raw())
	c.state.state = StateFinishCodeAction

	var titles []string
	for _, action := range result.Array() {
		if action.Get("disabled").Exists() {
			continue
		}
		titles = append(titles, action.Get("title").String())
	}
	buf := c.state.buf
	c.host.ShowPicker(titles, func(index int) {
		c.applyCodeAction(index)
		if c.state.buf == buf {
			c.CancelCurrentRequest()
		}
	})
}

func (c *Client) applyCodeAction(index int) {
	if c.host == nil || len(c.lastResponseRaw) == 0 {
		return
	}
	var a arenajson.Arena
	a.Reset(c.lastResponseRaw)
	action := a.Root().Array()
	if index < 0 || index >= len(action) {
		return
	}
	edit := action[index].Get("edit")
	if !edit.Exists() {
		return
	}
	edit.Get("changes").Object(func(uri string, edits arenajson.Value) {
		path := uriToPath(uri)
		h, err := c.host.OpenBufferForPath(path)
		if err != nil {
			return
		}
		var out []Edit
		for _, e := range edits.Array() {
			out = append(out, Edit{
				Range: bufpos.Range{
					From: bufpos.Position{Line: int(e.Get("range.start.line").Int()), Column: int(e.Get("range.start.character").Int())},
					To:   bufpos.Position{Line: int(e.Get("range.end.line").Int()), Column: int(e.Get("range.end.character").Int())},
				},
				NewText: e.Get("newText").String(),
			})
		}
		sort.Slice(out, func(i, j int) bool { return out[j].Range.From.Less(out[i].Range.From) })
		_ = c.host.ApplyEdits(h, out)
	})
}

// RequestDocumentSymbols issues textDocument/documentSymbol for h,
// remembering view so FinishDocumentSymbols knows where a picker
// selection should navigate.
func (c *Client) RequestDocumentSymbols(h buffer.Handle, clientHandle uint8) error {
	vb, ok := c.docs.get(h)
	if !ok {
		return ErrBufferNotOpen
	}
	params, _ := arenajson.Set(nil, "textDocument.uri", vb.uri)
	if err := c.beginRequest(h, StateDocumentSymbols, "textDocument/documentSymbol", params); err != nil {
		return err
	}
	c.state.view = bufferView{Client: clientHandle, Buffer: h}
	return nil
}

func (c *Client) finishDocumentSymbolsRPC(result arenajson.Value, hasError bool) {
	if hasError || c.host == nil {
		c.CancelCurrentRequest()
		return
	}
	c.lastResponseRaw = []byte(result.Raw())
	c.state.state = StateFinishDocumentSymbols

	var titles []string
	for _, sym := range result.Array() {
		titles = append(titles, sym.Get("name").String())
	}
	view := c.state.view
	c.host.ShowPicker(titles, func(index int) {
		c.navigateToSymbol(index)
		if c.state.view == view {
			c.CancelCurrentRequest()
		}
	})
}

func (c *Client) navigateToSymbol(index int) {
	if c.host == nil || len(c.lastResponseRaw) == 0 {
		return
	}
	var a arenajson.Arena
	a.Reset(c.lastResponseRaw)
	syms := a.Root().Array()
	if index < 0 || index >= len(syms) {
		return
	}
	r := syms[index].Get("range")
	if !r.Exists() {
		r = syms[index].Get("location.range")
	}
	pos := bufpos.Position{Line: int(r.Get("start.line").Int()), Column: int(r.Get("start.character").Int())}
	c.host.FocusBuffer(c.state.view.Buffer, pos)
}

// RequestWorkspaceSymbols issues workspace/symbol for query. There is
// no FinishWorkspaceSymbols state: per spec's state list, only
// WorkspaceSymbols is named, so the picker wait happens within that
// same state.
func (c *Client) RequestWorkspaceSymbols(h buffer.Handle, query string) error {
	params, _ := arenajson.Set(nil, "query", query)
	return c.beginRequest(h, StateWorkspaceSymbols, "workspace/symbol", params)
}

func (c *Client) finishWorkspaceSymbols(result arenajson.Value, hasError bool) {
	if hasError || c.host == nil {
		c.CancelCurrentRequest()
		return
	}
	c.lastResponseRaw = []byte(result.Raw())

	var titles []string
	for _, sym := range result.Array() {
		titles = append(titles, sym.Get("name").String())
	}
	c.host.ShowPicker(titles, func(index int) {
		c.navigateToWorkspaceSymbol(index)
		c.CancelCurrentRequest()
	})
}

func (c *Client) navigateToWorkspaceSymbol(index int) {
	if c.host == nil || len(c.lastResponseRaw) == 0 {
		return
	}
	var a arenajson.Arena
	a.Reset(c.lastResponseRaw)
	syms := a.Root().Array()
	if index < 0 || index >= len(syms) {
		return
	}
	loc := syms[index].Get("location")
	path := uriToPath(loc.Get("uri").String())
	h, err := c.host.OpenBufferForPath(path)
	if err != nil {
		return
	}
	pos := bufpos.Position{Line: int(loc.Get("range.start.line").Int()), Column: int(loc.Get("range.start.character").Int())}
	c.host.FocusBuffer(h, pos)
}

// RequestFormatting issues textDocument/formatting for h with the
// given tab width.
func (c *Client) RequestFormatting(h buffer.Handle, tabWidth int, insertSpaces bool) error {
	vb, ok := c.docs.get(h)
	if !ok {
		return ErrBufferNotOpen
	}
	params, _ := arenajson.Set(nil, "textDocument.uri", vb.uri)
	params, _ = arenajson.Set(params, "options.tabSize", tabWidth)
	params, _ = arenajson.Set(params, "options.insertSpaces", insertSpaces)
	return c.beginRequest(h, StateFormatting, "textDocument/formatting", params)
}

func (c *Client) finishFormatting(result arenajson.Value, hasError bool) {
	buf := c.state.buf
	defer c.CancelCurrentRequest()
	if hasError || c.host == nil {
		return
	}
	edits := result.Array()
	// TextEdits applied bottom-up: later (greater start offset) first,
	// so earlier offsets stay valid as the buffer mutates under them.
	sort.Slice(edits, func(i, j int) bool {
		li, ci := edits[i].Get("range.start.line").Int(), edits[i].Get("range.start.character").Int()
		lj, cj := edits[j].Get("range.start.line").Int(), edits[j].Get("range.start.character").Int()
		if li != lj {
			return li > lj
		}
		return ci > cj
	})
	var out []Edit
	for _, e := range edits {
		out = append(out, Edit{
			Range: bufpos.Range{
				From: bufpos.Position{Line: int(e.Get("range.start.line").Int()), Column: int(e.Get("range.start.character").Int())},
				To:   bufpos.Position{Line: int(e.Get("range.end.line").Int()), Column: int(e.Get("range.end.character").Int())},
			},
			NewText: e.Get("newText").String(),
		})
	}
	_ = c.host.ApplyEdits(buf, out)
}

// State reports the request state machine's current state, for
// dispatcher rendering ("applying..." status, disabling conflicting
// keybindings) and tests.
func (c *Client) State() RequestState { return c.state.state }

// Initialized reports whether the initialize/initialized handshake has
// completed.
func (c *Client) Initialized() bool { return c.initialized }

// Capabilities returns the negotiated server capabilities.
func (c *Client) Capabilities() ServerCapabilities { return c.caps }

// Diagnostics returns the diagnostics currently bound to h.
func (c *Client) Diagnostics(h buffer.Handle) []Diagnostic { return c.diags.forBuffer(h) }
