package lsp

import "github.com/dshills/pepperd/internal/engine/buffer"

// pendingEdit is one queued change against a versioned buffer, applied
// in order when the buffer is next flushed.
type pendingEdit struct {
	fullText string // not set by docSync; Full sync reads Host.BufferText at flush time
	hasRange bool
	startPos position
	endPos   position
	newText  string // used when Change sync is Incremental
}

// versionedBuffer mirrors one open buffer's un-flushed edits for one
// LSP client, per spec's glossary "Versioned buffer: per-LSP-client
// mirror of a buffer's un-flushed edits plus a monotonically
// increasing version counter." grounded on the teacher's
// ManagedDocument, stripped of its debounce-timer goroutine machinery
// (single-threaded core: flush is explicit and synchronous, never a
// background timer). Pending edits are flushed only before an outgoing
// user request, a didSave or a didClose; an Idle event does not flush
// them.
type versionedBuffer struct {
	uri        string
	path       string
	languageID string
	version    int
	content    string
	dirty      bool
	pending    []pendingEdit
}

// docSync owns every versionedBuffer open against one Client.
type docSync struct {
	buffers map[buffer.Handle]*versionedBuffer
}

func newDocSync() *docSync {
	return &docSync{buffers: make(map[buffer.Handle]*versionedBuffer)}
}

// open registers h as freshly loaded with initial content, returning
// the versioned buffer the caller builds didOpen from if the server
// advertised openClose sync (the caller checks that capability; open always
// records the buffer regardless, since later didChange/didSave/didClose
// need somewhere to accumulate even against a server with sync off).
func (d *docSync) open(h buffer.Handle, uri, path, languageID, content string) *versionedBuffer {
	vb := &versionedBuffer{uri: uri, path: path, languageID: languageID, version: 1, content: content}
	d.buffers[h] = vb
	return vb
}

// insert records an insertion at the given LSP position into h's
// pending edit list; it does not touch the mirrored content or
// version, both of which only advance when flush runs.
func (d *docSync) insert(h buffer.Handle, at position, text string) {
	vb, ok := d.buffers[h]
	if !ok {
		return
	}
	vb.dirty = true
	vb.pending = append(vb.pending, pendingEdit{hasRange: true, startPos: at, endPos: at, newText: text})
}

// deleteRange records a deletion spanning [from, to) into h's pending
// edit list.
func (d *docSync) deleteRange(h buffer.Handle, from, to position) {
	vb, ok := d.buffers[h]
	if !ok {
		return
	}
	vb.dirty = true
	vb.pending = append(vb.pending, pendingEdit{hasRange: true, startPos: from, endPos: to, newText: ""})
}

// get returns h's versionedBuffer, if any.
func (d *docSync) get(h buffer.Handle) (*versionedBuffer, bool) {
	vb, ok := d.buffers[h]
	return vb, ok
}

// close discards h's versioned buffer, e.g. once didClose has been
// sent.
func (d *docSync) close(h buffer.Handle) {
	delete(d.buffers, h)
}

// byURI finds the versioned buffer backing uri, used to bind an
// incoming publishDiagnostics notification (keyed by URI) back to a
// buffer handle.
func (d *docSync) byURI(uri string) (buffer.Handle, *versionedBuffer, bool) {
	for h, vb := range d.buffers {
		if vb.uri == uri {
			return h, vb, true
		}
	}
	return 0, nil, false
}
