package lsp

import (
	"github.com/dshills/pepperd/internal/engine/buffer"
	"github.com/dshills/pepperd/internal/engine/bufpos"
)

// Edit is a textual edit applicable to a buffer, this package's copy of
// LSP's TextEdit expressed in bufpos terms so callers never need to
// import this package's position type to act on a WorkspaceEdit or a
// formatting result.
type Edit struct {
	Range   bufpos.Range
	NewText string
}

// Host supplies the editor-side operations the LSP driver needs but
// does not own, the same pattern as internal/command.Host: a small,
// named interface satisfied by internal/editor once it ties buffers,
// views and clients together. A Client constructed with a nil Host
// still negotiates capabilities and tracks diagnostics/document-sync
// state; it just can't navigate, apply edits or populate a picker.
type Host interface {
	// OpenBufferForPath returns the handle of the buffer backing path,
	// loading it from disk and assigning a fresh handle if it is not
	// already open.
	OpenBufferForPath(path string) (buffer.Handle, error)

	// BufferPath returns h's path, or false if h isn't open.
	BufferPath(h buffer.Handle) (string, bool)

	// BufferText returns h's full current content, newline-joined, used
	// to build a Full-sync didChange/didSave body.
	BufferText(h buffer.Handle) (string, bool)

	// FocusBuffer makes h the focused client's current buffer and
	// places a single cursor at pos (anchor == position), per spec's
	// definition-navigation invariant.
	FocusBuffer(h buffer.Handle, pos bufpos.Position)

	// NewScratchBuffer creates a non-saveable buffer named name holding
	// lines, used for a references hit-list or an LSP log buffer.
	NewScratchBuffer(name string, lines []string) buffer.Handle

	// ApplyEdits applies edits to h in the order given; callers
	// (rename, formatting) are responsible for ordering them so
	// earlier edits don't invalidate later ones.
	ApplyEdits(h buffer.Handle, edits []Edit) error

	// Status posts msg to the status bar; isError selects the 1→Error
	// styling spec's window/showMessage mapping names (severities
	// 2-4 collapse to Info).
	Status(msg string, isError bool)

	// ShowPicker populates the interactive picker with entries (each a
	// title plus an opaque index the caller correlates back to its own
	// result list via onSelect) and focuses it.
	ShowPicker(entries []string, onSelect func(index int))
}
