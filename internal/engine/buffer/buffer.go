package buffer

import (
	"strings"

	"github.com/dshills/pepperd/internal/engine/bufpos"
	"github.com/dshills/pepperd/internal/engine/history"
)

// Handle identifies a Buffer for the lifetime of the editor process.
// Handles are never reused while a buffer they named is still open.
type Handle uint32

// Capabilities gates what an operation is allowed to do with a buffer:
// a log buffer (IsLog) can't be saved, a scratch buffer might close
// itself once its last view is gone (AutoClose).
type Capabilities struct {
	CanSave   bool
	AutoClose bool
	IsLog     bool
}

// EventKind enumerates the editor-events a Buffer mutation can raise.
type EventKind uint8

const (
	EventInsertText EventKind = iota
	EventDeleteText
	EventLoad
	EventSave
	EventClose
)

// Event is an editor-event raised by a buffer mutation, consumed by
// the LSP document-sync layer and any other interested collaborator.
type Event struct {
	Kind   EventKind
	Handle Handle
	Range  bufpos.Range
	Text   string
}

// EventSink receives Events as they're raised. A nil EventSink is a
// valid no-op receiver; callers that don't care about events may omit
// it entirely by calling the buffer's raw mutators in tests.
type EventSink interface {
	Emit(Event)
}

// WordIndex receives per-line word deltas so a word-completion source
// tracks buffer content without rescanning it. Buffer calls RemoveLine
// before mutating a line and AddLine after, so a line replaced in
// place nets out to (removed old words, added new words).
type WordIndex interface {
	AddLine(line string)
	RemoveLine(line string)
}

// CursorRestore names where a cursor should land after Undo or Redo
// replays one edit, keyed by the cursor index that produced the
// original edit so multi-cursor edits restore symmetrically.
type CursorRestore struct {
	CursorIndex uint8
	Position    bufpos.Position
}

// Buffer holds one open file (or scratch buffer) as an ordered list
// of lines plus an undo history. It is never empty: a freshly created
// Buffer holds one empty line, and deleting the only line's content
// leaves that empty line in place.
type Buffer struct {
	handle Handle
	lines  []string
	path   string
	caps   Capabilities
	hist   *history.History

	needsSave bool
}

// New creates an empty buffer with the given handle and capabilities.
func New(handle Handle, caps Capabilities) *Buffer {
	return &Buffer{
		handle: handle,
		lines:  []string{""},
		caps:   caps,
		hist:   history.New(),
	}
}

func (b *Buffer) Handle() Handle            { return b.handle }
func (b *Buffer) Path() string               { return b.path }
func (b *Buffer) SetPath(path string)        { b.path = path }
func (b *Buffer) Capabilities() Capabilities { return b.caps }
func (b *Buffer) NeedsSave() bool            { return b.needsSave }
func (b *Buffer) ClearNeedsSave()            { b.needsSave = false }
func (b *Buffer) LineCount() int             { return len(b.lines) }
func (b *Buffer) Line(i int) string          { return b.lines[i] }
func (b *Buffer) History() *history.History  { return b.hist }

// Lines returns a copy of the buffer's line list.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Load replaces the buffer's entire content with the given lines,
// discards undo history (a load is not itself undoable), sets path, and
// emits EventLoad. Used by the command evaluator's "edit" handler to
// populate a buffer from disk content.
func (b *Buffer) Load(path string, lines []string, sink EventSink, words WordIndex) {
	if words != nil {
		for _, l := range b.lines {
			words.RemoveLine(l)
		}
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	b.lines = append([]string{}, lines...)
	b.path = path
	b.hist.Clear()
	b.needsSave = false
	if words != nil {
		for _, l := range b.lines {
			words.AddLine(l)
		}
	}
	if sink != nil {
		sink.Emit(Event{Kind: EventLoad, Handle: b.handle, Text: path})
	}
}

// EndPosition returns the position just past the buffer's last byte.
func (b *Buffer) EndPosition() bufpos.Position {
	last := len(b.lines) - 1
	return bufpos.Position{Line: last, Column: len(b.lines[last])}
}

// InsertText splits text at '\n's, splices it into the line list at
// pos, updates words (the affected line's old words are removed
// before the splice, the new lines' words added after), records an
// Insert edit in history, and emits EventInsertText. It returns the
// actual range the inserted text now occupies, which degenerates to
// an empty range at pos when text is empty.
func (b *Buffer) InsertText(pos bufpos.Position, text string, cursorIndex uint8, sink EventSink, words WordIndex) bufpos.Range {
	if text == "" {
		return bufpos.Range{From: pos, To: pos}
	}

	if words != nil {
		words.RemoveLine(b.lines[pos.Line])
	}

	r := b.spliceInsert(pos, text, words)

	b.hist.AddEdit(history.Edit{Kind: history.Insert, Range: r, Text: text, CursorIndex: cursorIndex})
	b.needsSave = true
	if sink != nil {
		sink.Emit(Event{Kind: EventInsertText, Handle: b.handle, Range: r, Text: text})
	}
	return r
}

// DeleteRange removes the text spanning r, updates words symmetrically
// to InsertText, records a Delete edit in history, emits
// EventDeleteText, and returns the removed text.
func (b *Buffer) DeleteRange(r bufpos.Range, cursorIndex uint8, sink EventSink, words WordIndex) string {
	if r.From == r.To {
		return ""
	}

	if words != nil {
		for l := r.From.Line; l <= r.To.Line; l++ {
			words.RemoveLine(b.lines[l])
		}
	}

	text := b.spliceDelete(r)
	if words != nil {
		words.AddLine(b.lines[r.From.Line])
	}

	b.hist.AddEdit(history.Edit{Kind: history.Delete, Range: r, Text: text, CursorIndex: cursorIndex})
	b.needsSave = true
	if sink != nil {
		sink.Emit(Event{Kind: EventDeleteText, Handle: b.handle, Range: r, Text: text})
	}
	return text
}

// Undo commits any in-flight edit group, then replays the previous
// group's edits (already inverted by History) against the line list
// without recording new history entries. It returns, per applied
// edit, the cursor index and position a caller should restore its
// cursor to.
func (b *Buffer) Undo(sink EventSink, words WordIndex) []CursorRestore {
	return b.applyEdits(b.hist.UndoEdits(), sink, words)
}

// Redo is Undo's counterpart, replaying the next group forward.
func (b *Buffer) Redo(sink EventSink, words WordIndex) []CursorRestore {
	return b.applyEdits(b.hist.RedoEdits(), sink, words)
}

func (b *Buffer) applyEdits(edits []history.Edit, sink EventSink, words WordIndex) []CursorRestore {
	restores := make([]CursorRestore, 0, len(edits))
	for _, e := range edits {
		switch e.Kind {
		case history.Insert:
			if words != nil {
				words.RemoveLine(b.lines[e.Range.From.Line])
			}
			b.spliceInsert(e.Range.From, e.Text, words)
			restores = append(restores, CursorRestore{CursorIndex: e.CursorIndex, Position: e.Range.To})
			if sink != nil {
				sink.Emit(Event{Kind: EventInsertText, Handle: b.handle, Range: e.Range, Text: e.Text})
			}
		case history.Delete:
			if words != nil {
				for l := e.Range.From.Line; l <= e.Range.To.Line; l++ {
					words.RemoveLine(b.lines[l])
				}
			}
			b.spliceDelete(e.Range)
			if words != nil {
				words.AddLine(b.lines[e.Range.From.Line])
			}
			restores = append(restores, CursorRestore{CursorIndex: e.CursorIndex, Position: e.Range.From})
			if sink != nil {
				sink.Emit(Event{Kind: EventDeleteText, Handle: b.handle, Range: e.Range, Text: e.Text})
			}
		}
	}
	if len(edits) > 0 {
		b.needsSave = true
	}
	return restores
}

// spliceInsert performs the raw line-list mutation for an insert at
// pos and returns the range the text now occupies. It does not touch
// history; callers add the history edit themselves since Undo/Redo
// must NOT re-record what they replay.
func (b *Buffer) spliceInsert(pos bufpos.Position, text string, words WordIndex) bufpos.Range {
	parts := strings.Split(text, "\n")
	line := b.lines[pos.Line]
	before := line[:pos.Column]
	after := line[pos.Column:]

	newLines := make([]string, len(parts))
	if len(parts) == 1 {
		newLines[0] = before + parts[0] + after
	} else {
		newLines[0] = before + parts[0]
		for i := 1; i < len(parts)-1; i++ {
			newLines[i] = parts[i]
		}
		newLines[len(parts)-1] = parts[len(parts)-1] + after
	}

	tail := append([]string(nil), b.lines[pos.Line+1:]...)
	b.lines = append(b.lines[:pos.Line], newLines...)
	b.lines = append(b.lines, tail...)

	endLine := pos.Line + len(parts) - 1
	endCol := len(newLines[len(newLines)-1]) - len(after)
	r := bufpos.Range{From: pos, To: bufpos.Position{Line: endLine, Column: endCol}}

	if words != nil {
		for l := pos.Line; l <= endLine; l++ {
			words.AddLine(b.lines[l])
		}
	}
	return r
}

// spliceDelete performs the raw line-list mutation removing r and
// returns the removed text.
func (b *Buffer) spliceDelete(r bufpos.Range) string {
	if r.From.Line == r.To.Line {
		line := b.lines[r.From.Line]
		deleted := line[r.From.Column:r.To.Column]
		b.lines[r.From.Line] = line[:r.From.Column] + line[r.To.Column:]
		return deleted
	}

	var deleted strings.Builder
	firstLine := b.lines[r.From.Line]
	lastLine := b.lines[r.To.Line]
	deleted.WriteString(firstLine[r.From.Column:])
	for l := r.From.Line + 1; l < r.To.Line; l++ {
		deleted.WriteByte('\n')
		deleted.WriteString(b.lines[l])
	}
	deleted.WriteByte('\n')
	deleted.WriteString(lastLine[:r.To.Column])

	merged := firstLine[:r.From.Column] + lastLine[r.To.Column:]
	tail := append([]string(nil), b.lines[r.To.Line+1:]...)
	b.lines = append(b.lines[:r.From.Line], merged)
	b.lines = append(b.lines, tail...)

	return deleted.String()
}
