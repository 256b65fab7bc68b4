package view

import (
	"github.com/dshills/pepperd/internal/engine/buffer"
	"github.com/dshills/pepperd/internal/engine/cursor"
)

// View binds a cursor.Set to a single buffer. Multiple Views may
// share a buffer handle (a split showing the same file); each keeps
// its own cursors.
type View struct {
	handle  buffer.Handle
	cursors *cursor.Set
}

// New creates a view over handle with initial as its single cursor.
func New(handle buffer.Handle, initial cursor.Cursor) *View {
	return &View{handle: handle, cursors: cursor.NewSet(initial)}
}

func (v *View) Handle() buffer.Handle   { return v.handle }
func (v *View) Cursors() *cursor.Set    { return v.cursors }

// InsertAtCursors inserts text at every cursor's Position, processing
// cursors in index order and rebasing not-yet-processed cursors past
// each insertion so a multi-cursor edit doesn't corrupt its own later
// steps. Each cursor's resulting edit is tagged with its index so
// Buffer's history can restore the same cursor on undo.
func InsertAtCursors(v *View, buf *buffer.Buffer, text string, sink buffer.EventSink, words buffer.WordIndex) {
	m := v.cursors.Mutate()
	defer m.Release()

	n := m.Len()
	for i := 0; i < n; i++ {
		c := m.Get(i)
		r := buf.InsertText(c.Position, text, uint8(i), sink, words)
		m.Set(i, cursor.At(r.To))
		for j := i + 1; j < n; j++ {
			cj := m.Get(j)
			m.Set(j, cursor.Cursor{Anchor: cj.Anchor.Insert(r), Position: cj.Position.Insert(r)})
		}
	}
}

// DeleteAtCursors deletes every cursor's selection range. A cursor
// with no selection extent is left untouched. As with
// InsertAtCursors, not-yet-processed cursors are rebased after each
// deletion.
func DeleteAtCursors(v *View, buf *buffer.Buffer, sink buffer.EventSink, words buffer.WordIndex) {
	m := v.cursors.Mutate()
	defer m.Release()

	n := m.Len()
	for i := 0; i < n; i++ {
		c := m.Get(i)
		r := c.Range()
		if r.From == r.To {
			continue
		}
		buf.DeleteRange(r, uint8(i), sink, words)
		m.Set(i, cursor.At(r.From))
		for j := i + 1; j < n; j++ {
			cj := m.Get(j)
			m.Set(j, cursor.Cursor{Anchor: cj.Anchor.Delete(r), Position: cj.Position.Delete(r)})
		}
	}
}
