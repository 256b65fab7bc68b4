package mode

import (
	"github.com/dshills/pepperd/internal/engine/bufpos"
	"github.com/dshills/pepperd/internal/engine/cursor"
	"github.com/dshills/pepperd/internal/engine/view"
	"github.com/dshills/pepperd/internal/input/key"
)

// InsertImpl is the Insert state: printable keys and Enter append text
// at every cursor, Backspace deletes one character behind the cursor,
// Escape returns to Normal.
type InsertImpl struct{}

func (InsertImpl) Tag() Tag           { return Insert }
func (InsertImpl) Enter(ctx *Context) {}

// Exit commits the active edit group so the inserts just made become
// their own undo step and the next insert session starts a fresh
// group, mirroring the original's mode-exit commits.
func (InsertImpl) Exit(ctx *Context) {
	ctx.Buffer.History().CommitEdits()
}

func (InsertImpl) HandleKeys(ctx *Context, keys []key.Key) (Outcome, int) {
	k := keys[0]

	switch k.Code {
	case key.Escape:
		return outcomeEnter(Normal), 1
	case key.Enter:
		view.InsertAtCursors(ctx.View, ctx.Buffer, "\n", ctx.Sink, ctx.Words)
		return outcomeNone(), 1
	case key.Backspace:
		deleteBackward(ctx)
		return outcomeNone(), 1
	case key.Tab:
		view.InsertAtCursors(ctx.View, ctx.Buffer, "\t", ctx.Sink, ctx.Words)
		return outcomeNone(), 1
	}

	if k.IsPrintable() {
		view.InsertAtCursors(ctx.View, ctx.Buffer, string(k.Rune), ctx.Sink, ctx.Words)
	}
	return outcomeNone(), 1
}

// deleteBackward removes one character behind each cursor, processing in
// index order and rebasing not-yet-processed cursors past each deletion,
// matching view.DeleteAtCursors' multi-cursor rebasing scheme.
func deleteBackward(ctx *Context) {
	m := ctx.View.Cursors().Mutate()
	defer m.Release()

	n := m.Len()
	for i := 0; i < n; i++ {
		c := m.Get(i)
		if c.Position.Line == 0 && c.Position.Column == 0 {
			continue
		}
		start := charBefore(ctx.Buffer, c.Position)
		r := bufpos.Range{From: start, To: c.Position}
		ctx.Buffer.DeleteRange(r, uint8(i), ctx.Sink, ctx.Words)
		m.Set(i, cursor.At(start))
		for j := i + 1; j < n; j++ {
			cj := m.Get(j)
			m.Set(j, cursor.Cursor{Anchor: cj.Anchor.Delete(r), Position: cj.Position.Delete(r)})
		}
	}
}

// charBefore returns the position one character before p, moving to the
// end of the previous line when p is at column 0.
func charBefore(buf interface {
	Line(int) string
}, p bufpos.Position) bufpos.Position {
	if p.Column > 0 {
		return bufpos.Position{Line: p.Line, Column: p.Column - 1}
	}
	prev := p.Line - 1
	return bufpos.Position{Line: prev, Column: len(buf.Line(prev))}
}
