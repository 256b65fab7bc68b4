package mode

import (
	"strings"

	"github.com/dshills/pepperd/internal/engine/bufpos"
	"github.com/dshills/pepperd/internal/engine/cursor"
	"github.com/dshills/pepperd/internal/input/key"
)

// SelectImpl is the Select state, grounded on original_source's
// src/mode/select.rs: h/j/k/l extend the selection instead of moving a
// bare cursor, 'o' swaps anchor and position, 'd' deletes the selection
// and returns to Normal, 'y' copies it to the unnamed register, 'p'
// replaces it with the unnamed register's contents, Escape collapses
// every cursor and returns to Normal.
type SelectImpl struct{}

func (SelectImpl) Tag() Tag           { return Select }
func (SelectImpl) Enter(ctx *Context) {}

// Exit commits the active edit group, the same mode-boundary commit
// Insert's Exit makes, since Select's d/p also mutate the buffer.
func (SelectImpl) Exit(ctx *Context) {
	ctx.Buffer.History().CommitEdits()
}

func (SelectImpl) HandleKeys(ctx *Context, keys []key.Key) (Outcome, int) {
	k := keys[0]

	if k.Code == key.Escape {
		collapseCursors(ctx)
		return outcomeEnter(Normal), 1
	}

	if k.Code != key.Char {
		return outcomeNone(), 1
	}

	switch k.Rune {
	case 'h':
		primaryMove(ctx, 0, -1, true)
	case 'l':
		primaryMove(ctx, 0, 1, true)
	case 'j':
		primaryMove(ctx, 1, 0, true)
	case 'k':
		primaryMove(ctx, -1, 0, true)
	case 'o':
		swapAnchors(ctx)
	case ':':
		ctx.ReadLine.SetPrompt(":")
		ctx.ReadLine.Clear()
		return outcomeEnter(Command), 1
	case 'd':
		deleteSelections(ctx, true)
		return outcomeEnter(Normal), 1
	case 'y':
		yankSelections(ctx)
	case 'p':
		pasteOverSelections(ctx)
		return outcomeEnter(Normal), 1
	}

	return outcomeNone(), 1
}

func collapseCursors(ctx *Context) {
	m := ctx.View.Cursors().Mutate()
	defer m.Release()
	for i := 0; i < m.Len(); i++ {
		m.Set(i, m.Get(i).Collapse())
	}
}

func swapAnchors(ctx *Context) {
	m := ctx.View.Cursors().Mutate()
	defer m.Release()
	for i := 0; i < m.Len(); i++ {
		c := m.Get(i)
		m.Set(i, cursor.Cursor{Anchor: c.Position, Position: c.Anchor})
	}
}

// deleteSelections removes every cursor's selected text. When
// setUnnamed is true the removed text of every cursor is concatenated
// (newline-joined) into the unnamed register. Select's 'd' passes true,
// so the deleted text can be pasted later; 'p' passes false, so the
// register keeps the text it is about to paste.
func deleteSelections(ctx *Context, setUnnamed bool) {
	m := ctx.View.Cursors().Mutate()
	defer m.Release()

	var removed []string
	n := m.Len()
	for i := 0; i < n; i++ {
		c := m.Get(i)
		r := c.Range()
		if r.From == r.To {
			continue
		}
		text := ctx.Buffer.DeleteRange(r, uint8(i), ctx.Sink, ctx.Words)
		removed = append(removed, text)
		m.Set(i, cursor.At(r.From))
		for j := i + 1; j < n; j++ {
			cj := m.Get(j)
			m.Set(j, cursor.Cursor{Anchor: cj.Anchor.Delete(r), Position: cj.Position.Delete(r)})
		}
	}
	if setUnnamed {
		ctx.unnamedSet(strings.Join(removed, "\n"))
	}
}

func yankSelections(ctx *Context) {
	var yanked []string
	for i := 0; i < ctx.View.Cursors().Len(); i++ {
		c := ctx.View.Cursors().Get(i)
		r := c.Range()
		if r.From == r.To {
			continue
		}
		yanked = append(yanked, textInRange(ctx, r))
	}
	ctx.unnamedSet(strings.Join(yanked, "\n"))
}

// textInRange reads the text spanning r without mutating the buffer, for
// Select's 'y' (yank without deleting).
func textInRange(ctx *Context, r bufpos.Range) string {
	if r.From.Line == r.To.Line {
		return ctx.Buffer.Line(r.From.Line)[r.From.Column:r.To.Column]
	}

	var b strings.Builder
	b.WriteString(ctx.Buffer.Line(r.From.Line)[r.From.Column:])
	for l := r.From.Line + 1; l < r.To.Line; l++ {
		b.WriteByte('\n')
		b.WriteString(ctx.Buffer.Line(l))
	}
	b.WriteByte('\n')
	b.WriteString(ctx.Buffer.Line(r.To.Line)[:r.To.Column])
	return b.String()
}

func pasteOverSelections(ctx *Context) {
	deleteSelections(ctx, false)
	text := ctx.unnamedGet()
	if text == "" {
		return
	}
	m := ctx.View.Cursors().Mutate()
	n := m.Len()
	for i := 0; i < n; i++ {
		c := m.Get(i)
		r := ctx.Buffer.InsertText(c.Position, text, uint8(i), ctx.Sink, ctx.Words)
		m.Set(i, cursor.At(r.To))
		for j := i + 1; j < n; j++ {
			cj := m.Get(j)
			m.Set(j, cursor.Cursor{Anchor: cj.Anchor.Insert(r), Position: cj.Position.Insert(r)})
		}
	}
	m.Release()
}
