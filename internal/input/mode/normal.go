package mode

import (
	"github.com/dshills/pepperd/internal/engine/bufpos"
	"github.com/dshills/pepperd/internal/engine/cursor"
	"github.com/dshills/pepperd/internal/input/key"
)

// NormalImpl is the Normal state: h/j/k/l motions, mode-entry keys, and
// macro recording/replay. Text editing itself happens in Insert/Select;
// Normal's job is navigation and dispatch, following the teacher's
// Mode.HandleUnmapped split between "this mode edits text" (Insert) and
// "this mode navigates and delegates" (Normal).
type NormalImpl struct{}

func (NormalImpl) Tag() Tag           { return Normal }
func (NormalImpl) Enter(ctx *Context) {}
func (NormalImpl) Exit(ctx *Context)  {}

func (NormalImpl) HandleKeys(ctx *Context, keys []key.Key) (Outcome, int) {
	k := keys[0]

	if reg, recording := ctx.Registers.IsRecording(); recording && k.Code == key.Char && k.Rune == 'q' {
		ctx.Registers.StopRecording()
		_ = reg
		return outcomeNone(), 1
	}

	switch {
	case k.Code == key.Char && k.Rune == 'i':
		return outcomeEnter(Insert), 1
	case k.Code == key.Char && k.Rune == 'v':
		return outcomeEnter(Select), 1
	case k.Code == key.Char && k.Rune == ':':
		ctx.ReadLine.SetPrompt(":")
		ctx.ReadLine.Clear()
		return outcomeEnter(Command), 1
	case k.Code == key.Char && k.Rune == 'h':
		primaryMove(ctx, 0, -1, false)
		return outcomeNone(), 1
	case k.Code == key.Char && k.Rune == 'l':
		primaryMove(ctx, 0, 1, false)
		return outcomeNone(), 1
	case k.Code == key.Char && k.Rune == 'j':
		primaryMove(ctx, 1, 0, false)
		return outcomeNone(), 1
	case k.Code == key.Char && k.Rune == 'k':
		primaryMove(ctx, -1, 0, false)
		return outcomeNone(), 1
	case k.Code == key.Char && k.Rune == 'x':
		deleteCharUnderCursors(ctx)
		return outcomeNone(), 1
	case k.Code == key.Char && k.Rune == 'q':
		if len(keys) < 2 {
			return outcomePending(), 0
		}
		reg := keys[1].Rune
		_ = ctx.Registers.StartRecording(reg)
		return outcomeNone(), 2
	case k.Code == key.Char && k.Rune == '@':
		if len(keys) < 2 {
			return outcomePending(), 0
		}
		return outcomeMacro(keys[1].Rune), 2
	}

	return outcomeNone(), 1
}

func deleteCharUnderCursors(ctx *Context) {
	m := ctx.View.Cursors().Mutate()
	n := m.Len()
	for i := 0; i < n; i++ {
		c := m.Get(i)
		end := clampToBuffer(ctx.Buffer, bufpos.Position{Line: c.Position.Line, Column: c.Position.Column + 1})
		if end == c.Position {
			continue
		}
		text := ctx.Buffer.DeleteRange(bufpos.Range{From: c.Position, To: end}, uint8(i), ctx.Sink, ctx.Words)
		ctx.unnamedSet(text)
		m.Set(i, cursor.At(c.Position))
	}
	m.Release()
}
