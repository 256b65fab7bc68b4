package mode

import (
	"github.com/dshills/pepperd/internal/engine/buffer"
	"github.com/dshills/pepperd/internal/engine/bufpos"
	"github.com/dshills/pepperd/internal/engine/cursor"
	"github.com/dshills/pepperd/internal/engine/view"
	"github.com/dshills/pepperd/internal/input/macro"
	"github.com/dshills/pepperd/internal/input/picker"
)

// CommandRunner evaluates a submitted Command-mode line. It is satisfied
// by the command package's Evaluator; kept as an interface here so mode
// has no import-time dependency on the command evaluator.
type CommandRunner interface {
	Run(ctx *Context, line string) Outcome
}

// Context carries everything a mode handler needs for one buffer/view
// pair, plus the shared read-line, picker and register state every mode
// may touch. It is analogous to the teacher's mode.Context, generalized
// from a read-only EditorState snapshot to direct engine handles since
// the spec's modes mutate the buffer/view themselves rather than
// emitting actions for a separate applier.
type Context struct {
	View   *view.View
	Buffer *buffer.Buffer
	Words  buffer.WordIndex
	Sink   buffer.EventSink

	Registers *macro.Registers
	ReadLine  ReadLine
	Picker    *picker.Picker
	WordAt    picker.WordLookup

	Commands CommandRunner

	// Unnamed is the default yank/delete register (vim's `"`), used by
	// Select mode's y/d/p and by ReadLine's Ctrl-Y. It lives outside
	// macro.Registers because that bank only names a-z/0-9 storage
	// slots, per the teacher's register-naming convention.
	Unnamed string
}

func (c *Context) unnamedGet() string {
	return c.Unnamed
}

func (c *Context) unnamedSet(s string) {
	c.Unnamed = s
}

// primaryMove shifts every cursor's position by (dLine, dCol), clamped to
// the buffer's bounds, either extending the selection (Select mode) or
// collapsing it (Normal mode) first.
func primaryMove(ctx *Context, dLine, dCol int, extend bool) {
	m := ctx.View.Cursors().Mutate()
	defer m.Release()

	n := m.Len()
	for i := 0; i < n; i++ {
		c := m.Get(i)
		next := clampToBuffer(ctx.Buffer, bufpos.Position{
			Line:   c.Position.Line + dLine,
			Column: c.Position.Column + dCol,
		})
		if extend {
			m.Set(i, cursor.Cursor{Anchor: c.Anchor, Position: next})
		} else {
			m.Set(i, cursor.At(next))
		}
	}
}

func clampToBuffer(buf *buffer.Buffer, p bufpos.Position) bufpos.Position {
	if p.Line < 0 {
		p.Line = 0
	}
	if p.Line >= buf.LineCount() {
		p.Line = buf.LineCount() - 1
	}
	lineLen := len(buf.Line(p.Line))
	if p.Column < 0 {
		p.Column = 0
	}
	if p.Column > lineLen {
		p.Column = lineLen
	}
	return p
}
