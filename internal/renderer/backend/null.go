package backend

import (
	"github.com/dshills/pepperd/internal/renderer"
	"github.com/dshills/pepperd/internal/renderer/core"
)

// NullBackend is an in-memory Backend for tests that exercise
// cmd/pepper's client loop without a real TTY, the same role the
// teacher's NullBackend plays for its own renderer tests.
type NullBackend struct {
	width, height int
	cells         [][]core.Cell
	cursorRow     int
	cursorCol     int
	cursorVisible bool
	events        chan Event
}

// NewNullBackend builds a NullBackend of the given size with an empty
// queued-event channel PostEvent feeds and PollEvent drains.
func NewNullBackend(width, height int) *NullBackend {
	b := &NullBackend{width: width, height: height, events: make(chan Event, 64)}
	b.cells = make([][]core.Cell, height)
	for y := range b.cells {
		b.cells[y] = make([]core.Cell, width)
		for x := range b.cells[y] {
			b.cells[y][x] = core.EmptyCell()
		}
	}
	return b
}

func (b *NullBackend) Init() error { return nil }
func (b *NullBackend) Shutdown()   {}

func (b *NullBackend) Size() (int, int) { return b.width, b.height }

func (b *NullBackend) ApplyFrame(df renderer.DecodedFrame) {
	for _, ch := range df.Changes {
		if ch.X >= 0 && ch.X < b.width && ch.Y >= 0 && ch.Y < b.height {
			b.cells[ch.Y][ch.X] = ch.Cell
		}
	}
	b.cursorRow, b.cursorCol, b.cursorVisible = df.CursorRow, df.CursorCol, df.CursorVisible
}

func (b *NullBackend) PollEvent() Event { return <-b.events }

// PostEvent queues an event for a future PollEvent, letting a test
// script a sequence of key presses or a resize.
func (b *NullBackend) PostEvent(ev Event) { b.events <- ev }

func (b *NullBackend) Suspend() error { return nil }
func (b *NullBackend) Resume() error  { return nil }

// Cell returns what ApplyFrame last painted at (x, y), for assertions.
func (b *NullBackend) Cell(x, y int) core.Cell { return b.cells[y][x] }

// Cursor returns the last cursor state ApplyFrame recorded.
func (b *NullBackend) Cursor() (row, col int, visible bool) {
	return b.cursorRow, b.cursorCol, b.cursorVisible
}
