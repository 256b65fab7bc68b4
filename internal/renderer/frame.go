// Package renderer holds the server side of the frame-buffer contract:
// a per-client cell grid the dispatcher paints into every tick, and a
// Flush that serializes only what changed into the protocol.ServerEvent
// the client's tick actually ships over the socket. It deliberately
// stops there — no layout, no syntax highlighting, no escape-sequence
// generation of its own; those stay client-side in internal/renderer/
// backend, which already gets them from tcell.
//
// Grounded on the teacher's internal/renderer/backend.ScreenBuffer:
// front/back double buffer plus a per-cell dirty flag, generalized from
// one process's own terminal to one Frame per connected client.
package renderer

import (
	"github.com/dshills/pepperd/internal/renderer/core"
)

// Frame is one client's server-side view of its terminal: a back buffer
// the editor core paints into, a front buffer holding what the client
// last acknowledged, and the dirty cells between them.
type Frame struct {
	width, height int
	front         [][]core.Cell
	back          [][]core.Cell
	dirty         [][]bool
	fullRedraw    bool

	cursorRow, cursorCol int
	cursorVisible        bool
}

// NewFrame builds an empty Frame of the given size, starting with a
// full-redraw pending so the first Flush ships every cell.
func NewFrame(width, height int) *Frame {
	f := &Frame{width: width, height: height, fullRedraw: true}
	f.allocate()
	return f
}

func (f *Frame) allocate() {
	f.front = make([][]core.Cell, f.height)
	f.back = make([][]core.Cell, f.height)
	f.dirty = make([][]bool, f.height)
	for y := 0; y < f.height; y++ {
		f.front[y] = make([]core.Cell, f.width)
		f.back[y] = make([]core.Cell, f.width)
		f.dirty[y] = make([]bool, f.width)
		for x := 0; x < f.width; x++ {
			f.front[y][x] = core.EmptyCell()
			f.back[y][x] = core.EmptyCell()
		}
	}
}

// Size returns the frame's current dimensions.
func (f *Frame) Size() (width, height int) { return f.width, f.height }

// Resize changes the frame's dimensions, preserving the overlapping
// region of the back buffer and forcing a full redraw on the next
// Flush (the client's own terminal just resized, so nothing it holds
// is valid to diff against).
func (f *Frame) Resize(width, height int) {
	if width == f.width && height == f.height {
		return
	}
	oldBack, oldW, oldH := f.back, f.width, f.height
	f.width, f.height = width, height
	f.allocate()
	for y := 0; y < min(oldH, height); y++ {
		for x := 0; x < min(oldW, width); x++ {
			f.back[y][x] = oldBack[y][x]
		}
	}
	f.fullRedraw = true
}

// SetCell paints one cell into the back buffer. Out-of-bounds
// coordinates are ignored.
func (f *Frame) SetCell(x, y int, cell core.Cell) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	f.back[y][x] = cell
	f.dirty[y][x] = true
}

// SetString paints s starting at (x, y) in style, advancing two
// columns per wide rune.
func (f *Frame) SetString(x, y int, s string, style core.Style) {
	col := x
	for _, cell := range core.CellsFromString(s, style) {
		f.SetCell(col, y, cell)
		col++
	}
}

// Clear blanks the whole back buffer.
func (f *Frame) Clear() {
	empty := core.EmptyCell()
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			f.back[y][x] = empty
			f.dirty[y][x] = true
		}
	}
}

// SetCursor records where the cursor should appear on the next Flush.
func (f *Frame) SetCursor(row, col int, visible bool) {
	f.cursorRow, f.cursorCol, f.cursorVisible = row, col, visible
}

// cellDiff is one changed cell, the unit Flush serializes.
type cellDiff struct {
	X, Y int
	Cell core.Cell
}

func (f *Frame) diff() []cellDiff {
	var changes []cellDiff
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			if f.fullRedraw || f.dirty[y][x] {
				if f.fullRedraw || !f.back[y][x].Equals(f.front[y][x]) {
					changes = append(changes, cellDiff{X: x, Y: y, Cell: f.back[y][x]})
				}
			}
		}
	}
	return changes
}

// sync copies the back buffer into the front buffer and clears every
// dirty flag, the state a client is assumed to hold once it has
// received a Flush's bytes.
func (f *Frame) sync() {
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			f.front[y][x] = f.back[y][x]
			f.dirty[y][x] = false
		}
	}
	f.fullRedraw = false
}

// IsDirty reports whether Flush would produce a non-empty payload.
func (f *Frame) IsDirty() bool {
	if f.fullRedraw {
		return true
	}
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			if f.dirty[y][x] {
				return true
			}
		}
	}
	return false
}

// Flush serializes the cells that changed since the last Flush (or the
// whole grid, the first time or after a Resize) plus the cursor state,
// and advances front to match back. A nil return means nothing changed
// and no DisplayEvent need be sent this tick.
func (f *Frame) Flush() []byte {
	if !f.IsDirty() {
		return nil
	}
	changes := f.diff()
	payload := encodeFrame(f.width, f.height, f.cursorRow, f.cursorCol, f.cursorVisible, changes)
	f.sync()
	return payload
}
