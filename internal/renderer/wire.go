package renderer

import (
	"encoding/binary"

	"github.com/dshills/pepperd/internal/renderer/core"
)

// encodeFrame serializes a cell-diff as the opaque bytes that become a
// protocol.ServerEvent{Kind: DisplayEvent}.Display payload: grid size,
// cursor state, then one fixed-width record per changed cell. This is
// the repo's own compact wire form, not a rendering of escape codes —
// turning cells into actual terminal bytes is the backend package's
// job, on the client side, once DecodeFrame has handed them back a
// DecodedFrame.
//
// layout: u16 width, u16 height, u16 cursorRow, u16 cursorCol,
// byte cursorVisible, u32 cellCount, then per cell:
// u16 x, u16 y, u32 rune, byte width, byte fgFlags, 3 bytes fgRGB,
// byte bgFlags, 3 bytes bgRGB, u16 attributes.
const cellRecordSize = 2 + 2 + 4 + 1 + 1 + 3 + 1 + 3 + 2

func encodeFrame(width, height, cursorRow, cursorCol int, cursorVisible bool, changes []cellDiff) []byte {
	out := make([]byte, 13+len(changes)*cellRecordSize)
	binary.BigEndian.PutUint16(out[0:], uint16(width))
	binary.BigEndian.PutUint16(out[2:], uint16(height))
	binary.BigEndian.PutUint16(out[4:], uint16(cursorRow))
	binary.BigEndian.PutUint16(out[6:], uint16(cursorCol))
	if cursorVisible {
		out[8] = 1
	}
	binary.BigEndian.PutUint32(out[9:], uint32(len(changes)))

	off := 13
	for _, ch := range changes {
		binary.BigEndian.PutUint16(out[off:], uint16(ch.X))
		binary.BigEndian.PutUint16(out[off+2:], uint16(ch.Y))
		binary.BigEndian.PutUint32(out[off+4:], uint32(ch.Cell.Rune))
		out[off+8] = byte(ch.Cell.Width)
		encodeColor(out[off+9:off+13], ch.Cell.Style.Foreground)
		encodeColor(out[off+13:off+17], ch.Cell.Style.Background)
		binary.BigEndian.PutUint16(out[off+17:], uint16(ch.Cell.Style.Attributes))
		off += cellRecordSize
	}
	return out
}

func encodeColor(out []byte, c core.Color) {
	if c.Default {
		out[0] = 1
		return
	}
	if c.Indexed {
		out[0] = 2
	}
	out[1], out[2], out[3] = c.R, c.G, c.B
}

func decodeColor(buf []byte) core.Color {
	switch buf[0] {
	case 1:
		return core.ColorDefault
	case 2:
		return core.ColorFromIndex(buf[1])
	default:
		return core.ColorFromRGB(buf[1], buf[2], buf[3])
	}
}

// DecodedFrame is what a client reconstructs from a DisplayEvent's
// payload: the size the server believes the client's terminal is, the
// cursor to place, and the cells that changed since the client's last
// DecodedFrame.
type DecodedFrame struct {
	Width, Height        int
	CursorRow, CursorCol int
	CursorVisible        bool
	Changes              []CellChange
}

// CellChange is one cell the client's backend should paint.
type CellChange struct {
	X, Y int
	Cell core.Cell
}

// DecodeFrame parses a DisplayEvent payload produced by Frame.Flush.
// ok is false if payload is too short or its declared cell count does
// not match its length — the client should simply drop the frame and
// wait for the next one rather than render a partial screen.
func DecodeFrame(payload []byte) (DecodedFrame, bool) {
	if len(payload) < 13 {
		return DecodedFrame{}, false
	}
	df := DecodedFrame{
		Width:         int(binary.BigEndian.Uint16(payload[0:])),
		Height:        int(binary.BigEndian.Uint16(payload[2:])),
		CursorRow:     int(binary.BigEndian.Uint16(payload[4:])),
		CursorCol:     int(binary.BigEndian.Uint16(payload[6:])),
		CursorVisible: payload[8] != 0,
	}
	count := int(binary.BigEndian.Uint32(payload[9:]))
	rest := payload[13:]
	if len(rest) != count*cellRecordSize {
		return DecodedFrame{}, false
	}

	df.Changes = make([]CellChange, count)
	off := 0
	for i := 0; i < count; i++ {
		rec := rest[off : off+cellRecordSize]
		df.Changes[i] = CellChange{
			X: int(binary.BigEndian.Uint16(rec[0:])),
			Y: int(binary.BigEndian.Uint16(rec[2:])),
			Cell: core.Cell{
				Rune:  rune(binary.BigEndian.Uint32(rec[4:])),
				Width: int(rec[8]),
				Style: core.Style{
					Foreground: decodeColor(rec[9:13]),
					Background: decodeColor(rec[13:17]),
					Attributes: core.Attribute(binary.BigEndian.Uint16(rec[17:])),
				},
			},
		}
		off += cellRecordSize
	}
	return df, true
}
