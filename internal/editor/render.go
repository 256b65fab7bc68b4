package editor

import (
	"fmt"

	"github.com/dshills/pepperd/internal/platform"
	"github.com/dshills/pepperd/internal/protocol"
	"github.com/dshills/pepperd/internal/renderer"
	"github.com/dshills/pepperd/internal/renderer/core"
)

// RenderFrames paints every connected client's current buffer view
// into its Frame and flushes whatever changed, per spec.md §4.9 step 3
// ("render happens after all events for the tick, so one tick = at
// most one frame per client"). Layout beyond "keep the cursor's line
// on screen" — gutters, syntax highlighting, wrapping — is the UI
// collaborator's job per spec.md's Non-goals, not this package's; this
// is the minimum content a frame needs to be worth sending.
func (s *State) RenderFrames() []platform.Request {
	var out []platform.Request
	for h, cs := range s.clients {
		e, ok := s.buffers[cs.view.Handle()]
		if !ok {
			continue
		}
		s.renderClient(cs, e)
		if payload := cs.frame.Flush(); payload != nil {
			out = append(out, platform.Request{
				Kind:   platform.WriteToClient,
				Client: h,
				Buf:    protocol.ServerEvent{Kind: protocol.DisplayEvent, Display: payload}.Encode(),
			})
		}
	}
	return out
}

func (s *State) renderClient(cs *clientState, e *bufEntry) {
	textRows := cs.height - 1
	if textRows < 1 {
		textRows = 1
	}

	cursor := cs.view.Cursors().Primary().Position
	e.lastCursor = cursor
	if cursor.Line < cs.scrollTop {
		cs.scrollTop = cursor.Line
	} else if cursor.Line >= cs.scrollTop+textRows {
		cs.scrollTop = cursor.Line - textRows + 1
	}

	cs.frame.Clear()
	lineCount := e.buf.LineCount()
	for row := 0; row < textRows; row++ {
		lineNo := cs.scrollTop + row
		if lineNo >= lineCount {
			break
		}
		cs.frame.SetString(0, row, e.buf.Line(lineNo), core.DefaultStyle())
	}

	statusStyle := core.Style{Attributes: core.AttrReverse}
	cs.frame.SetString(0, cs.height-1, statusLine(cs, e), statusStyle)

	cs.frame.SetCursor(cursor.Line-cs.scrollTop, cursor.Column, true)
}

func statusLine(cs *clientState, e *bufEntry) string {
	path := e.buf.Path()
	if path == "" {
		path = "[scratch]"
	}
	dirty := ""
	if e.buf.NeedsSave() {
		dirty = " [+]"
	}
	return fmt.Sprintf(" %s%s -- %s --", path, dirty, cs.machine.Active())
}
