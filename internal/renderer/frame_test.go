package renderer

import (
	"testing"

	"github.com/dshills/pepperd/internal/renderer/core"
)

func TestNewFrameFirstFlushIsFullRedraw(t *testing.T) {
	f := NewFrame(10, 3)
	payload := f.Flush()
	if payload == nil {
		t.Fatal("expected a non-nil payload on the first Flush")
	}
	df, ok := DecodeFrame(payload)
	if !ok {
		t.Fatal("DecodeFrame failed")
	}
	if len(df.Changes) != 30 {
		t.Errorf("expected 30 cells on first full redraw, got %d", len(df.Changes))
	}
}

func TestFlushReturnsNilWhenNothingChanged(t *testing.T) {
	f := NewFrame(5, 2)
	f.Flush()
	if payload := f.Flush(); payload != nil {
		t.Errorf("expected nil on an unchanged Flush, got %d bytes", len(payload))
	}
}

func TestFlushOnlyShipsDirtyCells(t *testing.T) {
	f := NewFrame(5, 2)
	f.Flush()

	f.SetCell(2, 1, core.NewStyledCell('x', core.DefaultStyle()))
	df, ok := DecodeFrame(f.Flush())
	if !ok {
		t.Fatal("DecodeFrame failed")
	}
	if len(df.Changes) != 1 {
		t.Fatalf("expected exactly one changed cell, got %d", len(df.Changes))
	}
	if df.Changes[0].X != 2 || df.Changes[0].Y != 1 || df.Changes[0].Cell.Rune != 'x' {
		t.Errorf("got %+v", df.Changes[0])
	}
}

func TestSetStringAdvancesPastWideRunes(t *testing.T) {
	f := NewFrame(10, 1)
	f.SetString(0, 0, "a中", core.DefaultStyle())
	if f.back[0][0].Rune != 'a' {
		t.Errorf("expected 'a' at column 0, got %q", f.back[0][0].Rune)
	}
	if f.back[0][1].Rune != '中' || f.back[0][1].Width != 2 {
		t.Errorf("expected wide rune at column 1, got %+v", f.back[0][1])
	}
	if !f.back[0][2].IsContinuation() {
		t.Errorf("expected a continuation cell at column 2, got %+v", f.back[0][2])
	}
}

func TestResizePreservesOverlapAndForcesFullRedraw(t *testing.T) {
	f := NewFrame(4, 2)
	f.Flush()
	f.SetCell(1, 1, core.NewStyledCell('z', core.DefaultStyle()))
	f.sync()

	f.Resize(6, 3)
	if !f.IsDirty() {
		t.Error("expected Resize to force a pending full redraw")
	}
	if f.back[1][1].Rune != 'z' {
		t.Errorf("expected preserved cell at (1,1), got %+v", f.back[1][1])
	}
}

func TestFlushRoundTripsCursorState(t *testing.T) {
	f := NewFrame(10, 10)
	f.SetCursor(3, 7, true)
	df, ok := DecodeFrame(f.Flush())
	if !ok {
		t.Fatal("DecodeFrame failed")
	}
	if df.CursorRow != 3 || df.CursorCol != 7 || !df.CursorVisible {
		t.Errorf("got row=%d col=%d visible=%v", df.CursorRow, df.CursorCol, df.CursorVisible)
	}
}

func TestFlushRoundTripsStyleAndColor(t *testing.T) {
	f := NewFrame(2, 1)
	style := core.Style{
		Foreground: core.ColorFromRGB(10, 20, 30),
		Background: core.ColorFromIndex(5),
		Attributes: core.AttrBold | core.AttrUnderline,
	}
	f.SetCell(0, 0, core.NewStyledCell('q', style))
	df, ok := DecodeFrame(f.Flush())
	if !ok {
		t.Fatal("DecodeFrame failed")
	}
	var got core.Cell
	for _, ch := range df.Changes {
		if ch.X == 0 && ch.Y == 0 {
			got = ch.Cell
		}
	}
	if got.Rune != 'q' {
		t.Fatalf("cell at (0,0) not found in diff: %+v", df.Changes)
	}
	if !got.Style.Foreground.Equals(style.Foreground) {
		t.Errorf("Foreground: got %v, want %v", got.Style.Foreground, style.Foreground)
	}
	if !got.Style.Background.Equals(style.Background) {
		t.Errorf("Background: got %v, want %v", got.Style.Background, style.Background)
	}
	if !got.Style.Attributes.Has(core.AttrBold) || !got.Style.Attributes.Has(core.AttrUnderline) {
		t.Errorf("Attributes: got %v", got.Style.Attributes)
	}
}

func TestDecodeFrameRejectsTruncatedPayload(t *testing.T) {
	if _, ok := DecodeFrame([]byte{1, 2, 3}); ok {
		t.Error("expected DecodeFrame to reject a too-short payload")
	}
}

func TestDecodeFrameRejectsMismatchedCellCount(t *testing.T) {
	f := NewFrame(2, 1)
	payload := f.Flush()
	// Corrupt the declared cell count so it no longer matches the
	// payload's remaining length.
	payload[12] = 0xFF
	if _, ok := DecodeFrame(payload); ok {
		t.Error("expected DecodeFrame to reject a mismatched cell count")
	}
}
