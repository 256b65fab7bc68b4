package history

import (
	"testing"

	"github.com/dshills/pepperd/internal/engine/bufpos"
)

func rng(fromLine, fromCol, toLine, toCol int) bufpos.Range {
	return bufpos.Range{
		From: bufpos.Position{Line: fromLine, Column: fromCol},
		To:   bufpos.Position{Line: toLine, Column: toCol},
	}
}

func TestCommitEditsOnEmptyHistory(t *testing.T) {
	h := New()
	if got := h.UndoEdits(); len(got) != 0 {
		t.Fatalf("UndoEdits = %v, want empty", got)
	}
	if got := h.RedoEdits(); len(got) != 0 {
		t.Fatalf("RedoEdits = %v, want empty", got)
	}
	h.CommitEdits()
	if got := h.RedoEdits(); len(got) != 0 {
		t.Fatalf("RedoEdits = %v, want empty", got)
	}
	if got := h.UndoEdits(); len(got) != 0 {
		t.Fatalf("UndoEdits = %v, want empty", got)
	}
	h.CommitEdits()
	h.CommitEdits()
	if got := h.UndoEdits(); len(got) != 0 {
		t.Fatalf("UndoEdits = %v, want empty", got)
	}
	if got := h.RedoEdits(); len(got) != 0 {
		t.Fatalf("RedoEdits = %v, want empty", got)
	}
}

func TestEditGrouping(t *testing.T) {
	h := New()
	h.AddEdit(Edit{Kind: Insert, Range: bufpos.Range{}, Text: "a", CursorIndex: 0})
	h.AddEdit(Edit{Kind: Delete, Range: bufpos.Range{}, Text: "b", CursorIndex: 0})

	if got := h.RedoEdits(); len(got) != 0 {
		t.Fatalf("RedoEdits after two edits = %v, want empty", got)
	}

	undo := h.UndoEdits()
	if len(undo) != 2 {
		t.Fatalf("UndoEdits len = %d, want 2", len(undo))
	}
	if undo[0].Kind != Insert || undo[0].Text != "b" {
		t.Fatalf("undo[0] = %+v, want Insert \"b\"", undo[0])
	}
	if undo[1].Kind != Delete || undo[1].Text != "a" {
		t.Fatalf("undo[1] = %+v, want Delete \"a\"", undo[1])
	}

	redo := h.RedoEdits()
	if len(redo) != 2 {
		t.Fatalf("RedoEdits len = %d, want 2", len(redo))
	}
	if redo[0].Kind != Insert || redo[0].Text != "a" {
		t.Fatalf("redo[0] = %+v, want Insert \"a\"", redo[0])
	}
	if redo[1].Kind != Delete || redo[1].Text != "b" {
		t.Fatalf("redo[1] = %+v, want Delete \"b\"", redo[1])
	}

	if got := h.RedoEdits(); len(got) != 0 {
		t.Fatalf("RedoEdits at end = %v, want empty", got)
	}

	undo = h.UndoEdits()
	if len(undo) != 2 || undo[0].Text != "b" || undo[1].Text != "a" {
		t.Fatalf("second UndoEdits = %+v, want [b,a]", undo)
	}

	h.AddEdit(Edit{Kind: Insert, Range: bufpos.Range{}, Text: "c", CursorIndex: 0})

	if got := h.RedoEdits(); len(got) != 0 {
		t.Fatalf("RedoEdits after new edit = %v, want empty", got)
	}

	undo = h.UndoEdits()
	if len(undo) != 1 || undo[0].Kind != Delete || undo[0].Text != "c" {
		t.Fatalf("undo after new edit = %+v, want [Delete c]", undo)
	}

	if got := h.UndoEdits(); len(got) != 0 {
		t.Fatalf("UndoEdits at start = %v, want empty", got)
	}
}

func TestCompressInsertInsertEdits(t *testing.T) {
	h := New()
	h.AddEdit(Edit{Kind: Insert, Range: rng(0, 0, 0, 3), Text: "abc", CursorIndex: 0})
	h.AddEdit(Edit{Kind: Insert, Range: rng(0, 3, 0, 6), Text: "def", CursorIndex: 0})

	undo := h.UndoEdits()
	if len(undo) != 1 {
		t.Fatalf("len = %d, want 1", len(undo))
	}
	if undo[0].Kind != Delete || undo[0].Text != "abcdef" || undo[0].Range != rng(0, 0, 0, 6) {
		t.Fatalf("undo[0] = %+v", undo[0])
	}

	h2 := New()
	h2.AddEdit(Edit{Kind: Insert, Range: rng(0, 0, 0, 3), Text: "abc", CursorIndex: 0})
	h2.AddEdit(Edit{Kind: Insert, Range: rng(0, 0, 0, 3), Text: "def", CursorIndex: 0})

	undo = h2.UndoEdits()
	if len(undo) != 1 {
		t.Fatalf("len = %d, want 1", len(undo))
	}
	if undo[0].Kind != Delete || undo[0].Text != "defabc" || undo[0].Range != rng(0, 0, 0, 6) {
		t.Fatalf("undo[0] = %+v", undo[0])
	}
}

func TestCompressDeleteDeleteEdits(t *testing.T) {
	h := New()
	h.AddEdit(Edit{Kind: Delete, Range: rng(0, 0, 0, 3), Text: "abc", CursorIndex: 0})
	h.AddEdit(Edit{Kind: Delete, Range: rng(0, 0, 0, 3), Text: "def", CursorIndex: 0})

	undo := h.UndoEdits()
	if len(undo) != 1 {
		t.Fatalf("len = %d, want 1", len(undo))
	}
	if undo[0].Kind != Insert || undo[0].Text != "abcdef" || undo[0].Range != rng(0, 0, 0, 6) {
		t.Fatalf("undo[0] = %+v", undo[0])
	}

	h2 := New()
	h2.AddEdit(Edit{Kind: Delete, Range: rng(0, 3, 0, 6), Text: "abc", CursorIndex: 0})
	h2.AddEdit(Edit{Kind: Delete, Range: rng(0, 0, 0, 3), Text: "def", CursorIndex: 0})

	undo = h2.UndoEdits()
	if len(undo) != 1 {
		t.Fatalf("len = %d, want 1", len(undo))
	}
	if undo[0].Kind != Insert || undo[0].Text != "defabc" || undo[0].Range != rng(0, 0, 0, 6) {
		t.Fatalf("undo[0] = %+v", undo[0])
	}
}

func TestCompressInsertDeleteEdits(t *testing.T) {
	// -- insert ------
	// -- delete --
	h := New()
	h.AddEdit(Edit{Kind: Insert, Range: rng(0, 0, 0, 6), Text: "abcdef", CursorIndex: 0})
	h.AddEdit(Edit{Kind: Delete, Range: rng(0, 0, 0, 3), Text: "abc", CursorIndex: 0})
	undo := h.UndoEdits()
	if len(undo) != 1 || undo[0].Kind != Delete || undo[0].Text != "def" || undo[0].Range != rng(0, 0, 0, 3) {
		t.Fatalf("case1 undo = %+v", undo)
	}

	// ------ insert --
	//     -- delete --
	h2 := New()
	h2.AddEdit(Edit{Kind: Insert, Range: rng(0, 0, 0, 6), Text: "abcdef", CursorIndex: 0})
	h2.AddEdit(Edit{Kind: Delete, Range: rng(0, 3, 0, 6), Text: "def", CursorIndex: 0})
	undo = h2.UndoEdits()
	if len(undo) != 1 || undo[0].Kind != Delete || undo[0].Text != "abc" || undo[0].Range != rng(0, 0, 0, 3) {
		t.Fatalf("case2 undo = %+v", undo)
	}

	// -- insert --
	// -- delete ------
	h3 := New()
	h3.AddEdit(Edit{Kind: Insert, Range: rng(0, 0, 0, 3), Text: "abc", CursorIndex: 0})
	h3.AddEdit(Edit{Kind: Delete, Range: rng(0, 0, 0, 6), Text: "abcdef", CursorIndex: 0})
	undo = h3.UndoEdits()
	if len(undo) != 1 || undo[0].Kind != Insert || undo[0].Text != "def" || undo[0].Range != rng(0, 0, 0, 3) {
		t.Fatalf("case3 undo = %+v", undo)
	}

	//     -- insert --
	// ------ delete --
	h4 := New()
	h4.AddEdit(Edit{Kind: Insert, Range: rng(0, 3, 0, 6), Text: "def", CursorIndex: 0})
	h4.AddEdit(Edit{Kind: Delete, Range: rng(0, 0, 0, 6), Text: "abcdef", CursorIndex: 0})
	undo = h4.UndoEdits()
	if len(undo) != 1 || undo[0].Kind != Insert || undo[0].Text != "abc" || undo[0].Range != rng(0, 0, 0, 3) {
		t.Fatalf("case4 undo = %+v", undo)
	}
}

func TestCompressMultipleEdits(t *testing.T) {
	h := New()
	h.AddEdit(Edit{Kind: Insert, Range: rng(1, 0, 1, 1), Text: "a", CursorIndex: 1})
	h.AddEdit(Edit{Kind: Insert, Range: rng(0, 0, 0, 1), Text: "a", CursorIndex: 0})

	undo := h.UndoEdits()
	if len(undo) != 2 {
		t.Fatalf("len = %d, want 2", len(undo))
	}
	if undo[0].Kind != Delete || undo[0].Range != rng(0, 0, 0, 1) || undo[0].CursorIndex != 0 {
		t.Fatalf("undo[0] = %+v", undo[0])
	}
	if undo[1].Kind != Delete || undo[1].Range != rng(1, 0, 1, 1) || undo[1].CursorIndex != 1 {
		t.Fatalf("undo[1] = %+v", undo[1])
	}
}
