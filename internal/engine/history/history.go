package history

import "github.com/dshills/pepperd/internal/engine/bufpos"

// Kind distinguishes an edit's direction.
type Kind uint8

const (
	Insert Kind = iota
	Delete
)

// Edit is a single text-mutating operation as presented to and
// returned from History. Range is the buffer range affected (for
// Insert, Range.To is after the inserted text; for Delete, Range
// covers the removed text). CursorIndex identifies the cursor that
// produced the edit, for multi-cursor merge grouping.
type Edit struct {
	Kind        Kind
	Range       bufpos.Range
	Text        string
	CursorIndex uint8
}

// internalEdit is the log-resident form: Text lives in the shared
// arena (texts), addressed by a [from,to) byte slice.
type internalEdit struct {
	kind        Kind
	bufferRange bufpos.Range
	textFrom    int
	textTo      int
	cursorIndex uint8
}

type groupRange struct {
	start, end int
}

type mode uint8

const (
	modeIterIndex mode = iota
	modeInsertGroup
)

// History is an append-only edit log over a shared text arena,
// grouped into commit ranges for undo/redo. Adjacent same-cursor
// edits within an uncommitted group are merged per the eight patterns
// documented on tryMergeEdit, so a burst of single-character inserts
// undoes as one step.
type History struct {
	texts []byte
	edits []internalEdit

	groupRanges []groupRange

	state      mode
	iterIndex  int // valid when state == modeIterIndex
	groupStart int // valid when state == modeInsertGroup
	groupEnd   int
}

// New returns an empty history positioned at the start of the log.
func New() *History {
	return &History{state: modeIterIndex, iterIndex: 0}
}

// Clear discards all edits and resets to the initial state.
func (h *History) Clear() {
	h.texts = h.texts[:0]
	h.edits = h.edits[:0]
	h.groupRanges = h.groupRanges[:0]
	h.state = modeIterIndex
	h.iterIndex = 0
}

// AddEdit appends edit to the current group, merging it into the most
// recent same-cursor edit when one of the eight merge patterns
// applies. Adding an edit while positioned at index i (after undos)
// truncates groups past i and starts a new group there.
func (h *History) AddEdit(edit Edit) {
	var currentGroupLen int
	switch h.state {
	case modeIterIndex:
		editIndex := len(h.edits)
		if h.iterIndex < len(h.groupRanges) {
			editIndex = h.groupRanges[h.iterIndex].start
		}
		h.edits = h.edits[:editIndex]
		h.groupRanges = h.groupRanges[:h.iterIndex]
		h.state = modeInsertGroup
		h.groupStart, h.groupEnd = editIndex, editIndex
		currentGroupLen = 0
	case modeInsertGroup:
		currentGroupLen = h.groupEnd - h.groupStart
	}

	if h.tryMergeEdit(currentGroupLen, edit) {
		return
	}

	if h.state == modeInsertGroup {
		h.groupEnd++
	}
	start := len(h.texts)
	h.texts = append(h.texts, edit.Text...)
	h.edits = append(h.edits, internalEdit{
		kind:        edit.Kind,
		bufferRange: edit.Range,
		textFrom:    start,
		textTo:      len(h.texts),
		cursorIndex: edit.CursorIndex,
	})
}

// tryMergeEdit folds edit into the most recent edit sharing its cursor
// index within the current group, covering these exhaustive cases:
//
//  1. Insert,Insert, new.from == old.to: concatenate, extend to.
//  2. Insert,Insert, new.from == old.from: prepend.
//  3. Delete,Delete, new.from == old.from: append deleted text.
//  4. Delete,Delete, new.to == old.from: prepend, shift from back.
//  5. Insert,Delete, deletion is a prefix of the insert: shrink from the left.
//  6. Insert,Delete, deletion is a suffix of the insert: shrink from the right.
//  7. Insert,Delete extending past the insert's right end: convert to a net Delete.
//  8. Insert,Delete extending past the insert's left end: symmetric of 7.
//
// Any other adjacency, or a deletion whose text doesn't match the
// corresponding insert slice, does not merge.
func (h *History) tryMergeEdit(currentGroupLen int, edit Edit) bool {
	groupStart := len(h.edits) - currentGroupLen
	otherIndex := -1
	for i := len(h.edits) - 1; i >= groupStart; i-- {
		if h.edits[i].cursorIndex == edit.CursorIndex {
			otherIndex = i
			break
		}
	}
	if otherIndex < 0 {
		return false
	}
	other := &h.edits[otherIndex]
	editTextLen := len(edit.Text)

	switch {
	case other.kind == Insert && edit.Kind == Insert:
		switch {
		case edit.Range.From == other.bufferRange.To:
			other.bufferRange.To = edit.Range.To
			h.insertIntoTexts(other.textTo, edit.Text)
			fixStart := other.textTo
			other.textTo += editTextLen
			for i := otherIndex + 1; i < len(h.edits); i++ {
				h.edits[i].bufferRange = h.edits[i].bufferRange.Insert(edit.Range)
				insertTextRangeFix(&h.edits[i].textFrom, &h.edits[i].textTo, fixStart, editTextLen)
			}
			return true
		case edit.Range.From == other.bufferRange.From:
			other.bufferRange.To = other.bufferRange.To.Insert(edit.Range)
			h.insertIntoTexts(other.textFrom, edit.Text)
			other.textTo += editTextLen
			fixStart := other.textFrom
			for i := otherIndex + 1; i < len(h.edits); i++ {
				h.edits[i].bufferRange = h.edits[i].bufferRange.Insert(edit.Range)
				insertTextRangeFix(&h.edits[i].textFrom, &h.edits[i].textTo, fixStart, editTextLen)
			}
			return true
		}

	case other.kind == Delete && edit.Kind == Delete:
		switch {
		case edit.Range.From == other.bufferRange.From:
			other.bufferRange.To = other.bufferRange.To.Insert(edit.Range)
			h.insertIntoTexts(other.textTo, edit.Text)
			fixStart := other.textTo
			other.textTo += editTextLen
			for i := otherIndex + 1; i < len(h.edits); i++ {
				h.edits[i].bufferRange = h.edits[i].bufferRange.Delete(edit.Range)
				insertTextRangeFix(&h.edits[i].textFrom, &h.edits[i].textTo, fixStart, editTextLen)
			}
			return true
		case edit.Range.To == other.bufferRange.From:
			other.bufferRange.From = edit.Range.From
			h.insertIntoTexts(other.textFrom, edit.Text)
			other.textTo += editTextLen
			fixStart := other.textFrom
			for i := otherIndex + 1; i < len(h.edits); i++ {
				h.edits[i].bufferRange = h.edits[i].bufferRange.Delete(edit.Range)
				insertTextRangeFix(&h.edits[i].textFrom, &h.edits[i].textTo, fixStart, editTextLen)
			}
			return true
		}

	case other.kind == Insert && edit.Kind == Delete:
		switch {
		// -- insert ------
		// -- delete -- (new)
		case other.bufferRange.From == edit.Range.From && !other.bufferRange.To.Less(edit.Range.To):
			deletedFrom := other.textFrom
			deletedTo := other.textFrom + editTextLen
			if edit.Text == string(h.texts[deletedFrom:deletedTo]) {
				other.bufferRange.To = other.bufferRange.To.Delete(edit.Range)
				fixStart := deletedFrom
				h.deleteFromTexts(deletedFrom, deletedTo)
				other.textTo -= editTextLen
				for i := otherIndex + 1; i < len(h.edits); i++ {
					h.edits[i].bufferRange = h.edits[i].bufferRange.Delete(edit.Range)
					deleteTextRangeFix(&h.edits[i].textFrom, &h.edits[i].textTo, fixStart, editTextLen)
				}
				return true
			}

		// ------ insert --
		//     -- delete -- (new)
		case edit.Range.To == other.bufferRange.To && !edit.Range.From.Less(other.bufferRange.From):
			deletedFrom := other.textTo - editTextLen
			deletedTo := other.textTo
			if edit.Text == string(h.texts[deletedFrom:deletedTo]) {
				other.bufferRange.To = edit.Range.From
				fixStart := deletedFrom
				h.deleteFromTexts(deletedFrom, deletedTo)
				other.textTo -= editTextLen
				for i := otherIndex + 1; i < len(h.edits); i++ {
					h.edits[i].bufferRange = h.edits[i].bufferRange.Delete(edit.Range)
					deleteTextRangeFix(&h.edits[i].textFrom, &h.edits[i].textTo, fixStart, editTextLen)
				}
				return true
			}

		// -- insert --
		// -- delete ------ (new)
		case edit.Range.From == other.bufferRange.From && !edit.Range.To.Less(other.bufferRange.To):
			otherTextLen := other.textTo - other.textFrom
			if otherTextLen <= editTextLen && edit.Text[:otherTextLen] == string(h.texts[other.textFrom:other.textTo]) {
				other.kind = Delete
				other.bufferRange.To = edit.Range.To.Delete(other.bufferRange)
				h.replaceInTexts(other.textFrom, other.textTo, edit.Text[otherTextLen:])
				textLenDiff := editTextLen - otherTextLen
				other.textTo = other.textFrom + textLenDiff
				fixStart := other.textFrom
				for i := otherIndex + 1; i < len(h.edits); i++ {
					h.edits[i].bufferRange = h.edits[i].bufferRange.Delete(edit.Range)
					insertTextRangeFix(&h.edits[i].textFrom, &h.edits[i].textTo, fixStart, textLenDiff)
				}
				return true
			}

		//     -- insert --
		// ------ delete -- (new)
		case other.bufferRange.To == edit.Range.To && !other.bufferRange.From.Less(edit.Range.From):
			otherTextLen := other.textTo - other.textFrom
			if otherTextLen <= editTextLen && edit.Text[editTextLen-otherTextLen:] == string(h.texts[other.textFrom:other.textTo]) {
				other.kind = Delete
				other.bufferRange.To = other.bufferRange.From
				other.bufferRange.From = edit.Range.From
				h.replaceInTexts(other.textFrom, other.textTo, edit.Text[:editTextLen-otherTextLen])
				textLenDiff := editTextLen - otherTextLen
				other.textTo = other.textFrom + textLenDiff
				fixStart := other.textFrom
				for i := otherIndex + 1; i < len(h.edits); i++ {
					h.edits[i].bufferRange = h.edits[i].bufferRange.Delete(edit.Range)
					insertTextRangeFix(&h.edits[i].textFrom, &h.edits[i].textTo, fixStart, textLenDiff)
				}
				return true
			}
		}
	}

	return false
}

func insertTextRangeFix(from, to *int, start, length int) {
	end := start + length
	switch {
	case end <= *from:
		*from += length
		*to += length
	case end <= *to:
		*to += length
	}
}

func deleteTextRangeFix(from, to *int, start, length int) {
	end := start + length
	switch {
	case end <= *from:
		*from -= length
		*to -= length
	case end <= *to:
		*to -= length
	}
}

func (h *History) insertIntoTexts(at int, s string) {
	out := make([]byte, 0, len(h.texts)+len(s))
	out = append(out, h.texts[:at]...)
	out = append(out, s...)
	out = append(out, h.texts[at:]...)
	h.texts = out
}

func (h *History) deleteFromTexts(from, to int) {
	h.texts = append(h.texts[:from], h.texts[to:]...)
}

func (h *History) replaceInTexts(from, to int, s string) {
	tail := append([]byte(nil), h.texts[to:]...)
	out := append(h.texts[:from], s...)
	h.texts = append(out, tail...)
}

// CommitEdits finalizes the current group, if one is open, making it
// addressable by undo/redo.
func (h *History) CommitEdits() {
	if h.state == modeInsertGroup {
		h.groupRanges = append(h.groupRanges, groupRange{start: h.groupStart, end: h.groupEnd})
		h.state = modeIterIndex
		h.iterIndex = len(h.groupRanges)
	}
}

// UndoEdits commits any open group, then returns the edits of the
// previous group in reverse order with their kinds inverted (Insert
// becomes Delete and vice versa), ready to apply directly to a
// Buffer. Returns nil if there is nothing left to undo.
func (h *History) UndoEdits() []Edit {
	h.CommitEdits()

	var r groupRange
	if h.iterIndex > 0 {
		h.iterIndex--
		r = h.groupRanges[h.iterIndex]
	}

	out := make([]Edit, 0, r.end-r.start)
	for i := r.end - 1; i >= r.start; i-- {
		e := h.edits[i]
		kind := Delete
		if e.kind == Delete {
			kind = Insert
		}
		out = append(out, Edit{
			Kind:        kind,
			Range:       e.bufferRange,
			Text:        string(h.texts[e.textFrom:e.textTo]),
			CursorIndex: e.cursorIndex,
		})
	}
	return out
}

// RedoEdits commits any open group, then returns the edits of the
// next group in forward order, unchanged in kind. Returns nil if
// there is nothing left to redo.
func (h *History) RedoEdits() []Edit {
	h.CommitEdits()

	var r groupRange
	if h.iterIndex < len(h.groupRanges) {
		r = h.groupRanges[h.iterIndex]
		h.iterIndex++
	}

	out := make([]Edit, 0, r.end-r.start)
	for i := r.start; i < r.end; i++ {
		e := h.edits[i]
		out = append(out, Edit{
			Kind:        e.kind,
			Range:       e.bufferRange,
			Text:        string(h.texts[e.textFrom:e.textTo]),
			CursorIndex: e.cursorIndex,
		})
	}
	return out
}
