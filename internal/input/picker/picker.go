// Package picker implements the interactive filtered list used by
// buffer-switching, symbol navigation and code-action selection, grounded
// in original_source/src/mode/picker.rs and plugin-lsp/src/mode/picker.rs:
// an unfiltered entry list plus a filtered index list ordered by fuzzy
// score (higher first), cursor navigation by +/-N with wrapping disabled,
// and half-height paging.
package picker

import (
	"sort"

	"github.com/dshills/pepperd/internal/input/fuzzy"
)

// Entry is either Builtin, referencing the word database by index (the
// spec's "reference to word-database by index"), or Custom, an inline
// string with an optional description (used for buffer lists, LSP
// symbols, code actions).
type Entry struct {
	Builtin     bool
	WordIndex   int
	Text        string
	Description string
}

// NewBuiltinEntry references word-database entry idx.
func NewBuiltinEntry(idx int) Entry {
	return Entry{Builtin: true, WordIndex: idx}
}

// NewCustomEntry holds an inline string, with an optional description.
func NewCustomEntry(text, description string) Entry {
	return Entry{Text: text, Description: description}
}

// WordLookup resolves a Builtin entry's text, letting the picker stay
// decoupled from the word-database package.
type WordLookup func(idx int) string

type filtered struct {
	entryIndex int
	score      int
}

// Picker owns the unfiltered entry list and the current filtered/sorted
// view over it.
type Picker struct {
	entries  []Entry
	filtered []filtered
	cursor   int
}

// New returns an empty picker.
func New() *Picker {
	return &Picker{}
}

// Reset clears both the entry list and the filter.
func (p *Picker) Reset() {
	p.entries = nil
	p.filtered = nil
	p.cursor = 0
}

// Add appends an entry to the unfiltered list.
func (p *Picker) Add(e Entry) {
	p.entries = append(p.entries, e)
}

// Len returns the number of entries currently passing the filter.
func (p *Picker) Len() int {
	return len(p.filtered)
}

// Cursor returns the current cursor index into the filtered list.
func (p *Picker) Cursor() int {
	return p.cursor
}

// Filter re-scores every entry against pattern and rebuilds the filtered
// index list in descending-score order (ties broken by original entry
// order, for determinism). An empty pattern keeps every entry at score 0
// in original order, mirroring the Rust on_enter behavior of filtering
// with an empty string.
func (p *Picker) Filter(pattern string, lookup WordLookup) {
	p.filtered = p.filtered[:0]
	for i, e := range p.entries {
		text := e.Text
		if e.Builtin && lookup != nil {
			text = lookup(e.WordIndex)
		}
		score, ok := fuzzy.Score(pattern, text)
		if !ok {
			continue
		}
		p.filtered = append(p.filtered, filtered{entryIndex: i, score: score})
	}
	sort.SliceStable(p.filtered, func(i, j int) bool {
		return p.filtered[i].score > p.filtered[j].score
	})
	p.cursor = 0
}

// CurrentEntry returns the entry under the cursor, or false if the
// filtered list is empty.
func (p *Picker) CurrentEntry() (Entry, bool) {
	if len(p.filtered) == 0 {
		return Entry{}, false
	}
	return p.entries[p.filtered[p.cursor].entryIndex], true
}

// EntryAt returns the filtered entry at display row i, for rendering the
// visible page.
func (p *Picker) EntryAt(i int) (Entry, bool) {
	if i < 0 || i >= len(p.filtered) {
		return Entry{}, false
	}
	return p.entries[p.filtered[i].entryIndex], true
}

// MoveCursor shifts the cursor by delta, clamped to [0, Len()-1] with
// wrapping disabled per spec.
func (p *Picker) MoveCursor(delta int) {
	if len(p.filtered) == 0 {
		p.cursor = 0
		return
	}
	c := p.cursor + delta
	if c < 0 {
		c = 0
	}
	if max := len(p.filtered) - 1; c > max {
		c = max
	}
	p.cursor = c
}

// PageDown moves the cursor forward by half of height (PageUp/PageDown
// per spec move by half the picker's display height).
func (p *Picker) PageDown(height int) {
	p.MoveCursor(height / 2)
}

// PageUp moves the cursor backward by half of height.
func (p *Picker) PageUp(height int) {
	p.MoveCursor(-(height / 2))
}
