// Package history implements the editor's undo/redo log: a flat,
// append-only sequence of edits addressed into a shared text arena,
// grouped into commit ranges, with same-cursor adjacent edits merged
// on the fly so a fast typist's undo steps feel like whole words, not
// individual keystrokes.
package history
