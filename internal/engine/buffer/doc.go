// Package buffer implements the editor's text store: an ordered line
// list per open file, its undo history, and the word-database deltas
// that insert/delete operations produce.
//
// Unlike the rope-backed storage common in full-screen editors, lines
// are kept as a plain slice of strings. The spec's data model calls
// for direct indexed line access (command mode, LSP incremental sync,
// and the history arena all address text by line+column), which a
// rope optimizes away at the cost of making those lookups harder, not
// easier, for a single-client-at-a-time editor core.
package buffer
