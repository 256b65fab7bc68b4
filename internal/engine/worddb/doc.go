// Package worddb maintains an incrementally updated multiset of
// identifier-like words found across live buffers, used as a
// completion and picker source. Buffers call AddLine/RemoveLine on
// every insert/delete so the database never needs a full rescan.
package worddb
