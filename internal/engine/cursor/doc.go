// Package cursor implements multi-cursor selections bound to a
// buffer's line/column coordinate space. A Set is never empty; the
// last cursor removed from a Set is replaced by a single cursor at
// the origin rather than leaving the set without one.
package cursor
