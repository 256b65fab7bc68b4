// Package view binds a cursor.Set to a buffer handle. A View is the
// unit a client actually edits through: key handlers resolve the
// active View, mutate its cursors, and apply the resulting edits to
// the underlying buffer via the editor's buffer table.
package view
