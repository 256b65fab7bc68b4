package lsp

import (
	"sort"

	"github.com/dshills/pepperd/internal/engine/buffer"
)

// Severity mirrors LSP's DiagnosticSeverity.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// Diagnostic is the subset of an LSP Diagnostic this driver keeps:
// enough to render a gutter mark and a status-line message.
type Diagnostic struct {
	Start    position
	End      position
	Severity Severity
	Message  string
}

// diagnosticSet holds every diagnostic reported for one path, sorted
// by start position; empty sets are purged entirely rather than left
// as an empty slice, per spec's "entries are sorted by start position;
// empty entries are purged."
type diagnosticSet struct {
	path    string
	buf     buffer.Handle
	hasBuf  bool
	entries []Diagnostic
}

// diagnostics groups publishDiagnostics reports by server-reported
// path and lazily binds a set to a buffer handle once a matching
// buffer loads or saves, per spec's "the collection stores entries by
// path and lazily binds them to a buffer-handle when a buffer matching
// the URI loads/saves."
type diagnostics struct {
	byPath map[string]*diagnosticSet
}

func newDiagnostics() *diagnostics {
	return &diagnostics{byPath: make(map[string]*diagnosticSet)}
}

// publish replaces path's entries wholesale — publishDiagnostics is
// always a full snapshot for that URI, never a delta.
func (d *diagnostics) publish(path string, entries []Diagnostic) {
	if len(entries) == 0 {
		delete(d.byPath, path)
		return
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Start.Line != entries[j].Start.Line {
			return entries[i].Start.Line < entries[j].Start.Line
		}
		return entries[i].Start.Character < entries[j].Start.Character
	})
	set, ok := d.byPath[path]
	if !ok {
		set = &diagnosticSet{path: path}
		d.byPath[path] = set
	}
	set.entries = entries
}

// bind associates path's diagnostic set (if one exists) with a buffer
// handle, called when that buffer loads or saves.
func (d *diagnostics) bind(path string, h buffer.Handle) {
	if set, ok := d.byPath[path]; ok {
		set.buf, set.hasBuf = h, true
	}
}

// forBuffer returns the diagnostics currently bound to h.
func (d *diagnostics) forBuffer(h buffer.Handle) []Diagnostic {
	for _, set := range d.byPath {
		if set.hasBuf && set.buf == h {
			return set.entries
		}
	}
	return nil
}

// forPath returns the diagnostics currently published for path,
// regardless of whether a buffer is bound yet.
func (d *diagnostics) forPath(path string) []Diagnostic {
	if set, ok := d.byPath[path]; ok {
		return set.entries
	}
	return nil
}
