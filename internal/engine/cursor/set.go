package cursor

import (
	"sort"

	"github.com/dshills/pepperd/internal/engine/bufpos"
)

// Set holds one or more cursors bound to a single buffer. It is never
// empty: removing the last cursor replaces it with a fresh cursor at
// the origin instead of leaving the set without one.
type Set struct {
	cursors []Cursor
}

// NewSet creates a set holding a single cursor.
func NewSet(initial Cursor) *Set {
	return &Set{cursors: []Cursor{initial}}
}

// Len returns the number of cursors.
func (s *Set) Len() int { return len(s.cursors) }

// Get returns the cursor at index i.
func (s *Set) Get(i int) Cursor { return s.cursors[i] }

// Primary returns the first (lowest-positioned, after normalization) cursor.
func (s *Set) Primary() Cursor { return s.cursors[0] }

// All returns a copy of the cursor list, safe for the caller to retain.
func (s *Set) All() []Cursor {
	out := make([]Cursor, len(s.cursors))
	copy(out, s.cursors)
	return out
}

// Mutation is an exclusive, unordered view over a Set's cursors.
// Callers mutate cursors freely through it; Release sorts by start
// position and merges any cursors whose ranges now touch or overlap,
// restoring the set's invariants before anyone else observes it.
type Mutation struct {
	set *Set
}

// Mutate begins a mutation. The returned Mutation must be released
// via Release before the Set is used again.
func (s *Set) Mutate() *Mutation {
	return &Mutation{set: s}
}

// Len returns the number of cursors currently in the mutation.
func (m *Mutation) Len() int { return len(m.set.cursors) }

// Get returns the cursor at index i.
func (m *Mutation) Get(i int) Cursor { return m.set.cursors[i] }

// Set replaces the cursor at index i.
func (m *Mutation) Set(i int, c Cursor) { m.set.cursors[i] = c }

// Add appends a new cursor.
func (m *Mutation) Add(c Cursor) {
	m.set.cursors = append(m.set.cursors, c)
}

// Remove deletes the cursor at index i. If it was the last cursor, a
// fresh cursor at the origin takes its place rather than leaving the
// set empty.
func (m *Mutation) Remove(i int) {
	cs := m.set.cursors
	m.set.cursors = append(cs[:i], cs[i+1:]...)
	if len(m.set.cursors) == 0 {
		m.set.cursors = []Cursor{At(bufpos.Position{})}
	}
}

// ReplaceAll replaces every cursor with cursors. An empty slice
// replaces them with a single cursor at the origin instead.
func (m *Mutation) ReplaceAll(cursors []Cursor) {
	if len(cursors) == 0 {
		m.set.cursors = []Cursor{At(bufpos.Position{})}
		return
	}
	m.set.cursors = append(m.set.cursors[:0], cursors...)
}

// Release sorts the mutation's cursors by start position and merges
// any whose ranges touch or overlap, then returns control to the Set.
func (m *Mutation) Release() {
	cursors := m.set.cursors
	if len(cursors) <= 1 {
		return
	}

	sort.Slice(cursors, func(i, j int) bool {
		si, sj := cursors[i].Start(), cursors[j].Start()
		if si != sj {
			return si.Less(sj)
		}
		return cursors[j].End().Less(cursors[i].End())
	})

	merged := cursors[:1]
	for _, c := range cursors[1:] {
		last := &merged[len(merged)-1]
		if last.overlaps(c) {
			lastEnd, cEnd := last.End(), c.End()
			end := lastEnd
			if lastEnd.Less(cEnd) {
				end = cEnd
			}
			*last = Cursor{Anchor: last.Start(), Position: end}
		} else {
			merged = append(merged, c)
		}
	}
	m.set.cursors = merged
}
