package cursor

import "github.com/dshills/pepperd/internal/engine/bufpos"

// Cursor is a selection: Anchor is where the selection started,
// Position is where it currently ends (and where the caret renders).
// Anchor == Position is a plain insertion-point cursor.
type Cursor struct {
	Anchor   bufpos.Position
	Position bufpos.Position
}

// At returns a zero-extent cursor at p.
func At(p bufpos.Position) Cursor {
	return Cursor{Anchor: p, Position: p}
}

// IsEmpty reports whether the cursor has no selection extent.
func (c Cursor) IsEmpty() bool {
	return c.Anchor == c.Position
}

// Range returns the cursor's span with endpoints in document order,
// regardless of which direction the selection was made in.
func (c Cursor) Range() bufpos.Range {
	return bufpos.Between(c.Anchor, c.Position)
}

// Start returns the earlier of Anchor/Position.
func (c Cursor) Start() bufpos.Position {
	return c.Range().From
}

// End returns the later of Anchor/Position.
func (c Cursor) End() bufpos.Position {
	return c.Range().To
}

// Collapse returns a zero-extent cursor at Position.
func (c Cursor) Collapse() Cursor {
	return At(c.Position)
}

// MoveTo returns a cursor moved to p with no selection extent.
func (c Cursor) MoveTo(p bufpos.Position) Cursor {
	return At(p)
}

// Extend returns a cursor with the same Anchor but Position moved to p.
func (c Cursor) Extend(p bufpos.Position) Cursor {
	return Cursor{Anchor: c.Anchor, Position: p}
}

// overlaps reports whether c and other's ranges touch or intersect,
// so that merging them loses no information.
func (c Cursor) overlaps(other Cursor) bool {
	a, b := c.Range(), other.Range()
	return !b.To.Less(a.From) && !a.To.Less(b.From)
}
