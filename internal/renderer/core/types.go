// Package core holds the cell/style types shared by the frame buffer and
// its terminal backend, split out the way the teacher splits renderer
// from renderer/backend so the two can import a common vocabulary
// without importing each other.
package core

import "fmt"

// Attribute is a bitset of text attributes.
type Attribute uint16

const (
	AttrNone Attribute = 0
	AttrBold Attribute = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrReverse
)

// Has reports whether a contains attr.
func (a Attribute) Has(attr Attribute) bool { return a&attr != 0 }

// Color is either a 24-bit true color, an indexed palette color, or the
// terminal's own default — the same three-way split the backend's tcell
// bridge needs to pick the right Style constructor.
type Color struct {
	R, G, B uint8
	Indexed bool
	Default bool
}

// ColorDefault leaves a cell's color to the terminal.
var ColorDefault = Color{Default: true}

// ColorFromRGB builds a true color.
func ColorFromRGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

// ColorFromIndex builds an indexed palette color.
func ColorFromIndex(index uint8) Color { return Color{R: index, Indexed: true} }

// IsDefault reports whether c defers to the terminal's own color.
func (c Color) IsDefault() bool { return c.Default }

// Equals reports whether two colors describe the same color.
func (c Color) Equals(other Color) bool {
	if c.Default != other.Default {
		return false
	}
	if c.Default {
		return true
	}
	if c.Indexed != other.Indexed {
		return false
	}
	if c.Indexed {
		return c.R == other.R
	}
	return c.R == other.R && c.G == other.G && c.B == other.B
}

func (c Color) String() string {
	if c.Default {
		return "default"
	}
	if c.Indexed {
		return fmt.Sprintf("idx(%d)", c.R)
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Style is a cell's visual styling.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle is the terminal's own colors with no attributes.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// Equals reports whether two styles render identically.
func (s Style) Equals(other Style) bool {
	return s.Foreground.Equals(other.Foreground) &&
		s.Background.Equals(other.Background) &&
		s.Attributes == other.Attributes
}

// Cell is a single terminal cell: one display rune, its column width
// (0 for a wide rune's continuation cell, 2 for the wide rune itself),
// and its style.
type Cell struct {
	Rune  rune
	Width int
	Style Style
}

// EmptyCell is a single blank column in the default style.
func EmptyCell() Cell { return Cell{Rune: ' ', Width: 1, Style: DefaultStyle()} }

// ContinuationCell marks the second column a wide rune occupies.
func ContinuationCell() Cell { return Cell{Style: DefaultStyle()} }

// NewStyledCell builds a cell from a rune and style, computing its width.
func NewStyledCell(r rune, style Style) Cell {
	return Cell{Rune: r, Width: RuneWidth(r), Style: style}
}

// IsContinuation reports whether c is a wide rune's second column.
func (c Cell) IsContinuation() bool { return c.Width == 0 && c.Rune == 0 }

// Equals reports whether two cells render identically.
func (c Cell) Equals(other Cell) bool {
	return c.Rune == other.Rune && c.Width == other.Width && c.Style.Equals(other.Style)
}

// RuneWidth returns the terminal column width of r: 0 for control
// characters, 2 for wide (CJK-range) runes, 1 otherwise.
func RuneWidth(r rune) int {
	if r < 32 || r == 0x7F {
		return 0
	}
	if isWideRune(r) {
		return 2
	}
	return 1
}

func isWideRune(r rune) bool {
	switch {
	case r >= 0x1100 && r <= 0x115F,
		r >= 0x2E80 && r <= 0x9FFF,
		r >= 0xAC00 && r <= 0xD7A3,
		r >= 0xF900 && r <= 0xFAFF,
		r >= 0xFF00 && r <= 0xFF60,
		r >= 0x20000 && r <= 0x2FFFF:
		return true
	default:
		return false
	}
}

// CellsFromString lays out s as styled cells, inserting a continuation
// cell after every wide rune.
func CellsFromString(s string, style Style) []Cell {
	cells := make([]Cell, 0, len(s))
	for _, r := range s {
		cells = append(cells, NewStyledCell(r, style))
		if RuneWidth(r) == 2 {
			cells = append(cells, ContinuationCell())
		}
	}
	return cells
}
