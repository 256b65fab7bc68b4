// Package backend is the client-side half of the frame-buffer contract:
// a terminal stub that turns a renderer.DecodedFrame into actual
// screen updates and turns actual key presses into key.Key, so
// cmd/pepper's read loop never touches an escape sequence directly.
//
// Grounded on the teacher's internal/renderer/backend.Backend, trimmed
// to the surface cmd/pepper's tick actually drives: this repo has no
// mouse or bracketed-paste events in its wire protocol (protocol.
// ClientEvent only names Key/Resize/Command/OpenBuffer), so neither
// made the cut here — the teacher's own Backend interface carries
// both for its richer, keyboard-and-mouse editor.
package backend

import (
	"github.com/dshills/pepperd/internal/input/key"
	"github.com/dshills/pepperd/internal/renderer"
)

// EventKind tags what PollEvent returned.
type EventKind int

const (
	EventNone EventKind = iota
	EventKey
	EventResize
)

// Event is one input event a Backend delivers to cmd/pepper's read
// loop.
type Event struct {
	Kind          EventKind
	Key           key.Key
	Width, Height int
}

// Backend is a terminal able to apply a decoded frame and report key
// presses, implemented by Terminal (tcell) for real use and by
// NullBackend for tests that shouldn't touch an actual TTY.
type Backend interface {
	// Init takes over the terminal (raw mode, alternate screen).
	Init() error
	// Shutdown restores the terminal to its prior state.
	Shutdown()
	// Size returns the terminal's current column/row count.
	Size() (width, height int)
	// ApplyFrame paints df's changed cells and cursor, then flips the
	// display to show them.
	ApplyFrame(df renderer.DecodedFrame)
	// PollEvent blocks for the next key press or resize.
	PollEvent() Event
	// Suspend releases the terminal for a shell escape; Resume
	// reclaims it.
	Suspend() error
	Resume() error
}
