package mode

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/pepperd/internal/input/key"
)

// ReadLinePoll is the result of feeding one key to a ReadLine.
type ReadLinePoll int

const (
	ReadLinePending ReadLinePoll = iota
	ReadLineSubmitted
	ReadLineCanceled
)

// ReadLine edits a single input line shared by Command and Picker modes:
// Escape cancels, Enter submits, Backspace deletes one grapheme cluster,
// Ctrl-W deletes the previous word, Ctrl-U clears the line, Ctrl-Y pastes
// from the unnamed register, and any other printable Char appends.
//
// Input is kept as a slice of grapheme clusters (via uniseg) rather than
// runes so Backspace removes one user-perceived character even when that
// character is a multi-rune cluster (combining marks, flag emoji, etc).
type ReadLine struct {
	prompt   string
	clusters []string
}

// SetPrompt sets the line's display prompt (e.g. ":" for Command, the
// picker's own label for Picker).
func (r *ReadLine) SetPrompt(p string) { r.prompt = p }

// Prompt returns the line's display prompt.
func (r *ReadLine) Prompt() string { return r.prompt }

// SetInput replaces the line's text outright.
func (r *ReadLine) SetInput(s string) { r.clusters = graphemeClusters(s) }

// Input returns the line's current text.
func (r *ReadLine) Input() string { return strings.Join(r.clusters, "") }

// Clear empties the line's text, keeping the prompt.
func (r *ReadLine) Clear() { r.clusters = r.clusters[:0] }

// Poll feeds one key to the line editor.
func (r *ReadLine) Poll(k key.Key, unnamedRegister string) ReadLinePoll {
	switch k.Code {
	case key.Escape:
		return ReadLineCanceled
	case key.Enter:
		return ReadLineSubmitted
	case key.Backspace:
		if n := len(r.clusters); n > 0 {
			r.clusters = r.clusters[:n-1]
		}
		return ReadLinePending
	}

	if k.Ctrl {
		switch k.Rune {
		case 'w':
			r.deleteWordBackward()
		case 'u':
			r.clusters = r.clusters[:0]
		case 'y':
			r.clusters = append(r.clusters, graphemeClusters(unnamedRegister)...)
		}
		return ReadLinePending
	}

	if k.IsPrintable() {
		r.clusters = append(r.clusters, string(k.Rune))
	}
	return ReadLinePending
}

func (r *ReadLine) deleteWordBackward() {
	n := len(r.clusters)
	for n > 0 && r.clusters[n-1] == " " {
		n--
	}
	for n > 0 && r.clusters[n-1] != " " {
		n--
	}
	r.clusters = r.clusters[:n]
}

func graphemeClusters(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}
