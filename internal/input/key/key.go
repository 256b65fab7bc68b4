// Package key defines the key-event type shared by the keymap, mode and
// macro packages, along with parsing/formatting between a Key and its
// printable `<c-w>`-style notation (the form macros record to and replay
// from).
package key

import (
	"fmt"
	"strings"
	"unicode"
)

// Code names a non-character key. Char events carry their rune in Rune
// instead.
type Code uint8

const (
	Char Code = iota
	Enter
	Escape
	Backspace
	Delete
	Tab
	Up
	Down
	Left
	Right
	Home
	End
	PageUp
	PageDown
)

// Key is a single key press: either a printable rune (Code == Char) or one
// of the special Codes above, plus modifiers. Ctrl/Alt apply to any key;
// Shift is only meaningful on special keys since it already changes the
// rune of a Char event.
type Key struct {
	Code  Code
	Rune  rune
	Ctrl  bool
	Alt   bool
	Shift bool
}

// FromRune builds a plain character key, folding in Ctrl/Alt as a convenience
// for callers constructing keys from a platform's raw byte stream (for
// example a terminal delivers Ctrl-W as the single byte 0x17).
func FromRune(r rune, ctrl, alt bool) Key {
	return Key{Code: Char, Rune: r, Ctrl: ctrl, Alt: alt}
}

// Special builds a non-character key.
func Special(c Code, ctrl, alt, shift bool) Key {
	return Key{Code: c, Ctrl: ctrl, Alt: alt, Shift: shift}
}

var codeNames = map[Code]string{
	Enter:     "enter",
	Escape:    "esc",
	Backspace: "backspace",
	Delete:    "delete",
	Tab:       "tab",
	Up:        "up",
	Down:      "down",
	Left:      "left",
	Right:     "right",
	Home:      "home",
	End:       "end",
	PageUp:    "pageup",
	PageDown:  "pagedown",
}

var namesToCode = func() map[string]Code {
	m := make(map[string]Code, len(codeNames))
	for c, n := range codeNames {
		m[n] = c
	}
	return m
}()

// String renders the canonical printable form of a key: a bare rune for an
// unmodified Char, or a `<mods-name>` form otherwise. This is the form
// macro registers store and ParseKeys reads back.
func (k Key) String() string {
	if k.Code == Char && !k.Ctrl && !k.Alt {
		return string(k.Rune)
	}

	var mods strings.Builder
	if k.Ctrl {
		mods.WriteByte('c')
		mods.WriteByte('-')
	}
	if k.Alt {
		mods.WriteByte('a')
		mods.WriteByte('-')
	}
	if k.Shift && k.Code != Char {
		mods.WriteByte('s')
		mods.WriteByte('-')
	}

	var name string
	if k.Code == Char {
		name = string(k.Rune)
	} else {
		name = codeNames[k.Code]
	}

	return "<" + mods.String() + name + ">"
}

// ParseKeys reparses a string previously produced by concatenating
// Key.String() results (the form macro registers are stored in) back into
// a key slice. It is used both to load a keymap configuration's
// replacement sequence and to replay a recorded macro.
func ParseKeys(s string) ([]Key, error) {
	var keys []Key
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		if r != '<' {
			keys = append(keys, Key{Code: Char, Rune: r})
			i++
			continue
		}

		end := -1
		for j := i + 1; j < len(runes); j++ {
			if runes[j] == '>' {
				end = j
				break
			}
		}
		if end < 0 {
			return nil, fmt.Errorf("key: unterminated %q in %q", "<", s)
		}

		k, err := parseBracketed(string(runes[i+1 : end]))
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
		i = end + 1
	}
	return keys, nil
}

func parseBracketed(body string) (Key, error) {
	parts := strings.Split(body, "-")
	if len(parts) == 0 {
		return Key{}, fmt.Errorf("key: empty <> in key spec")
	}

	var k Key
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(p) {
		case "c":
			k.Ctrl = true
		case "a":
			k.Alt = true
		case "s":
			k.Shift = true
		default:
			return Key{}, fmt.Errorf("key: unknown modifier %q", p)
		}
	}

	name := parts[len(parts)-1]
	if c, ok := namesToCode[strings.ToLower(name)]; ok {
		k.Code = c
		return k, nil
	}
	if r := []rune(name); len(r) == 1 {
		k.Code = Char
		k.Rune = r[0]
		return k, nil
	}
	return Key{}, fmt.Errorf("key: unknown key name %q", name)
}

// IsPrintable reports whether the key should append itself as text in an
// editing context (a Char with no Ctrl/Alt held).
func (k Key) IsPrintable() bool {
	return k.Code == Char && !k.Ctrl && !k.Alt && unicode.IsPrint(k.Rune)
}
