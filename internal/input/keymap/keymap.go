// Package keymap implements the longest-prefix key-sequence remapper used
// by the mode state machine: a buffered key sequence is matched against a
// per-mode binding table and resolves to None (emit as-is), Prefix (a
// binding could still complete with more keys) or ReplaceWith (substitute
// the matched prefix for its bound replacement).
//
// The shape follows the teacher's input/keymap Registry/Binding idiom,
// generalized from its priority-scored When/Category bindings down to the
// spec's plain longest-prefix table.
package keymap

import (
	"strings"

	"github.com/dshills/pepperd/internal/input/key"
)

// Result is the outcome of matching a buffered key sequence.
type Result int

const (
	// None means no binding matches any prefix of the buffer; the
	// caller should dispatch the buffered keys to the mode unmapped.
	None Result = iota
	// Prefix means the whole buffer is a strict prefix of at least one
	// binding; the caller should hold the buffer and wait for more keys.
	Prefix
	// ReplaceWith means a binding matched the first MatchLen keys of the
	// buffer; substitute those keys with Replacement and continue
	// matching from the remainder.
	ReplaceWith
)

// Keymap is a single mode's binding table.
type Keymap struct {
	bindings map[string][]key.Key
	prefixes map[string]bool
}

// New returns an empty keymap.
func New() *Keymap {
	return &Keymap{
		bindings: make(map[string][]key.Key),
		prefixes: make(map[string]bool),
	}
}

// Bind registers from as a trigger sequence that expands to to.
func (km *Keymap) Bind(from, to []key.Key) {
	km.bindings[encode(from)] = to
	for n := 1; n < len(from); n++ {
		km.prefixes[encode(from[:n])] = true
	}
}

// Match finds the longest prefix of buffered that exactly matches a bound
// sequence. When one is found it returns ReplaceWith, the replacement keys
// and how many leading keys of buffered it consumed. Otherwise, if the
// full buffer could still extend into a binding, it returns Prefix; else
// None.
func (km *Keymap) Match(buffered []key.Key) (Result, []key.Key, int) {
	for n := len(buffered); n >= 1; n-- {
		if repl, ok := km.bindings[encode(buffered[:n])]; ok {
			return ReplaceWith, repl, n
		}
	}
	if len(buffered) > 0 && km.prefixes[encode(buffered)] {
		return Prefix, nil, 0
	}
	return None, nil, 0
}

func encode(keys []key.Key) string {
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k.String())
	}
	return b.String()
}
