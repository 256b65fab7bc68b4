// Package macro records and replays keyboard macros into named registers,
// following the teacher's input/macro register-naming convention (a-z,
// 0-9, with an uppercase register name meaning "append to the lowercase
// register of the same letter") generalized to the spec's model: a
// register holds the printable-key-notation text of the keys recorded
// into it, and ExecuteMacro reparses that text back into keys so playback
// re-enters the same key-queue loop instead of a separate replay path.
package macro

import (
	"fmt"

	"github.com/dshills/pepperd/internal/input/key"
)

// IsValidRegister reports whether r names a register: a-z or 0-9.
func IsValidRegister(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// IsAppendRegister reports whether r is the uppercase form of a letter
// register, meaning "append" rather than "overwrite" when recording
// starts.
func IsAppendRegister(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// NormalizeRegister folds an append-register name to its lowercase
// storage key; 0 is returned for anything that is neither a valid nor an
// append register.
func NormalizeRegister(r rune) rune {
	if IsValidRegister(r) {
		return r
	}
	if IsAppendRegister(r) {
		return r - 'A' + 'a'
	}
	return 0
}

// Registers holds the printable-text contents of every macro register.
type Registers struct {
	contents  map[rune]string
	recording rune
}

// New returns an empty register bank.
func New() *Registers {
	return &Registers{contents: make(map[rune]string)}
}

// StartRecording designates reg as the active recording register. If reg
// is an uppercase append form, the existing lowercase register's text is
// kept and new keys are appended to it; otherwise recording starts from
// an empty register.
func (r *Registers) StartRecording(reg rune) error {
	norm := NormalizeRegister(reg)
	if norm == 0 {
		return fmt.Errorf("macro: invalid register %q", reg)
	}
	if !IsAppendRegister(reg) {
		r.contents[norm] = ""
	}
	r.recording = norm
	return nil
}

// IsRecording reports whether a register is currently designated for
// recording, and which one.
func (r *Registers) IsRecording() (rune, bool) {
	if r.recording == 0 {
		return 0, false
	}
	return r.recording, true
}

// StopRecording clears the recording designation. It does not discard any
// recorded text.
func (r *Registers) StopRecording() {
	r.recording = 0
}

// Record appends k's printable form to the active recording register, if
// any. Per spec, every key dispatched into a mode handler is appended
// here regardless of which mode consumed it.
func (r *Registers) Record(k key.Key) {
	if r.recording == 0 {
		return
	}
	r.contents[r.recording] += k.String()
}

// Get returns a register's recorded text.
func (r *Registers) Get(reg rune) (string, bool) {
	norm := NormalizeRegister(reg)
	s, ok := r.contents[norm]
	return s, ok
}

// Set overwrites a register's text directly. Names that are neither a
// valid nor an append register are ignored.
func (r *Registers) Set(reg rune, text string) {
	norm := NormalizeRegister(reg)
	if norm == 0 {
		return
	}
	r.contents[norm] = text
}

// Replay reparses register reg's text into a key slice for
// ExecuteMacro(reg) to feed back into the key-queue loop. An empty or
// unset register replays as no keys.
func (r *Registers) Replay(reg rune) ([]key.Key, error) {
	text, ok := r.Get(reg)
	if !ok || text == "" {
		return nil, nil
	}
	return key.ParseKeys(text)
}
