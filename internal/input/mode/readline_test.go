package mode

import (
	"testing"

	"github.com/dshills/pepperd/internal/input/key"
)

func pollAll(r *ReadLine, s string) {
	for _, c := range s {
		r.Poll(key.FromRune(c, false, false), "")
	}
}

func TestReadLineAppendsPrintable(t *testing.T) {
	var r ReadLine
	pollAll(&r, "hello")
	if r.Input() != "hello" {
		t.Fatalf("Input() = %q, want %q", r.Input(), "hello")
	}
}

func TestReadLineBackspaceRemovesOneCluster(t *testing.T) {
	var r ReadLine
	pollAll(&r, "ab")
	r.Poll(key.Special(key.Backspace, false, false, false), "")
	if r.Input() != "a" {
		t.Fatalf("Input() = %q, want %q", r.Input(), "a")
	}
}

func TestReadLineCtrlWDeletesPreviousWord(t *testing.T) {
	var r ReadLine
	pollAll(&r, "foo bar")
	r.Poll(key.Key{Code: key.Char, Rune: 'w', Ctrl: true}, "")
	if r.Input() != "foo " {
		t.Fatalf("Input() = %q, want %q", r.Input(), "foo ")
	}
}

func TestReadLineCtrlUClears(t *testing.T) {
	var r ReadLine
	pollAll(&r, "anything")
	r.Poll(key.Key{Code: key.Char, Rune: 'u', Ctrl: true}, "")
	if r.Input() != "" {
		t.Fatalf("Input() = %q, want empty", r.Input())
	}
}

func TestReadLineCtrlYPastesUnnamedRegister(t *testing.T) {
	var r ReadLine
	poll := r.Poll(key.Key{Code: key.Char, Rune: 'y', Ctrl: true}, "pasted")
	if poll != ReadLinePending {
		t.Fatalf("Poll = %v, want Pending", poll)
	}
	if r.Input() != "pasted" {
		t.Fatalf("Input() = %q, want %q", r.Input(), "pasted")
	}
}

func TestReadLineEscapeCancels(t *testing.T) {
	var r ReadLine
	if poll := r.Poll(key.Special(key.Escape, false, false, false), ""); poll != ReadLineCanceled {
		t.Fatalf("Poll(esc) = %v, want Canceled", poll)
	}
}

func TestReadLineEnterSubmits(t *testing.T) {
	var r ReadLine
	if poll := r.Poll(key.Special(key.Enter, false, false, false), ""); poll != ReadLineSubmitted {
		t.Fatalf("Poll(enter) = %v, want Submitted", poll)
	}
}
