package key

import (
	"reflect"
	"testing"
)

func TestStringRoundTrip(t *testing.T) {
	cases := []Key{
		FromRune('a', false, false),
		FromRune('w', true, false),
		Special(Escape, false, false, false),
		Special(Enter, false, false, false),
		Special(PageUp, true, false, false),
	}
	for _, k := range cases {
		s := k.String()
		got, err := ParseKeys(s)
		if err != nil {
			t.Fatalf("ParseKeys(%q) error: %v", s, err)
		}
		if len(got) != 1 || got[0] != k {
			t.Fatalf("round trip %v -> %q -> %v", k, s, got)
		}
	}
}

func TestParseKeysMixedSequence(t *testing.T) {
	got, err := ParseKeys("ab<c-w><esc>")
	if err != nil {
		t.Fatal(err)
	}
	want := []Key{
		FromRune('a', false, false),
		FromRune('b', false, false),
		FromRune('w', true, false),
		Special(Escape, false, false, false),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseKeys = %v, want %v", got, want)
	}
}

func TestParseKeysUnterminated(t *testing.T) {
	if _, err := ParseKeys("<c-w"); err == nil {
		t.Fatal("expected error for unterminated bracket")
	}
}

func TestIsPrintable(t *testing.T) {
	if !FromRune('x', false, false).IsPrintable() {
		t.Fatal("plain rune should be printable")
	}
	if FromRune('x', true, false).IsPrintable() {
		t.Fatal("ctrl-modified rune should not be printable")
	}
	if Special(Enter, false, false, false).IsPrintable() {
		t.Fatal("special key should not be printable")
	}
}
