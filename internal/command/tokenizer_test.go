package command

import (
	"reflect"
	"testing"
)

func TestTokenizeWhitespace(t *testing.T) {
	got := Tokenize("write  foo.txt\tbar")
	want := []string{"write", "foo.txt", "bar"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenizeSingleQuotedLiteral(t *testing.T) {
	got := Tokenize("echo 'hello world' done")
	want := []string{"echo", "hello world", "done"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
}

func TestParseCommandNameForced(t *testing.T) {
	name, forced := ParseCommandName("quit!")
	if name != "quit" || !forced {
		t.Fatalf("ParseCommandName(quit!) = %q,%v", name, forced)
	}
}

func TestParseCommandNameNotForced(t *testing.T) {
	name, forced := ParseCommandName("quit")
	if name != "quit" || forced {
		t.Fatalf("ParseCommandName(quit) = %q,%v", name, forced)
	}
}

func TestTokenizeEmpty(t *testing.T) {
	if got := Tokenize("   "); got != nil {
		t.Fatalf("Tokenize(blank) = %v, want nil", got)
	}
}
