package keymap

import (
	"reflect"
	"testing"

	"github.com/dshills/pepperd/internal/input/key"
)

func keys(s string) []key.Key {
	ks, err := key.ParseKeys(s)
	if err != nil {
		panic(err)
	}
	return ks
}

func TestMatchNone(t *testing.T) {
	km := New()
	km.Bind(keys("gg"), keys("<home>"))

	res, _, n := km.Match(keys("x"))
	if res != None || n != 0 {
		t.Fatalf("Match(x) = %v,%d want None,0", res, n)
	}
}

func TestMatchPrefix(t *testing.T) {
	km := New()
	km.Bind(keys("gg"), keys("<home>"))

	res, _, _ := km.Match(keys("g"))
	if res != Prefix {
		t.Fatalf("Match(g) = %v want Prefix", res)
	}
}

func TestMatchReplaceWith(t *testing.T) {
	km := New()
	km.Bind(keys("gg"), keys("<home>"))

	res, repl, n := km.Match(keys("gg"))
	if res != ReplaceWith || n != 2 {
		t.Fatalf("Match(gg) = %v,%d want ReplaceWith,2", res, n)
	}
	if want := keys("<home>"); !reflect.DeepEqual(repl, want) {
		t.Fatalf("replacement = %v, want %v", repl, want)
	}
}

func TestMatchLongestPrefixWins(t *testing.T) {
	km := New()
	km.Bind(keys("d"), keys("<delete>"))
	km.Bind(keys("dd"), keys("<home><s-end><delete>"))

	res, _, n := km.Match(keys("dd"))
	if res != ReplaceWith || n != 2 {
		t.Fatalf("Match(dd) = %v,%d want ReplaceWith,2 (longest binding should win)", res, n)
	}
}

func TestMatchConsumesPrefixAndLeavesRemainder(t *testing.T) {
	km := New()
	km.Bind(keys("jk"), keys("<esc>"))

	buffered := keys("jkj")
	res, _, n := km.Match(buffered)
	if res != ReplaceWith || n != 2 {
		t.Fatalf("Match(jkj) = %v,%d want ReplaceWith,2", res, n)
	}
	if rest := buffered[n:]; !reflect.DeepEqual(rest, keys("j")) {
		t.Fatalf("remainder = %v, want [j]", rest)
	}
}
