package picker

import "testing"

func TestFilterOrdersByScoreDescending(t *testing.T) {
	p := New()
	p.Add(NewCustomEntry("foobar", ""))
	p.Add(NewCustomEntry("foo", ""))
	p.Add(NewCustomEntry("zzz", ""))

	p.Filter("foo", nil)
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
	first, ok := p.EntryAt(0)
	if !ok || first.Text != "foo" {
		t.Fatalf("EntryAt(0) = %+v, want exact-prefix entry first", first)
	}
}

func TestMoveCursorClampsWithoutWrap(t *testing.T) {
	p := New()
	p.Add(NewCustomEntry("a", ""))
	p.Add(NewCustomEntry("b", ""))
	p.Filter("", nil)

	p.MoveCursor(-5)
	if p.Cursor() != 0 {
		t.Fatalf("Cursor() = %d, want 0 (clamped)", p.Cursor())
	}
	p.MoveCursor(5)
	if p.Cursor() != 1 {
		t.Fatalf("Cursor() = %d, want 1 (clamped)", p.Cursor())
	}
}

func TestPageUpDownMovesByHalfHeight(t *testing.T) {
	p := New()
	for i := 0; i < 20; i++ {
		p.Add(NewCustomEntry("e", ""))
	}
	p.Filter("", nil)

	p.PageDown(10)
	if p.Cursor() != 5 {
		t.Fatalf("Cursor() after PageDown(10) = %d, want 5", p.Cursor())
	}
	p.PageUp(10)
	if p.Cursor() != 0 {
		t.Fatalf("Cursor() after PageUp(10) = %d, want 0", p.Cursor())
	}
}

func TestBuiltinEntryUsesLookup(t *testing.T) {
	p := New()
	p.Add(NewBuiltinEntry(0))
	p.Add(NewBuiltinEntry(1))

	words := []string{"alpha", "beta"}
	p.Filter("bet", func(i int) string { return words[i] })

	if p.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", p.Len())
	}
	e, _ := p.CurrentEntry()
	if e.WordIndex != 1 {
		t.Fatalf("CurrentEntry().WordIndex = %d, want 1", e.WordIndex)
	}
}

func TestCurrentEntryEmptyFilter(t *testing.T) {
	p := New()
	if _, ok := p.CurrentEntry(); ok {
		t.Fatal("expected no current entry on empty picker")
	}
}
