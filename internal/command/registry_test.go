package command

import "testing"

func TestRegisterFindsByNameAndAlias(t *testing.T) {
	r := NewRegistry()
	r.Register(&Command{Name: "quit", Aliases: []string{"q"}})

	if _, ok := r.Find("quit"); !ok {
		t.Fatal("Find(quit) missing")
	}
	if _, ok := r.Find("q"); !ok {
		t.Fatal("Find(q) alias missing")
	}
	if _, ok := r.Find("nope"); ok {
		t.Fatal("Find(nope) should miss")
	}
}

func TestAllReturnsEachCommandOnce(t *testing.T) {
	r := NewRegistry()
	r.Register(&Command{Name: "quit", Aliases: []string{"q"}})
	r.Register(&Command{Name: "write", Aliases: []string{"w"}})

	if got := len(r.All()); got != 2 {
		t.Fatalf("All() len = %d, want 2", got)
	}
}
