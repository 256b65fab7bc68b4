package session

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	want := Snapshot{Buffers: []Entry{
		{Path: "main.go", Line: 12, Column: 4},
		{Path: "README.md", Line: 0, Column: 0},
	}}

	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Buffers) != len(want.Buffers) {
		t.Fatalf("got %d buffers, want %d", len(got.Buffers), len(want.Buffers))
	}
	for i := range want.Buffers {
		if got.Buffers[i] != want.Buffers[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got.Buffers[i], want.Buffers[i])
		}
	}
}

func TestLoadMissingFileReturnsEmptySnapshot(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Buffers) != 0 {
		t.Fatalf("got %d buffers, want 0", len(got.Buffers))
	}
}
