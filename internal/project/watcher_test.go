package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDeliversRecipesOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lsp.toml")
	if err := os.WriteFile(path, []byte("[[lsp]]\nglob = \"*.go\"\ncommand = [\"gopls\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[[lsp]]\nglob = \"*.rs\"\ncommand = [\"rust-analyzer\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case recipes := <-w.Changes():
		if len(recipes) != 1 || recipes[0].Glob != "*.rs" {
			t.Fatalf("got %+v", recipes)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestNewWatcherErrorsOnMissingDirectory(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "nope", "lsp.toml")); err == nil {
		t.Fatal("expected an error for a nonexistent directory")
	}
}
