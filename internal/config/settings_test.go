package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Editor.TabWidth != 4 {
		t.Fatalf("TabWidth = %d, want 4", s.Editor.TabWidth)
	}
}

func TestLoadParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	body := `
[editor]
tab_width = 2
idle_timeout_ms = 250

[logging]
level = "debug"

[[lsp]]
glob = "*.go"
command = ["gopls"]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Editor.TabWidth != 2 || s.Editor.IdleTimeoutMS != 250 {
		t.Fatalf("editor settings = %+v", s.Editor)
	}
	if s.Logging.Level != "debug" {
		t.Fatalf("Logging.Level = %q, want debug", s.Logging.Level)
	}
	if len(s.LSP) != 1 || s.LSP[0].Glob != "*.go" || s.LSP[0].Command[0] != "gopls" {
		t.Fatalf("LSP recipes = %+v", s.LSP)
	}
}

func TestLoadInvalidTOMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("not = [valid"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}
