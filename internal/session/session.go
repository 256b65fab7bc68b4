// Package session persists and restores the minimal state a restart
// shouldn't lose: which buffers were open and where each buffer's
// cursor was. Inferred from the original Rust pepper's buffer
// path/needs_save bookkeeping (spec.md doesn't name a session file,
// but nothing in its Non-goals excludes one either) and grounded on
// ehrlich-b-wingthing's use of gopkg.in/yaml.v3 for its own on-disk
// state, the pack's one YAML-writing example.
package session

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry records one open buffer's path and last known cursor position.
type Entry struct {
	Path   string `yaml:"path"`
	Line   int    `yaml:"line"`
	Column int    `yaml:"column"`
}

// Snapshot is the full on-disk session file shape.
type Snapshot struct {
	Buffers []Entry `yaml:"buffers"`
}

// Save writes snap to path as YAML, overwriting any existing file.
func Save(path string, snap Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("session: writing %s: %w", path, err)
	}
	return nil
}

// Load reads a session file at path. A missing file is not an error:
// it returns a zero-value Snapshot, the same "nothing to restore"
// convention internal/config.Load uses for a missing settings file.
func Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("session: reading %s: %w", path, err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("session: parsing %s: %w", path, err)
	}
	return snap, nil
}
