// Package config loads the ambient TOML settings file: tab width, idle
// timeout, LSP auto-start recipes and log level. This is distinct from
// the line-based, "#"-comment command-sourcing format internal/command
// evaluates via source/try-source — two formats for two purposes.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// EditorSettings holds the editor-wide knobs spec.md leaves
// configurable.
type EditorSettings struct {
	TabWidth    int `toml:"tab_width"`
	IdleTimeoutMS int `toml:"idle_timeout_ms"`
}

// LoggingSettings configures the hclog sink used by internal/dispatcher.
type LoggingSettings struct {
	Level string `toml:"level"`
}

// Recipe declaratively maps a path glob to a language-server spawn
// configuration, per spec.md's "Recipe (LSP)" glossary entry.
type Recipe struct {
	Glob          string   `toml:"glob"`
	Command       []string `toml:"command"`
	Env           []string `toml:"env"`
	Root          string   `toml:"root"`
	LogBufferName string   `toml:"log_buffer_name"`
}

// Settings is the full parsed configuration file.
type Settings struct {
	Editor  EditorSettings `toml:"editor"`
	Logging LoggingSettings `toml:"logging"`
	LSP     []Recipe        `toml:"lsp"`
}

// Default returns the settings used when no config file is present.
func Default() *Settings {
	return &Settings{
		Editor:  EditorSettings{TabWidth: 4, IdleTimeoutMS: 1000},
		Logging: LoggingSettings{Level: "info"},
	}
}

// Load reads and parses a TOML settings file at path. A missing file is
// not an error: Default() is returned unchanged, matching the teacher's
// loader.TOMLLoader.Load ("file doesn't exist, not an error") idiom.
func Load(path string) (*Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return s, nil
}
