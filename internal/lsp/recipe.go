package lsp

import (
	"github.com/dshills/pepperd/internal/config"
	"github.com/dshills/pepperd/internal/glob"
	"github.com/dshills/pepperd/internal/platform"
)

// recipeState is one config.Recipe plus the auto-start bookkeeping
// spec's glossary names: "Recipe (LSP): declarative rule mapping a path
// glob to a language-server spawn configuration" with a
// "current-handle" field tracking the one running process (if any).
type recipeState struct {
	cfg     config.Recipe
	pattern *glob.Glob

	running bool
	handle  platform.Handle
	client  *Client
}

// newRecipeState compiles cfg's glob once at load time; an invalid
// glob disables the recipe rather than failing config load entirely —
// config.Load has already succeeded by the time recipes are compiled,
// so a malformed "lsp" entry shouldn't take the whole editor down.
func newRecipeState(cfg config.Recipe) *recipeState {
	g, err := glob.Compile([]byte(cfg.Glob))
	if err != nil {
		return &recipeState{cfg: cfg}
	}
	return &recipeState{cfg: cfg, pattern: g}
}

// matches reports whether path should trigger this recipe.
func (r *recipeState) matches(path string) bool {
	return r.pattern != nil && r.pattern.MatchesString(path)
}

// spawnTag is the SpawnProcess request's Tag: unique enough to
// correlate the resulting Process handle (via the platform.Event.Tag
// echo) back to this recipe without the Manager needing a second
// lookup table keyed by command line.
func (r *recipeState) spawnTag() string {
	if len(r.cfg.Command) == 0 {
		return r.cfg.Glob
	}
	return r.cfg.Glob + ":" + r.cfg.Command[0]
}
