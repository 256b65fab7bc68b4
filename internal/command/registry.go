package command

import "github.com/dshills/pepperd/internal/input/mode"

// Source names where a positional argument's completion candidates come
// from, per spec's closed set: Commands, Buffers, Files, Custom(list).
type Source int

const (
	SourceNone Source = iota
	SourceCommands
	SourceBuffers
	SourceFiles
	SourceCustom
)

// Completion is one positional argument's completion source. Custom
// only applies when Source is SourceCustom.
type Completion struct {
	Source Source
	Custom []string
}

// Args is a parsed, tokenized command invocation.
type Args struct {
	Name   string
	Forced bool
	Args   []string
}

// Handler executes one command invocation against the mode context.
type Handler func(ctx *mode.Context, args Args) (mode.Outcome, error)

// Command is a single named operation: a handler plus the metadata the
// command line's completion engine needs.
type Command struct {
	Name        string
	Aliases     []string
	Completions []Completion
	Handler     Handler
}

// Registry holds the closed set of commands known to one Evaluator.
type Registry struct {
	commands []*Command
	byName   map[string]*Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Command)}
}

// Register adds cmd under its name and every alias. A later registration
// of the same name or alias replaces the earlier one.
func (r *Registry) Register(cmd *Command) {
	r.commands = append(r.commands, cmd)
	r.byName[cmd.Name] = cmd
	for _, a := range cmd.Aliases {
		r.byName[a] = cmd
	}
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (*Command, bool) {
	cmd, ok := r.byName[name]
	return cmd, ok
}

// All returns every registered command once, in registration order
// (aliases are not repeated as separate entries).
func (r *Registry) All() []*Command {
	out := make([]*Command, len(r.commands))
	copy(out, r.commands)
	return out
}
