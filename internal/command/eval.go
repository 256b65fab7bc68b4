// Package command implements the command line evaluated from Command
// mode: tokenizing, a registry of named commands with completions, and
// source/try-source file evaluation.
package command

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/pepperd/internal/input/mode"
)

// Host supplies the multi-buffer operations a command evaluator needs
// beyond the single buffer/view pair carried by mode.Context (listing
// open buffers for the "Buffers" completion source). internal/editor
// implements Host once it ties multiple
// buffers together; an Evaluator with a nil Host still runs every
// command that only touches the current buffer.
type Host interface {
	BufferPaths() []string
}

// Evaluator runs command lines against a Registry. It satisfies
// mode.CommandRunner, mode.CommandHistory (Ctrl-N/Ctrl-P history
// navigation before typing starts) and mode.CommandCompleter
// (Ctrl-N/Ctrl-P completion cycling once typing has started), grounded
// in original_source/src/mode/command.rs's CommandManager::eval,
// ReadCommandState history/completion split.
type Evaluator struct {
	Registry *Registry
	Host     Host

	history []string
}

// NewEvaluator returns an Evaluator backed by r. RegisterBuiltins
// populates r with quit/write/edit/source commands; callers add their
// own on top.
func NewEvaluator(r *Registry) *Evaluator {
	return &Evaluator{Registry: r}
}

// HistoryLen implements mode.CommandHistory.
func (e *Evaluator) HistoryLen() int { return len(e.history) }

// HistoryEntry implements mode.CommandHistory.
func (e *Evaluator) HistoryEntry(i int) string {
	if i < 0 || i >= len(e.history) {
		return ""
	}
	return e.history[i]
}

// Run tokenizes line, records it to history, and evaluates it. Unknown
// commands and handler errors both surface as a status message (spec:
// "errors surface through the editor status bar"); only a handler's
// Quit/QuitAll signal propagates to the mode machine.
func (e *Evaluator) Run(ctx *mode.Context, line string) mode.Outcome {
	if strings.TrimSpace(line) != "" {
		e.history = append(e.history, line)
	}
	out, err := e.eval(ctx, line)
	if err != nil {
		return mode.OutcomeMessage(err.Error())
	}
	return out
}

func (e *Evaluator) eval(ctx *mode.Context, line string) (mode.Outcome, error) {
	toks := Tokenize(line)
	if len(toks) == 0 {
		return mode.Outcome{}, nil
	}
	name, forced := ParseCommandName(toks[0])
	cmd, ok := e.Registry.Find(name)
	if !ok {
		return mode.Outcome{}, fmt.Errorf("not a command: %s", name)
	}
	return cmd.Handler(ctx, Args{Name: name, Forced: forced, Args: toks[1:]})
}

// Complete implements mode.CommandCompleter: it resolves which
// positional argument is being typed, looks up that argument's
// completion source from the already-typed command name, and returns
// literal candidates plus the byte offset the candidate replaces from.
func (e *Evaluator) Complete(ctx *mode.Context, line string) (int, []string) {
	toks := tokenize(line)
	trailingSpace := strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t")

	if len(toks) == 0 {
		return len(line), e.commandNames()
	}

	argIndex := len(toks) - 1
	offset := toks[len(toks)-1].start
	if trailingSpace {
		argIndex = len(toks)
		offset = len(line)
	}

	if argIndex == 0 {
		return offset, e.commandNames()
	}

	name, _ := ParseCommandName(toks[0].text)
	cmd, ok := e.Registry.Find(name)
	if !ok {
		return offset, nil
	}
	ci := argIndex - 1
	if ci >= len(cmd.Completions) {
		return offset, nil
	}

	comp := cmd.Completions[ci]
	switch comp.Source {
	case SourceCommands:
		return offset, e.commandNames()
	case SourceBuffers:
		if e.Host != nil {
			return offset, e.Host.BufferPaths()
		}
		if ctx != nil && ctx.Buffer != nil && ctx.Buffer.Path() != "" {
			return offset, []string{ctx.Buffer.Path()}
		}
		return offset, nil
	case SourceFiles:
		pattern := ""
		if offset <= len(line) {
			pattern = line[offset:]
		}
		return offset, listFiles(pattern)
	case SourceCustom:
		return offset, comp.Custom
	default:
		return offset, nil
	}
}

func (e *Evaluator) commandNames() []string {
	cmds := e.Registry.All()
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
		names = append(names, c.Aliases...)
	}
	return names
}

// listFiles lists directory entries under pattern's directory portion,
// mirroring original_source's set_files_in_path_as_entries.
func listFiles(pattern string) []string {
	dir, _ := filepath.Split(pattern)
	listDir := dir
	if listDir == "" {
		listDir = "."
	}
	entries, err := os.ReadDir(listDir)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, ent := range entries {
		out = append(out, dir+ent.Name())
	}
	return out
}
