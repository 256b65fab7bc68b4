package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/dshills/pepperd/internal/engine/buffer"
	"github.com/dshills/pepperd/internal/input/mode"
)

// RegisterBuiltins adds the closed set of always-available commands:
// quit/quit-all (with forced "!" variants that discard unsaved changes),
// write/edit against the current buffer, and source/try-source, which
// evaluate a file line-by-line (blank lines and "#"-prefixed lines
// skipped), per spec.md 4.5.
func (e *Evaluator) RegisterBuiltins() {
	e.Registry.Register(&Command{
		Name:    "quit",
		Aliases: []string{"q"},
		Handler: quitHandler(mode.Quit, "quit"),
	})
	e.Registry.Register(&Command{
		Name:    "quit-all",
		Aliases: []string{"qa"},
		Handler: quitHandler(mode.QuitAll, "quit-all"),
	})
	e.Registry.Register(&Command{
		Name:        "write",
		Aliases:     []string{"w"},
		Completions: []Completion{{Source: SourceFiles}},
		Handler:     writeHandler,
	})
	e.Registry.Register(&Command{
		Name:        "edit",
		Aliases:     []string{"e"},
		Completions: []Completion{{Source: SourceFiles}},
		Handler:     editHandler,
	})
	e.Registry.Register(&Command{
		Name:        "source",
		Completions: []Completion{{Source: SourceFiles}},
		Handler:     e.sourceHandler(false),
	})
	e.Registry.Register(&Command{
		Name:        "try-source",
		Completions: []Completion{{Source: SourceFiles}},
		Handler:     e.sourceHandler(true),
	})
}

func quitHandler(signal mode.Signal, name string) Handler {
	return func(ctx *mode.Context, args Args) (mode.Outcome, error) {
		if !args.Forced && ctx.Buffer != nil && ctx.Buffer.NeedsSave() {
			return mode.Outcome{}, fmt.Errorf("%s: unsaved changes (use %s! to discard)", name, name)
		}
		return mode.Outcome{Signal: signal}, nil
	}
}

func writeHandler(ctx *mode.Context, args Args) (mode.Outcome, error) {
	path := ctx.Buffer.Path()
	if len(args.Args) > 0 {
		path = args.Args[0]
	}
	if path == "" {
		return mode.Outcome{}, fmt.Errorf("write: no file name")
	}
	if !ctx.Buffer.Capabilities().CanSave {
		return mode.Outcome{}, fmt.Errorf("write: buffer cannot be saved")
	}

	content := strings.Join(ctx.Buffer.Lines(), "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return mode.Outcome{}, fmt.Errorf("write %s: %w", path, err)
	}

	ctx.Buffer.SetPath(path)
	ctx.Buffer.ClearNeedsSave()
	if ctx.Sink != nil {
		ctx.Sink.Emit(buffer.Event{Kind: buffer.EventSave, Handle: ctx.Buffer.Handle(), Text: path})
	}
	return mode.OutcomeMessage(fmt.Sprintf("%q written", path)), nil
}

func editHandler(ctx *mode.Context, args Args) (mode.Outcome, error) {
	if len(args.Args) == 0 {
		return mode.Outcome{}, fmt.Errorf("edit: missing file name")
	}
	path := args.Args[0]

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return mode.Outcome{}, fmt.Errorf("edit %s: %w", path, err)
	}

	var lines []string
	if err == nil {
		lines = strings.Split(string(data), "\n")
	}
	ctx.Buffer.Load(path, lines, ctx.Sink, ctx.Words)
	return mode.OutcomeMessage(fmt.Sprintf("%q loaded", path)), nil
}

// sourceHandler evaluates path line-by-line. try suppresses a missing
// top-level file as a no-op rather than an error; errors from within
// the sourced file (unknown command, handler failure) always abort and
// surface as the outer source/try-source command's status message.
// Quit/QuitAll encountered mid-file propagates to the caller exactly
// like any other command's outcome.
func (e *Evaluator) sourceHandler(try bool) Handler {
	return func(ctx *mode.Context, args Args) (mode.Outcome, error) {
		if len(args.Args) == 0 {
			return mode.Outcome{}, fmt.Errorf("%s: missing file name", args.Name)
		}
		path := args.Args[0]

		data, err := os.ReadFile(path)
		if err != nil {
			if try && os.IsNotExist(err) {
				return mode.Outcome{}, nil
			}
			return mode.Outcome{}, fmt.Errorf("%s %s: %w", args.Name, path, err)
		}

		for _, raw := range strings.Split(string(data), "\n") {
			line := strings.TrimSpace(raw)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			out, evalErr := e.eval(ctx, line)
			if evalErr != nil {
				return mode.Outcome{}, fmt.Errorf("%s: %w", path, evalErr)
			}
			if out.Signal == mode.Quit || out.Signal == mode.QuitAll {
				return out, nil
			}
		}
		return mode.Outcome{}, nil
	}
}
