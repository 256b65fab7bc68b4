package editor

import (
	"fmt"

	"github.com/dshills/pepperd/internal/command"
	"github.com/dshills/pepperd/internal/engine/buffer"
	"github.com/dshills/pepperd/internal/engine/bufpos"
	"github.com/dshills/pepperd/internal/input/mode"
	"github.com/dshills/pepperd/internal/lsp"
)

const referencesContextLines = 2

// registerLSPCommands adds the language-server-backed command set on
// top of command.RegisterBuiltins: definition/references/rename/
// format/code-action/document-symbols/workspace-symbols, each resolved
// against the current buffer's recipe-matched client. Commands whose
// buffer has no matching recipe, or whose client isn't running yet,
// report a plain error the same way writeHandler/editHandler do,
// rather than silently no-opping.
func registerLSPCommands(e *command.Evaluator, s *State) {
	e.Registry.Register(&command.Command{Name: "definition", Aliases: []string{"def"}, Handler: s.cmdDefinition})
	e.Registry.Register(&command.Command{Name: "references", Aliases: []string{"refs"}, Handler: s.cmdReferences})
	e.Registry.Register(&command.Command{Name: "rename", Handler: s.cmdRename})
	e.Registry.Register(&command.Command{Name: "format", Aliases: []string{"fmt"}, Handler: s.cmdFormat})
	e.Registry.Register(&command.Command{Name: "code-action", Aliases: []string{"ca"}, Handler: s.cmdCodeAction})
	e.Registry.Register(&command.Command{Name: "document-symbols", Aliases: []string{"symbols"}, Handler: s.cmdDocumentSymbols})
	e.Registry.Register(&command.Command{Name: "workspace-symbols", Aliases: []string{"wsymbols"}, Handler: s.cmdWorkspaceSymbols})
}

// clientForActiveBuffer resolves ctx.Buffer's path to its recipe-matched
// running client, plus the position of the active client's primary
// cursor (the anchor every positional request is built from).
func (s *State) clientForActiveBuffer(ctx *mode.Context) (*lsp.Client, buffer.Handle, bufpos.Position, error) {
	if ctx.Buffer == nil || ctx.Buffer.Path() == "" {
		return nil, 0, bufpos.Position{}, fmt.Errorf("no file open in this buffer")
	}
	c, ok := s.lspMgr.ClientForPath(ctx.Buffer.Path())
	if !ok {
		return nil, 0, bufpos.Position{}, fmt.Errorf("no language server running for %s", ctx.Buffer.Path())
	}

	var pos bufpos.Position
	if cs, ok := s.clients[s.activeClient]; ok {
		pos = cs.view.Cursors().Primary().Position
	}
	return c, ctx.Buffer.Handle(), pos, nil
}

func (s *State) cmdDefinition(ctx *mode.Context, args command.Args) (mode.Outcome, error) {
	c, h, pos, err := s.clientForActiveBuffer(ctx)
	if err != nil {
		return mode.Outcome{}, err
	}
	if err := c.RequestDefinition(h, pos.Line, pos.Column); err != nil {
		return mode.Outcome{}, err
	}
	return mode.OutcomeMessage("definition: requested"), nil
}

func (s *State) cmdReferences(ctx *mode.Context, args command.Args) (mode.Outcome, error) {
	c, h, pos, err := s.clientForActiveBuffer(ctx)
	if err != nil {
		return mode.Outcome{}, err
	}
	if err := c.RequestReferences(h, pos.Line, pos.Column, referencesContextLines, false); err != nil {
		return mode.Outcome{}, err
	}
	return mode.OutcomeMessage("references: requested"), nil
}

func (s *State) cmdRename(ctx *mode.Context, args command.Args) (mode.Outcome, error) {
	if len(args.Args) == 0 {
		return mode.Outcome{}, fmt.Errorf("rename: missing new name")
	}
	c, h, pos, err := s.clientForActiveBuffer(ctx)
	if err != nil {
		return mode.Outcome{}, err
	}
	if err := c.RequestRename(h, pos.Line, pos.Column, args.Args[0]); err != nil {
		return mode.Outcome{}, err
	}
	return mode.OutcomeMessage("rename: requested"), nil
}

func (s *State) cmdFormat(ctx *mode.Context, args command.Args) (mode.Outcome, error) {
	c, h, _, err := s.clientForActiveBuffer(ctx)
	if err != nil {
		return mode.Outcome{}, err
	}
	if err := c.RequestFormatting(h, s.tabWidth, true); err != nil {
		return mode.Outcome{}, err
	}
	return mode.OutcomeMessage("format: requested"), nil
}

func (s *State) cmdCodeAction(ctx *mode.Context, args command.Args) (mode.Outcome, error) {
	c, h, _, err := s.clientForActiveBuffer(ctx)
	if err != nil {
		return mode.Outcome{}, err
	}
	r := ctx.View.Cursors().Primary().Range()
	if err := c.RequestCodeAction(h, r.From.Line, r.From.Column, r.To.Line, r.To.Column); err != nil {
		return mode.Outcome{}, err
	}
	return mode.OutcomeMessage("code-action: requested"), nil
}

func (s *State) cmdDocumentSymbols(ctx *mode.Context, args command.Args) (mode.Outcome, error) {
	c, h, _, err := s.clientForActiveBuffer(ctx)
	if err != nil {
		return mode.Outcome{}, err
	}
	if err := c.RequestDocumentSymbols(h, uint8(s.activeClient)); err != nil {
		return mode.Outcome{}, err
	}
	return mode.OutcomeMessage("document-symbols: requested"), nil
}

func (s *State) cmdWorkspaceSymbols(ctx *mode.Context, args command.Args) (mode.Outcome, error) {
	c, h, _, err := s.clientForActiveBuffer(ctx)
	if err != nil {
		return mode.Outcome{}, err
	}
	query := ""
	if len(args.Args) > 0 {
		query = args.Args[0]
	}
	if err := c.RequestWorkspaceSymbols(h, query); err != nil {
		return mode.Outcome{}, err
	}
	return mode.OutcomeMessage("workspace-symbols: requested"), nil
}
