package mode

import (
	"strings"

	"github.com/dshills/pepperd/internal/input/key"
	"github.com/dshills/pepperd/internal/input/picker"
)

// CommandHistory is implemented by command runners that keep a navigable
// history ring. Ctrl-N/Ctrl-P walk it before the user has typed anything;
// once typing starts, the same keys drive completion cycling instead.
type CommandHistory interface {
	HistoryLen() int
	HistoryEntry(i int) string
}

// CommandCompleter is implemented by command runners that can suggest
// completions for the token currently being typed. offset is the byte
// position within line where that token starts.
type CommandCompleter interface {
	Complete(ctx *Context, line string) (offset int, candidates []string)
}

// CommandImpl drives the ReadLine as a ":"-prompted command line.
// Submission hands the line to ctx.Commands (the command evaluator, C6);
// a nil Commands is a valid no-op so mode can be exercised standalone.
type CommandImpl struct {
	typing            bool
	historyIdx        int
	completionOffset  int
	completionStarted bool
}

func (c *CommandImpl) Tag() Tag { return Command }

func (c *CommandImpl) Enter(ctx *Context) {
	ctx.ReadLine.SetPrompt(":")
	ctx.ReadLine.Clear()
	ctx.Picker.Reset()
	c.typing = false
	c.completionOffset = 0
	c.completionStarted = false
	if h, ok := ctx.Commands.(CommandHistory); ok {
		c.historyIdx = h.HistoryLen()
	} else {
		c.historyIdx = 0
	}
}

func (c *CommandImpl) Exit(ctx *Context) {
	ctx.ReadLine.Clear()
	ctx.Picker.Reset()
	// A submitted command may have edited the buffer (e.g. a
	// substitution); commit that group at the mode boundary the same
	// way Insert/Select do, rather than leaving it open to merge with
	// whatever edits come next.
	ctx.Buffer.History().CommitEdits()
}

func (c *CommandImpl) HandleKeys(ctx *Context, keys []key.Key) (Outcome, int) {
	k := keys[0]
	switch ctx.ReadLine.Poll(k, ctx.unnamedGet()) {
	case ReadLineCanceled:
		return outcomeEnter(Normal), 1
	case ReadLineSubmitted:
		line := ctx.ReadLine.Input()
		if ctx.Commands == nil {
			return outcomeEnter(Normal), 1
		}
		out := ctx.Commands.Run(ctx, line)
		if out.Signal == Quit || out.Signal == QuitAll {
			return out, 1
		}
		return Outcome{Signal: EnterMode, Next: Normal, Message: out.Message}, 1
	}

	hist, hasHistory := ctx.Commands.(CommandHistory)
	completer, hasCompleter := ctx.Commands.(CommandCompleter)

	switch {
	case !c.typing && hasHistory && k.Ctrl && (k.Rune == 'n' || k.Rune == 'j'):
		c.historyMove(ctx, hist, 1)
	case !c.typing && hasHistory && k.Ctrl && (k.Rune == 'p' || k.Rune == 'k'):
		c.historyMove(ctx, hist, -1)
	case c.typing && hasCompleter && k.Ctrl && (k.Rune == 'n' || k.Rune == 'j'):
		c.applyCompletion(ctx, 1)
	case c.typing && hasCompleter && k.Ctrl && (k.Rune == 'p' || k.Rune == 'k'):
		c.applyCompletion(ctx, -1)
	default:
		if k.IsPrintable() {
			c.typing = true
		}
		if strings.TrimSpace(ctx.ReadLine.Input()) == "" {
			c.typing = false
		}
		if hasCompleter {
			c.refreshCompletion(ctx, completer)
		}
	}
	return outcomePending(), 1
}

func (c *CommandImpl) historyMove(ctx *Context, hist CommandHistory, delta int) {
	n := hist.HistoryLen()
	if n == 0 {
		return
	}
	c.historyIdx += delta
	if c.historyIdx < 0 {
		c.historyIdx = 0
	}
	if c.historyIdx > n-1 {
		c.historyIdx = n - 1
	}
	ctx.ReadLine.SetInput(hist.HistoryEntry(c.historyIdx))
}

func (c *CommandImpl) refreshCompletion(ctx *Context, completer CommandCompleter) {
	line := ctx.ReadLine.Input()
	offset, candidates := completer.Complete(ctx, line)
	c.completionOffset = offset
	c.completionStarted = false
	ctx.Picker.Reset()
	for _, cand := range candidates {
		ctx.Picker.Add(picker.NewCustomEntry(cand, ""))
	}
	pattern := ""
	if offset <= len(line) {
		pattern = line[offset:]
	}
	ctx.Picker.Filter(pattern, nil)
}

func (c *CommandImpl) applyCompletion(ctx *Context, delta int) {
	if c.completionStarted {
		ctx.Picker.MoveCursor(delta)
	}
	c.completionStarted = true
	entry, ok := ctx.Picker.CurrentEntry()
	if !ok {
		return
	}
	line := ctx.ReadLine.Input()
	if c.completionOffset > len(line) {
		return
	}
	ctx.ReadLine.SetInput(line[:c.completionOffset] + entry.Text)
}
