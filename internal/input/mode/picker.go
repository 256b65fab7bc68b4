package mode

import (
	"github.com/dshills/pepperd/internal/input/key"
	"github.com/dshills/pepperd/internal/input/picker"
)

const defaultPickerHeight = 20

// PickerImpl drives a picker.Picker through a ReadLine-backed filter box,
// grounded on original_source/src/mode/picker.rs: while the read-line
// poll is Pending, navigation keys (Ctrl-n/j/Down, Ctrl-p/k/Up,
// Ctrl-d/PageDown, Ctrl-u/PageUp, Ctrl-b/Home, Ctrl-e/End) move the
// picker cursor instead of editing the filter text; any other key
// re-filters the entry list against the read-line's current input.
// Submitting or canceling hands control to OnSubmit/OnCancel, the
// per-picker-use callbacks the original keys by a static function
// pointer rather than a captured closure (buffer-switch, LSP symbol
// jump, code-action selection each install their own).
type PickerImpl struct {
	Height   int
	OnSubmit func(ctx *Context, entry picker.Entry) Outcome
	OnCancel func(ctx *Context) Outcome
}

func (p *PickerImpl) Tag() Tag { return Picker }

func (p *PickerImpl) Enter(ctx *Context) {
	ctx.ReadLine.SetPrompt("")
	ctx.ReadLine.Clear()
	ctx.Picker.Filter("", ctx.WordAt)
}

func (p *PickerImpl) Exit(ctx *Context) {
	ctx.ReadLine.Clear()
	ctx.Picker.Reset()
}

func (p *PickerImpl) HandleKeys(ctx *Context, keys []key.Key) (Outcome, int) {
	k := keys[0]
	height := p.Height
	if height == 0 {
		height = defaultPickerHeight
	}

	// Ctrl-u would clear the read-line; in a picker it only pages up.
	if k.Ctrl && k.Rune == 'u' {
		ctx.Picker.PageUp(height)
		return outcomePending(), 1
	}

	poll := ctx.ReadLine.Poll(k, ctx.unnamedGet())
	if poll == ReadLinePending {
		switch {
		case k.Ctrl && (k.Rune == 'n' || k.Rune == 'j'), k.Code == key.Down:
			ctx.Picker.MoveCursor(1)
		case k.Ctrl && (k.Rune == 'p' || k.Rune == 'k'), k.Code == key.Up:
			ctx.Picker.MoveCursor(-1)
		case k.Ctrl && k.Rune == 'd', k.Code == key.PageDown:
			ctx.Picker.PageDown(height)
		case k.Ctrl && k.Rune == 'u', k.Code == key.PageUp:
			ctx.Picker.PageUp(height)
		case k.Ctrl && k.Rune == 'b', k.Code == key.Home:
			ctx.Picker.MoveCursor(-ctx.Picker.Cursor())
		case k.Ctrl && k.Rune == 'e', k.Code == key.End:
			ctx.Picker.MoveCursor(ctx.Picker.Len())
		default:
			ctx.Picker.Filter(ctx.ReadLine.Input(), ctx.WordAt)
		}
		return outcomePending(), 1
	}

	if poll == ReadLineSubmitted {
		entry, ok := ctx.Picker.CurrentEntry()
		if ok && p.OnSubmit != nil {
			return p.OnSubmit(ctx, entry), 1
		}
		return outcomeEnter(Normal), 1
	}

	if p.OnCancel != nil {
		return p.OnCancel(ctx), 1
	}
	return outcomeEnter(Normal), 1
}
