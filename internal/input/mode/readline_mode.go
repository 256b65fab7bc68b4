package mode

import "github.com/dshills/pepperd/internal/input/key"

// ReadLineImpl is the generic single-line-prompt state (spec's ReadLine,
// distinct from Command and Picker which each embed their own read-line
// use): a caller sets Prompt/OnSubmit/OnCancel before switching into it,
// for things like a rename-symbol or search prompt.
type ReadLineImpl struct {
	Prompt   string
	OnSubmit func(ctx *Context, line string) Outcome
	OnCancel func(ctx *Context) Outcome
}

func (r *ReadLineImpl) Tag() Tag { return ReadLine }

func (r *ReadLineImpl) Enter(ctx *Context) {
	ctx.ReadLine.SetPrompt(r.Prompt)
	ctx.ReadLine.Clear()
}

func (r *ReadLineImpl) Exit(ctx *Context) {
	ctx.ReadLine.Clear()
}

func (r *ReadLineImpl) HandleKeys(ctx *Context, keys []key.Key) (Outcome, int) {
	k := keys[0]
	switch ctx.ReadLine.Poll(k, ctx.unnamedGet()) {
	case ReadLineSubmitted:
		if r.OnSubmit != nil {
			return r.OnSubmit(ctx, ctx.ReadLine.Input()), 1
		}
		return outcomeEnter(Normal), 1
	case ReadLineCanceled:
		if r.OnCancel != nil {
			return r.OnCancel(ctx), 1
		}
		return outcomeEnter(Normal), 1
	default:
		return outcomePending(), 1
	}
}
