package mode

import (
	"github.com/dshills/pepperd/internal/input/key"
	"github.com/dshills/pepperd/internal/input/keymap"
)

// Mode is a single state in the mode state machine.
type Mode interface {
	Tag() Tag
	Enter(ctx *Context)
	Exit(ctx *Context)
	// HandleKeys processes some prefix of keys (at least one key) and
	// returns the outcome along with how many keys it consumed.
	HandleKeys(ctx *Context, keys []key.Key) (Outcome, int)
}

// Machine is the key-queue loop described by spec section 4.4: buffered
// keys are first run through the active mode's keymap for longest-prefix
// remapping, then any keys the keymap left alone are dispatched to the
// mode itself. A designated recording register captures every key's
// printable form regardless of which layer consumed it.
type Machine struct {
	modes    map[Tag]Mode
	keymaps  map[Tag]*keymap.Keymap
	active   Tag
	buffered []key.Key
}

// NewMachine builds a state machine starting in Normal with the standard
// mode set. Per-mode keymaps start empty; callers add bindings via
// Keymap(tag).
func NewMachine() *Machine {
	m := &Machine{
		modes: map[Tag]Mode{
			Normal:   NormalImpl{},
			Insert:   InsertImpl{},
			Select:   SelectImpl{},
			Command:  &CommandImpl{},
			ReadLine: &ReadLineImpl{},
			Picker:   &PickerImpl{},
		},
		keymaps: make(map[Tag]*keymap.Keymap),
		active:  Normal,
	}
	for _, t := range []Tag{Normal, Insert, Select, ReadLine, Picker, Command} {
		m.keymaps[t] = keymap.New()
	}
	return m
}

// SetMode installs or replaces the handler for a tag (used to install a
// configured *PickerImpl for the current picker use).
func (m *Machine) SetMode(mode Mode) {
	m.modes[mode.Tag()] = mode
}

// Enter switches directly to tag, outside the key-queue loop: used when
// an asynchronous collaborator (an LSP response populating a picker)
// needs to change the active mode, rather than a key's own Outcome.
func (m *Machine) Enter(ctx *Context, tag Tag) {
	if cur := m.modes[m.active]; cur != nil {
		cur.Exit(ctx)
	}
	m.active = tag
	if next := m.modes[tag]; next != nil {
		next.Enter(ctx)
	}
}

// Active returns the currently active mode tag.
func (m *Machine) Active() Tag {
	return m.active
}

// Keymap returns the mutable keymap for tag, for registering bindings.
func (m *Machine) Keymap(tag Tag) *keymap.Keymap {
	return m.keymaps[tag]
}

// Feed appends one client key to the buffer, records it to any active
// recording register, and drains the key-queue loop until it needs more
// keys (Pending) or produces a terminal Outcome (Quit/QuitAll).
// EnterMode and ExecuteMacro outcomes are handled internally and do not
// escape Feed; only Pending, None, Quit and QuitAll are returned to the
// caller.
func (m *Machine) Feed(ctx *Context, k key.Key) Outcome {
	ctx.Registers.Record(k)
	m.buffered = append(m.buffered, k)
	return m.drain(ctx)
}

func (m *Machine) drain(ctx *Context) Outcome {
	for len(m.buffered) > 0 {
		km := m.keymaps[m.active]
		res, repl, n := km.Match(m.buffered)

		switch res {
		case keymap.Prefix:
			return outcomePending()
		case keymap.ReplaceWith:
			rest := append([]key.Key{}, m.buffered[n:]...)
			m.buffered = append(append([]key.Key{}, repl...), rest...)
			continue
		}

		mode := m.modes[m.active]
		if mode == nil {
			m.buffered = m.buffered[1:]
			continue
		}

		out, consumed := mode.HandleKeys(ctx, m.buffered)
		if consumed <= 0 {
			return outcomePending()
		}
		m.buffered = m.buffered[consumed:]

		switch out.Signal {
		case EnterMode:
			mode.Exit(ctx)
			m.active = out.Next
			if next := m.modes[m.active]; next != nil {
				next.Enter(ctx)
			}
		case ExecuteMacro:
			replay, err := ctx.Registers.Replay(out.Register)
			if err == nil && len(replay) > 0 {
				m.buffered = append(replay, m.buffered...)
			}
		case Quit, QuitAll:
			return out
		}
	}
	return outcomeNone()
}
