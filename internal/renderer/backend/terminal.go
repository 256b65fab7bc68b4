package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/pepperd/internal/input/key"
	"github.com/dshills/pepperd/internal/renderer"
	"github.com/dshills/pepperd/internal/renderer/core"
)

// Terminal implements Backend on top of tcell, the same library the
// teacher drives its own renderer/backend.Terminal with — tcell owns
// every actual escape sequence, so this file never writes one.
type Terminal struct {
	screen tcell.Screen
	mu     sync.Mutex
}

// NewTerminal opens the process's controlling terminal through tcell.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Init()
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Size()
}

// ApplyFrame paints df's changed cells and cursor onto the screen and
// flips the display, the client-side mirror of Frame.Flush producing
// df on the server.
func (t *Terminal) ApplyFrame(df renderer.DecodedFrame) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, ch := range df.Changes {
		t.screen.SetContent(ch.X, ch.Y, ch.Cell.Rune, nil, convertStyle(ch.Cell.Style))
	}
	if df.CursorVisible {
		t.screen.ShowCursor(df.CursorCol, df.CursorRow)
	} else {
		t.screen.HideCursor()
	}
	t.screen.Show()
}

// PollEvent blocks for the next tcell event and translates it into the
// Backend's own Event type.
func (t *Terminal) PollEvent() Event {
	for {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if k, ok := convertKey(ev); ok {
				return Event{Kind: EventKey, Key: k}
			}
		case *tcell.EventResize:
			w, h := ev.Size()
			return Event{Kind: EventResize, Width: w, Height: h}
		default:
			// Mouse, paste and focus events carry nothing this repo's
			// wire protocol can express; drop them and keep polling.
		}
	}
}

func (t *Terminal) Suspend() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Suspend()
}

func (t *Terminal) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Resume()
}

// convertStyle converts our Style to tcell.Style, the same three-way
// split (default / indexed / true color) the teacher's convertStyle
// makes.
func convertStyle(s core.Style) tcell.Style {
	style := tcell.StyleDefault
	if !s.Foreground.IsDefault() {
		if s.Foreground.Indexed {
			style = style.Foreground(tcell.PaletteColor(int(s.Foreground.R)))
		} else {
			style = style.Foreground(tcell.NewRGBColor(int32(s.Foreground.R), int32(s.Foreground.G), int32(s.Foreground.B)))
		}
	}
	if !s.Background.IsDefault() {
		if s.Background.Indexed {
			style = style.Background(tcell.PaletteColor(int(s.Background.R)))
		} else {
			style = style.Background(tcell.NewRGBColor(int32(s.Background.R), int32(s.Background.G), int32(s.Background.B)))
		}
	}
	if s.Attributes.Has(core.AttrBold) {
		style = style.Bold(true)
	}
	if s.Attributes.Has(core.AttrDim) {
		style = style.Dim(true)
	}
	if s.Attributes.Has(core.AttrItalic) {
		style = style.Italic(true)
	}
	if s.Attributes.Has(core.AttrUnderline) {
		style = style.Underline(true)
	}
	if s.Attributes.Has(core.AttrReverse) {
		style = style.Reverse(true)
	}
	return style
}

// convertKey maps a tcell key event onto this repo's key.Key, the type
// every mode and keymap already speaks. ok is false for a tcell key
// this editor has no Code for (function keys, insert, etc.) — the
// caller keeps polling rather than forwarding a zero-value key.
func convertKey(ev *tcell.EventKey) (key.Key, bool) {
	mod := ev.Modifiers()
	ctrl := mod&tcell.ModCtrl != 0
	alt := mod&tcell.ModAlt != 0
	shift := mod&tcell.ModShift != 0

	if ev.Key() == tcell.KeyRune {
		return key.FromRune(ev.Rune(), ctrl, alt), true
	}
	// tcell's KeyTab, KeyEnter and KeyBackspace share values with
	// Ctrl-I, Ctrl-M and Ctrl-H; leave those to the switch below.
	if k := ev.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ &&
		k != tcell.KeyTab && k != tcell.KeyEnter && k != tcell.KeyBackspace {
		r := 'a' + rune(ev.Key()-tcell.KeyCtrlA)
		return key.FromRune(r, true, alt), true
	}

	var code key.Code
	switch ev.Key() {
	case tcell.KeyEnter:
		code = key.Enter
	case tcell.KeyEscape:
		code = key.Escape
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		code = key.Backspace
	case tcell.KeyDelete:
		code = key.Delete
	case tcell.KeyTab:
		code = key.Tab
	case tcell.KeyUp:
		code = key.Up
	case tcell.KeyDown:
		code = key.Down
	case tcell.KeyLeft:
		code = key.Left
	case tcell.KeyRight:
		code = key.Right
	case tcell.KeyHome:
		code = key.Home
	case tcell.KeyEnd:
		code = key.End
	case tcell.KeyPgUp:
		code = key.PageUp
	case tcell.KeyPgDn:
		code = key.PageDown
	default:
		return key.Key{}, false
	}
	return key.Special(code, ctrl, alt, shift), true
}
