package textual

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/srlehn/cellmatrix/control"
	"github.com/srlehn/cellmatrix/device"
	"github.com/srlehn/cellmatrix/internal/logx"
)

// poll translates tcell events until the screen is finalized.
func (h *Host) poll(cols, rows int) {
	defer close(h.polled)
	var (
		pasting bool
		paste   strings.Builder
		buttons tcell.ButtonMask
	)
	for {
		tev := h.screen.PollEvent()
		if tev == nil {
			return
		}
		var evs []device.Event
		switch tev := tev.(type) {
		case *tcell.EventResize:
			c, r := tev.Size()
			if c == cols && r == rows {
				continue
			}
			cols, rows = c, r
			h.screen.Sync()
			evs = append(evs, device.ResizeEvent(parameters(cols, rows)))
		case *tcell.EventPaste:
			pasting = tev.Start()
			if !pasting {
				ev := device.InstructionEvent(control.ElementsInsert, 1)
				ev.Text = []byte(paste.String())
				ev.Status.TextLength = uint32(len(ev.Text))
				paste.Reset()
				evs = append(evs, ev)
			}
		case *tcell.EventKey:
			if pasting {
				pasteKey(&paste, tev)
				continue
			}
			if ev, ok := keyEvent(tev); ok {
				evs = append(evs, ev)
			}
		case *tcell.EventMouse:
			var pressed tcell.ButtonMask
			evs, pressed = h.mouseEvents(tev, buttons)
			buttons = pressed
		}
		for _, ev := range evs {
			if err := h.handoff.Post(h.ctx, ev); err != nil {
				logx.Debug(`event dropped`, h, `event`, ev.Status, `err`, err)
				return
			}
		}
	}
}

func pasteKey(b *strings.Builder, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyRune:
		b.WriteRune(ev.Rune())
	case tcell.KeyEnter:
		b.WriteByte('\n')
	case tcell.KeyTab:
		b.WriteByte('\t')
	}
}

func modifiers(m tcell.ModMask) control.Modifiers {
	var mods control.Modifiers
	if m&tcell.ModShift != 0 {
		mods = mods.With(control.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(control.ModControl)
	}
	if m&tcell.ModAlt != 0 {
		mods = mods.With(control.ModMeta)
	}
	if m&tcell.ModMeta != 0 {
		mods = mods.With(control.ModSystem)
	}
	return mods
}

var keys = map[tcell.Key]control.KeyIdentifier{
	tcell.KeyUp:         control.KeyUpArrow,
	tcell.KeyDown:       control.KeyDownArrow,
	tcell.KeyLeft:       control.KeyLeftArrow,
	tcell.KeyRight:      control.KeyRightArrow,
	tcell.KeyHome:       control.KeyHome,
	tcell.KeyEnd:        control.KeyEnd,
	tcell.KeyPgUp:       control.KeyPageUp,
	tcell.KeyPgDn:       control.KeyPageDown,
	tcell.KeyInsert:     control.KeyInsert,
	tcell.KeyDelete:     control.KeyDeleteForwards,
	tcell.KeyEnter:      control.KeyReturn,
	tcell.KeyTab:        control.KeyTab,
	tcell.KeyBackspace:  control.KeyDeleteBackwards,
	tcell.KeyBackspace2: control.KeyDeleteBackwards,
	tcell.KeyEscape:     control.KeyEscape,
	tcell.KeyClear:      control.KeyClear,
	tcell.KeyPause:      control.KeyPause,
	tcell.KeyPrint:      control.KeyPrintScreen,
}

// keyEvent translates a key press; keys without a counterpart are dropped.
func keyEvent(ev *tcell.EventKey) (device.Event, bool) {
	mods := modifiers(ev.Modifiers())
	k := ev.Key()
	switch {
	case k == tcell.KeyRune:
		r := ev.Rune()
		if mods.Has(control.ModControl) || mods.Has(control.ModMeta) {
			return device.KeyEvent(r, mods, ``), true
		}
		return device.KeyEvent(r, mods, string(r)), true
	case k == tcell.KeyBacktab:
		return device.KeyEvent(int32(control.KeyTab), mods.With(control.ModShift), ``), true
	case k >= tcell.KeyF1 && k <= tcell.KeyF32:
		return device.KeyEvent(control.FunctionKey(int(k-tcell.KeyF1)+1), mods, ``), true
	}
	if id, ok := keys[k]; ok {
		return device.KeyEvent(int32(id), mods, ``), true
	}
	mods = mods.With(control.ModControl)
	switch {
	case k == tcell.KeyCtrlSpace:
		return device.KeyEvent(int32(control.KeySpace), mods, ``), true
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return device.KeyEvent('a'+int32(k-tcell.KeyCtrlA), mods, ``), true
	case k >= tcell.KeyCtrlBackslash && k <= tcell.KeyCtrlUnderscore:
		return device.KeyEvent(int32(k)+0x40, mods, ``), true
	}
	return device.Event{}, false
}

// screen cursor keys in X11 button order
var cursorButtons = []tcell.ButtonMask{tcell.Button1, tcell.Button3, tcell.Button2}

// mouseEvents reports newly pressed buttons as screen cursor keys and wheel
// motion as view instructions. It returns the current button state.
func (h *Host) mouseEvents(ev *tcell.EventMouse, before tcell.ButtonMask) ([]device.Event, tcell.ButtonMask) {
	x, y := ev.Position()
	top := int32(float64(y) * inscription.CellHeight)
	left := int32(float64(x) * inscription.CellWidth)
	mods := modifiers(ev.Modifiers())
	now := ev.Buttons()

	var evs []device.Event
	add := func(ev device.Event) {
		ev.Status.Top, ev.Status.Left = top, left
		ev.Status.Keys = mods
		evs = append(evs, ev)
	}
	for i, b := range cursorButtons {
		if now&b != 0 && before&b == 0 {
			add(device.KeyEvent(control.CursorKey(i+1), mods, ``))
		}
	}
	switch {
	case now&tcell.WheelUp != 0:
		add(device.InstructionEvent(control.ViewScroll, 3))
	case now&tcell.WheelDown != 0:
		add(device.InstructionEvent(control.ViewScroll, -3))
	case now&tcell.WheelLeft != 0:
		add(device.InstructionEvent(control.ViewPan, -3))
	case now&tcell.WheelRight != 0:
		add(device.InstructionEvent(control.ViewPan, 3))
	}
	return evs, now &^ (tcell.WheelUp | tcell.WheelDown | tcell.WheelLeft | tcell.WheelRight)
}
