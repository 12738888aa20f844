package x11

import (
	"unicode"
	"unicode/utf8"

	"github.com/srlehn/cellmatrix/control"
	"github.com/srlehn/cellmatrix/device"
)

// X11 keysyms and modifier masks, see X11/keysymdef.h and X11/X.h.
const (
	xkISOLeftTab = 0xFE20
	xkF1         = 0xFFBE
	xkUnicode    = 0x01000000

	modShift   = 1 << 0
	modControl = 1 << 2
	mod1       = 1 << 3
	mod4       = 1 << 6
)

var keysyms = map[uint32]control.KeyIdentifier{
	0xFF08: control.KeyDeleteBackwards,
	0xFF09: control.KeyTab,
	0xFF0B: control.KeyClear,
	0xFF0D: control.KeyReturn,
	0xFF13: control.KeyPause,
	0xFF14: control.KeyScrollLock,
	0xFF1B: control.KeyEscape,
	0xFF50: control.KeyHome,
	0xFF51: control.KeyLeftArrow,
	0xFF52: control.KeyUpArrow,
	0xFF53: control.KeyRightArrow,
	0xFF54: control.KeyDownArrow,
	0xFF55: control.KeyPageUp,
	0xFF56: control.KeyPageDown,
	0xFF57: control.KeyEnd,
	0xFF61: control.KeyPrintScreen,
	0xFF63: control.KeyInsert,
	0xFF6B: control.KeyBreak,
	0xFF7F: control.KeyNumLock,
	0xFF8D: control.KeyEnter,
	0xFFE5: control.KeyCapsLock,
	0xFFFF: control.KeyDeleteForwards,
}

func modifiers(state uint16) control.Modifiers {
	var mods control.Modifiers
	if state&modShift != 0 {
		mods = mods.With(control.ModShift)
	}
	if state&modControl != 0 {
		mods = mods.With(control.ModControl)
	}
	if state&mod1 != 0 {
		mods = mods.With(control.ModMeta)
	}
	if state&mod4 != 0 {
		mods = mods.With(control.ModSystem)
	}
	return mods
}

// keysymRune is the character of a Latin-1 or Unicode keysym.
func keysymRune(sym uint32) (rune, bool) {
	switch {
	case sym >= 0x20 && sym <= 0x7E, sym >= 0xA0 && sym <= 0xFF:
		return rune(sym), true
	case sym&0xFF000000 == xkUnicode:
		r := rune(sym &^ xkUnicode)
		return r, utf8.ValidRune(r)
	}
	return 0, false
}

// keyEvent translates a key press. sym is the keysym without modifiers,
// text the string the key produces in the current state.
func keyEvent(sym uint32, text string, state uint16) (device.Event, bool) {
	mods := modifiers(state)
	if id, ok := keysyms[sym]; ok {
		return device.KeyEvent(int32(id), mods, ``), true
	}
	switch {
	case sym == xkISOLeftTab:
		return device.KeyEvent(int32(control.KeyTab), mods.With(control.ModShift), ``), true
	case sym >= xkF1 && sym < xkF1+32:
		return device.KeyEvent(control.FunctionKey(int(sym-xkF1)+1), mods, ``), true
	}
	base, ok := keysymRune(sym)
	if !ok {
		return device.Event{}, false
	}
	if mods.Has(control.ModControl) || mods.Has(control.ModMeta) {
		return device.KeyEvent(unicode.ToLower(base), mods, ``), true
	}
	r, size := utf8.DecodeRuneInString(text)
	if size == 0 || r == utf8.RuneError || unicode.IsControl(r) {
		return device.KeyEvent(base, mods, string(base)), true
	}
	return device.KeyEvent(r, mods, text), true
}

// buttonEvent translates a button press at a pixel position. Buttons 4 to
// 7 are the wheel.
func buttonEvent(button uint8, x, y int16, state uint16) (device.Event, bool) {
	var ev device.Event
	switch button {
	case 1, 2, 3:
		ev = device.KeyEvent(control.CursorKey(int(button)), 0, ``)
	case 4:
		ev = device.InstructionEvent(control.ViewScroll, 3)
	case 5:
		ev = device.InstructionEvent(control.ViewScroll, -3)
	case 6:
		ev = device.InstructionEvent(control.ViewPan, -3)
	case 7:
		ev = device.InstructionEvent(control.ViewPan, 3)
	default:
		return device.Event{}, false
	}
	ev.Status.Keys = modifiers(state)
	ev.Status.Top, ev.Status.Left = int32(y), int32(x)
	return ev, true
}
