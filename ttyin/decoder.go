// Package ttyin decodes raw terminal input into device events.
package ttyin

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/srlehn/cellmatrix/control"
	"github.com/srlehn/cellmatrix/device"
)

const esc = '\033'

var (
	pasteStart = []byte("\033[200~")
	pasteEnd   = []byte("\033[201~")
)

// Decoder turns terminal input bytes into key events. Input may be split
// at any byte; incomplete sequences are kept until more input arrives or
// Flush is called.
type Decoder struct {
	buf     []byte
	pasting bool
	paste   []byte
}

// Pending reports whether undecoded input is buffered.
func (d *Decoder) Pending() bool { return len(d.buf) > 0 || d.pasting }

// Decode appends p to the buffered input and returns the complete events.
func (d *Decoder) Decode(p []byte) []device.Event {
	d.buf = append(d.buf, p...)
	return d.decode(false)
}

// Flush decodes the buffered input treating an unfinished escape sequence
// as an escape key followed by plain input.
func (d *Decoder) Flush() []device.Event {
	evs := d.decode(true)
	if d.pasting && len(d.buf) > 0 {
		d.paste = append(d.paste, d.buf...)
		d.buf = d.buf[:0]
	}
	return evs
}

func (d *Decoder) decode(flush bool) []device.Event {
	var evs []device.Event
	for len(d.buf) > 0 {
		if d.pasting {
			i := bytes.Index(d.buf, pasteEnd)
			if i < 0 {
				// keep a possible prefix of the end marker
				keep := min(len(d.buf), len(pasteEnd)-1)
				d.paste = append(d.paste, d.buf[:len(d.buf)-keep]...)
				d.buf = append(d.buf[:0], d.buf[len(d.buf)-keep:]...)
				break
			}
			d.paste = append(d.paste, d.buf[:i]...)
			d.buf = d.buf[i+len(pasteEnd):]
			d.pasting = false
			evs = append(evs, pasteEvent(d.paste))
			d.paste = nil
			continue
		}
		if d.buf[0] == esc {
			n, ok := frame(d.buf)
			if !ok {
				if !flush {
					break
				}
				evs = append(evs, keyEvent(control.KeyEscape, 0))
				d.buf = d.buf[1:]
				continue
			}
			seq := d.buf[:n]
			d.buf = d.buf[n:]
			if bytes.Equal(seq, pasteStart) {
				d.pasting = true
				continue
			}
			if ev, ok := escapeEvent(seq); ok {
				evs = append(evs, ev)
			}
			continue
		}
		if !utf8.FullRune(d.buf) && !flush {
			break
		}
		r, size := utf8.DecodeRune(d.buf)
		d.buf = d.buf[size:]
		evs = append(evs, runeEvent(r))
	}
	if len(d.buf) == 0 {
		d.buf = nil
	}
	return evs
}

// frame returns the length of the escape sequence at the start of b. CSI
// sequences end with a byte in 0x40-0x7E, SS3 sequences after one more
// byte, anything else after the rune following ESC. An ESC followed by
// another ESC is a sequence of its own.
func frame(b []byte) (int, bool) {
	const (
		start = ``
		csi   = `CSI`
		ss3   = `SS3`
	)
	state := start
	for i := 1; i < len(b); i++ {
		r := b[i]
		switch state {
		case start:
			switch r {
			case '[':
				state = csi
			case 'O':
				state = ss3
			case esc:
				return 1, true
			default:
				// meta modified key; the key may be a multibyte rune
				if !utf8.FullRune(b[i:]) {
					return 0, false
				}
				_, size := utf8.DecodeRune(b[i:])
				return i + size, true
			}
		case csi:
			if r >= 0x40 && r <= 0x7E {
				return i + 1, true
			}
		case ss3:
			return i + 1, true
		}
	}
	return 0, false
}

func keyEvent(k control.KeyIdentifier, mods control.Modifiers) device.Event {
	return device.Event{Status: control.Status{Dispatch: int32(k), Quantity: 1, Keys: mods}}
}

func runeEvent(r rune) device.Event {
	switch {
	case r == '\r' || r == '\n':
		return keyEvent(control.KeyReturn, 0)
	case r == '\t':
		return keyEvent(control.KeyTab, 0)
	case r == 0x7F || r == '\b':
		return keyEvent(control.KeyDeleteBackwards, 0)
	case r == 0:
		return keyEvent(control.KeySpace, control.ModControl.Bit())
	case r < 0x1B:
		return device.Event{Status: control.Status{Dispatch: 'a' + r - 1, Quantity: 1, Keys: control.ModControl.Bit()}}
	case r < 0x20:
		return device.Event{Status: control.Status{Dispatch: r + 0x40, Quantity: 1, Keys: control.ModControl.Bit()}}
	default:
		return device.KeyEvent(r, 0, string(r))
	}
}

func pasteEvent(text []byte) device.Event {
	ev := device.InstructionEvent(control.ElementsInsert, 1)
	ev.Text = append([]byte(nil), text...)
	ev.Status.TextLength = uint32(len(ev.Text))
	return ev
}

var csiKeys = map[byte]control.KeyIdentifier{
	'A': control.KeyUpArrow,
	'B': control.KeyDownArrow,
	'C': control.KeyRightArrow,
	'D': control.KeyLeftArrow,
	'H': control.KeyHome,
	'F': control.KeyEnd,
}

var tildeKeys = map[int]control.KeyIdentifier{
	1: control.KeyHome,
	2: control.KeyInsert,
	3: control.KeyDeleteForwards,
	4: control.KeyEnd,
	5: control.KeyPageUp,
	6: control.KeyPageDown,
	7: control.KeyHome,
	8: control.KeyEnd,
}

// tildeFunctions maps "CSI n ~" parameters to function key numbers.
var tildeFunctions = map[int]int{
	11: 1, 12: 2, 13: 3, 14: 4, 15: 5,
	17: 6, 18: 7, 19: 8, 20: 9, 21: 10,
	23: 11, 24: 12,
}

func escapeEvent(seq []byte) (device.Event, bool) {
	if len(seq) < 2 {
		return keyEvent(control.KeyEscape, 0), true
	}
	switch seq[1] {
	case '[':
		return csiEvent(seq[2 : len(seq)-1], seq[len(seq)-1])
	case 'O':
		return ss3Event(seq[2])
	}
	r, _ := utf8.DecodeRune(seq[1:])
	ev := runeEvent(r)
	ev.Status.Keys = ev.Status.Keys.With(control.ModMeta)
	ev.Text = nil
	ev.Status.TextLength = 0
	return ev, true
}

func ss3Event(final byte) (device.Event, bool) {
	if k, ok := csiKeys[final]; ok {
		return keyEvent(k, 0), true
	}
	if final >= 'P' && final <= 'S' {
		return functionEvent(int(final-'P')+1, 0), true
	}
	return device.Event{}, false
}

func functionEvent(n int, mods control.Modifiers) device.Event {
	return device.Event{Status: control.Status{Dispatch: control.FunctionKey(n), Quantity: 1, Keys: mods}}
}

func csiEvent(params []byte, final byte) (device.Event, bool) {
	fields := strings.Split(string(params), `;`)
	num := func(i int) int {
		if i >= len(fields) {
			return 0
		}
		n, _ := strconv.Atoi(fields[i])
		return n
	}
	mods := xtermModifiers(num(1))
	switch {
	case final == '~':
		if k, ok := tildeKeys[num(0)]; ok {
			return keyEvent(k, mods), true
		}
		if n, ok := tildeFunctions[num(0)]; ok {
			return functionEvent(n, mods), true
		}
	case final == 'Z':
		return keyEvent(control.KeyTab, control.ModShift.Bit()), true
	case final >= 'P' && final <= 'S':
		return functionEvent(int(final-'P')+1, mods), true
	default:
		if k, ok := csiKeys[final]; ok {
			return keyEvent(k, mods), true
		}
	}
	return device.Event{}, false
}

// xtermModifiers decodes the "1 + bits" modifier parameter.
func xtermModifiers(p int) control.Modifiers {
	if p < 2 {
		return 0
	}
	bits := p - 1
	var mods control.Modifiers
	if bits&1 != 0 {
		mods = mods.With(control.ModShift)
	}
	if bits&2 != 0 {
		mods = mods.With(control.ModMeta)
	}
	if bits&4 != 0 {
		mods = mods.With(control.ModControl)
	}
	if bits&8 != 0 {
		mods = mods.With(control.ModSystem)
	}
	return mods
}
