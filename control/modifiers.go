package control

import "strings"

// Modifier is a single key modifier, ordered by the codepoint of its key.
type Modifier uint8

const (
	ModVoid Modifier = iota
	ModImaginary
	ModShift
	ModControl
	ModSystem
	ModMeta
	ModHyper
	modSentinel
)

var modifierKeys = [...]KeyIdentifier{
	ModImaginary: KeyImaginary,
	ModShift:     KeyShift,
	ModControl:   KeyControl,
	ModSystem:    KeySystem,
	ModMeta:      KeyMeta,
	ModHyper:     KeyHyper,
}

// Key is the identifier of the modifier's key, 0 for ModVoid.
func (m Modifier) Key() KeyIdentifier {
	if m >= modSentinel {
		return 0
	}
	return modifierKeys[m]
}

// Bit is the mask of the modifier in Modifiers.
func (m Modifier) Bit() Modifiers {
	if m == ModVoid || m >= modSentinel {
		return 0
	}
	return Modifiers(1) << m
}

func (m Modifier) String() string { return m.Key().Name() }

// Modifiers is the tracked key state of an event.
type Modifiers uint32

// NewModifiers combines single modifiers.
func NewModifiers(mods ...Modifier) Modifiers {
	var ret Modifiers
	for _, m := range mods {
		ret |= m.Bit()
	}
	return ret
}

func (ms Modifiers) Has(m Modifier) bool { return m != ModVoid && ms&m.Bit() != 0 }

func (ms Modifiers) With(m Modifier) Modifiers { return ms | m.Bit() }

// String renders the key symbols of the set modifiers in identifier order,
// "-" when there are none.
func (ms Modifiers) String() string {
	var b strings.Builder
	for m := ModImaginary; m < modSentinel; m++ {
		if ms.Has(m) {
			b.WriteRune(rune(m.Key()))
		}
	}
	if b.Len() == 0 {
		return `-`
	}
	return b.String()
}
