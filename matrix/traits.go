package matrix

// LinePattern selects how an underline or strikethrough is drawn.
type LinePattern uint8

const (
	LineVoid LinePattern = iota // no line
	LineSolid
	LineThick
	LineDouble
	LineDashed
	LineDotted
	LineWavy
	LineSawtooth
)

var linePatternNames = [...]string{
	LineVoid:     `void`,
	LineSolid:    `solid`,
	LineThick:    `thick`,
	LineDouble:   `double`,
	LineDashed:   `dashed`,
	LineDotted:   `dotted`,
	LineWavy:     `wavy`,
	LineSawtooth: `sawtooth`,
}

func (p LinePattern) String() string {
	if int(p) < len(linePatternNames) {
		return linePatternNames[p]
	}
	return `unknown`
}

// Valid reports whether p is one of the defined patterns.
func (p LinePattern) Valid() bool { return int(p) < len(linePatternNames) }

// ParseLinePattern is the inverse of String.
func ParseLinePattern(s string) (LinePattern, bool) {
	for i, n := range linePatternNames {
		if n == s {
			return LinePattern(i), true
		}
	}
	return LineVoid, false
}

// Traits are the text rendering attributes of a glyph cell.
type Traits struct {
	Italic        bool
	Bold          bool
	Caps          bool
	Underline     LinePattern
	Strikethrough LinePattern
}

const (
	traitItalic = 1 << iota
	traitBold
	traitCaps
	traitUnderlineShift     = 3
	traitStrikethroughShift = 7
	traitPatternMask        = 0xF
)

// Pack returns the 11 bit wire form.
func (t Traits) Pack() uint16 {
	var v uint16
	if t.Italic {
		v |= traitItalic
	}
	if t.Bold {
		v |= traitBold
	}
	if t.Caps {
		v |= traitCaps
	}
	v |= uint16(t.Underline&traitPatternMask) << traitUnderlineShift
	v |= uint16(t.Strikethrough&traitPatternMask) << traitStrikethroughShift
	return v
}

// UnpackTraits is the inverse of Pack.
func UnpackTraits(v uint16) Traits {
	return Traits{
		Italic:        v&traitItalic != 0,
		Bold:          v&traitBold != 0,
		Caps:          v&traitCaps != 0,
		Underline:     LinePattern(v >> traitUnderlineShift & traitPatternMask),
		Strikethrough: LinePattern(v >> traitStrikethroughShift & traitPatternMask),
	}
}
