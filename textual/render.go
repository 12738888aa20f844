package textual

import (
	"image/color"
	"unicode"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/srlehn/cellmatrix/matrix"
)

const upperHalfBlock = '\u2580'

var underlineStyles = map[matrix.LinePattern]tcell.UnderlineStyle{
	matrix.LineSolid:    tcell.UnderlineStyleSolid,
	matrix.LineThick:    tcell.UnderlineStyleSolid,
	matrix.LineDouble:   tcell.UnderlineStyleDouble,
	matrix.LineDashed:   tcell.UnderlineStyleDashed,
	matrix.LineDotted:   tcell.UnderlineStyleDotted,
	matrix.LineWavy:     tcell.UnderlineStyleCurly,
	matrix.LineSawtooth: tcell.UnderlineStyleCurly,
}

func tcellColor(c color.Color) tcell.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0 {
		return tcell.ColorDefault
	}
	return tcell.NewRGBColor(int32(n.R), int32(n.G), int32(n.B))
}

func (h *Host) setCell(x, y int, c matrix.Cell) {
	if t, ok := c.ImageTile(); ok {
		h.setTile(x, y, t)
		return
	}
	g, _ := c.Glyph()
	style := glyphStyle(g)
	if g.Window > 0 {
		// continuation of a wide glyph, covered by its first cell
		h.screen.SetContent(x, y, ' ', nil, style)
		return
	}
	runes := h.runes(g.Codepoint)
	if g.Traits.Caps {
		for i, r := range runes {
			runes[i] = unicode.ToUpper(r)
		}
	}
	h.screen.SetContent(x, y, runes[0], runes[1:], style)
}

func glyphStyle(g matrix.Glyph) tcell.Style {
	style := tcell.StyleDefault.
		Foreground(tcellColor(g.Stroke)).
		Background(tcellColor(g.Fill)).
		Bold(g.Traits.Bold).
		Italic(g.Traits.Italic).
		StrikeThrough(g.Traits.Strikethrough != matrix.LineVoid)
	if us, ok := underlineStyles[g.Traits.Underline]; ok {
		style = style.Underline(us, tcellColor(g.Line))
	}
	return style
}

// runes resolves a codepoint or expression identifier to a base rune and its
// combining runes.
func (h *Host) runes(codepoint int32) []rune {
	switch {
	case codepoint >= 0:
		r := rune(codepoint)
		if !utf8.ValidRune(r) || unicode.IsControl(r) {
			r = utf8.RuneError
		}
		return []rune{r}
	case codepoint == -1:
		return []rune{' '}
	}
	text, ok := h.Expressions().Lookup(codepoint)
	if !ok || text == `` {
		return []rune{' '}
	}
	return []rune(text)
}

// setTile draws the two pixels of the tile as an upper half block.
func (h *Host) setTile(x, y int, t matrix.ImageTile) {
	fill := tcellColor(t.Fill)
	img, rect, ok := h.resources.Tile(t.Identity, t.XTile, t.YTile)
	if !ok {
		h.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault.Background(fill))
		return
	}
	pixel := func(dy int) tcell.Color {
		c := img.RGBAAt(rect.Min.X, rect.Min.Y+dy)
		if c.A == 0 {
			return fill
		}
		return tcellColor(c)
	}
	style := tcell.StyleDefault.Foreground(pixel(0)).Background(pixel(1))
	h.screen.SetContent(x, y, upperHalfBlock, nil, style)
}
