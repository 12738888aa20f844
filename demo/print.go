package demo

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/srlehn/cellmatrix/device"
	"github.com/srlehn/cellmatrix/matrix"
)

// Print writes text starting at line y, cell x with the style of g and
// returns the number of cells used. Grapheme clusters of more than one
// codepoint are defined as expressions; wide clusters occupy one cell per
// window. Output stops at limit or where a cluster would not fit.
func Print(d device.Device, y, x, limit uint16, text string, g matrix.Glyph) uint16 {
	scr := d.Screen()
	var n uint16
	state := -1
	for len(text) > 0 {
		var cluster string
		cluster, text, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		width := uint16(runewidth.StringWidth(cluster))
		if width == 0 {
			width = 1
		}
		width = min(width, matrix.MaxGlyphWindow+1)
		if n+width > limit {
			break
		}
		cp := d.Define(cluster)
		for w := uint16(0); w < width; w++ {
			scr.Set(y, x+n+w, g.Inscribe(cp, uint8(w)).Cell())
		}
		n += width
	}
	return n
}
