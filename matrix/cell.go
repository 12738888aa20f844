package matrix

import "fmt"

const (
	// MaxGlyphWindow is the highest slice index of a wide glyph.
	MaxGlyphWindow = 14
	// ImageTileWindow is the window value marking an image tile on the wire.
	ImageTileWindow = 15
)

// Kind is the discriminant of a Cell.
type Kind uint8

const (
	KindGlyph Kind = iota
	KindImageTile
)

func (k Kind) String() string {
	switch k {
	case KindGlyph:
		return `glyph`
	case KindImageTile:
		return `image-tile`
	default:
		return `unknown`
	}
}

// Glyph is the text variant of a cell.
//
// Codepoint is either a Unicode scalar value or, when negative, the
// identifier of a defined expression. Window selects the horizontal slice of
// a glyph that is wider than one cell.
type Glyph struct {
	Codepoint int32
	Window    uint8
	Fill      Color
	Stroke    Color
	Line      Color
	Traits    Traits
}

// NewGlyph returns an empty glyph.
func NewGlyph() Glyph { return Glyph{Codepoint: -1} }

// Inscribe returns a copy of the glyph showing the given codepoint slice.
func (g Glyph) Inscribe(codepoint int32, window uint8) Glyph {
	g.Codepoint = codepoint
	g.Window = min(window, MaxGlyphWindow)
	return g
}

// Cell wraps the glyph. The window is limited to MaxGlyphWindow so that
// the wire layout never mistakes the glyph for an image tile.
func (g Glyph) Cell() Cell {
	g.Window = min(g.Window, MaxGlyphWindow)
	return Cell{kind: KindGlyph, glyph: g}
}

// ImageTile is the pixel variant of a cell: one cell sized tile of an
// integrated image resource.
type ImageTile struct {
	Identity int32
	Fill     Color
	XTile    uint16
	YTile    uint16
}

// Switch returns the tile at (y, x) of the same image.
func (t ImageTile) Switch(y, x uint16) ImageTile {
	t.YTile = y
	t.XTile = x
	return t
}

// Cell wraps the image tile.
func (t ImageTile) Cell() Cell { return Cell{kind: KindImageTile, tile: t} }

// Cell is the atomic display unit, a tagged union of Glyph and ImageTile.
//
// The inactive variant is always zero so that == is full structural
// equality; a Cell can be used as a map or cache key.
type Cell struct {
	kind  Kind
	glyph Glyph
	tile  ImageTile
}

// Blank is an empty glyph cell.
var Blank = NewGlyph().Cell()

func (c Cell) Kind() Kind { return c.kind }

// Glyph returns the text variant.
func (c Cell) Glyph() (Glyph, bool) {
	if c.kind != KindGlyph {
		return Glyph{}, false
	}
	return c.glyph, true
}

// ImageTile returns the pixel variant.
func (c Cell) ImageTile() (ImageTile, bool) {
	if c.kind != KindImageTile {
		return ImageTile{}, false
	}
	return c.tile, true
}

// Codepoint is the glyph codepoint or the image identity.
func (c Cell) Codepoint() int32 {
	if c.kind == KindImageTile {
		return c.tile.Identity
	}
	return c.glyph.Codepoint
}

// Fill is the cell background of either variant.
func (c Cell) Fill() Color {
	if c.kind == KindImageTile {
		return c.tile.Fill
	}
	return c.glyph.Fill
}

// Window is the wire window value, ImageTileWindow for image tiles.
func (c Cell) Window() uint8 {
	if c.kind == KindImageTile {
		return ImageTileWindow
	}
	return c.glyph.Window
}

func (c Cell) String() string {
	switch c.kind {
	case KindImageTile:
		return fmt.Sprintf("tile(%d %d,%d %s)", c.tile.Identity, c.tile.YTile, c.tile.XTile, c.tile.Fill)
	default:
		g := c.glyph
		if g.Codepoint >= 0 {
			return fmt.Sprintf("glyph(%q/%d %s)", rune(g.Codepoint), g.Window, g.Stroke)
		}
		return fmt.Sprintf("glyph(%d/%d %s)", g.Codepoint, g.Window, g.Stroke)
	}
}

// GlyphOption changes a field of a glyph in Update.
type GlyphOption func(*Glyph)

func WithStroke(c Color) GlyphOption { return func(g *Glyph) { g.Stroke = c } }
func WithFill(c Color) GlyphOption   { return func(g *Glyph) { g.Fill = c } }
func WithLine(c Color) GlyphOption   { return func(g *Glyph) { g.Line = c } }
func WithTraits(t Traits) GlyphOption {
	return func(g *Glyph) { g.Traits = t }
}
func WithBold(b bool) GlyphOption   { return func(g *Glyph) { g.Traits.Bold = b } }
func WithItalic(b bool) GlyphOption { return func(g *Glyph) { g.Traits.Italic = b } }
func WithCaps(b bool) GlyphOption   { return func(g *Glyph) { g.Traits.Caps = b } }
func WithUnderline(p LinePattern) GlyphOption {
	return func(g *Glyph) { g.Traits.Underline = p }
}
func WithStrikethrough(p LinePattern) GlyphOption {
	return func(g *Glyph) { g.Traits.Strikethrough = p }
}

// Update returns a copy of the glyph with the options applied.
func (g Glyph) Update(opts ...GlyphOption) Glyph {
	for _, opt := range opts {
		if opt != nil {
			opt(&g)
		}
	}
	g.Window = min(g.Window, MaxGlyphWindow)
	return g
}
