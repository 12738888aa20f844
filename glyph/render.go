package glyph

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/fogleman/gg"

	"github.com/srlehn/cellmatrix/internal/logx"
	"github.com/srlehn/cellmatrix/matrix"
	"github.com/srlehn/cellmatrix/tilecache"
)

// Expressions resolves negative codepoints to their text.
type Expressions interface {
	Lookup(codepoint int32) (string, bool)
}

// Renderer draws single cells. It is a pure function of the cell as long
// as the expressions and resources it refers to do not change.
type Renderer struct {
	faces       *Faces
	ins         matrix.Inscription
	expressions Expressions
	resources   *Resources
	logger      *slog.Logger
}

var (
	_ tilecache.Renderer  = (*Renderer)(nil)
	_ logx.LoggerProvider = (*Renderer)(nil)
)

// NewRenderer creates a renderer drawing text with faces placed by ins.
// expressions and resources may be nil.
func NewRenderer(faces *Faces, ins matrix.Inscription, expressions Expressions, resources *Resources, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = logx.Discard()
	}
	return &Renderer{
		faces:       faces,
		ins:         ins,
		expressions: expressions,
		resources:   resources,
		logger:      logger,
	}
}

func (r *Renderer) Logger() *slog.Logger { return r.logger }

// RenderTile replaces the pixels of rect in dst with the cell.
func (r *Renderer) RenderTile(dst draw.Image, rect image.Rectangle, c matrix.Cell) {
	if dst == nil || rect.Empty() {
		return
	}
	if t, ok := c.ImageTile(); ok {
		draw.Draw(dst, rect, image.NewUniform(t.Fill), image.Point{}, draw.Src)
		r.drawImageTile(dst, rect, t)
		return
	}
	g, _ := c.Glyph()
	dc := gg.NewContext(rect.Dx(), rect.Dy())
	dc.SetColor(g.Fill)
	dc.Clear()
	r.drawGlyph(dc, g)
	draw.Draw(dst, rect, dc.Image(), image.Point{}, draw.Src)
}

func (r *Renderer) drawImageTile(dst draw.Image, rect image.Rectangle, t matrix.ImageTile) {
	src, sr, ok := r.resources.Tile(t.Identity, t.XTile, t.YTile)
	if !ok {
		logx.Debug(`missing image tile`, r, `identity`, t.Identity, `x`, t.XTile, `y`, t.YTile)
		return
	}
	if sr.Size() != rect.Size() {
		// cell size changed since the resource was fitted
		sr.Max = sr.Min.Add(rect.Size())
	}
	draw.Draw(dst, rect, src, sr.Min, draw.Over)
}

// Text resolves the text shown by a glyph cell.
func (r *Renderer) Text(g matrix.Glyph) string {
	var text string
	switch {
	case g.Codepoint >= 0:
		if utf8.ValidRune(g.Codepoint) {
			text = string(rune(g.Codepoint))
		}
	case r.expressions != nil:
		text, _ = r.expressions.Lookup(g.Codepoint)
	}
	if g.Traits.Caps {
		text = strings.ToUpper(text)
	}
	return text
}

func (r *Renderer) baseline(h float64) float64 {
	if r.ins.VerticalOffset > 0 {
		return r.ins.VerticalPad/2 + r.ins.VerticalOffset
	}
	return math.Round(h * 0.8)
}

func (r *Renderer) strokeWidth() float64 {
	return max(1, float64(r.ins.StrokeWidth))
}

func (r *Renderer) drawGlyph(dc *gg.Context, g matrix.Glyph) {
	w, h := float64(dc.Width()), float64(dc.Height())
	base := r.baseline(h)
	// wide glyphs are drawn shifted left by the preceding slices
	x := -float64(g.Window)*w + r.ins.HorizontalPad/2 + r.ins.HorizontalOffset

	if text := r.Text(g); text != `` && text != ` ` && r.faces != nil {
		face, bold, italic := r.faces.Face(g.Traits)
		dc.Push()
		dc.SetFontFace(face)
		dc.SetColor(g.Stroke)
		if italic {
			dc.ShearAbout(-0.2, 0, x, base)
		}
		dc.DrawString(text, x, base)
		if bold {
			dc.DrawString(text, x+r.strokeWidth(), base)
		}
		dc.Pop()
	}

	sw := r.strokeWidth()
	under := min(base+max(sw, math.Floor((h-base)/2)), h-sw)
	strike := math.Round(base * 0.62)
	r.drawLine(dc, g.Traits.Underline, under, g.Line)
	r.drawLine(dc, g.Traits.Strikethrough, strike, g.Line)
}

// drawLine strokes a pattern across the whole cell. Pattern periods divide
// the cell width so that lines continue seamlessly into the next cell.
func (r *Renderer) drawLine(dc *gg.Context, p matrix.LinePattern, y float64, c color.Color) {
	if p == matrix.LineVoid || !p.Valid() {
		return
	}
	w := float64(dc.Width())
	sw := r.strokeWidth()
	period := w / max(1, math.Round(w/(4*sw)))

	// align thin lines on pixel rows
	y = math.Floor(y) + sw/2

	dc.Push()
	defer dc.Pop()
	dc.SetColor(c)
	dc.SetLineWidth(sw)
	dc.SetLineCapButt()

	segment := func(x0, x1, y float64) {
		dc.MoveTo(x0, y)
		dc.LineTo(x1, y)
	}
	switch p {
	case matrix.LineSolid:
		segment(0, w, y)
	case matrix.LineThick:
		dc.SetLineWidth(sw * 2)
		segment(0, w, y)
	case matrix.LineDouble:
		segment(0, w, y-sw)
		segment(0, w, y+sw)
	case matrix.LineDashed:
		for x := 0.0; x < w; x += period {
			segment(x, x+period*0.75, y)
		}
	case matrix.LineDotted:
		for x := 0.0; x < w; x += period {
			segment(x, x+period*0.5, y)
		}
	case matrix.LineWavy:
		amp := sw * 1.5
		dc.MoveTo(0, y)
		for x := 0.5; x <= w; x += 0.5 {
			dc.LineTo(x, y+amp*math.Sin(2*math.Pi*x/period))
		}
	case matrix.LineSawtooth:
		amp := sw * 1.5
		dc.MoveTo(0, y+amp)
		for i, x := 1, period/2; x <= w+0.001; i, x = i+1, x+period/2 {
			if i%2 == 1 {
				dc.LineTo(x, y-amp)
			} else {
				dc.LineTo(x, y+amp)
			}
		}
	}
	dc.Stroke()
}
