// Package glyph draws cells into tiles: text with freetype faces and
// gg paths, image tiles from integrated resources.
package glyph

import (
	"math"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/math/fixed"

	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/matrix"
)

// Style selects one of the four faces of a family.
type Style uint8

const (
	StyleRegular Style = iota
	StyleBold
	StyleItalic
	StyleBoldItalic
)

func styleOf(t matrix.Traits) Style {
	switch {
	case t.Bold && t.Italic:
		return StyleBoldItalic
	case t.Bold:
		return StyleBold
	case t.Italic:
		return StyleItalic
	default:
		return StyleRegular
	}
}

// Faces is a font family at one pixel size. Families loaded from a single
// file have no dedicated bold or italic face; those styles are synthesized
// by the renderer.
type Faces struct {
	faces     [4]font.Face
	synthetic [4]bool
	px        float64
}

// LoadFaces loads the TrueType file at path in px pixels. An empty path
// loads the embedded Go Mono family.
func LoadFaces(path string, px float64) (*Faces, error) {
	if px <= 0 {
		px = matrix.DefaultFontPixels
	}
	if path == `` {
		return goMono(px)
	}
	ttf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err)
	}
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, errors.WrapPrefix(err, path, 0)
	}
	face := newFace(f, px)
	return &Faces{
		faces:     [4]font.Face{face, face, face, face},
		synthetic: [4]bool{false, true, true, true},
		px:        px,
	}, nil
}

func goMono(px float64) (*Faces, error) {
	fs := &Faces{px: px}
	for i, ttf := range [4][]byte{gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF} {
		f, err := truetype.Parse(ttf)
		if err != nil {
			return nil, errors.New(err)
		}
		fs.faces[i] = newFace(f, px)
	}
	return fs, nil
}

func newFace(f *truetype.Font, px float64) font.Face {
	// at 72 DPI points are pixels
	return truetype.NewFace(f, &truetype.Options{
		Size:    px,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Face returns the face for the style and whether bold or italic has to be
// emulated.
func (fs *Faces) Face(t matrix.Traits) (face font.Face, emboldened, sheared bool) {
	s := styleOf(t)
	face = fs.faces[s]
	if fs.synthetic[s] {
		emboldened, sheared = t.Bold, t.Italic
	}
	return face, emboldened, sheared
}

// Pixels is the em size of the faces.
func (fs *Faces) Pixels() float64 { return fs.px }

func (fs *Faces) Close() error {
	var errs []error
	seen := make(map[font.Face]struct{}, len(fs.faces))
	for _, f := range fs.faces {
		if f == nil {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Metrics derives the cell inscription from the regular face: the advance
// of a wide glyph and the line height, with the baseline as vertical
// offset.
func (fs *Faces) Metrics() matrix.Inscription {
	face := fs.faces[StyleRegular]
	m := face.Metrics()
	adv, ok := face.GlyphAdvance('M')
	if !ok || adv <= 0 {
		adv = fixed.I(int(math.Ceil(fs.px / 2)))
	}
	height := m.Height
	if asc := m.Ascent + m.Descent; asc > height {
		height = asc
	}
	return matrix.Inscription{
		StrokeWidth:    float32(max(1, math.Round(fs.px/14))),
		CellWidth:      math.Ceil(fixedFloat(adv)),
		CellHeight:     math.Ceil(fixedFloat(height)),
		VerticalOffset: math.Ceil(fixedFloat(m.Ascent)),
	}
}

func fixedFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
