package glyph

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/cellmatrix/matrix"
	"github.com/srlehn/cellmatrix/resize"
)

type exprTable map[int32]string

func (e exprTable) Lookup(cp int32) (string, bool) {
	s, ok := e[cp]
	return s, ok
}

func loadMono(t *testing.T) *Faces {
	t.Helper()
	fs, err := LoadFaces(``, 16)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fs.Close() })
	return fs
}

func renderCell(t *testing.T, r *Renderer, size image.Point, c matrix.Cell) *image.RGBA {
	t.Helper()
	dst := image.NewRGBA(image.Rectangle{Max: size})
	r.RenderTile(dst, dst.Bounds(), c)
	return dst
}

func countColor(img *image.RGBA, rect image.Rectangle, want color.RGBA) int {
	n := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if img.RGBAAt(x, y) == want {
				n++
			}
		}
	}
	return n
}

func rgba(c matrix.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

var (
	white = matrix.RGB(0xff, 0xff, 0xff)
	black = matrix.RGB(0, 0, 0)
	red   = matrix.RGB(0xff, 0, 0)
)

func TestMetrics(t *testing.T) {
	fs := loadMono(t)
	ins := fs.Metrics()
	assert.InDelta(t, 10, ins.CellWidth, 1)
	assert.GreaterOrEqual(t, ins.CellHeight, 16.0)
	assert.Greater(t, ins.VerticalOffset, 0.0)
	assert.Less(t, ins.VerticalOffset, ins.CellHeight)
	assert.Equal(t, float32(1), ins.StrokeWidth)
	assert.Equal(t, 16.0, fs.Pixels())
}

func TestFacesStyles(t *testing.T) {
	fs := loadMono(t)
	regular, b, i := fs.Face(matrix.Traits{})
	assert.False(t, b || i)
	bold, b, i := fs.Face(matrix.Traits{Bold: true})
	assert.False(t, b || i, `go mono has a bold face`)
	assert.NotEqual(t, regular, bold)

	_, err := LoadFaces(filepath.Join(t.TempDir(), `missing.ttf`), 12)
	assert.Error(t, err)
}

func TestRenderGlyph(t *testing.T) {
	fs := loadMono(t)
	ins := fs.Metrics()
	r := NewRenderer(fs, ins, exprTable{-2: `ab`}, nil, nil)
	size := image.Pt(int(ins.CellWidth), int(ins.CellHeight))
	full := image.Rectangle{Max: size}

	base := matrix.NewGlyph().Update(matrix.WithFill(black), matrix.WithStroke(white), matrix.WithLine(red))

	blank := renderCell(t, r, size, base.Cell())
	assert.Equal(t, size.X*size.Y, countColor(blank, full, rgba(black)), `empty glyph is only fill`)

	x := renderCell(t, r, size, base.Inscribe('X', 0).Cell())
	assert.Less(t, countColor(x, full, rgba(black)), size.X*size.Y, `stroke drawn`)

	underlined := renderCell(t, r, size, base.Update(matrix.WithUnderline(matrix.LineSolid)).Cell())
	assert.Positive(t, countColor(underlined, full, rgba(red)))
	lower := image.Rect(0, size.Y/2, size.X, size.Y)
	assert.Equal(t, countColor(underlined, full, rgba(red)), countColor(underlined, lower, rgba(red)), `underline below the middle`)

	for _, p := range []matrix.LinePattern{matrix.LineThick, matrix.LineDouble, matrix.LineDashed, matrix.LineDotted, matrix.LineWavy, matrix.LineSawtooth} {
		t.Run(p.String(), func(t *testing.T) {
			img := renderCell(t, r, size, base.Update(matrix.WithStrikethrough(p)).Cell())
			assert.NotEqual(t, size.X*size.Y, countColor(img, full, rgba(black)))
		})
	}

	expr := renderCell(t, r, size, base.Inscribe(-2, 0).Cell())
	assert.Less(t, countColor(expr, full, rgba(black)), size.X*size.Y, `expression resolved`)
	unknown := renderCell(t, r, size, base.Inscribe(-7, 0).Cell())
	assert.Equal(t, size.X*size.Y, countColor(unknown, full, rgba(black)))
}

func TestRenderWindows(t *testing.T) {
	fs := loadMono(t)
	ins := fs.Metrics()
	r := NewRenderer(fs, ins, exprTable{-2: `WIDE`}, nil, nil)
	size := image.Pt(int(ins.CellWidth), int(ins.CellHeight))
	g := matrix.NewGlyph().Update(matrix.WithFill(black), matrix.WithStroke(white))
	left := renderCell(t, r, size, g.Inscribe(-2, 0).Cell())
	right := renderCell(t, r, size, g.Inscribe(-2, 1).Cell())
	assert.NotEqual(t, left.Pix, right.Pix)
}

func TestText(t *testing.T) {
	r := NewRenderer(nil, matrix.Inscription{}, exprTable{-2: "\u00df"}, nil, nil)
	g := matrix.NewGlyph()
	assert.Equal(t, `a`, r.Text(g.Inscribe('a', 0)))
	assert.Equal(t, `A`, r.Text(g.Inscribe('a', 0).Update(matrix.WithCaps(true))))
	assert.Equal(t, ``, r.Text(g))
	assert.Equal(t, ``, r.Text(g.Inscribe(0x110000, 0)))
	assert.Equal(t, "\u00df", r.Text(g.Inscribe(-2, 0)))
}

func writePNG(t *testing.T, w, h int, c color.Color) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), `img.png`)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestResources(t *testing.T) {
	cell := image.Pt(4, 8)
	rs := NewResources(cell, resize.ApproxBiLinear())
	path := writePNG(t, 16, 16, color.NRGBA{G: 0xff, A: 0xff})

	id, err := rs.Integrate(path, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, int32(1), id)
	again, err := rs.Integrate(path, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, id, again)
	other, err := rs.Integrate(path, 1, 1)
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
	assert.Equal(t, 2, rs.Len())

	lines, span, ok := rs.Grid(id)
	require.True(t, ok)
	assert.Equal(t, [2]uint16{2, 4}, [2]uint16{lines, span})

	img, rect, ok := rs.Tile(id, 1, 1)
	require.True(t, ok)
	assert.Equal(t, image.Rect(4, 8, 8, 16), rect)
	assert.Equal(t, image.Rect(0, 0, 16, 16), img.Bounds())
	_, _, ok = rs.Tile(id, 4, 0)
	assert.False(t, ok, `x tile outside the grid`)
	_, _, ok = rs.Tile(99, 0, 0)
	assert.False(t, ok)

	require.NoError(t, rs.SetCellSize(image.Pt(2, 2)))
	img, rect, ok = rs.Tile(id, 3, 1)
	require.True(t, ok)
	assert.Equal(t, image.Rect(6, 2, 8, 4), rect)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())

	_, err = rs.Integrate(filepath.Join(t.TempDir(), `none.png`), 1, 1)
	assert.Error(t, err)
	_, err = rs.Integrate(path, 0, 1)
	assert.Error(t, err)
}

func TestRenderImageTile(t *testing.T) {
	cell := image.Pt(4, 4)
	rs := NewResources(cell, resize.ApproxBiLinear())
	green := color.RGBA{G: 0xff, A: 0xff}
	id, err := rs.Integrate(writePNG(t, 8, 8, green), 2, 2)
	require.NoError(t, err)

	r := NewRenderer(nil, matrix.Inscription{}, nil, rs, nil)
	tile := matrix.ImageTile{Identity: id, Fill: black}
	img := renderCell(t, r, cell, tile.Switch(1, 1).Cell())
	assert.Equal(t, 16, countColor(img, img.Bounds(), green))

	missing := renderCell(t, r, cell, matrix.ImageTile{Identity: 42, Fill: red}.Cell())
	assert.Equal(t, 16, countColor(missing, missing.Bounds(), rgba(red)))
}
