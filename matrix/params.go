package matrix

import (
	"image"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/srlehn/cellmatrix/internal/consts"
)

// DefaultFontPixels is the font size used when TERMINAL_FONT is unset or
// malformed.
const DefaultFontPixels = 16

// Inscription describes how glyphs are placed inside of a cell.
// All values except StrokeWidth are in system units.
type Inscription struct {
	StrokeWidth      float32
	CellWidth        float64
	CellHeight       float64
	HorizontalPad    float64
	VerticalPad      float64
	HorizontalOffset float64
	VerticalOffset   float64
}

// DefaultInscription approximates the cell size of a monospace font of px
// pixels.
func DefaultInscription(px float64) Inscription {
	if px <= 0.001 {
		px = DefaultFontPixels
	}
	gh := px + px/5.15
	return Inscription{
		StrokeWidth: 1,
		CellWidth:   math.Ceil(gh / 2),
		CellHeight:  math.Ceil(gh),
	}
}

// ParseFontSpec splits a font description like "Monospace Bold 12" or
// "/usr/share/fonts/mono.ttf 14px" into the family part and the size in
// pixels. Point sizes are converted with 4/3 pixels per point.
func ParseFontSpec(spec string) (family string, px float64, ok bool) {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return ``, 0, false
	}
	last := fields[len(fields)-1]
	absolute := strings.HasSuffix(last, `px`)
	size, err := strconv.ParseFloat(strings.TrimSuffix(last, `px`), 64)
	if err != nil || size <= 0.001 {
		return strings.Join(fields, ` `), 0, false
	}
	if !absolute {
		size *= 1.3333
	}
	return strings.Join(fields[:len(fields)-1], ` `), size, true
}

// FontPixelsFromEnv reads the font size from TERMINAL_FONT.
func FontPixelsFromEnv() float64 {
	if _, px, ok := ParseFontSpec(os.Getenv(consts.EnvFont)); ok {
		return px
	}
	return DefaultFontPixels
}

// Parameters are the derived geometry of a cell matrix on a screen.
// They are always computed with ConfigureCells and CalculateDimensions.
type Parameters struct {
	ScaleFactor  float64
	XScreenUnits float64
	YScreenUnits float64
	XCellUnits   float64
	YCellUnits   float64
	VCellUnits   float64
	XCells       uint16
	YCells       uint16
	VCells       uint64
}

// NewParameters configures the cells and calculates the dimensions for a
// screen of width x height system units.
func NewParameters(ip Inscription, scale, width, height float64) Parameters {
	var p Parameters
	p.ConfigureCells(ip, scale)
	p.CalculateDimensions(width, height)
	return p
}

// ConfigureCells sets the cell units from the inscription, aligned on
// whole pixels of the given scale.
func (p *Parameters) ConfigureCells(ip Inscription, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	p.ScaleFactor = scale
	p.XCellUnits = math.Ceil((ip.CellWidth+ip.HorizontalPad)*scale) / scale
	p.YCellUnits = math.Ceil((ip.CellHeight+ip.VerticalPad)*scale) / scale
	p.VCellUnits = p.XCellUnits * p.YCellUnits
}

// CalculateDimensions fits the configured cells into the screen size.
// The screen units are reduced to whole cells.
func (p *Parameters) CalculateDimensions(width, height float64) {
	var xc, yc float64
	if p.XCellUnits > 0 {
		xc = math.Floor(width / p.XCellUnits)
	}
	if p.YCellUnits > 0 {
		yc = math.Floor(height / p.YCellUnits)
	}
	p.XCells = uint16(Clamp(xc, 0, math.MaxUint16))
	p.YCells = uint16(Clamp(yc, 0, math.MaxUint16))
	p.VCells = uint64(p.XCells) * uint64(p.YCells)
	p.XScreenUnits = float64(p.XCells) * p.XCellUnits
	p.YScreenUnits = float64(p.YCells) * p.YCellUnits
}

// Snapshot returns the parameters of a matrix limited to the area.
func (p Parameters) Snapshot(area Area) Parameters {
	p.XCells = area.Span
	p.YCells = area.Lines
	p.VCells = uint64(area.Span) * uint64(area.Lines)
	p.XScreenUnits = float64(p.XCells) * p.XCellUnits
	p.YScreenUnits = float64(p.YCells) * p.YCellUnits
	return p
}

// Bounds is the area of all cells.
func (p Parameters) Bounds() Area {
	return Area{Lines: p.YCells, Span: p.XCells}
}

// CellPixels is the pixel size of one cell.
func (p Parameters) CellPixels() image.Point {
	s := p.ScaleFactor
	if s <= 0 {
		s = 1
	}
	return image.Pt(int(math.Round(p.XCellUnits*s)), int(math.Round(p.YCellUnits*s)))
}

// ScreenPixels is the pixel size of the whole matrix.
func (p Parameters) ScreenPixels() image.Point {
	c := p.CellPixels()
	return image.Pt(c.X*int(p.XCells), c.Y*int(p.YCells))
}
