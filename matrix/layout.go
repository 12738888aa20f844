package matrix

import (
	"encoding/binary"
	"math"

	"github.com/srlehn/cellmatrix/internal/consts"
	"github.com/srlehn/cellmatrix/internal/errors"
)

// Fixed little-endian layouts used by the mirror transport and snapshots.
const (
	AreaSize       = 8
	CellSize       = 20
	ParametersSize = 64
)

var le = binary.LittleEndian

// AppendBinary appends the 8 byte layout: top, left, lines, span.
func (a Area) AppendBinary(b []byte) ([]byte, error) {
	b = le.AppendUint16(b, a.TopOffset)
	b = le.AppendUint16(b, a.LeftOffset)
	b = le.AppendUint16(b, a.Lines)
	b = le.AppendUint16(b, a.Span)
	return b, nil
}

// DecodeArea reads an area from exactly AreaSize bytes.
func DecodeArea(b []byte) (Area, error) {
	if len(b) != AreaSize {
		return Area{}, errors.WrapPrefix(consts.ErrLayoutSize, `area`, 0)
	}
	return Area{
		TopOffset:  le.Uint16(b[0:]),
		LeftOffset: le.Uint16(b[2:]),
		Lines:      le.Uint16(b[4:]),
		Span:       le.Uint16(b[6:]),
	}, nil
}

// Cell layout:
//
//	0  codepoint / identity  int32
//	4  fill                  uint32
//	8  window                uint8 (low 4 bits)
//	9  reserved
//	10 traits | xtile        uint16
//	12 stroke | ytile, 0     uint32
//	16 line   | 0            uint32

// AppendBinary appends the CellSize byte layout.
func (c Cell) AppendBinary(b []byte) ([]byte, error) {
	b = le.AppendUint32(b, uint32(c.Codepoint()))
	b = le.AppendUint32(b, uint32(c.Fill()))
	b = append(b, c.Window()&0xF, 0)
	switch c.kind {
	case KindImageTile:
		b = le.AppendUint16(b, c.tile.XTile)
		b = le.AppendUint16(b, c.tile.YTile)
		b = le.AppendUint16(b, 0)
		b = le.AppendUint32(b, 0)
	default:
		b = le.AppendUint16(b, c.glyph.Traits.Pack())
		b = le.AppendUint32(b, uint32(c.glyph.Stroke))
		b = le.AppendUint32(b, uint32(c.glyph.Line))
	}
	return b, nil
}

// DecodeCell reads a cell from exactly CellSize bytes.
func DecodeCell(b []byte) (Cell, error) {
	if len(b) != CellSize {
		return Blank, errors.WrapPrefix(consts.ErrLayoutSize, `cell`, 0)
	}
	cp := int32(le.Uint32(b[0:]))
	fill := Color(le.Uint32(b[4:]))
	window := b[8] & 0xF
	if window == ImageTileWindow {
		return ImageTile{
			Identity: cp,
			Fill:     fill,
			XTile:    le.Uint16(b[10:]),
			YTile:    le.Uint16(b[12:]),
		}.Cell(), nil
	}
	return Glyph{
		Codepoint: cp,
		Window:    min(window, MaxGlyphWindow),
		Fill:      fill,
		Traits:    UnpackTraits(le.Uint16(b[10:])),
		Stroke:    Color(le.Uint32(b[12:])),
		Line:      Color(le.Uint32(b[16:])),
	}.Cell(), nil
}

// AppendCells appends the layout of all cells.
func AppendCells(b []byte, cells []Cell) []byte {
	for _, c := range cells {
		b, _ = c.AppendBinary(b)
	}
	return b
}

// DecodeCells reads len(b)/CellSize cells.
func DecodeCells(b []byte) ([]Cell, error) {
	if len(b)%CellSize != 0 {
		return nil, errors.WrapPrefix(consts.ErrLayoutSize, `cells`, 0)
	}
	cells := make([]Cell, 0, len(b)/CellSize)
	for off := 0; off < len(b); off += CellSize {
		c, err := DecodeCell(b[off : off+CellSize])
		if err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, nil
}

// AppendBinary appends the ParametersSize byte layout.
func (p Parameters) AppendBinary(b []byte) ([]byte, error) {
	for _, f := range [...]float64{
		p.ScaleFactor,
		p.XScreenUnits, p.YScreenUnits,
		p.XCellUnits, p.YCellUnits, p.VCellUnits,
	} {
		b = le.AppendUint64(b, math.Float64bits(f))
	}
	b = le.AppendUint16(b, p.XCells)
	b = le.AppendUint16(b, p.YCells)
	b = le.AppendUint32(b, 0)
	b = le.AppendUint64(b, p.VCells)
	return b, nil
}

// DecodeParameters reads parameters from exactly ParametersSize bytes.
func DecodeParameters(b []byte) (Parameters, error) {
	if len(b) != ParametersSize {
		return Parameters{}, errors.WrapPrefix(consts.ErrLayoutSize, `matrix parameters`, 0)
	}
	f := func(i int) float64 { return math.Float64frombits(le.Uint64(b[i*8:])) }
	return Parameters{
		ScaleFactor:  f(0),
		XScreenUnits: f(1),
		YScreenUnits: f(2),
		XCellUnits:   f(3),
		YCellUnits:   f(4),
		VCellUnits:   f(5),
		XCells:       le.Uint16(b[48:]),
		YCells:       le.Uint16(b[50:]),
		VCells:       le.Uint64(b[56:]),
	}, nil
}
