// Package matrix holds the cell matrix data model: areas in cell
// coordinates, colors, text traits, cells and the geometry parameters that
// map cells to screen units.
package matrix

import (
	"fmt"
	"image"
)

// Area is an axis aligned rectangle in cell coordinates.
// Areas with zero Lines or zero Span are valid and denote nothing.
type Area struct {
	TopOffset  uint16
	LeftOffset uint16
	Lines      uint16
	Span       uint16
}

// NewArea returns the area at (top, left) with the given extent.
func NewArea(top, left, lines, span uint16) Area {
	return Area{TopOffset: top, LeftOffset: left, Lines: lines, Span: span}
}

// Move returns the area translated by dy lines and dx cells.
// The result is not clamped.
func (a Area) Move(dy, dx int) Area {
	a.TopOffset = uint16(int(a.TopOffset) + dy)
	a.LeftOffset = uint16(int(a.LeftOffset) + dx)
	return a
}

// Resize returns the area with its extent changed by dlines and dspan.
// The result is not clamped.
func (a Area) Resize(dlines, dspan int) Area {
	a.Lines = uint16(int(a.Lines) + dlines)
	a.Span = uint16(int(a.Span) + dspan)
	return a
}

// YLimit is the first line below the area.
func (a Area) YLimit() int { return int(a.TopOffset) + int(a.Lines) }

// XLimit is the first cell right of the area.
func (a Area) XLimit() int { return int(a.LeftOffset) + int(a.Span) }

// Volume is the number of cells covered by the area.
func (a Area) Volume() int { return int(a.Lines) * int(a.Span) }

// Empty reports whether the area covers no cells.
func (a Area) Empty() bool { return a.Lines == 0 || a.Span == 0 }

// Contains reports whether b lies completely inside of a.
// An empty b is contained by any area.
func (a Area) Contains(b Area) bool {
	if b.Empty() {
		return true
	}
	return b.TopOffset >= a.TopOffset && b.LeftOffset >= a.LeftOffset &&
		b.YLimit() <= a.YLimit() && b.XLimit() <= a.XLimit()
}

// Overlaps reports whether a and b share at least one cell.
func (a Area) Overlaps(b Area) bool { return !Intersect(a, b).Empty() }

// Intersect constrains latter to bounds.
//
// The offsets of the result are the maximum of both offsets, the extents
// reach up to the smaller of both limits. Extents never go negative, areas
// that do not overlap produce an empty result.
func Intersect(bounds, latter Area) Area {
	top := max(bounds.TopOffset, latter.TopOffset)
	left := max(bounds.LeftOffset, latter.LeftOffset)
	ylimit := min(bounds.YLimit(), latter.YLimit())
	xlimit := min(bounds.XLimit(), latter.XLimit())
	return Area{
		TopOffset:  top,
		LeftOffset: left,
		Lines:      uint16(clampNonNegative(ylimit - int(top))),
		Span:       uint16(clampNonNegative(xlimit - int(left))),
	}
}

// Each calls fn for every cell of the area in row-major order until fn
// returns false.
func (a Area) Each(fn func(y, x uint16) bool) {
	if fn == nil {
		return
	}
	for y := 0; y < int(a.Lines); y++ {
		for x := 0; x < int(a.Span); x++ {
			if !fn(a.TopOffset+uint16(y), a.LeftOffset+uint16(x)) {
				return
			}
		}
	}
}

// Rect converts the area to a pixel rectangle for cells of the given size.
func (a Area) Rect(cell image.Point) image.Rectangle {
	return image.Rect(
		int(a.LeftOffset)*cell.X, int(a.TopOffset)*cell.Y,
		a.XLimit()*cell.X, a.YLimit()*cell.Y,
	)
}

func (a Area) String() string {
	return fmt.Sprintf("[^%d<%d %dx%d]", a.TopOffset, a.LeftOffset, a.Lines, a.Span)
}
