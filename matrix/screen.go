package matrix

// Screen is the cell image owned by a terminal application together with
// the area it covers. Cells are stored row-major.
type Screen struct {
	area    Area
	cells   []Cell
	scratch []Cell
}

// NewScreen allocates a blank screen of lines x span cells.
func NewScreen(lines, span uint16) *Screen {
	s := &Screen{}
	s.Resize(lines, span)
	return s
}

// Area is the view covered by the screen.
func (s *Screen) Area() Area {
	if s == nil {
		return Area{}
	}
	return s.area
}

// Cells exposes the backing image, row-major.
func (s *Screen) Cells() []Cell {
	if s == nil {
		return nil
	}
	return s.cells
}

func (s *Screen) index(y, x uint16) (int, bool) {
	if s == nil {
		return 0, false
	}
	ry := int(y) - int(s.area.TopOffset)
	rx := int(x) - int(s.area.LeftOffset)
	if ry < 0 || rx < 0 || ry >= int(s.area.Lines) || rx >= int(s.area.Span) {
		return 0, false
	}
	return ry*int(s.area.Span) + rx, true
}

// Cell returns the cell at line y, cell x. Positions outside of the screen
// yield Blank.
func (s *Screen) Cell(y, x uint16) Cell {
	i, ok := s.index(y, x)
	if !ok {
		return Blank
	}
	return s.cells[i]
}

// Set writes the cell at line y, cell x; positions outside are ignored.
func (s *Screen) Set(y, x uint16, c Cell) bool {
	i, ok := s.index(y, x)
	if ok {
		s.cells[i] = c
	}
	return ok
}

// Rewrite stores cells into area in row-major order. It stops at the end
// of cells or when the cursor passes the last line of the screen. Cells
// mapped to positions outside of the screen are skipped. The number of
// written cells is returned.
func (s *Screen) Rewrite(area Area, cells []Cell) int {
	if s == nil || area.Empty() {
		return 0
	}
	var n, i int
	area.Each(func(y, x uint16) bool {
		if i >= len(cells) || int(y) >= s.area.YLimit() {
			return false
		}
		if s.Set(y, x, cells[i]) {
			n++
		}
		i++
		return true
	})
	return n
}

// Select returns a copy of the cells of area constrained to the screen.
func (s *Screen) Select(area Area) []Cell {
	if s == nil {
		return nil
	}
	sel := Intersect(s.area, area)
	ret := make([]Cell, 0, sel.Volume())
	sel.Each(func(y, x uint16) bool {
		ret = append(ret, s.Cell(y, x))
		return true
	})
	return ret
}

// Fill sets all cells of area to c.
func (s *Screen) Fill(area Area, c Cell) {
	if s == nil {
		return
	}
	Intersect(s.area, area).Each(func(y, x uint16) bool {
		s.Set(y, x, c)
		return true
	})
}

// ReplicateCells copies the cells of src to dst.
//
// Both areas are constrained to the screen and reduced to their common
// size; overlapping areas are copied through a scratch buffer. The
// effective destination is returned, it is empty when nothing was copied.
func (s *Screen) ReplicateCells(dst, src Area) Area {
	if s == nil {
		return Area{}
	}
	dst, src = ConstrainReplication(s.area, dst, src)
	if src.Empty() {
		return Area{}
	}
	vol := src.Volume()
	if cap(s.scratch) < vol {
		s.scratch = make([]Cell, vol)
	}
	buf := s.scratch[:0]
	src.Each(func(y, x uint16) bool {
		buf = append(buf, s.Cell(y, x))
		return true
	})
	s.Rewrite(dst, buf)
	return dst
}

// ConstrainReplication limits a replication of src to dst against bounds.
// The returned destination and source always have identical extents.
func ConstrainReplication(bounds, dst, src Area) (Area, Area) {
	src = Intersect(bounds, src)
	dst.Lines = src.Lines
	dst.Span = src.Span
	dst = Intersect(bounds, dst)
	src.Lines = min(src.Lines, dst.Lines)
	src.Span = min(src.Span, dst.Span)
	dst.Lines = src.Lines
	dst.Span = src.Span
	return dst, src
}

// Resize changes the extent of the screen keeping the cells of the
// overlapping region; new cells are blank.
func (s *Screen) Resize(lines, span uint16) {
	if s == nil {
		return
	}
	old := s.area
	oldCells := s.cells
	s.area = Area{TopOffset: old.TopOffset, LeftOffset: old.LeftOffset, Lines: lines, Span: span}
	s.cells = make([]Cell, s.area.Volume())
	for i := range s.cells {
		s.cells[i] = Blank
	}
	keep := Intersect(old, s.area)
	keep.Each(func(y, x uint16) bool {
		ry := int(y) - int(old.TopOffset)
		rx := int(x) - int(old.LeftOffset)
		s.Set(y, x, oldCells[ry*int(old.Span)+rx])
		return true
	})
	s.scratch = nil
}
