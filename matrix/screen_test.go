package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/cellmatrix/matrix"
)

func letters(s string) []matrix.Cell {
	ret := make([]matrix.Cell, 0, len(s))
	for _, r := range s {
		ret = append(ret, matrix.NewGlyph().Inscribe(r, 0).Cell())
	}
	return ret
}

func text(cells []matrix.Cell) string {
	var rs []rune
	for _, c := range cells {
		if c.Codepoint() < 0 {
			rs = append(rs, '.')
			continue
		}
		rs = append(rs, rune(c.Codepoint()))
	}
	return string(rs)
}

func TestScreenRewriteSelect(t *testing.T) {
	s := matrix.NewScreen(3, 4)
	n := s.Rewrite(matrix.NewArea(0, 1, 2, 2), letters(`abcdef`))
	assert.Equal(t, 4, n, `stops after the area`)
	assert.Equal(t, `.ab..cd.....`, text(s.Cells()))
	assert.Equal(t, `ab`, text(s.Select(matrix.NewArea(0, 1, 1, 2))))
	assert.Equal(t, `d.`, text(s.Select(matrix.NewArea(1, 2, 5, 5)))[:2])
}

func TestScreenRewriteStopsAtEdge(t *testing.T) {
	s := matrix.NewScreen(2, 2)
	n := s.Rewrite(matrix.NewArea(1, 0, 3, 2), letters(`abcdef`))
	assert.Equal(t, 2, n)
	assert.Equal(t, `..ab`, text(s.Cells()))
}

func TestScreenReplicateOverlapping(t *testing.T) {
	s := matrix.NewScreen(4, 3)
	s.Rewrite(s.Area(), letters(`abcdefghijkl`))
	// scroll up by one line
	dst := s.ReplicateCells(matrix.NewArea(0, 0, 3, 3), matrix.NewArea(1, 0, 3, 3))
	assert.Equal(t, matrix.NewArea(0, 0, 3, 3), dst)
	assert.Equal(t, `defghijkljkl`, text(s.Cells()))

	// scroll down by one line, source overhangs the screen
	s.Rewrite(s.Area(), letters(`abcdefghijkl`))
	dst = s.ReplicateCells(matrix.NewArea(1, 0, 9, 9), matrix.NewArea(0, 0, 9, 9))
	assert.Equal(t, matrix.NewArea(1, 0, 3, 3), dst)
	assert.Equal(t, `abcabcdefghi`, text(s.Cells()))
}

func TestConstrainReplication(t *testing.T) {
	bounds := matrix.NewArea(0, 0, 10, 10)
	dst, src := matrix.ConstrainReplication(bounds, matrix.NewArea(8, 8, 1, 1), matrix.NewArea(0, 0, 5, 5))
	assert.Equal(t, matrix.NewArea(8, 8, 2, 2), dst)
	assert.Equal(t, matrix.NewArea(0, 0, 2, 2), src)

	dst, src = matrix.ConstrainReplication(bounds, matrix.NewArea(0, 0, 1, 1), matrix.NewArea(20, 20, 5, 5))
	assert.True(t, dst.Empty())
	assert.True(t, src.Empty())
}

func TestScreenResizeKeepsContent(t *testing.T) {
	s := matrix.NewScreen(2, 2)
	s.Rewrite(s.Area(), letters(`abcd`))
	s.Resize(3, 1)
	require.Equal(t, matrix.NewArea(0, 0, 3, 1), s.Area())
	assert.Equal(t, `ac.`, text(s.Cells()))
	assert.Equal(t, matrix.Blank, s.Cell(7, 7))
}
