package tilecache_test

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/cellmatrix/internal/consts"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/matrix"
	"github.com/srlehn/cellmatrix/tilecache"
)

var cellSize = image.Pt(4, 6)

type fillRenderer struct {
	renders map[matrix.Cell]int
}

func newFillRenderer() *fillRenderer {
	return &fillRenderer{renders: make(map[matrix.Cell]int)}
}

func (f *fillRenderer) RenderTile(dst draw.Image, r image.Rectangle, c matrix.Cell) {
	f.renders[c]++
	draw.Draw(dst, r, image.NewUniform(c.Fill().NRGBA()), image.Point{}, draw.Src)
}

func cellNo(i int) matrix.Cell {
	return matrix.NewGlyph().Inscribe('a', 0).Update(
		matrix.WithFill(matrix.RGB(uint8(i), uint8(i>>8), 0x7f)),
	).Cell()
}

func assertTile(t *testing.T, tile tilecache.Tile, cell matrix.Cell) {
	t.Helper()
	require.NotNil(t, tile.Image)
	require.Equal(t, cellSize, tile.Rect.Size())
	require.True(t, tile.Rect.In(tile.Image.Bounds()), `tile outside atlas`)
	want := color.RGBAModel.Convert(cell.Fill().NRGBA())
	for _, p := range []image.Point{tile.Rect.Min, tile.Rect.Max.Sub(image.Pt(1, 1))} {
		assert.Equal(t, want, tile.Image.At(p.X, p.Y))
	}
}

// sameBucket returns n distinct cells hashing into one bucket.
func sameBucket(t *testing.T, buckets, n int) []matrix.Cell {
	t.Helper()
	var ret []matrix.Cell
	target := -1
	for i := 0; len(ret) < n && i < 1<<16; i++ {
		c := cellNo(i)
		b := int(tilecache.Hash(c) % uint32(buckets))
		if target < 0 {
			target = b
		}
		if b == target {
			ret = append(ret, c)
		}
	}
	require.Len(t, ret, n)
	return ret
}

func TestNew(t *testing.T) {
	_, err := tilecache.New(cellSize, nil, tilecache.DefaultConfig())
	assert.Error(t, err)
	_, err = tilecache.New(image.Pt(0, 5), newFillRenderer(), tilecache.DefaultConfig())
	assert.True(t, errors.Is(err, consts.ErrCellSize))

	c, err := tilecache.New(cellSize, newFillRenderer(), tilecache.Config{SwapMargin: -1})
	require.NoError(t, err)
	cfg := c.Config()
	assert.Equal(t, tilecache.DefaultConfig(), cfg)
	assert.Equal(t, 16*16*16, c.Capacity())
	assert.Equal(t, 128, cfg.Distribution())
	assert.Equal(t, cfg.Distribution()*cfg.Allocation(), c.Allocated())
	require.Len(t, c.Atlas(), 16)
	assert.Equal(t, image.Rect(0, 0, 64, 96), c.Atlas()[0].Bounds())
	assert.Zero(t, c.Len())
}

func TestConfigDefaults(t *testing.T) {
	tests := map[string]struct {
		cfg  tilecache.Config
		want tilecache.Config
	}{
		`zero`: {
			tilecache.Config{},
			tilecache.Config{Root: 16, SampleThreshold: 50, SwapMargin: 0, ReclaimDivisor: 4},
		},
		`unset margin`: {
			tilecache.Config{Root: 4, SwapMargin: -1},
			tilecache.Config{Root: 4, SampleThreshold: 50, SwapMargin: 5, ReclaimDivisor: 4},
		},
		`explicit`: {
			tilecache.Config{Root: 2, SampleThreshold: 10, SwapMargin: 1, ReclaimDivisor: 2},
			tilecache.Config{Root: 2, SampleThreshold: 10, SwapMargin: 1, ReclaimDivisor: 2},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := tilecache.New(cellSize, newFillRenderer(), tc.cfg)
			require.NoError(t, err)
			assert.Equal(t, tc.want, c.Config())
		})
	}
}

func TestConfigSizes(t *testing.T) {
	tests := []struct {
		root, limit, distribution int
	}{
		{1, 1, 1},
		{2, 8, 2},
		{3, 27, 3},
		{4, 64, 8},
		{16, 4096, 128},
	}
	for _, tt := range tests {
		cfg := tilecache.Config{Root: tt.root}
		assert.Equal(t, tt.limit, cfg.Limit(), `root %d`, tt.root)
		assert.Equal(t, tt.distribution, cfg.Distribution(), `root %d`, tt.root)
		assert.GreaterOrEqual(t, cfg.Limit(), cfg.Distribution()*cfg.Allocation())
	}
}

func TestAcquireRendersOnce(t *testing.T) {
	r := newFillRenderer()
	c, err := tilecache.New(cellSize, r, tilecache.DefaultConfig())
	require.NoError(t, err)

	a, b := cellNo(1), cellNo(2)
	ta := c.Acquire(a)
	assertTile(t, ta, a)
	tb := c.Acquire(b)
	assertTile(t, tb, b)
	assert.NotEqual(t, ta, tb)

	for range 10 {
		assert.Equal(t, ta, c.Acquire(a))
	}
	assert.Equal(t, 1, r.renders[a])
	assert.Equal(t, 1, r.renders[b])
	st := c.Stats()
	assert.Equal(t, uint64(10), st.Hits)
	assert.Equal(t, uint64(2), st.Misses)
	assert.Equal(t, 2, c.Len())
}

func TestAcquireKeysOnWholeCell(t *testing.T) {
	r := newFillRenderer()
	c, err := tilecache.New(cellSize, r, tilecache.Config{Root: 4})
	require.NoError(t, err)

	g, _ := cellNo(3).Glyph()
	cells := []matrix.Cell{
		g.Cell(),
		g.Update(matrix.WithBold(true)).Cell(),
		g.Inscribe(g.Codepoint, 1).Cell(),
		g.Update(matrix.WithUnderline(matrix.LineDashed)).Cell(),
		matrix.ImageTile{Identity: g.Codepoint, Fill: g.Fill}.Cell(),
	}
	for _, cell := range cells {
		c.Acquire(cell)
		c.Acquire(cell)
	}
	for _, cell := range cells {
		assert.Equal(t, 1, r.renders[cell], cell.String())
	}
	assert.Equal(t, len(cells), c.Len())
}

func TestAcquireBounded(t *testing.T) {
	r := newFillRenderer()
	c, err := tilecache.New(cellSize, r, tilecache.Config{Root: 2})
	require.NoError(t, err)

	for i := range 500 {
		cell := cellNo(i)
		tile := c.Acquire(cell)
		assertTile(t, tile, cell)
		require.LessOrEqual(t, c.Len(), c.Capacity())
		require.LessOrEqual(t, c.Allocated(), c.Capacity())
	}
	assert.Equal(t, c.Capacity(), c.Allocated())
	assert.Positive(t, c.Stats().Evictions)

	// the latest cell survives and still owns its pixels
	last := cellNo(499)
	assertTile(t, c.Acquire(last), last)
	assert.Equal(t, 1, r.renders[last])
}

func TestAcquireReclaimsWithinBucket(t *testing.T) {
	r := newFillRenderer()
	cfg := tilecache.Config{Root: 2}
	c, err := tilecache.New(cellSize, r, cfg)
	require.NoError(t, err)

	cells := sameBucket(t, cfg.Distribution(), 40)
	for _, cell := range cells {
		assertTile(t, c.Acquire(cell), cell)
	}
	assert.LessOrEqual(t, c.Len(), c.Capacity())
	assert.Positive(t, c.Stats().Evictions)

	// the head of the bucket stays, the tail is overwritten
	first := cells[0]
	assertTile(t, c.Acquire(first), first)
	assert.Equal(t, 1, r.renders[first])
	replaced := cells[len(cells)-2]
	assertTile(t, c.Acquire(replaced), replaced)
	assert.Equal(t, 2, r.renders[replaced])
}

func TestAcquirePromotes(t *testing.T) {
	r := newFillRenderer()
	cfg := tilecache.Config{Root: 4}
	c, err := tilecache.New(cellSize, r, cfg)
	require.NoError(t, err)

	cells := sameBucket(t, cfg.Distribution(), 2)
	rare, common := cells[0], cells[1]
	c.Acquire(rare)
	tile := c.Acquire(common)

	for range c.Config().SampleThreshold + 10 {
		got := c.Acquire(common)
		require.Equal(t, tile, got, `slot moves with its record`)
		assertTile(t, got, common)
	}
	st := c.Stats()
	assert.Equal(t, uint64(1), st.Swaps)

	assertTile(t, c.Acquire(rare), rare)
	assert.Equal(t, 1, r.renders[rare])
	assert.Equal(t, 1, r.renders[common])
}

func TestHashStable(t *testing.T) {
	a := cellNo(9)
	assert.Equal(t, tilecache.Hash(a), tilecache.Hash(cellNo(9)))
	assert.Equal(t, tilecache.Hash(matrix.Blank), tilecache.Hash(matrix.NewGlyph().Cell()))
}
