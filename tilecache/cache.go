// Package tilecache keeps rendered cell tiles in a bounded atlas of images.
//
// Cells are hashed into buckets of records. Each record owns a fixed tile
// slot of the atlas; lookups scan a bucket linearly and promote records that
// are hit more often than their predecessor. Once the atlas is exhausted,
// full buckets drop the tail of their records and reuse the freed slots.
//
// A Cache is not safe for concurrent use.
package tilecache

import (
	"image"
	"image/draw"

	"github.com/srlehn/cellmatrix/internal/consts"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/matrix"
)

// Renderer draws the cell into r of dst. It must depend on the cell alone.
type Renderer interface {
	RenderTile(dst draw.Image, r image.Rectangle, c matrix.Cell)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(dst draw.Image, r image.Rectangle, c matrix.Cell)

func (f RendererFunc) RenderTile(dst draw.Image, r image.Rectangle, c matrix.Cell) { f(dst, r, c) }

// Config sizes the atlas and tunes promotion.
type Config struct {
	// Root is the number of atlas images and the number of tile lines and
	// tile columns of each image.
	Root int
	// SampleThreshold is the number of hits and passes a record collects
	// before its rate is reconsidered.
	SampleThreshold int
	// SwapMargin is the rate difference a record must exceed to move in
	// front of its predecessor. Zero swaps on any higher rate, negative
	// values select the default.
	SwapMargin int
	// ReclaimDivisor selects the share of a full bucket dropped once the
	// atlas is exhausted.
	ReclaimDivisor int
}

func DefaultConfig() Config {
	return Config{
		Root:            16,
		SampleThreshold: 50,
		SwapMargin:      5,
		ReclaimDivisor:  4,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Root <= 0 {
		c.Root = d.Root
	}
	if c.SampleThreshold <= 0 {
		c.SampleThreshold = d.SampleThreshold
	}
	if c.SwapMargin < 0 {
		c.SwapMargin = d.SwapMargin
	}
	if c.ReclaimDivisor <= 0 {
		c.ReclaimDivisor = d.ReclaimDivisor
	}
	return c
}

// Limit is the total number of tile slots.
func (c Config) Limit() int { return c.Root * c.Root * c.Root }

// Allocation is the number of slots a bucket grows by.
func (c Config) Allocation() int { return c.Root }

// Distribution is the number of buckets.
func (c Config) Distribution() int { return c.Root * (max(c.Root, 2) / 2) }

// Tile locates the pixels of a cell in the atlas.
type Tile struct {
	Image *image.RGBA
	Rect  image.Rectangle
}

// Stats are cumulative counters of a cache.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Swaps     uint64
}

type record struct {
	key    matrix.Cell
	hits   int
	passes int
	rate   int
	image  int
	line   int
	cell   int
}

type bucket struct {
	records []record
	count   int
}

type Cache struct {
	cfg      Config
	cellSize image.Point
	renderer Renderer
	atlas    []*image.RGBA
	buckets  []bucket
	next     int
	stats    Stats
}

// New creates a cache for tiles of cellSize pixels.
func New(cellSize image.Point, r Renderer, cfg Config) (*Cache, error) {
	if r == nil {
		return nil, errors.NilParam()
	}
	if cellSize.X <= 0 || cellSize.Y <= 0 {
		return nil, errors.WrapPrefix(consts.ErrCellSize, cellSize.String(), 0)
	}
	cfg = cfg.withDefaults()
	if cfg.Limit() < cfg.Distribution()*cfg.Allocation() {
		return nil, errors.New(consts.ErrAtlasSize)
	}
	c := &Cache{
		cfg:      cfg,
		cellSize: cellSize,
		renderer: r,
		atlas:    make([]*image.RGBA, cfg.Root),
		buckets:  make([]bucket, cfg.Distribution()),
	}
	for i := range c.atlas {
		c.atlas[i] = image.NewRGBA(image.Rect(0, 0, cfg.Root*cellSize.X, cfg.Root*cellSize.Y))
	}
	for i := range c.buckets {
		b := &c.buckets[i]
		b.records = make([]record, 0, cfg.Allocation())
		for range cfg.Allocation() {
			b.records = append(b.records, c.slot(c.next))
			c.next++
		}
	}
	return c, nil
}

// slot assigns the atlas position of slot index i.
func (c *Cache) slot(i int) record {
	root := c.cfg.Root
	square := root * root
	img := i / square
	return record{
		cell:  i % root,
		image: img,
		line:  (i - img*square) / root,
	}
}

// Acquire returns the tile holding the pixels of cell, rendering it into a
// slot when it is not cached.
func (c *Cache) Acquire(cell matrix.Cell) Tile {
	b := &c.buckets[c.bucketOf(cell)]
	prev := 0
	for i := 0; i < b.count; i++ {
		r := &b.records[i]
		if r.key == cell {
			r.hits++
			c.stats.Hits++
			return c.tile(&b.records[c.prioritize(b, prev, i)])
		}
		r.passes++
		c.prioritize(b, prev, i)
		prev = i
	}
	c.stats.Misses++
	r := &b.records[c.allocate(b, cell)]
	t := c.tile(r)
	draw.Draw(t.Image, t.Rect, image.Transparent, image.Point{}, draw.Src)
	c.renderer.RenderTile(t.Image, t.Rect, cell)
	return t
}

func (c *Cache) tile(r *record) Tile {
	origin := image.Pt(r.cell*c.cellSize.X, r.line*c.cellSize.Y)
	return Tile{
		Image: c.atlas[r.image],
		Rect:  image.Rectangle{Min: origin, Max: origin.Add(c.cellSize)},
	}
}

// allocate stores cell in a vacant record of b and returns its index.
func (c *Cache) allocate(b *bucket, cell matrix.Cell) int {
	slots := len(b.records)
	if c.next >= c.cfg.Limit() && b.count >= slots {
		n := b.count / c.cfg.ReclaimDivisor
		b.count -= n
		c.stats.Evictions += uint64(n)
	}
	if b.count >= slots {
		d := min(c.cfg.Allocation(), c.cfg.Limit()-c.next)
		if d > 0 {
			for range d {
				b.records = append(b.records, c.slot(c.next))
				c.next++
			}
		} else {
			// overwrite the last record
			b.count--
			c.stats.Evictions++
		}
	}
	i := b.count
	r := &b.records[i]
	r.key = cell
	r.hits, r.passes, r.rate = 1, 1, 1
	b.count++
	return i
}

// prioritize recalculates the rate of the latter record once enough samples
// were taken and moves it in front of former when it is accessed more
// often. It returns the index the latter record ends up at.
func (c *Cache) prioritize(b *bucket, former, latter int) int {
	l := &b.records[latter]
	if l.hits+l.passes < c.cfg.SampleThreshold {
		return latter
	}
	// passed more often than hit: subtract
	if l.hits < l.passes {
		n := l.passes
		l.passes = l.hits
		l.hits = -n
	}
	l.rate = (l.rate + l.hits/l.passes) / 2
	l.hits, l.passes = 1, 1

	if l.rate-b.records[former].rate > c.cfg.SwapMargin {
		b.records[former], b.records[latter] = b.records[latter], b.records[former]
		c.stats.Swaps++
		return former
	}
	return latter
}

func (c *Cache) bucketOf(cell matrix.Cell) int {
	return int(Hash(cell) % uint32(len(c.buckets)))
}

// Hash mixes the codepoint with every word of the cell layout. Zero words
// contribute their running count so that runs of empty fields still differ.
func Hash(cell matrix.Cell) uint32 {
	var buf [matrix.CellSize]byte
	b, _ := cell.AppendBinary(buf[:0])
	h := uint32(cell.Codepoint()) * 0xf1fade1f
	var s uint32
	for i := 0; i+4 <= len(b); i += 4 {
		w := uint32(b[i]) | uint32(b[i+1])<<8 | uint32(b[i+2])<<16 | uint32(b[i+3])<<24
		if w == 0 {
			s++
			h ^= s * 0x01020304
		} else {
			h ^= w * 0x01020304
		}
	}
	return h
}

// Len is the number of cached cells.
func (c *Cache) Len() int {
	n := 0
	for i := range c.buckets {
		n += c.buckets[i].count
	}
	return n
}

// Capacity is the number of tile slots of the atlas.
func (c *Cache) Capacity() int { return c.cfg.Limit() }

// Allocated is the number of tile slots handed out to buckets.
func (c *Cache) Allocated() int { return c.next }

func (c *Cache) Stats() Stats { return c.stats }

func (c *Cache) Config() Config { return c.cfg }

// CellSize is the pixel size of a tile.
func (c *Cache) CellSize() image.Point { return c.cellSize }

// Atlas returns the images backing the cache.
func (c *Cache) Atlas() []*image.RGBA { return c.atlas }
