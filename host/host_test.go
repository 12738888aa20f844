package host

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/cellmatrix/control"
	"github.com/srlehn/cellmatrix/device"
	"github.com/srlehn/cellmatrix/internal/encoder"
	"github.com/srlehn/cellmatrix/matrix"
)

type recorder struct {
	mu     sync.Mutex
	frames int
	dirty  []image.Rectangle
	title  string
	closed bool
}

func (r *recorder) Present(frame *image.RGBA, dirty image.Rectangle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames++
	r.dirty = append(r.dirty, dirty)
	return nil
}

func (r *recorder) SetTitle(title string) {
	r.mu.Lock()
	r.title = title
	r.mu.Unlock()
}

func (r *recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

func (r *recorder) snapshot() (frames int, dirty []image.Rectangle, title string, closed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames, append([]image.Rectangle(nil), r.dirty...), r.title, r.closed
}

var red = matrix.RGB(0xFF, 0, 0)

func newHost(t *testing.T, opts ...Option) (*Host, *recorder) {
	t.Helper()
	rec := &recorder{}
	h, err := New(append([]Option{SetSize(320, 160), SetFont(``, 16), SetPresenter(rec)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h, rec
}

func filled(c matrix.Color) matrix.Cell {
	return matrix.NewGlyph().Update(matrix.WithFill(c)).Cell()
}

func cellCenter(h *Host, y, x int) (int, int) {
	cell := h.Dimensions().CellPixels()
	return x*cell.X + cell.X/2, y*cell.Y + cell.Y/2
}

func TestNew(t *testing.T) {
	h, _ := newHost(t)
	p := h.Dimensions()
	require.NotZero(t, p.XCells)
	require.NotZero(t, p.YCells)
	assert.Equal(t, matrix.NewArea(0, 0, p.YCells, p.XCells), h.Screen().Area())
	assert.Equal(t, p.ScreenPixels(), h.Frame().Bounds().Size())

	_, err := New(SetSize(0, 10))
	assert.Error(t, err)
	_, err = New(SetScale(-1))
	assert.Error(t, err)
	_, err = New(SetPresenter(nil))
	assert.Error(t, err)
}

func TestRenderAndPresent(t *testing.T) {
	h, rec := newHost(t)
	require.True(t, h.Screen().Set(1, 2, filled(red)))
	h.InvalidateCells(matrix.NewArea(1, 2, 1, 1))
	h.DispatchFrame()
	h.Synchronize()

	frames, dirty, _, _ := rec.snapshot()
	require.Equal(t, 1, frames)
	assert.Equal(t, h.Frame().Bounds(), dirty[0], `first frame is complete`)
	x, y := cellCenter(h, 1, 2)
	assert.Equal(t, color.RGBA{R: 0xFF, A: 0xFF}, h.Frame().RGBAAt(x, y))

	// the next frame only carries the invalidated cell
	require.True(t, h.Screen().Set(0, 0, filled(red)))
	h.InvalidateCells(matrix.NewArea(0, 0, 1, 1))
	h.DispatchFrame()
	h.Synchronize()
	frames, dirty, _, _ = rec.snapshot()
	require.Equal(t, 2, frames)
	assert.Equal(t, matrix.NewArea(0, 0, 1, 1).Rect(h.Dimensions().CellPixels()), dirty[1])

	// nothing changed, nothing presented
	h.DispatchFrame()
	h.Synchronize()
	frames, _, _, _ = rec.snapshot()
	assert.Equal(t, 2, frames)
}

func TestInvalidateBeforeWrite(t *testing.T) {
	h, rec := newHost(t)
	colors := []color.RGBA{
		{R: 0xFF, A: 0xFF},
		{G: 0xFF, A: 0xFF},
		{B: 0xFF, A: 0xFF},
		{R: 0xFF, G: 0xFF, A: 0xFF},
		{G: 0xFF, B: 0xFF, A: 0xFF},
	}
	// the area is marked first; the cells are read when the frame renders
	h.InvalidateCells(matrix.NewArea(0, 0, 1, 5))
	for i, c := range colors {
		require.True(t, h.Screen().Set(0, uint16(i), filled(matrix.RGB(c.R, c.G, c.B))))
	}
	h.DispatchFrame()
	h.Synchronize()

	frames, _, _, _ := rec.snapshot()
	require.Equal(t, 1, frames)
	for i, c := range colors {
		x, y := cellCenter(h, 0, i)
		assert.Equal(t, c, h.Frame().RGBAAt(x, y), `cell %d`, i)
	}
}

func TestRenderBeforePresentIsInvisible(t *testing.T) {
	h, _ := newHost(t)
	h.Screen().Fill(h.Screen().Area(), filled(red))
	h.InvalidateCells(h.Screen().Area())
	h.RenderPixels()
	h.Synchronize()
	x, y := cellCenter(h, 0, 0)
	assert.NotEqual(t, color.RGBA{R: 0xFF, A: 0xFF}, h.Frame().RGBAAt(x, y))
	assert.Zero(t, h.Frames())
}

func TestReplicateAfterInvalidate(t *testing.T) {
	h, _ := newHost(t)
	require.True(t, h.Screen().Set(0, 0, filled(red)))
	h.InvalidateCells(matrix.NewArea(0, 0, 1, 1))
	// the pending invalidation is rendered before the copy
	h.ReplicateCells(matrix.NewArea(1, 3, 1, 1), matrix.NewArea(0, 0, 1, 1))
	h.DispatchFrame()
	h.Synchronize()

	x, y := cellCenter(h, 1, 3)
	assert.Equal(t, color.RGBA{R: 0xFF, A: 0xFF}, h.Frame().RGBAAt(x, y))
	assert.NotEqual(t, red, h.Screen().Cell(1, 3).Fill(), `cells are not copied`)
}

func TestEventHandoff(t *testing.T) {
	h, _ := newHost(t)
	posted := make(chan error, 1)
	go func() { posted <- h.Post(context.Background(), device.KeyEvent('a', 0, `a`)) }()
	assert.Equal(t, uint16(1), h.TransferEvent())
	assert.Equal(t, int32('a'), h.Status().Dispatch)
	assert.Equal(t, []byte(`a`), h.TransferText())
	require.NoError(t, <-posted)

	h.SynchronizeIO()
	h.TransferEvent()
	assert.True(t, h.Status().Is(control.SessionSynchronize))
}

func TestResize(t *testing.T) {
	h, _ := newHost(t)
	before := *h.Dimensions()
	go h.Resize(640, 320)
	h.TransferEvent()
	require.True(t, h.Status().Is(control.ScreenResize))
	after := *h.Dimensions()
	assert.Greater(t, after.XCells, before.XCells)
	assert.Greater(t, after.YCells, before.YCells)
	assert.Equal(t, matrix.NewArea(0, 0, after.YCells, after.XCells), h.Screen().Area())

	h.Synchronize()
	assert.Equal(t, after.ScreenPixels(), h.Frame().Bounds().Size())
}

func TestReconfigure(t *testing.T) {
	h, _ := newHost(t)
	cell := h.Dimensions().CellPixels()
	errc := make(chan error, 1)
	go func() { errc <- h.Reconfigure(``, 32, 0) }()
	h.TransferEvent()
	require.NoError(t, <-errc)
	require.True(t, h.Status().Is(control.ScreenResize))

	bigger := h.Dimensions().CellPixels()
	assert.Greater(t, bigger.X, cell.X)
	assert.Greater(t, bigger.Y, cell.Y)

	require.True(t, h.Screen().Set(0, 0, filled(red)))
	h.InvalidateCells(matrix.NewArea(0, 0, 1, 1))
	h.DispatchFrame()
	h.Synchronize()
	assert.Equal(t, color.RGBA{R: 0xFF, A: 0xFF}, h.Frame().RGBAAt(bigger.X-1, bigger.Y-1))
}

func TestFrameTitles(t *testing.T) {
	h, rec := newHost(t)
	h.FrameList(`edit`, `log`)
	h.FrameStatus(1, 1)
	h.Synchronize()
	_, _, title, _ := rec.snapshot()
	assert.Equal(t, `log`, title)
}

func TestIntegrate(t *testing.T) {
	h, _ := newHost(t)
	path := filepath.Join(t.TempDir(), `red.png`)
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:], []byte{0xFF, 0, 0, 0xFF})
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, (&encoder.Encoder{}).Encode(f, img, `png`))
	require.NoError(t, f.Close())

	id := h.Integrate(path, 2, 2)
	require.Positive(t, id)
	assert.Equal(t, id, h.Integrate(path, 2, 2))
	assert.NotEqual(t, id, h.Integrate(path, 1, 1))
	assert.Equal(t, int32(-1), h.Integrate(filepath.Join(t.TempDir(), `missing.png`), 1, 1))

	single := h.Integrate(path, 1, 1)
	tile := matrix.ImageTile{Identity: single}.Switch(0, 0).Cell()
	require.True(t, h.Screen().Set(0, 0, tile))
	h.InvalidateCells(matrix.NewArea(0, 0, 1, 1))
	h.DispatchFrame()
	h.Synchronize()
	x, y := cellCenter(h, 0, 0)
	assert.Equal(t, color.RGBA{R: 0xFF, A: 0xFF}, h.Frame().RGBAAt(x, y))
}

func TestCacheStats(t *testing.T) {
	h, _ := newHost(t)
	h.Screen().Fill(h.Screen().Area(), filled(red))
	h.InvalidateCells(h.Screen().Area())
	h.RenderPixels()
	st := h.CacheStats()
	assert.Equal(t, uint64(1), st.Misses)
	assert.Equal(t, uint64(h.Screen().Area().Volume()-1), st.Hits)
}

func TestClose(t *testing.T) {
	h, rec := newHost(t)
	taken := make(chan bool, 1)
	go func() {
		h.TransferEvent()
		taken <- h.Status().Closed()
	}()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, h.Close())
	select {
	case closed := <-taken:
		assert.True(t, closed)
	case <-time.After(time.Second):
		t.Fatal(`application was not released`)
	}
	_, _, _, closed := rec.snapshot()
	assert.True(t, closed)
	assert.NoError(t, h.Close())

	// calls after close return without blocking
	h.InvalidateCells(h.Screen().Area())
	h.DispatchFrame()
	h.Synchronize()
	assert.Zero(t, h.CacheStats())
	h.TransferEvent()
	assert.True(t, h.Status().Closed())
}

func TestRun(t *testing.T) {
	h, _ := newHost(t)
	err := h.Run(func(d device.Device) error {
		panic(`boom`)
	})
	assert.Error(t, err)
	select {
	case <-h.Done():
	default:
		t.Fatal(`host not closed after run`)
	}
}
